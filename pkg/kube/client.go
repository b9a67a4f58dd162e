// Package kube discovers the compute-node pool from a live cluster as an
// alternative to passing node names on the command line. It only reads
// cluster state; deploying workloads is out of scope for this tooling.
package kube

import (
	"context"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
)

type Client struct {
	cs kubernetes.Interface
}

func NewInCluster() (*Client, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		return nil, err
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cs: cs}, nil
}

func NewFromKubeconfig(path string) (*Client, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, err
	}
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cs: cs}, nil
}

// NewForClientset wraps an existing clientset; tests pass a fake.
func NewForClientset(cs kubernetes.Interface) *Client {
	return &Client{cs: cs}
}

// NodeNames lists the cluster's node names, sorted so the resulting node
// pool (and therefore placement) is deterministic across runs.
func (c *Client) NodeNames(ctx context.Context) ([]string, error) {
	list, err := c.cs.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list.Items))
	for _, n := range list.Items {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	klog.V(2).Infof("discovered %d cluster nodes: %v", len(names), names)
	return names, nil
}
