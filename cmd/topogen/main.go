// topogen generates benchmark topology files. In single mode it builds one
// topology from the given shape parameters and prints it; with -bulk it
// expands the full shape catalogue into an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"microbench/pkg/catalog"
	"microbench/pkg/kube"
	"microbench/pkg/pipeline"
	"microbench/pkg/topology"
)

const (
	defaultSingleReplicas = 4
	defaultBulkReplicas   = 8
)

func main() {
	var (
		nodes            = flag.String("nodes", "", "Comma-separated list of compute nodes")
		nodesFromCluster = flag.Bool("nodes-from-cluster", false, "Discover the node pool from the cluster instead of -nodes")
		kubeconfig       = flag.String("kubeconfig", "", "Path to a kubeconfig file (with -nodes-from-cluster; in-cluster config when empty)")
		depth            = flag.Int("depth", 0, "Maximum call depth")
		services         = flag.String("services", "", "Comma-separated list of services per level")
		replicas         = flag.Int("replicas", 0, "Number of replicas per service (default 4, or 8 with -bulk)")
		scheduling       = flag.String("scheduling", "rr", "Scheduling strategy (hh=half-half, rr=round-robin, same=all on one node)")
		bulk             = flag.Bool("bulk", false, "Generate the full bulk topology catalogue")
		outputDir        = flag.String("output-dir", "./topologies", "Output directory for bulk generation")
		workers          = flag.Int("workers", 4, "Number of parallel workers for bulk generation")
	)
	klog.InitFlags(nil)
	flag.Parse()

	nodePool, err := resolveNodePool(*nodes, *nodesFromCluster, *kubeconfig)
	if err != nil {
		log.Fatalf("resolve node pool: %v", err)
	}
	if len(nodePool) == 0 {
		usageError("-nodes is required (or use -nodes-from-cluster)")
	}

	if *bulk {
		if *replicas == 0 {
			*replicas = defaultBulkReplicas
		}
		runBulk(nodePool, *replicas, *outputDir, *workers)
		return
	}

	if *depth < 1 || *services == "" {
		usageError("-depth and -services are required for single topology generation")
	}
	if *replicas == 0 {
		*replicas = defaultSingleReplicas
	}

	counts, err := parseCounts(*services)
	if err != nil {
		usageError(err.Error())
	}

	t, err := topology.Build(topology.Params{
		Depth:            *depth,
		ServicesPerLevel: counts,
		Replicas:         *replicas,
		Nodes:            nodePool,
		Strategy:         topology.Strategy(*scheduling),
	})
	if err != nil {
		log.Fatalf("build topology: %v", err)
	}

	data, err := t.Marshal()
	if err != nil {
		log.Fatalf("serialize topology: %v", err)
	}
	os.Stdout.Write(data)
}

func runBulk(nodePool []string, replicas int, outputDir string, workers int) {
	tasks := catalog.ExpandAll(nodePool, replicas)

	counts, err := pipeline.Run(context.Background(), tasks, outputDir, workers)
	if err != nil {
		log.Fatalf("bulk generation failed: %v", err)
	}

	for _, category := range catalog.Categories {
		fmt.Printf("  %s: %d files\n", category, counts[category])
	}
}

func resolveNodePool(nodes string, fromCluster bool, kubeconfig string) ([]string, error) {
	if fromCluster {
		var (
			client *kube.Client
			err    error
		)
		if kubeconfig != "" {
			client, err = kube.NewFromKubeconfig(kubeconfig)
		} else {
			client, err = kube.NewInCluster()
		}
		if err != nil {
			return nil, err
		}
		return client.NodeNames(context.Background())
	}
	if nodes == "" {
		return nil, nil
	}
	return strings.Split(nodes, ","), nil
}

func parseCounts(services string) ([]int, error) {
	parts := strings.Split(services, ",")
	counts := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("-services: invalid count %q", p)
		}
		counts[i] = n
	}
	return counts, nil
}

func usageError(msg string) {
	fmt.Fprintf(os.Stderr, "error: %s\n\n", msg)
	flag.Usage()
	os.Exit(2)
}
