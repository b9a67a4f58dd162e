// Package manifests renders Kubernetes workloads for every service in a
// topology: a StatefulSet pinned to the service's compute node, a ClusterIP
// Service for its gRPC port, and a LoadBalancer Service exposing the
// frontend's HTTP port. Rendering stops at YAML text; nothing is applied to
// a cluster.
package manifests

import (
	"bytes"
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"microbench/pkg/topology"
)

const (
	partOfLabel   = "app.kubernetes.io/part-of"
	nameLabel     = "app.kubernetes.io/name"
	partOfValue   = "microbench"
	hostnameLabel = "kubernetes.io/hostname"

	frontendHTTPPort = 8000
	metricsPort      = 8080

	runAsUser  = 1000
	runAsGroup = 3000 // matches the appgroup GID in the benchmark image
)

// Options carries the values injected into every rendered workload.
type Options struct {
	BenchName string
	CNI       string
	LogLevel  string
	Image     string
}

// Render emits the manifests for every service in insertion order,
// separated by YAML document markers.
func Render(t *topology.Topology, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	for _, name := range t.Names() {
		svc, _ := t.Service(name)

		docs := []interface{}{
			statefulSet(svc, opts),
			clusterIPService(svc),
		}
		if svc.Name == topology.FrontendName {
			docs = append(docs, externalService(svc))
		}

		for _, doc := range docs {
			data, err := yaml.Marshal(doc)
			if err != nil {
				return nil, fmt.Errorf("marshal manifest for %s: %w", name, err)
			}
			buf.WriteString("---\n")
			buf.Write(data)
		}
	}
	return buf.Bytes(), nil
}

func statefulSet(svc *topology.Service, opts Options) *appsv1.StatefulSet {
	args := []string{
		fmt.Sprintf("--name=%s", svc.Name),
		fmt.Sprintf("--out=%s", strings.Join(svc.OutServices, ",")),
		fmt.Sprintf("--delay=%s", svc.ProcessingDelay),
		fmt.Sprintf("--port=%d", svc.Port),
	}
	if svc.Name == topology.FrontendName {
		args = append(args, "--is-frontend")
	}

	return &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "StatefulSet"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   svc.Name,
			Labels: map[string]string{partOfLabel: partOfValue},
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: svc.Name,
			Replicas:    int32Ptr(int32(svc.Replicas)),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{nameLabel: svc.Name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						nameLabel:   svc.Name,
						partOfLabel: partOfValue,
					},
				},
				Spec: corev1.PodSpec{
					SecurityContext: &corev1.PodSecurityContext{
						RunAsNonRoot: boolPtr(true),
						RunAsUser:    int64Ptr(runAsUser),
						RunAsGroup:   int64Ptr(runAsGroup),
						SeccompProfile: &corev1.SeccompProfile{
							Type: corev1.SeccompProfileTypeRuntimeDefault,
						},
					},
					Containers: []corev1.Container{{
						Name:  svc.Name,
						Image: opts.Image,
						SecurityContext: &corev1.SecurityContext{
							AllowPrivilegeEscalation: boolPtr(false),
							RunAsNonRoot:             boolPtr(true),
							RunAsUser:                int64Ptr(runAsUser),
							RunAsGroup:               int64Ptr(runAsGroup),
							Capabilities: &corev1.Capabilities{
								Drop: []corev1.Capability{"ALL"},
							},
						},
						Env: []corev1.EnvVar{
							{Name: "BENCH_NAME", Value: opts.BenchName},
							{Name: "CNI", Value: opts.CNI},
							{Name: "LOG_LEVEL", Value: opts.LogLevel},
						},
						Args: args,
						Ports: []corev1.ContainerPort{
							{ContainerPort: int32(svc.Port)},
							{ContainerPort: frontendHTTPPort},
							{ContainerPort: metricsPort},
						},
					}},
					Affinity: &corev1.Affinity{
						NodeAffinity: &corev1.NodeAffinity{
							RequiredDuringSchedulingIgnoredDuringExecution: &corev1.NodeSelector{
								NodeSelectorTerms: []corev1.NodeSelectorTerm{{
									MatchExpressions: []corev1.NodeSelectorRequirement{{
										Key:      hostnameLabel,
										Operator: corev1.NodeSelectorOpIn,
										Values:   []string{svc.Node},
									}},
								}},
							},
						},
					},
				},
			},
		},
	}
}

func clusterIPService(svc *topology.Service) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   svc.Name,
			Labels: map[string]string{partOfLabel: partOfValue},
		},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{nameLabel: svc.Name},
			Ports: []corev1.ServicePort{{
				Port:       int32(svc.Port),
				TargetPort: intstr.FromInt(svc.Port),
			}},
		},
	}
}

func externalService(svc *topology.Service) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   svc.Name + "-external",
			Labels: map[string]string{partOfLabel: partOfValue},
		},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{nameLabel: svc.Name},
			Type:     corev1.ServiceTypeLoadBalancer,
			Ports: []corev1.ServicePort{{
				Name:       "http",
				Port:       frontendHTTPPort,
				TargetPort: intstr.FromInt(frontendHTTPPort),
			}},
		},
	}
}

func int32Ptr(v int32) *int32 { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
