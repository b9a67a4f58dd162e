// Package viz renders a topology as a Graphviz DOT document: one cluster
// per compute node, one sub-cluster per service with an ellipse per
// replica, and an edge for every downstream call.
package viz

import (
	"bytes"
	"fmt"

	"microbench/pkg/topology"
)

func DOT(t *topology.Topology) string {
	var b bytes.Buffer
	b.WriteString("digraph \"Service Topology\" {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, node := range computeNodes(t) {
		b.WriteString(fmt.Sprintf("  subgraph \"cluster_%s\" {\n", node))
		b.WriteString(fmt.Sprintf("    label=\"%s\";\n", node))
		b.WriteString("    style=filled;\n")
		b.WriteString("    color=lightgrey;\n")

		for _, name := range t.Names() {
			svc, _ := t.Service(name)
			if svc.Node != node {
				continue
			}
			b.WriteString(fmt.Sprintf("    subgraph \"cluster_%s\" {\n", name))
			b.WriteString(fmt.Sprintf("      label=\"%s\";\n", name))
			b.WriteString("      style=\"rounded,filled\";\n")
			b.WriteString("      color=lightblue;\n")
			for i := 1; i <= svc.Replicas; i++ {
				b.WriteString(fmt.Sprintf("      \"%s_replica_%d\" [label=\"Replica %d\\n%s\", shape=ellipse];\n",
					name, i, i, svc.ProcessingDelay))
			}
			// Invisible anchor so edges can target the service cluster.
			b.WriteString(fmt.Sprintf("      \"%s\" [style=invis, shape=point];\n", name))
			b.WriteString("    }\n")
		}
		b.WriteString("  }\n")
	}

	for _, name := range t.Names() {
		svc, _ := t.Service(name)
		for _, out := range svc.OutServices {
			b.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", name, out))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// computeNodes returns the distinct compute nodes in first-seen order.
func computeNodes(t *topology.Topology) []string {
	seen := map[string]bool{}
	var nodes []string
	for _, name := range t.Names() {
		svc, _ := t.Service(name)
		if !seen[svc.Node] {
			seen[svc.Node] = true
			nodes = append(nodes, svc.Node)
		}
	}
	return nodes
}
