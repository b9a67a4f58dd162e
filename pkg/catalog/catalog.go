// Package catalog enumerates the fixed families of benchmark topology
// shapes (chains, fans, diamonds, butterflies, funnels, reverse funnels)
// and expands them into the generation tasks the bulk pipeline consumes.
package catalog

import (
	"fmt"
	"log"
	"strings"

	"microbench/pkg/topology"
)

// Task is one topology to produce: the builder parameters plus the output
// filename it is written under. Tasks are independent and consumed exactly
// once by the pipeline.
type Task struct {
	Filename         string
	Category         string
	Depth            int
	ServicesPerLevel []int
	Replicas         int
	Nodes            []string
	Strategy         topology.Strategy
}

// Categories are the filename prefixes reported in the bulk tally, in
// report order. Chain topologies are filed under "depth" because their
// filenames encode the chain depth.
var Categories = []string{"depth", "fan", "diamond", "butterfly", "funnel", "rev_funnel"}

var allStrategies = []topology.Strategy{
	topology.StrategyHalfHalf,
	topology.StrategyRoundRobin,
	topology.StrategySame,
}

var sameAndRR = []topology.Strategy{
	topology.StrategySame,
	topology.StrategyRoundRobin,
}

// The diamond-family shapes are hand-picked vectors rather than swept
// ranges. They always run with replicas=1 to keep their output small; the
// caller's replica default is intentionally ignored for them.
var (
	diamondShapes = [][]int{
		{1, 2, 4, 2}, {1, 2, 5, 2}, {1, 2, 6, 2}, {1, 2, 7, 2}, {1, 2, 8, 2},
		{1, 3, 5, 3}, {1, 3, 6, 3}, {1, 3, 7, 3}, {1, 3, 8, 3},
	}
	butterflyShapes = [][]int{
		{1, 3, 1, 3}, {1, 4, 1, 4}, {1, 4, 2, 4}, {1, 5, 1, 5}, {1, 5, 2, 5},
		{1, 5, 3, 5}, {1, 6, 1, 6}, {1, 6, 2, 6}, {1, 7, 1, 7}, {1, 8, 1, 8},
	}
	funnelShapes = [][]int{
		{1, 3, 3, 1}, {1, 4, 4, 1}, {1, 4, 4, 2}, {1, 5, 5, 1}, {1, 5, 5, 2}, {1, 6, 6, 1},
	}
	reverseFunnelShapes = [][]int{
		{1, 1, 3, 3}, {1, 1, 4, 4}, {1, 2, 4, 4}, {1, 1, 5, 5}, {1, 2, 5, 5},
		{1, 3, 5, 5}, {1, 1, 6, 6}, {1, 2, 6, 6}, {1, 1, 7, 7}, {1, 1, 8, 8},
	}
)

// ExpandAll crosses every shape family with its scheduling strategies and
// returns the full task list. Filenames are deterministic and collision
// free for a fixed parameter set.
func ExpandAll(nodes []string, replicas int) []Task {
	var tasks []Task

	log.Printf("[catalog] expanding chain topologies")
	for _, depth := range []int{2, 4, 6, 8, 10} {
		counts := make([]int, depth)
		for i := range counts {
			counts[i] = 1
		}
		for _, strategy := range allStrategies {
			tasks = append(tasks, Task{
				Filename:         fmt.Sprintf("depth_%d_%s.yaml", depth, strategy),
				Category:         "depth",
				Depth:            depth,
				ServicesPerLevel: counts,
				Replicas:         replicas,
				Nodes:            nodes,
				Strategy:         strategy,
			})
		}
	}

	log.Printf("[catalog] expanding fan topologies")
	fan := []int{1, 2, 4, 6, 8}
	for _, n := range fan {
		for _, i := range fan {
			for _, m := range fan {
				for _, strategy := range allStrategies {
					tasks = append(tasks, Task{
						Filename:         fmt.Sprintf("fan_%d_%d_%d_%s.yaml", n, i, m, strategy),
						Category:         "fan",
						Depth:            4,
						ServicesPerLevel: []int{1, n, i, m},
						Replicas:         replicas,
						Nodes:            nodes,
						Strategy:         strategy,
					})
				}
			}
		}
	}

	tasks = append(tasks, expandFixedShapes("diamond", diamondShapes, nodes)...)
	tasks = append(tasks, expandFixedShapes("butterfly", butterflyShapes, nodes)...)
	tasks = append(tasks, expandFixedShapes("funnel", funnelShapes, nodes)...)
	tasks = append(tasks, expandFixedShapes("rev_funnel", reverseFunnelShapes, nodes)...)

	log.Printf("[catalog] expanded %d generation tasks", len(tasks))
	return tasks
}

func expandFixedShapes(category string, shapes [][]int, nodes []string) []Task {
	log.Printf("[catalog] expanding %s topologies", category)

	var tasks []Task
	for _, counts := range shapes {
		for _, strategy := range sameAndRR {
			tasks = append(tasks, Task{
				Filename:         fmt.Sprintf("%s_%s_%s.yaml", category, tailJoined(counts), strategy),
				Category:         category,
				Depth:            len(counts),
				ServicesPerLevel: counts,
				Replicas:         1,
				Nodes:            nodes,
				Strategy:         strategy,
			})
		}
	}
	return tasks
}

// tailJoined renders the count vector without its leading frontend entry,
// e.g. [1,2,4,2] -> "2_4_2".
func tailJoined(counts []int) string {
	parts := make([]string, 0, len(counts)-1)
	for _, c := range counts[1:] {
		parts = append(parts, fmt.Sprintf("%d", c))
	}
	return strings.Join(parts, "_")
}
