// Package pipeline runs queued generation tasks on a bounded worker pool,
// writing one topology file per task.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"microbench/pkg/catalog"
	"microbench/pkg/topology"
)

const progressEvery = 50

// Run executes every task on up to workers goroutines and returns the
// per-category file tally for outputDir. Tasks share no state and complete
// in no particular order; the first task failure aborts the whole run, with
// already-written files left in place. There is no retry.
func Run(ctx context.Context, tasks []catalog.Task, outputDir string, workers int) (map[string]int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	if workers < 1 {
		workers = 1
	}

	log.Printf("[pipeline] generating %d topology files with %d workers", len(tasks), workers)

	var completed atomic.Int64
	total := len(tasks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := produce(task, outputDir); err != nil {
				return err
			}
			if n := completed.Add(1); n%progressEvery == 0 {
				log.Printf("[pipeline] generated %d/%d files...", n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[pipeline] completed: %d topology files in %s", total, outputDir)
	return CountByCategory(outputDir)
}

func produce(task catalog.Task, outputDir string) error {
	t, err := topology.Build(topology.Params{
		Depth:            task.Depth,
		ServicesPerLevel: task.ServicesPerLevel,
		Replicas:         task.Replicas,
		Nodes:            task.Nodes,
		Strategy:         task.Strategy,
	})
	if err != nil {
		return fmt.Errorf("build %s: %w", task.Filename, err)
	}
	data, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", task.Filename, err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, task.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", task.Filename, err)
	}
	return nil
}

// CountByCategory re-scans dir and counts, per known category prefix, how
// many files begin with that prefix. The scan is post hoc over directory
// contents, so files that predate the run are counted too.
func CountByCategory(dir string) (map[string]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan output dir %s: %w", dir, err)
	}
	counts := make(map[string]int, len(catalog.Categories))
	for _, category := range catalog.Categories {
		counts[category] = 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, category := range catalog.Categories {
			if strings.HasPrefix(e.Name(), category) {
				counts[category]++
			}
		}
	}
	return counts, nil
}
