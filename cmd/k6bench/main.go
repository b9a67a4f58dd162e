// k6bench runs a k6 load test against a benchmark frontend, filling the
// requests-per-second value into the adjacent script template and
// forwarding benchmark id and replica count as k6 run tags.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"microbench/pkg/execrun"
	"microbench/pkg/loadrun"
)

func main() {
	var (
		target   = flag.String("target", "", "Target URL to benchmark")
		rps      = flag.Int("rps", 0, "Requests per second")
		benchID  = flag.String("bench-id", "", "Benchmark ID forwarded as a run tag")
		replicas = flag.Int("replicas", 0, "Number of replicas forwarded as a run tag")
		template = flag.String("template", "", "Path to the k6 script template (default: script_template.js next to the executable)")
	)
	flag.Parse()

	if *target == "" || *rps <= 0 {
		log.Fatal("Usage: k6bench -target <url> -rps <n> [-bench-id <id>] [-replicas <n>] [-template <path>]")
	}

	templatePath := *template
	if templatePath == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Fatalf("locate executable: %v", err)
		}
		templatePath = filepath.Join(filepath.Dir(exe), "script_template.js")
	}

	err := loadrun.Run(loadrun.Options{
		Target:       *target,
		RPS:          *rps,
		BenchID:      *benchID,
		Replicas:     *replicas,
		TemplatePath: templatePath,
	}, execrun.Exec{})
	if err != nil {
		log.Fatalf("k6 run failed: %v", err)
	}
}
