// manifests renders Kubernetes manifests for every service in a topology
// file and writes them to standard output.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"microbench/pkg/manifests"
	"microbench/pkg/topology"
)

func main() {
	var (
		topologyFile = flag.String("topology", "", "Path to the topology file")
		cni          = flag.String("cni", "", "CNI name")
		logLevel     = flag.String("log-level", "info", "Log level passed to the services")
		image        = flag.String("image", "microbench:latest", "Benchmark service image")
	)
	flag.Parse()

	if *topologyFile == "" || *cni == "" {
		log.Fatal("Usage: manifests -topology <topology_file> -cni <cni_name> [-log-level <log_level>] [-image <image>]")
	}

	t, err := topology.ReadFile(*topologyFile)
	if err != nil {
		log.Fatalf("read topology: %v", err)
	}

	benchName := strings.TrimSuffix(filepath.Base(*topologyFile), filepath.Ext(*topologyFile))

	out, err := manifests.Render(t, manifests.Options{
		BenchName: benchName,
		CNI:       *cni,
		LogLevel:  *logLevel,
		Image:     *image,
	})
	if err != nil {
		log.Fatalf("render manifests: %v", err)
	}
	os.Stdout.Write(out)
}
