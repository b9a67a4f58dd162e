// viewtopo renders a topology file as a Graphviz document, easier to read
// than the YAML sometimes. With -render it also invokes dot to produce a
// PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"microbench/pkg/execrun"
	"microbench/pkg/topology"
	"microbench/pkg/viz"
)

func main() {
	var (
		out    = flag.String("o", "topo.dot", "Output DOT file")
		render = flag.Bool("render", false, "Render a PNG with the dot executable")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: viewtopo [-o out.dot] [-render] <topology-file>")
		os.Exit(2)
	}

	t, err := topology.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("read topology: %v", err)
	}

	dot := viz.DOT(t)
	if err := os.WriteFile(*out, []byte(dot), 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("[viewtopo] wrote %s", *out)

	if *render {
		png := strings.TrimSuffix(*out, ".dot") + ".png"
		if err := (execrun.Exec{}).Run("dot", "-Tpng", *out, "-o", png); err != nil {
			log.Fatalf("render %s: %v", png, err)
		}
		log.Printf("[viewtopo] saved as %s", png)
	}
}
