// Package loadrun wraps the external k6 load-testing binary: it fills the
// requests-per-second value into a script template, writes the result to a
// temporary file and invokes k6 against it, forwarding benchmark id and
// replica count as run tags.
package loadrun

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"microbench/pkg/execrun"
)

// rpsPlaceholder is the marker substituted in the script template.
const rpsPlaceholder = "{{RPS}}"

// DefaultK6Path resolves the k6 executable, honouring the K6_PATH override.
func DefaultK6Path() string {
	if p := os.Getenv("K6_PATH"); p != "" {
		return p
	}
	return "k6"
}

type Options struct {
	Target       string
	RPS          int
	BenchID      string
	Replicas     int
	K6Path       string
	TemplatePath string
}

// Run prepares the script and invokes k6 through runner. A missing template
// is an error before any invocation is attempted.
func Run(opts Options, runner execrun.Runner) error {
	tpl, err := os.ReadFile(opts.TemplatePath)
	if err != nil {
		return fmt.Errorf("template not found: %s: %w", opts.TemplatePath, err)
	}

	script := strings.ReplaceAll(string(tpl), rpsPlaceholder, strconv.Itoa(opts.RPS))

	tmp, err := os.CreateTemp("", "k6-script-*.js")
	if err != nil {
		return fmt.Errorf("create script file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return fmt.Errorf("write script file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close script file: %w", err)
	}

	k6 := opts.K6Path
	if k6 == "" {
		k6 = DefaultK6Path()
	}

	args := []string{"run", "-e", "URL=" + opts.Target, tmp.Name()}
	if opts.BenchID != "" {
		args = append(args, "--tag", "benchid="+opts.BenchID)
	}
	if opts.Replicas > 0 {
		args = append(args, "--tag", "replicas="+strconv.Itoa(opts.Replicas))
	}

	log.Printf("[k6bench] running: %s %s", k6, strings.Join(args, " "))
	return runner.Run(k6, args...)
}
