// Package execrun abstracts external process invocation behind a small
// capability interface, so the tools that shell out (the load runner, the
// visualizer's render step) stay testable without running any binary.
package execrun

import (
	"io"
	"os"
	"os/exec"
)

type Runner interface {
	Run(name string, args ...string) error
}

// Exec runs commands with os/exec, wiring the child's output to Stdout and
// Stderr (the process's own streams when left nil).
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (e Exec) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}
