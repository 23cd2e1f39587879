package install

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// Command is one external process started during an install.
type Command struct {
	Path string
	Args []string
	Dir  string
	// Env is appended to the inherited environment.
	Env []string
	// Quiet captures output instead of streaming it.
	Quiet bool
}

// Runner starts install-time processes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (output string, err error)
}

// ExecRunner runs commands with os/exec. Streamed output goes to Output,
// or os.Stderr when Output is nil.
type ExecRunner struct {
	Output io.Writer
}

// Run executes cmd. In quiet mode the combined output is returned so
// failures can report it.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	if cmd.Quiet {
		var buf bytes.Buffer
		c.Stdout = &buf
		c.Stderr = &buf
		err := c.Run()
		return buf.String(), err
	}

	out := r.Output
	if out == nil {
		out = os.Stderr
	}
	c.Stdout = out
	c.Stderr = out
	return "", c.Run()
}
