package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Stdio is the standard streams handed to a launched binary.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run launches an exposed binary with inherited stdio and returns its exit
// code. A binary that was never installed fails with *BinaryNotFoundError
// before anything is spawned.
func (o *Orchestrator) Run(ctx context.Context, name string, args []string) (int, error) {
	return o.RunWithStdio(ctx, name, args, Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// RunWithStdio is Run with explicit streams.
func (o *Orchestrator) RunWithStdio(ctx context.Context, name string, args []string, stdio Stdio) (int, error) {
	path := o.BinaryPath(name)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return -1, &BinaryNotFoundError{Name: name, Path: path}
	}

	o.logger.Debug("running binary", "path", path, "args", args)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// killed by a signal
		return 1, fmt.Errorf("%s terminated: %w", name, err)
	}
	return -1, fmt.Errorf("start %s: %w", name, err)
}
