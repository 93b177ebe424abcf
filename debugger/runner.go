package debugger

import (
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"
)

// Runner launches an external program and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args []string, output io.Writer) (int, error)
}

type ExecRunner struct{}

// Run sends stdout and stderr of the program to output. A nonzero exit is
// reported through both the exit code and the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args []string, output io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = output
	cmd.Stderr = output

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), err
	}
	return -1, err
}
