package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
)

// LocalRunner runs programs on this machine. Arguments are passed directly
// to the program, never through a shell.
type LocalRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

// NewLocalRunner creates a runner for local execution.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes name with args and returns stdout, stderr and the exit code.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error) {
	command := exec.CommandContext(ctx, name, args...)
	if r.Dir != "" {
		command.Dir = r.Dir
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	command.Stdout = &stdoutBuf
	command.Stderr = &stderrBuf

	runErr := command.Run()
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, -1, b2gerrors.WrapWithCode(runErr, b2gerrors.ErrExec,
			"Couldn't run "+name,
			"Make sure it is installed and on your PATH, or set its location with --adb.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}
