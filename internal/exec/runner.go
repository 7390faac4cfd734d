// Package exec runs the adb binary, either on this machine or on a remote
// host over SSH, behind one Runner interface.
package exec

import "context"

// Runner executes a program with arguments and captures its output.
//
// A non-zero exit code with a nil error means the program ran but failed.
// A non-nil error means it could not be run at all (exit code -1), or the
// context was cancelled first.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	return f(ctx, name, args...)
}
