package exec

import (
	"context"
	"path"
	"strings"

	"github.com/rileyhilliard/b2gmon/internal/util"
	"github.com/rileyhilliard/b2gmon/pkg/sshutil"
)

// SSHRunner runs programs on a remote host, for devices plugged into
// another machine (a lab box or CI runner).
type SSHRunner struct {
	client sshutil.SSHClient
}

// NewSSHRunner creates a runner on top of an established SSH client.
func NewSSHRunner(client sshutil.SSHClient) *SSHRunner {
	return &SSHRunner{client: client}
}

// Run executes name with args on the remote host. Every argument is
// single-quoted so the remote shell treats it literally. A program missing
// on the host is an error, as it is for LocalRunner.
func (r *SSHRunner) Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	cmd := BuildCommandLine(name, args...)

	type result struct {
		stdout, stderr []byte
		exitCode       int
		err            error
	}
	resultCh := make(chan result, 1)

	go func() {
		out, errOut, code, err := r.client.Exec(cmd)
		resultCh <- result{out, errOut, code, err}
	}()

	select {
	case <-ctx.Done():
		return nil, nil, -1, ctx.Err()
	case res := <-resultCh:
		if res.err == nil {
			if missing, ok := IsCommandNotFound(string(res.stderr), res.exitCode); ok && isProgram(missing, name) {
				return nil, res.stderr, -1, commandNotFoundError(name, r.client.GetHost())
			}
		}
		return res.stdout, res.stderr, res.exitCode, res.err
	}
}

// isProgram reports whether the shell's missing command is name itself
// rather than something name ran (adb shell passes the device's 127 through).
func isProgram(missing, name string) bool {
	return missing == name || missing == path.Base(name)
}

// Close closes the underlying SSH connection.
func (r *SSHRunner) Close() error {
	return r.client.Close()
}

// BuildCommandLine quotes name and args into one shell command line.
// A leading ~/ on name is left for the remote shell to expand, so an adb
// path from the config can be relative to the remote home.
func BuildCommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, util.ShellQuotePreserveTilde(name))
	for _, a := range args {
		parts = append(parts, util.ShellQuote(a))
	}
	return strings.Join(parts, " ")
}
