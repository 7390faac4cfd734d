package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/b2gmon/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host in a fresh session.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(cmd); err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to execute command on %s", c.Host),
			"The connection to the adb host dropped. Check it is still reachable.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}
