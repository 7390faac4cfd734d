package exec

import (
	"context"
	"testing"
	"time"

	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner_CapturesStdout(t *testing.T) {
	r := NewLocalRunner()

	stdout, stderr, code, err := r.Run(context.Background(), "sh", "-c", "echo hello")

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", string(stdout))
	assert.Empty(t, stderr)
}

func TestLocalRunner_CapturesStderr(t *testing.T) {
	r := NewLocalRunner()

	_, stderr, code, err := r.Run(context.Background(), "sh", "-c", "echo 'error: no devices/emulators found' >&2")

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "error: no devices/emulators found\n", string(stderr))
}

func TestLocalRunner_NonZeroExitCode(t *testing.T) {
	r := NewLocalRunner()

	_, _, code, err := r.Run(context.Background(), "sh", "-c", "exit 42")

	require.NoError(t, err, "command ran, it just failed")
	assert.Equal(t, 42, code)
}

func TestLocalRunner_ArgumentsAreNotShellExpanded(t *testing.T) {
	r := NewLocalRunner()

	stdout, _, _, err := r.Run(context.Background(), "echo", "$HOME", "a b")

	require.NoError(t, err)
	assert.Equal(t, "$HOME a b\n", string(stdout))
}

func TestLocalRunner_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := &LocalRunner{Dir: dir}

	stdout, _, _, err := r.Run(context.Background(), "pwd")

	require.NoError(t, err)
	assert.Contains(t, string(stdout), dir)
}

func TestLocalRunner_MissingBinary(t *testing.T) {
	r := NewLocalRunner()

	_, _, code, err := r.Run(context.Background(), "definitely-not-adb-xyz")

	require.Error(t, err)
	assert.Equal(t, -1, code)
	assert.True(t, b2gerrors.IsCode(err, b2gerrors.ErrExec))
}

func TestLocalRunner_ContextCancelled(t *testing.T) {
	r := NewLocalRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, code, err := r.Run(ctx, "sleep", "5")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, -1, code)
}

func TestRunnerFunc(t *testing.T) {
	var gotName string
	var gotArgs []string
	f := RunnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
		gotName, gotArgs = name, args
		return []byte("ok"), nil, 0, nil
	})

	out, _, _, err := f.Run(context.Background(), "adb", "root")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, "adb", gotName)
	assert.Equal(t, []string{"root"}, gotArgs)
}
