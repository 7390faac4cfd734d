package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCommandNotFound(t *testing.T) {
	tests := []struct {
		name      string
		stderr    string
		exitCode  int
		wantCmd   string
		wantFound bool
	}{
		{name: "bash", stderr: "bash: adb: command not found", exitCode: 127, wantCmd: "adb", wantFound: true},
		{name: "zsh", stderr: "zsh: command not found: adb", exitCode: 127, wantCmd: "adb", wantFound: true},
		{name: "dash", stderr: "sh: 1: adb: not found", exitCode: 127, wantCmd: "adb", wantFound: true},
		{name: "absolute path", stderr: "-bash: /opt/adb: No such file or directory", exitCode: 127, wantCmd: "/opt/adb", wantFound: true},
		{name: "quoted name", stderr: "sh: 1: 'adb': not found", exitCode: 127, wantCmd: "adb", wantFound: true},
		{name: "device shell", stderr: "/system/bin/sh: b2g-info: not found", exitCode: 127, wantCmd: "b2g-info", wantFound: true},
		{name: "127 without a name", stderr: "something else", exitCode: 127, wantFound: true},
		{name: "other exit code", stderr: "bash: adb: command not found", exitCode: 1},
		{name: "success", exitCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, found := IsCommandNotFound(tt.stderr, tt.exitCode)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantCmd, cmd)
		})
	}
}

func TestIsProgram(t *testing.T) {
	assert.True(t, isProgram("adb", "adb"))
	assert.True(t, isProgram("adb", "/opt/platform-tools/adb"))
	assert.True(t, isProgram("/opt/adb", "/opt/adb"))
	assert.False(t, isProgram("b2g-info", "adb"))
	assert.False(t, isProgram("", "adb"))
}
