package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"adb", "'adb'"},
		{"b2g-info", "'b2g-info'"},
		{"192.168.1.5:5555", "'192.168.1.5:5555'"},
		{"/opt/Android SDK/adb", "'/opt/Android SDK/adb'"},
		{"it's", `'it'\''s'`},
		{"$(reboot)", "'$(reboot)'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuote(tt.in))
		})
	}
}

func TestShellQuotePreserveTilde(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"~/platform-tools/adb", "~/'platform-tools/adb'"},
		{"~/Android/Sdk/platform-tools/adb", "~/'Android/Sdk/platform-tools/adb'"},
		{"~/my tools/adb", "~/'my tools/adb'"},
		{"~", "~"},
		{"~builder/adb", "'~builder/adb'"},
		{"/usr/bin/adb", "'/usr/bin/adb'"},
		{"adb", "'adb'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuotePreserveTilde(tt.in))
		})
	}
}
