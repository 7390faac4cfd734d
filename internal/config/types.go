package config

import (
	"time"

	"github.com/rileyhilliard/b2gmon/internal/device"
)

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Display modes.
const (
	DisplayConsole = "console"
	DisplayTUI     = "tui"
)

// Defaults applied when neither the file, the environment nor flags set a
// value.
const (
	DefaultDuration   = 10 * time.Second
	DefaultInterval   = time.Duration(0)
	DefaultOutput     = "logs/b2g_logs.xlsx"
	DefaultSSHTimeout = 10 * time.Second
)

// Config represents the .b2gmon.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Apps are the tracked app names, matched case-insensitively against
	// the NAME column. Empty means display everything and write no report.
	Apps []string `yaml:"apps" mapstructure:"apps"`

	// Interval is the pause between polls; 0 polls back to back.
	// Bare numbers are milliseconds.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Duration ends the session after this long; 0 runs until stopped.
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`

	// Output is the report path. Supports ~, ${HOME}, ${USER}, ${DATE}
	// and ${TIME}.
	Output string `yaml:"output" mapstructure:"output"`

	// Serial pins the session to one device.
	Serial string `yaml:"serial" mapstructure:"serial"`

	// ADB is the adb executable.
	ADB string `yaml:"adb" mapstructure:"adb"`

	// Display is "console" or "tui".
	Display string `yaml:"display" mapstructure:"display"`

	// LogFile receives log output while a live display owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	SSH SSHConfig `yaml:"ssh" mapstructure:"ssh"`
}

// SSHConfig runs adb on another machine, for devices attached to a lab
// box rather than this one.
type SSHConfig struct {
	// Host is a hostname, user@host[:port] or ~/.ssh/config alias.
	// Empty runs adb locally.
	Host string `yaml:"host" mapstructure:"host"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// InsecureIgnoreHostKey skips known_hosts verification.
	InsecureIgnoreHostKey bool `yaml:"insecure_ignore_host_key" mapstructure:"insecure_ignore_host_key"`
}

// Remote reports whether adb runs over SSH.
func (c *Config) Remote() bool {
	return c.SSH.Host != ""
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Apps:     []string{},
		Interval: DefaultInterval,
		Duration: DefaultDuration,
		Output:   DefaultOutput,
		ADB:      device.DefaultBinary,
		Display:  DisplayConsole,
		SSH: SSHConfig{
			Timeout: DefaultSSHTimeout,
		},
	}
}
