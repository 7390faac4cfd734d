package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/b2gmon/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "run until stopped", mutate: func(c *Config) { c.Duration = 0 }},
		{name: "tui", mutate: func(c *Config) { c.Display = DisplayTUI }},
		{name: "xlsm", mutate: func(c *Config) { c.Output = "out/report.XLSM" }},
		{name: "future version", mutate: func(c *Config) { c.Version = 99 }, wantErr: "from the future"},
		{name: "negative interval", mutate: func(c *Config) { c.Interval = -time.Second }, wantErr: "Interval can't be negative"},
		{name: "negative duration", mutate: func(c *Config) { c.Duration = -time.Second }, wantErr: "Duration can't be negative"},
		{name: "empty output", mutate: func(c *Config) { c.Output = " " }, wantErr: "output path is empty"},
		{name: "legacy xls", mutate: func(c *Config) { c.Output = "logs/b2g_logs.xls" }, wantErr: "must be an Excel workbook"},
		{name: "no extension", mutate: func(c *Config) { c.Output = "report" }, wantErr: "must be an Excel workbook"},
		{name: "unknown display", mutate: func(c *Config) { c.Display = "gui" }, wantErr: "Unknown display 'gui'"},
		{name: "empty adb", mutate: func(c *Config) { c.ADB = "" }, wantErr: "adb path is empty"},
		{name: "negative ssh timeout", mutate: func(c *Config) { c.SSH.Timeout = -1 }, wantErr: "SSH timeout"},
		{name: "serial with space", mutate: func(c *Config) { c.Serial = "a b" }, wantErr: "contains whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
