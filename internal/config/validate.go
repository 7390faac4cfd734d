package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/b2gmon/internal/errors"
)

// reportExtensions are the workbook formats the report writer can save.
var reportExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but b2gmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade b2gmon or lower the version field.")
	}

	if cfg.Interval < 0 {
		return errors.New(errors.ErrConfig,
			"Interval can't be negative: "+cfg.Interval.String(),
			"Use 0 to poll back to back, or a positive value like 500ms.")
	}

	if cfg.Duration < 0 {
		return errors.New(errors.ErrConfig,
			"Duration can't be negative: "+cfg.Duration.String(),
			"Use 0 to run until Ctrl+C, or a positive value like 30s.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return err
	}

	switch cfg.Display {
	case DisplayConsole, DisplayTUI:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display '%s'", cfg.Display),
			"Use 'console' or 'tui'.")
	}

	if strings.TrimSpace(cfg.ADB) == "" {
		return errors.New(errors.ErrConfig,
			"adb path is empty",
			"Remove the 'adb' key to use the adb on your PATH.")
	}

	if cfg.SSH.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"SSH timeout can't be negative: "+cfg.SSH.Timeout.String(),
			"Use a positive value like 10s.")
	}

	if strings.ContainsAny(cfg.Serial, " \t\n") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Serial '%s' contains whitespace", cfg.Serial),
			"Copy the serial exactly as 'b2gmon devices' prints it.")
	}

	return nil
}

func validateOutput(output string) error {
	if strings.TrimSpace(output) == "" {
		return errors.New(errors.ErrConfig,
			"Report output path is empty",
			"Set 'output' in your config or pass --output.")
	}

	ext := strings.ToLower(filepath.Ext(output))
	if !reportExtensions[ext] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Report output must be an Excel workbook, got '%s'", output),
			"Use a .xlsx file name, for example "+DefaultOutput)
	}
	return nil
}
