package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/util"
)

// ConfigFileCheck reports which config file applies.
type ConfigFileCheck struct {
	Explicit string // --config value, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(ctx context.Context) CheckResult {
	path, err := config.Find(c.Explicit)
	if err != nil {
		return fail(message(err), "Check the --config path")
	}
	if path == "" {
		return warn("No config file, using defaults",
			"Run 'b2gmon init' to save the apps you track")
	}
	return pass("Config file: " + path)
}

// ConfigValidCheck validates the resolved config.
type ConfigValidCheck struct {
	Config  *config.Config
	LoadErr error
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run(ctx context.Context) CheckResult {
	if c.LoadErr != nil {
		return fail(message(c.LoadErr), suggestion(c.LoadErr))
	}
	if err := config.Validate(c.Config); err != nil {
		return fail(message(err), suggestion(err))
	}
	return pass(fmt.Sprintf("Config valid (interval %s, duration %s)",
		config.FormatDuration(c.Config.Interval), config.FormatDuration(c.Config.Duration)))
}

// TrackedAppsCheck warns when nothing is tracked, since no report would
// be written.
type TrackedAppsCheck struct {
	Apps []string
}

func (c *TrackedAppsCheck) Name() string     { return "tracked_apps" }
func (c *TrackedAppsCheck) Category() string { return CategoryConfig }

func (c *TrackedAppsCheck) Run(ctx context.Context) CheckResult {
	if len(c.Apps) == 0 {
		return warn("No apps tracked, so no report will be written",
			"Add one with 'b2gmon track <app>' or pass -n <app>")
	}
	return pass("Tracking " + util.JoinOrNone(c.Apps))
}

// OutputCheck verifies the report directory can be written.
type OutputCheck struct {
	Pattern string
}

func (c *OutputCheck) Name() string     { return "report_output" }
func (c *OutputCheck) Category() string { return CategoryConfig }

func (c *OutputCheck) Run(ctx context.Context) CheckResult {
	path := config.Expand(c.Pattern, time.Now(), "")
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(fmt.Sprintf("Can't create report directory %s: %v", dir, err),
			"Pick another --output path")
	}
	f, err := os.CreateTemp(dir, ".b2gmon-*")
	if err != nil {
		return fail(fmt.Sprintf("Report directory %s is not writable: %v", dir, err),
			"Check permissions or pick another --output path")
	}
	name := f.Name()
	f.Close()
	os.Remove(name)

	return pass("Report goes to " + path)
}

// NewConfigChecks returns the config checks for cfg. loadErr is the error
// from loading it, if any.
func NewConfigChecks(explicit string, cfg *config.Config, loadErr error) []Check {
	checks := []Check{
		&ConfigFileCheck{Explicit: explicit},
		&ConfigValidCheck{Config: cfg, LoadErr: loadErr},
	}
	if loadErr == nil {
		checks = append(checks,
			&TrackedAppsCheck{Apps: cfg.Apps},
			&OutputCheck{Pattern: cfg.Output},
		)
	}
	return checks
}

// message returns the headline of a structured error, or err.Error().
func message(err error) string {
	var b2gErr *errors.Error
	if stderrors.As(err, &b2gErr) {
		return b2gErr.Message
	}
	return err.Error()
}

func suggestion(err error) string {
	var b2gErr *errors.Error
	if stderrors.As(err, &b2gErr) {
		return b2gErr.Suggestion
	}
	return ""
}
