package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/exec"
	"github.com/rileyhilliard/b2gmon/internal/util"
)

// SSHCheck reports whether the adb host could be reached.
type SSHCheck struct {
	Host string
	Err  error // result of dialing Host
}

func (c *SSHCheck) Name() string     { return "ssh_host" }
func (c *SSHCheck) Category() string { return CategorySSH }

func (c *SSHCheck) Run(ctx context.Context) CheckResult {
	if c.Err != nil {
		return fail(message(c.Err), suggestion(c.Err))
	}
	return pass("Connected to " + c.Host)
}

// ADBBinaryCheck runs "adb version".
type ADBBinaryCheck struct {
	Runner exec.Runner
	Binary string
}

func (c *ADBBinaryCheck) Name() string     { return "adb_binary" }
func (c *ADBBinaryCheck) Category() string { return CategoryADB }

func (c *ADBBinaryCheck) Run(ctx context.Context) CheckResult {
	stdout, stderr, code, err := c.Runner.Run(ctx, c.Binary, "version")
	if err != nil {
		return fail(fmt.Sprintf("Can't run %s: %v", c.Binary, err),
			"Install Android platform-tools, or set 'adb' in the config to its path")
	}
	if code != 0 {
		return fail(fmt.Sprintf("%s version exited %d: %s", c.Binary, code, strings.TrimSpace(string(stderr))),
			"Try 'adb kill-server' and run again")
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(stdout)), "\n")
	return pass(strings.TrimSpace(first))
}

// DeviceCheck looks for a usable device.
type DeviceCheck struct {
	Source device.Source
}

func (c *DeviceCheck) Name() string     { return "device" }
func (c *DeviceCheck) Category() string { return CategoryDevice }

func (c *DeviceCheck) Run(ctx context.Context) CheckResult {
	info, err := c.Source.Identify(ctx)
	if err != nil {
		return fail(message(err), suggestion(err))
	}
	label := info.Serial
	if info.Model != "" {
		label += " (" + info.Model + ")"
	}
	return pass("Device " + label)
}

// B2GInfoCheck runs b2g-info once and checks the tracked apps show up.
// It never elevates; a root requirement is only reported.
type B2GInfoCheck struct {
	Source device.Source
	Apps   []string
}

func (c *B2GInfoCheck) Name() string     { return "b2g_info" }
func (c *B2GInfoCheck) Category() string { return CategoryDevice }

func (c *B2GInfoCheck) Run(ctx context.Context) CheckResult {
	out, err := c.Source.Query(ctx)
	if err != nil {
		return fail("b2g-info failed: "+message(err), "Check the device is still attached")
	}
	if msg := strings.TrimSpace(out.Stderr); msg != "" {
		return fail("b2g-info failed: "+msg, "Check the device is still attached")
	}

	snap, err := b2ginfo.Parse(out.Stdout, nil)
	switch {
	case stderrors.Is(err, b2ginfo.ErrRootRequired):
		return warn("b2g-info needs root",
			"b2gmon runs 'adb root' on the first poll; production builds will refuse")
	case err != nil:
		return fail("b2g-info output not recognised: "+err.Error(),
			"Run 'adb shell b2g-info' and check it prints a NAME/PID/USS/PSS table")
	}

	var missing []string
	for _, app := range c.Apps {
		if len(snap.FindApps(app)) == 0 {
			missing = append(missing, app)
		}
	}
	if len(missing) > 0 {
		return warn(fmt.Sprintf("Not running now: %s", util.JoinOrNone(missing)),
			missingAppsSuggestion(missing, snap))
	}

	return pass(fmt.Sprintf("b2g-info lists %d %s", len(snap.Apps), util.Pluralize(len(snap.Apps), "process", "processes")))
}

// missingAppsSuggestion points at running processes with a similar name.
func missingAppsSuggestion(missing []string, snap *b2ginfo.Snapshot) string {
	running := make([]string, 0, len(snap.Apps))
	for _, a := range snap.Apps {
		running = append(running, a.Name)
	}

	var lines []string
	for _, app := range missing {
		if similar := util.SuggestSimilar(app, running, 3); len(similar) > 0 {
			lines = append(lines, fmt.Sprintf("%s: did you mean %s?", app, strings.Join(similar, " or ")))
		}
	}
	lines = append(lines, "Start the app, or check the name against 'b2gmon snapshot'")
	return strings.Join(lines, "\n")
}

// NewDeviceChecks returns the adb and device checks, in dependency order.
func NewDeviceChecks(runner exec.Runner, binary string, src device.Source, apps []string) []Check {
	return []Check{
		&ADBBinaryCheck{Runner: runner, Binary: binary},
		&DeviceCheck{Source: src},
		&B2GInfoCheck{Source: src, Apps: apps},
	}
}
