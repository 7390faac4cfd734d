package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rileyhilliard/b2gmon/internal/config"
	devtesting "github.com/rileyhilliard/b2gmon/internal/device/testing"
	"github.com/rileyhilliard/b2gmon/internal/display"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/session"
	"github.com/rileyhilliard/b2gmon/internal/ui"
)

func newWatchTestCmd(f *watchFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "watch", RunE: func(*cobra.Command, []string) error { return nil }}
	addWatchFlags(cmd, f)
	return cmd
}

func TestApplyWatchFlags(t *testing.T) {
	var f watchFlags
	cmd := newWatchTestCmd(&f)
	require.NoError(t, cmd.ParseFlags([]string{
		"-n", "Messages,Camera", "-n", "Music",
		"-i", "500",
		"-d", "0",
		"-o", "out/run.xlsx",
		"--tui",
		"--ssh", "lab-box",
		"--log-file", "b2gmon.log",
	}))

	cfg := config.DefaultConfig()
	cfg.Serial = "from-config"
	cfg.ADB = "/opt/adb"

	require.NoError(t, applyWatchFlags(cmd, cfg, &f))

	assert.Equal(t, []string{"Messages", "Camera", "Music"}, cfg.Apps)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Zero(t, cfg.Duration)
	assert.Equal(t, "out/run.xlsx", cfg.Output)
	assert.Equal(t, config.DisplayTUI, cfg.Display)
	assert.Equal(t, "lab-box", cfg.SSH.Host)
	assert.Equal(t, "b2gmon.log", cfg.LogFile)
	assert.Equal(t, "from-config", cfg.Serial, "unset flags keep config values")
	assert.Equal(t, "/opt/adb", cfg.ADB)
}

func TestApplyWatchFlags_Untouched(t *testing.T) {
	var f watchFlags
	cmd := newWatchTestCmd(&f)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := config.DefaultConfig()
	cfg.Apps = []string{"Homescreen"}
	cfg.Display = config.DisplayTUI

	require.NoError(t, applyWatchFlags(cmd, cfg, &f))

	assert.Equal(t, []string{"Homescreen"}, cfg.Apps)
	assert.Equal(t, config.DisplayTUI, cfg.Display)
	assert.Equal(t, config.DefaultDuration, cfg.Duration)
}

func TestApplyWatchFlags_BadDuration(t *testing.T) {
	var f watchFlags
	cmd := newWatchTestCmd(&f)
	require.NoError(t, cmd.ParseFlags([]string{"-d", "a while"}))

	err := applyWatchFlags(cmd, config.DefaultConfig(), &f)

	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func watchConfig(t *testing.T, apps ...string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Apps = apps
	cfg.Duration = 0
	cfg.Output = filepath.Join(t.TempDir(), "${SERIAL}.xlsx")
	return cfg
}

// stopAfter stops the scheduler once src has answered n queries.
func stopAfter(src *devtesting.FakeSource, n int) func(*session.Scheduler) {
	return func(s *session.Scheduler) {
		src.OnQuery = func(q int) {
			if q == n {
				s.Stop()
			}
		}
	}
}

func TestRunWatch_WritesReport(t *testing.T) {
	src := devtesting.NewFakeSource("3a4b5c6d", infoText)
	cfg := watchConfig(t, "Messages", "Homescreen")
	var out bytes.Buffer

	result, err := runWatch(context.Background(), src, cfg, watchOptions{
		out:     &out,
		onStart: stopAfter(src, 3),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Cycles)
	assert.Equal(t, 3, src.Queries())

	want := filepath.Join(filepath.Dir(cfg.Output), "3a4b5c6d.xlsx")
	assert.Equal(t, want, result.Report)
	f, err := excelize.OpenFile(want)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Messages", "Homescreen"}, f.GetSheetList())

	text := out.String()
	assert.Contains(t, text, "Running Apps", "console view rendered")
	assert.Contains(t, text, "b2g logs collected")
	assert.Contains(t, text, "report:  "+want)
	assert.Contains(t, text, "cycles:  3")
}

func TestRunWatch_NoTrackedApps(t *testing.T) {
	src := devtesting.NewFakeSource("3a4b5c6d", infoText)
	cfg := watchConfig(t)
	var out bytes.Buffer

	result, err := runWatch(context.Background(), src, cfg, watchOptions{
		out:     &out,
		onStart: stopAfter(src, 1),
	})

	require.NoError(t, err)
	assert.Empty(t, result.Report)
	assert.Contains(t, out.String(), "skipped, no apps tracked")
}

func TestRunWatch_Duration(t *testing.T) {
	src := devtesting.NewFakeSource("3a4b5c6d", infoText)
	cfg := watchConfig(t, "Messages")
	cfg.Duration = 50 * time.Millisecond
	cfg.Interval = 10 * time.Millisecond

	done := make(chan struct{})
	var result session.Result
	var err error
	go func() {
		defer close(done)
		result, err = runWatch(context.Background(), src, cfg, watchOptions{out: &bytes.Buffer{}})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after its duration")
	}
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Cycles, 1)
	assert.FileExists(t, result.Report)
}

func TestRunWatch_NoDevice(t *testing.T) {
	src := devtesting.NewFakeSource("", infoText)
	src.IdentifyErr = errors.New(errors.ErrDevice, "No device connected", "Plug it in.")
	var out bytes.Buffer

	_, err := runWatch(context.Background(), src, watchConfig(t, "Messages"), watchOptions{out: &out})

	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNoDevice)
	assert.Contains(t, err.Error(), "No device connected")
	assert.NotContains(t, out.String(), "b2g logs collected")
}

func TestPathReporter_ExpandsPattern(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)
	src := devtesting.NewFakeSource("192.168.1.5:5555", infoText)
	sess := session.New(src.Info, []string{"Messages"}, started)

	r := &pathReporter{pattern: filepath.Join(dir, "${SERIAL}_${DATE}.xlsx")}
	path, err := r.Write(sess, started.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "192.168.1.5_5555_2024-03-01.xlsx"), path)
	assert.FileExists(t, path)
}

func TestPrintCompletion(t *testing.T) {
	var out bytes.Buffer
	printCompletion(&out, session.Result{
		Report:  "logs/b2g_logs.xlsx",
		Cycles:  12,
		Skipped: 2,
		Elapsed: time.Hour + 2*time.Minute + 5*time.Second,
	})

	text := out.String()
	assert.Contains(t, text, "✓ b2g logs collected")
	assert.Contains(t, text, "report:  logs/b2g_logs.xlsx")
	assert.Contains(t, text, "elapsed: 1H:2M:5S")
	assert.Contains(t, text, "cycles:  12 (2 skipped)")
}

func TestHandleSignals_Release(t *testing.T) {
	stopped := false
	release := handleSignals(func() { stopped = true }, func() {})
	release()
	assert.False(t, stopped)
}

func TestNewDisplay_TUIWaitsForStart(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Display = config.DisplayTUI
	quits := 0

	disp := newDisplay(cfg, watchOptions{out: &bytes.Buffer{}}, func() { quits++ })

	require.IsType(t, &display.TUI{}, disp)
	assert.ErrorIs(t, disp.Render(display.View{}), display.ErrClosed, "not running before startDisplay")
	assert.NoError(t, disp.Close())
	assert.Zero(t, quits)
}

// startCounter is a display with its own event loop.
type startCounter struct {
	display.Display
	starts int
}

func (s *startCounter) Start() { s.starts++ }

func TestStartDisplay(t *testing.T) {
	loop := &startCounter{}
	startDisplay(loop)
	assert.Equal(t, 1, loop.starts)

	console := display.NewConsole(&bytes.Buffer{}, display.WithoutClear())
	assert.NotPanics(t, func() { startDisplay(console) })
}

func TestSpinnerHook(t *testing.T) {
	var buf bytes.Buffer
	s := ui.NewSpinner("Establishing connection to device")
	s.SetOutput(&buf)
	hook := spinnerHook(s)

	hook(session.StateConnecting)
	assert.True(t, s.Spinning())

	hook(session.StatePolling)
	assert.False(t, s.Spinning())
	assert.Contains(t, buf.String(), ui.SymbolSuccess)

	hook(session.StateRootRetry)
	hook(session.StatePolling)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "later polls leave the line alone")
}
