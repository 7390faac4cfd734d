package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/display"
	"github.com/rileyhilliard/b2gmon/internal/logger"
	"github.com/rileyhilliard/b2gmon/internal/report"
	"github.com/rileyhilliard/b2gmon/internal/session"
	"github.com/rileyhilliard/b2gmon/internal/ui"
	"github.com/rileyhilliard/b2gmon/internal/util"
)

// watchFlags are the flags shared by the root command and "watch".
type watchFlags struct {
	names    []string
	interval string
	duration string
	output   string
	serial   string
	tui      bool
	ssh      string
	adb      string
	logFile  string
}

var watchCmdFlags watchFlags

// watchCmd is the root command under an explicit name.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the device and write the report (same as plain b2gmon)",
	Long: `Poll 'adb shell b2g-info' until the duration elapses or you stop it,
then write the xlsx report for the tracked apps.

Examples:
  b2gmon watch -n Messages
  b2gmon watch -n Messages -n Camera -d 2m -i 1s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd, &watchCmdFlags)
	},
}

func init() {
	addWatchFlags(watchCmd, &watchCmdFlags)
	rootCmd.AddCommand(watchCmd)
}

func addWatchFlags(cmd *cobra.Command, f *watchFlags) {
	cmd.Flags().StringSliceVarP(&f.names, "name", "n", nil, "app to track (repeatable or comma-separated)")
	cmd.Flags().StringVarP(&f.interval, "interval", "i", "", "pause between polls, e.g. 500ms; bare numbers are milliseconds (default 0)")
	cmd.Flags().StringVarP(&f.duration, "duration", "d", "", "stop after this long; 0 runs until Ctrl+C (default 10s)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report path (default "+config.DefaultOutput+")")
	cmd.Flags().StringVarP(&f.serial, "serial", "s", "", "device serial when several are attached")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "full-screen dashboard instead of the redrawn console")
	cmd.Flags().StringVar(&f.ssh, "ssh", "", "run adb on this SSH host")
	cmd.Flags().StringVar(&f.adb, "adb", "", "adb executable (default adb on PATH)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "append logs to this file")
}

// applyWatchFlags copies the flags the user actually set onto cfg.
func applyWatchFlags(cmd *cobra.Command, cfg *config.Config, f *watchFlags) error {
	flags := cmd.Flags()

	if flags.Changed("name") {
		cfg.Apps = f.names
	}
	if flags.Changed("interval") {
		d, err := config.ParseDuration(f.interval)
		if err != nil {
			return err
		}
		cfg.Interval = d
	}
	if flags.Changed("duration") {
		d, err := config.ParseDuration(f.duration)
		if err != nil {
			return err
		}
		cfg.Duration = d
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("serial") {
		cfg.Serial = f.serial
	}
	if flags.Changed("tui") {
		cfg.Display = config.DisplayConsole
		if f.tui {
			cfg.Display = config.DisplayTUI
		}
	}
	if flags.Changed("ssh") {
		cfg.SSH.Host = f.ssh
	}
	if flags.Changed("adb") {
		cfg.ADB = f.adb
	}
	if flags.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	return nil
}

func watchCommand(cmd *cobra.Command, f *watchFlags) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyWatchFlags(cmd, cfg, f); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, closeLog, err := watchLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	runner, closeRunner, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer closeRunner.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	interactive := stdinIsTerminal()
	adb := newADB(runner, cfg, log, interactive)

	// Settle which device to use while the terminal is still ours.
	if interactive && cfg.Serial == "" {
		if _, err := adb.Identify(ctx); err != nil {
			return err
		}
	}

	stopSignals := func() {}
	opts := watchOptions{
		out:         cmd.OutOrStdout(),
		log:         log,
		interactive: interactive,
		onStart: func(sched *session.Scheduler) {
			stopSignals = handleSignals(sched.Stop, cancel)
		},
	}
	defer func() { stopSignals() }()

	_, err = runWatch(ctx, adb, cfg, opts)
	return err
}

// watchLogger picks where logs go. A dashboard owns the terminal, so it
// gets a log file or nothing.
func watchLogger(cfg *config.Config) (logger.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		return logger.NewFileLogger(config.ExpandTilde(cfg.LogFile), "b2gmon")
	}
	nop := closerFunc(func() error { return nil })
	if cfg.Display == config.DisplayTUI {
		return logger.Noop(), nop, nil
	}
	return newLogger("b2gmon"), nop, nil
}

// handleSignals stops the run on the first SIGINT/SIGTERM and cancels
// the in-flight adb command on the second.
func handleSignals(stop, cancel func()) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigChan:
			stop()
		case <-done:
			return
		}
		select {
		case <-sigChan:
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

type watchOptions struct {
	out io.Writer
	log logger.Logger
	// interactive enables the connect spinner and clears the console
	// between cycles.
	interactive bool
	// onStart runs once the scheduler exists, before polling starts.
	onStart func(*session.Scheduler)
	// now overrides the clock (tests).
	now func() time.Time
}

// runWatch runs one session against src and prints the completion notice.
func runWatch(ctx context.Context, src device.Source, cfg *config.Config, opts watchOptions) (session.Result, error) {
	if opts.log == nil {
		opts.log = logger.Noop()
	}

	var sched *session.Scheduler
	disp := newDisplay(cfg, opts, func() { sched.Stop() })

	schedOpts := []session.Option{
		session.WithDisplay(disp),
		session.WithReporter(&pathReporter{pattern: cfg.Output, log: opts.log}),
		session.WithTracked(cfg.Apps),
		session.WithInterval(cfg.Interval),
		session.WithDuration(cfg.Duration),
		session.WithLogger(opts.log),
	}
	if opts.now != nil {
		schedOpts = append(schedOpts, session.WithClock(opts.now))
	}

	var spinner *ui.Spinner
	if opts.interactive && cfg.Display == config.DisplayConsole {
		spinner = ui.NewSpinner("Establishing connection to device")
		schedOpts = append(schedOpts, session.WithStateHook(spinnerHook(spinner)))
	}

	sched = session.NewScheduler(src, schedOpts...)
	startDisplay(disp)
	if opts.onStart != nil {
		opts.onStart(sched)
	}

	result, err := sched.Run(ctx)
	if spinner != nil {
		// no-op once the first poll started
		spinner.Fail()
	}
	if closeErr := disp.Close(); closeErr != nil {
		opts.log.Warn("closing display: %v", closeErr)
	}
	if err != nil {
		return result, err
	}

	printCompletion(opts.out, result)
	return result, nil
}

// newDisplay builds the live display for cfg. onQuit is wired to the
// dashboard's quit key. The dashboard is not running until startDisplay,
// so onQuit may refer to a scheduler built afterwards.
func newDisplay(cfg *config.Config, opts watchOptions, onQuit func()) display.Display {
	if cfg.Display == config.DisplayTUI {
		return display.NewTUI(onQuit)
	}

	var consoleOpts []display.ConsoleOption
	if !opts.interactive {
		consoleOpts = append(consoleOpts, display.WithoutClear())
	}
	return display.NewConsole(opts.out, consoleOpts...)
}

// startDisplay starts displays that run their own event loop.
func startDisplay(d display.Display) {
	if s, ok := d.(interface{ Start() }); ok {
		s.Start()
	}
}

// spinnerHook shows the spinner until the first poll starts.
func spinnerHook(s *ui.Spinner) func(session.State) {
	return func(st session.State) {
		switch st {
		case session.StateConnecting:
			s.Start()
		case session.StatePolling:
			s.Success()
		}
	}
}

// pathReporter expands the output pattern with the session's start time
// and device serial, then writes the workbook there.
type pathReporter struct {
	pattern string
	log     logger.Logger
}

func (r *pathReporter) Write(s *session.Session, finished time.Time) (string, error) {
	path := config.Expand(r.pattern, s.Started(), s.Device().Serial)
	return report.NewGenerator(path, r.log).Write(s, finished)
}

// printCompletion prints the end-of-run notice.
func printCompletion(w io.Writer, result session.Result) {
	fmt.Fprintf(w, "%s b2g logs collected\n", ui.SymbolSuccess)
	if result.Report != "" {
		fmt.Fprintf(w, "  report:  %s\n", result.Report)
	} else {
		fmt.Fprintf(w, "  report:  %s\n", ui.MutedStyle().Render("skipped, no apps tracked"))
	}
	fmt.Fprintf(w, "  elapsed: %s\n", util.FormatElapsed(result.Elapsed))
	cycles := fmt.Sprintf("%d", result.Cycles)
	if result.Skipped > 0 {
		cycles += fmt.Sprintf(" (%d skipped)", result.Skipped)
	}
	fmt.Fprintf(w, "  cycles:  %s\n", cycles)
}
