package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/logger"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootWatchFlags watchFlags

var rootCmd = &cobra.Command{
	Use:   "b2gmon",
	Short: "Watch app memory on a b2g device and write an xlsx report",
	Long: `b2gmon polls 'adb shell b2g-info' on an attached KaiOS / Firefox OS
device, shows the running apps and system memory live, and records the
USS and PSS of the apps you track. When the run ends (duration elapsed,
Ctrl+C, or q in the dashboard) it writes one worksheet per tracked app
with average and max formulas.

Examples:
  b2gmon -n Messages -n Homescreen
  b2gmon -n Messages -d 0 --tui
  b2gmon -n Camera -i 500 -o reports/camera.xlsx
  b2gmon --ssh lab-box -n Messages`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd, &rootWatchFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .b2gmon.yaml, then ~/.config/b2gmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	addWatchFlags(rootCmd, &rootWatchFlags)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(err, os.Stdout, os.Stderr))
	}
}

// handleError reports err and returns the process exit code.
func handleError(err error, stdout, stderr io.Writer) int {
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if machineMode {
		_ = WriteJSONFromError(stdout, err)
		return 1
	}

	if isUnknownCommandError(err) {
		fmt.Fprintf(stderr, "%s\n\nRun 'b2gmon --help' for usage.\n", err)
		return 1
	}

	fmt.Fprintln(stderr, err.Error())
	return 1
}

// isUnknownCommandError checks if the error is from an unknown command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// loadConfig resolves the config for any command. The returned path is
// empty when only defaults and the environment apply.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger returns the stderr logger for short-lived commands.
func newLogger(name string) logger.Logger {
	if verbose {
		return logger.NewZapLogger(os.Stderr, name, true)
	}
	return logger.NewEnvLogger(name)
}
