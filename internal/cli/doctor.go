package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/doctor"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/exec"
	"github.com/rileyhilliard/b2gmon/internal/ui"
)

var doctorFlags adbFlags

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, adb and the device",
	Long: `Run read-only checks over everything a watch session needs: the config,
the SSH hop (if any), the adb binary, the device, and whether b2g-info
lists the tracked apps. Nothing on the device is changed; 'adb root' is
never run.

Exits non-zero when any check fails.

Examples:
  b2gmon doctor
  b2gmon doctor --ssh lab-box
  b2gmon doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, loadErr := loadConfig()
		if cfg != nil {
			doctorFlags.apply(cmd, cfg)
		}
		return doctorCommand(cmd.Context(), cmd, cfg, loadErr, cmd.OutOrStdout())
	},
}

func init() {
	addADBFlags(doctorCmd, &doctorFlags)
	doctorCmd.Flags().BoolVar(&machineMode, "json", false, "output as JSON")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput is the JSON shape of a doctor run.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput holds the results of one category.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput counts results by status.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs the checks. cfg may be nil when loadErr is set; the
// device checks then run against defaults plus the adb flags.
func doctorCommand(ctx context.Context, cmd *cobra.Command, cfg *config.Config, loadErr error, w io.Writer) error {
	checks := doctor.NewConfigChecks(cfgFile, cfg, loadErr)

	if cfg == nil {
		cfg = config.DefaultConfig()
		if cmd != nil {
			doctorFlags.apply(cmd, cfg)
		}
	}

	runner, closer, err := newRunner(cfg)
	if cfg.Remote() {
		checks = append(checks, &doctor.SSHCheck{Host: cfg.SSH.Host, Err: err})
	}
	if err == nil {
		defer closer.Close()
		checks = append(checks, deviceChecks(runner, cfg)...)
	}

	results := doctor.RunAll(ctx, checks)

	if machineMode {
		if err := WriteJSONSuccess(w, buildDoctorOutput(results)); err != nil {
			return err
		}
	} else {
		renderDoctor(w, results)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func deviceChecks(runner exec.Runner, cfg *config.Config) []doctor.Check {
	adb := newADB(runner, cfg, newLogger("adb"), false)
	return doctor.NewDeviceChecks(runner, adb.Binary(), adb, cfg.Apps)
}

func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(results)
	out := DoctorOutput{Categories: []CategoryOutput{}}

	for _, cat := range doctor.CategoryOrder {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, i := range indices {
			co.Results = append(co.Results, results[i])
		}
		out.Categories = append(out.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	out.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return out
}

func renderDoctor(w io.Writer, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("b2gmon diagnostic report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(results)
	for _, cat := range doctor.CategoryOrder {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(cat))
		for _, i := range indices {
			renderCheckResult(w, results[i], successStyle, errorStyle, warnStyle)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)
	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	}
	fmt.Fprintln(w)
}

func renderCheckResult(w io.Writer, result doctor.CheckResult, successStyle, errorStyle, warnStyle lipgloss.Style) {
	symbol, style := ui.SymbolSuccess, successStyle
	switch result.Status {
	case doctor.StatusWarn:
		symbol, style = ui.SymbolPending, warnStyle
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, errorStyle
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
