package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/ui"
	"github.com/rileyhilliard/b2gmon/internal/util"
)

// Title is shown at the top of the live screen.
const Title = "b2gmon"

const sparklineWidth = 20

// renderScreen lays out one view. maxApps caps the running-apps table;
// 0 shows every row.
func renderScreen(v View, maxApps int) string {
	var b strings.Builder

	b.WriteString(ui.RenderHeader(Title, status(v)))
	b.WriteString("\n")
	b.WriteString(renderDevice(v))
	b.WriteString("\n")
	b.WriteString(renderApps(v, maxApps))
	b.WriteString("\n")
	b.WriteString(renderMemory(v))
	if len(v.Tracked) > 0 {
		b.WriteString("\n")
		b.WriteString(renderTracked(v))
	}
	return b.String()
}

func status(v View) string {
	s := fmt.Sprintf("cycle %d · %s", v.Cycle, util.FormatElapsed(v.Elapsed))
	if v.Skipped > 0 {
		s += fmt.Sprintf(" · %d skipped", v.Skipped)
	}
	return s
}

func renderDevice(v View) string {
	var b strings.Builder
	b.WriteString(ui.AccentStyle().Render("Device Detail"))
	b.WriteString("\n")
	for _, f := range []struct{ label, value string }{
		{"DEVICE", v.Device.Serial},
		{"PRODUCT", v.Device.Product},
		{"MODEL", v.Device.Model},
	} {
		b.WriteString(field(f.label, f.value))
	}
	return b.String()
}

// appRows converts samples into PID NAME USS PSS rows.
func appRows(apps []b2ginfo.AppSample) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			rawOr(a, "pid", strconv.Itoa(a.PID)),
			a.Name,
			rawOr(a, "uss", megabytes(a.USS)),
			rawOr(a, "pss", megabytes(a.PSS)),
		})
	}
	return rows
}

// appColumns are the running-apps table columns.
var appColumns = []string{"PID", "NAME", "USS", "PSS"}

func renderApps(v View, maxApps int) string {
	var b strings.Builder
	b.WriteString(ui.AccentStyle().Render("Running Apps"))
	b.WriteString("\n")
	if len(v.Apps) == 0 {
		b.WriteString("  ")
		b.WriteString(ui.MutedStyle().Render("no apps reported"))
		b.WriteString("\n")
		return b.String()
	}

	rows := appRows(v.Apps)
	hidden := 0
	if maxApps > 0 && len(rows) > maxApps {
		hidden = len(rows) - maxApps
		rows = rows[:maxApps]
	}
	b.WriteString(ui.RenderSimpleTable(ui.FitColumns(appColumns, rows), rows))
	b.WriteString("\n")
	if hidden > 0 {
		b.WriteString(ui.MutedStyle().Render(fmt.Sprintf("  … %d more", hidden)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMemory(v View) string {
	var b strings.Builder
	b.WriteString(ui.AccentStyle().Render("Memory"))
	b.WriteString("\n")
	for _, r := range memoryRows {
		b.WriteString(field(r.label, memoryValue(v, r.key)))
	}
	return b.String()
}

// trackedColumns are the tracked-apps summary columns.
var trackedColumns = []string{"APP", "SAMPLES", "PSS", "AVG PSS", "MAX PSS", "USS", "AVG USS", "MAX USS"}

func renderTracked(v View) string {
	var b strings.Builder
	b.WriteString(ui.AccentStyle().Render("Tracked"))
	b.WriteString("\n")

	rows := make([][]string, 0, len(v.Tracked))
	for _, t := range v.Tracked {
		if t.Samples == 0 {
			rows = append(rows, []string{t.App, "0", "-", "-", "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			t.App,
			strconv.Itoa(t.Samples),
			megabytes(t.LastPSS),
			megabytes(t.AvgPSS),
			megabytes(t.MaxPSS),
			megabytes(t.LastUSS),
			megabytes(t.AvgUSS),
			megabytes(t.MaxUSS),
		})
	}
	b.WriteString(ui.RenderSimpleTable(ui.FitColumns(trackedColumns, rows), rows))
	b.WriteString("\n")

	for _, t := range v.Tracked {
		if len(t.PSS) < 2 {
			continue
		}
		b.WriteString("  ")
		b.WriteString(ui.PadRight(t.App, 20))
		b.WriteString(ui.RenderSparkline(t.PSS, sparklineWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return "  " + ui.HeadingStyle().Render(label) + ": " + value + "\n"
}

// rawOr prefers the token b2g-info printed, so values render exactly as
// the device reported them.
func rawOr(a b2ginfo.AppSample, column, fallback string) string {
	if raw, ok := a.Column(column); ok && raw != "" {
		return raw
	}
	return fallback
}

func megabytes(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
