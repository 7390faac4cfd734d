// Package display renders each polling cycle to the terminal, either as a
// redrawn plain screen (Console) or as a full-screen dashboard (TUI).
package display

import (
	"time"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
)

// Display shows the latest view of a session.
type Display interface {
	Render(v View) error
	Close() error
}

// View is everything a display needs for one cycle.
type View struct {
	Device    device.Info
	Apps      []b2ginfo.AppSample
	Memory    b2ginfo.Memory
	LowMemory b2ginfo.LowMemory
	Tracked   []TrackedSummary
	Cycle     int
	Skipped   int
	Elapsed   time.Duration
}

// TrackedSummary is the running aggregate for one tracked app.
type TrackedSummary struct {
	App     string
	Samples int
	LastPID int
	LastPSS float64
	LastUSS float64
	AvgPSS  float64
	AvgUSS  float64
	MaxPSS  float64
	MaxUSS  float64
	// PSS holds the most recent PSS values, oldest first.
	PSS []float64
}

// memoryRows are the system memory keys shown on screen, in order.
var memoryRows = []struct {
	label string
	key   string
}{
	{"TOTAL", "total"},
	{"FREE", "free"},
	{"CACHE", "cache"},
	{"FREE+CACHE", "free+cache"},
}

// memoryValue returns the value for key, or "-" when b2g-info did not
// report it.
func memoryValue(v View, key string) string {
	q, ok := v.Memory.Stat(key)
	if !ok {
		return "-"
	}
	return q.String()
}

// Discard is a Display that drops every view.
type Discard struct{}

// Render does nothing.
func (Discard) Render(View) error { return nil }

// Close does nothing.
func (Discard) Close() error { return nil }
