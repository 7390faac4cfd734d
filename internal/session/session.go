// Package session owns one monitoring run: the device it talks to, the
// samples collected for tracked apps and the polling loop that drives it.
package session

import (
	"strings"
	"time"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/display"
)

// historySize caps the PSS history handed to displays.
const historySize = 60

// Sample is one observation of a tracked app.
type Sample struct {
	PID int
	PSS float64
	USS float64
	At  time.Time
}

// Series is every sample collected for one tracked app, in arrival order.
type Series struct {
	App     string
	Samples []Sample
}

// Session is the state of one monitoring run.
type Session struct {
	device  device.Info
	started time.Time
	tracked []string
	series  []*Series
	latest  *b2ginfo.Snapshot
	cycles  int
	skipped int
}

// New starts a session for dev. Tracked app names keep their order;
// case-insensitive duplicates are dropped.
func New(dev device.Info, tracked []string, started time.Time) *Session {
	s := &Session{device: dev, started: started}
	seen := make(map[string]bool, len(tracked))
	for _, name := range tracked {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.tracked = append(s.tracked, name)
		s.series = append(s.series, &Series{App: name})
	}
	return s
}

// Device returns the device identified when the session started.
func (s *Session) Device() device.Info { return s.device }

// Started returns when the session began.
func (s *Session) Started() time.Time { return s.started }

// Tracked returns the tracked app names in configuration order.
func (s *Session) Tracked() []string {
	out := make([]string, len(s.tracked))
	copy(out, s.tracked)
	return out
}

// Latest returns the most recent snapshot, or nil before the first one.
func (s *Session) Latest() *b2ginfo.Snapshot { return s.latest }

// Cycles returns how many snapshots were recorded.
func (s *Session) Cycles() int { return s.cycles }

// Skipped returns how many cycles were dropped as malformed.
func (s *Session) Skipped() int { return s.skipped }

// Series returns a copy of every tracked app's series, in configuration
// order.
func (s *Session) Series() []Series {
	out := make([]Series, len(s.series))
	for i, ser := range s.series {
		out[i] = Series{App: ser.App, Samples: append([]Sample(nil), ser.Samples...)}
	}
	return out
}

// seriesFor returns the series for app, matched case-insensitively.
func (s *Session) seriesFor(app string) (Series, bool) {
	for _, ser := range s.series {
		if strings.EqualFold(ser.App, app) {
			return Series{App: ser.App, Samples: append([]Sample(nil), ser.Samples...)}, true
		}
	}
	return Series{}, false
}

// Record makes snap the latest view and appends a sample to each tracked
// app that appears in it. Invalid rows are ignored.
func (s *Session) Record(snap *b2ginfo.Snapshot, at time.Time) {
	s.latest = snap
	s.cycles++
	for _, ser := range s.series {
		for _, app := range snap.FindApps(ser.App) {
			ser.Samples = append(ser.Samples, Sample{PID: app.PID, PSS: app.PSS, USS: app.USS, At: at})
		}
	}
}

// Skip counts a cycle whose output could not be parsed.
func (s *Session) Skip() {
	s.skipped++
}

// View builds what a display needs for the current state.
func (s *Session) View(now time.Time) display.View {
	v := display.View{
		Device:  s.device,
		Cycle:   s.cycles,
		Skipped: s.skipped,
		Elapsed: now.Sub(s.started),
	}
	if s.latest != nil {
		v.Apps = s.latest.Apps
		v.Memory = s.latest.Memory
		v.LowMemory = s.latest.LowMemory
	}
	for _, ser := range s.series {
		v.Tracked = append(v.Tracked, summarize(ser))
	}
	return v
}

func summarize(ser *Series) display.TrackedSummary {
	sum := display.TrackedSummary{App: ser.App, Samples: len(ser.Samples)}
	if len(ser.Samples) == 0 {
		return sum
	}

	var totalPSS, totalUSS float64
	for i, smp := range ser.Samples {
		totalPSS += smp.PSS
		totalUSS += smp.USS
		if i == 0 || smp.PSS > sum.MaxPSS {
			sum.MaxPSS = smp.PSS
		}
		if i == 0 || smp.USS > sum.MaxUSS {
			sum.MaxUSS = smp.USS
		}
	}
	n := float64(len(ser.Samples))
	sum.AvgPSS = totalPSS / n
	sum.AvgUSS = totalUSS / n

	last := ser.Samples[len(ser.Samples)-1]
	sum.LastPID, sum.LastPSS, sum.LastUSS = last.PID, last.PSS, last.USS

	start := len(ser.Samples) - historySize
	if start < 0 {
		start = 0
	}
	for _, smp := range ser.Samples[start:] {
		sum.PSS = append(sum.PSS, smp.PSS)
	}
	return sum
}
