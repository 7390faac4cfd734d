package b2ginfo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Markers that b2g-info prints verbatim.
const (
	RootRequiredMarker = "This program needs to run as the root user in order to query pids."
	SystemMemoryMarker = "System memory info"
	LowMemoryMarker    = "Low-memory killer parameters"
)

// section is the parser mode for the rows being read.
type section int

const (
	sectionApps section = iota
	sectionSystemMemory
	sectionLowMemory
)

// columnSetters resolves the typed AppSample fields from header columns.
// Headers not listed here only land in AppSample.Columns.
var columnSetters = map[string]func(*AppSample, string) error{
	"name": func(a *AppSample, v string) error {
		a.Name = v
		return nil
	},
	"pid": func(a *AppSample, v string) error {
		pid, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		a.PID = pid
		return nil
	},
	"uss": func(a *AppSample, v string) error {
		f, err := parseNumber(v)
		if err != nil {
			return err
		}
		a.USS = f
		return nil
	},
	"pss": func(a *AppSample, v string) error {
		f, err := parseNumber(v)
		if err != nil {
			return err
		}
		a.PSS = f
		return nil
	},
}

// Parse converts one b2g-info dump into a Snapshot.
//
// When filter is non-empty only process rows whose name matches one of its
// entries (case-insensitive) are kept; system and low-memory sections are
// always parsed in full.
//
// Returns ErrRootRequired if the first line is the root warning, and
// ErrMalformed if there is no header row.
func Parse(raw string, filter []string) (*Snapshot, error) {
	lines := splitLines(raw)

	if len(lines) > 0 && strings.Contains(lines[0], RootRequiredMarker) {
		return nil, ErrRootRequired
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: expected a header row, got %d line(s)", ErrMalformed, len(lines))
	}

	headers := strings.Fields(lines[1])
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: empty header row", ErrMalformed)
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}

	keep := nameSet(filter)
	snap := &Snapshot{
		Apps:   []AppSample{},
		Memory: make(Memory),
		LowMemory: LowMemory{
			OOMAdjLevels:      []string{},
			MinFreeThresholds: []Quantity{},
		},
	}

	mode := sectionApps
	for _, line := range lines[2:] {
		fields := strings.Fields(normalizeSigns(line))
		if len(fields) == 0 {
			continue
		}

		if strings.Contains(line, LowMemoryMarker) {
			mode = sectionLowMemory
			continue
		}
		if strings.Contains(line, SystemMemoryMarker) {
			if mode != sectionLowMemory {
				mode = sectionSystemMemory
			}
			continue
		}

		tokens := joinSplitName(fields)

		switch mode {
		case sectionLowMemory:
			parseLowMemoryRow(&snap.LowMemory, fields, tokens)
		case sectionSystemMemory:
			snap.Memory[strings.ToLower(tokens[0])] = Quantity{Value: token(tokens, 1), Unit: token(tokens, 2)}
		default:
			app, ok := parseAppRow(headers, tokens)
			if !ok {
				continue
			}
			if len(keep) > 0 && !keep[strings.ToLower(app.Name)] {
				continue
			}
			snap.Apps = append(snap.Apps, app)
		}
	}

	return snap, nil
}

// parseAppRow zips tokens against the header. Rows whose token count does
// not match the header are rejected.
func parseAppRow(headers, tokens []string) (AppSample, bool) {
	if len(tokens) != len(headers) {
		return AppSample{}, false
	}

	app := AppSample{Columns: make([]Column, len(headers))}
	for i, h := range headers {
		app.Columns[i] = Column{Name: h, Value: tokens[i]}
		if set, ok := columnSetters[h]; ok {
			if err := set(&app, tokens[i]); err != nil {
				app.invalid = append(app.invalid, h)
			}
		}
	}
	for _, required := range []string{"pid", "uss", "pss"} {
		if _, ok := app.Column(required); !ok {
			app.invalid = append(app.invalid, required)
		}
	}
	return app, true
}

// parseLowMemoryRow handles one row of the low-memory killer section.
// raw holds the tokens before the two-word name join so the
// "oom_adj min_free" header row is recognised.
func parseLowMemoryRow(lm *LowMemory, raw, tokens []string) {
	if tokens[0] == "notify_trigger" {
		lm.NotifyTrigger = Quantity{Value: token(tokens, 1), Unit: token(tokens, 2)}
		return
	}
	if raw[0] == "oom_adj" || token(raw, 1) == "min_free" {
		return
	}
	lm.OOMAdjLevels = append(lm.OOMAdjLevels, tokens[0])
	lm.MinFreeThresholds = append(lm.MinFreeThresholds, Quantity{Value: token(tokens, 1), Unit: token(tokens, 2)})
}

// splitLines splits raw output into lines, dropping carriage returns and any
// blank lines before the first content line.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r", "")
	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return lines
}

// normalizeSigns glues " + " and " - " so "Free + cache" stays one token.
func normalizeSigns(line string) string {
	line = strings.ReplaceAll(line, " + ", "+")
	return strings.ReplaceAll(line, " - ", "-")
}

// joinSplitName rejoins a two-word name ("Built-in Keyboard") that
// whitespace splitting broke apart. The second token being non-numeric is
// the signal.
func joinSplitName(tokens []string) []string {
	if len(tokens) < 2 || isNumeric(tokens[1]) {
		return tokens
	}
	joined := make([]string, 0, len(tokens)-1)
	joined = append(joined, tokens[0]+" "+tokens[1])
	return append(joined, tokens[2:]...)
}

func isNumeric(s string) bool {
	_, err := parseNumber(s)
	return err == nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return f, nil
}

func token(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			set[strings.ToLower(n)] = true
		}
	}
	return set
}
