package b2ginfo

import (
	"strconv"
	"strings"
)

// Quantity is a value/unit pair such as "458.4 MB" or "4096 KB".
// The value token is kept verbatim; use Float for arithmetic.
type Quantity struct {
	Value string `json:"value" yaml:"value"`
	Unit  string `json:"unit" yaml:"unit"`
}

// Float parses the value token. ok is false for non-numeric values.
func (q Quantity) Float() (float64, bool) {
	v, err := strconv.ParseFloat(q.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String renders the quantity as "value unit".
func (q Quantity) String() string {
	return strings.TrimSpace(q.Value + " " + q.Unit)
}

// Column is one header name paired with the raw token found under it.
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// AppSample is one process row of a snapshot.
//
// Name, PID, USS and PSS are resolved from the header-driven columns; every
// column (including the ones above) is also kept in Columns in header order.
// USS and PSS are in the unit b2g-info reports them in (megabytes).
type AppSample struct {
	Name    string   `json:"name" yaml:"name"`
	PID     int      `json:"pid" yaml:"pid"`
	USS     float64  `json:"uss" yaml:"uss"`
	PSS     float64  `json:"pss" yaml:"pss"`
	Columns []Column `json:"columns" yaml:"columns"`

	// invalid lists the numeric columns whose token did not parse.
	invalid []string
}

// Valid reports whether the row carried a name and numeric pid, uss and pss.
// Rows that fail this check are displayed but never accumulated.
func (a AppSample) Valid() bool {
	return a.Name != "" && len(a.invalid) == 0
}

// Column returns the raw token under the named header (case-insensitive).
func (a AppSample) Column(name string) (string, bool) {
	for _, c := range a.Columns {
		if strings.EqualFold(c.Name, name) {
			return c.Value, true
		}
	}
	return "", false
}

// LowMemory holds the low-memory killer parameters.
// OOMAdjLevels[i] pairs with MinFreeThresholds[i].
type LowMemory struct {
	NotifyTrigger     Quantity   `json:"notify_trigger" yaml:"notify_trigger"`
	OOMAdjLevels      []string   `json:"oom_adj" yaml:"oom_adj"`
	MinFreeThresholds []Quantity `json:"min_free" yaml:"min_free"`
}

// Memory is the system memory section, keyed by lowercased label
// ("total", "free+cache").
type Memory map[string]Quantity

// Stat returns the entry for key, matched case-insensitively.
func (m Memory) Stat(key string) (Quantity, bool) {
	q, ok := m[strings.ToLower(key)]
	return q, ok
}

// Snapshot is one fully parsed b2g-info dump.
type Snapshot struct {
	Apps      []AppSample `json:"apps" yaml:"apps"`
	Memory    Memory      `json:"memory" yaml:"memory"`
	LowMemory LowMemory   `json:"low_memory" yaml:"low_memory"`
}

// FindApps returns the valid rows whose name matches (case-insensitive).
func (s *Snapshot) FindApps(name string) []AppSample {
	if s == nil {
		return nil
	}
	var out []AppSample
	for _, a := range s.Apps {
		if a.Valid() && strings.EqualFold(a.Name, name) {
			out = append(out, a)
		}
	}
	return out
}
