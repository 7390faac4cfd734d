// Package doctor runs read-only diagnostics for a b2gmon setup: config,
// the SSH hop (if any), adb and the device itself.
package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/b2gmon/internal/util"
)

// Check categories, in the order they are reported.
const (
	CategoryConfig = "CONFIG"
	CategorySSH    = "SSH"
	CategoryADB    = "ADB"
	CategoryDevice = "DEVICE"
)

// CategoryOrder is the display order of categories.
var CategoryOrder = []string{CategoryConfig, CategorySSH, CategoryADB, CategoryDevice}

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	Name() string
	Category() string
	Run(ctx context.Context) CheckResult
}

// RunAll executes checks in order. Device checks build on each other
// (the device check picks the serial the b2g-info check queries), so they
// never run in parallel.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		r := check.Run(ctx)
		r.Name = check.Name()
		r.Category = check.Category()
		results[i] = r
	}
	return results
}

// GroupByCategory returns result indices per category.
func GroupByCategory(results []CheckResult) map[string][]int {
	grouped := make(map[string][]int)
	for i, r := range results {
		grouped[r.Category] = append(grouped[r.Category], i)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d %s found", total, util.Pluralize(total, "issue", "issues"))
}

func pass(msg string) CheckResult {
	return CheckResult{Status: StatusPass, Message: msg}
}

func warn(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusWarn, Message: msg, Suggestion: suggestion}
}

func fail(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusFail, Message: msg, Suggestion: suggestion}
}
