// Package testing provides a scripted device.Source for tests.
package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/b2gmon/internal/device"
)

// Step is one scripted Query result.
type Step struct {
	Output device.Output
	Err    error
}

// FakeSource replays Steps in order. Once the script runs out the last
// step repeats, so a single step describes a device that always answers
// the same way.
type FakeSource struct {
	mu sync.Mutex

	Info        device.Info
	IdentifyErr error
	ElevateErr  error
	Steps       []Step

	// OnQuery runs after the n-th query (1-based) is answered.
	OnQuery func(n int)

	queries    int
	elevations int
	identified int
}

// NewFakeSource creates a source for a ready device that answers with
// stdout on every query.
func NewFakeSource(serial, stdout string) *FakeSource {
	return &FakeSource{
		Info:  device.Info{Serial: serial, State: device.StateDevice},
		Steps: []Step{{Output: device.Output{Stdout: stdout}}},
	}
}

// Identify returns Info or IdentifyErr.
func (f *FakeSource) Identify(ctx context.Context) (device.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identified++
	if f.IdentifyErr != nil {
		return device.Info{}, f.IdentifyErr
	}
	return f.Info, nil
}

// Query returns the next scripted step.
func (f *FakeSource) Query(ctx context.Context) (device.Output, error) {
	f.mu.Lock()
	f.queries++
	n := f.queries
	var step Step
	switch {
	case len(f.Steps) == 0:
	case n <= len(f.Steps):
		step = f.Steps[n-1]
	default:
		step = f.Steps[len(f.Steps)-1]
	}
	hook := f.OnQuery
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return step.Output, step.Err
}

// Elevate records the call and returns ElevateErr.
func (f *FakeSource) Elevate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elevations++
	return f.ElevateErr
}

// Queries returns how many times Query was called.
func (f *FakeSource) Queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

// Elevations returns how many times Elevate was called.
func (f *FakeSource) Elevations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elevations
}

// Identified returns how many times Identify was called.
func (f *FakeSource) Identified() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identified
}

var _ device.Source = (*FakeSource)(nil)
