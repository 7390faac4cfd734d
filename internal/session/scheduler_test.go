package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
	devtesting "github.com/rileyhilliard/b2gmon/internal/device/testing"
	"github.com/rileyhilliard/b2gmon/internal/display"
	"github.com/rileyhilliard/b2gmon/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReporter records every Write call.
type countingReporter struct {
	mu     sync.Mutex
	writes int
	series [][]Series
	err    error
}

func (r *countingReporter) Write(s *Session, finished time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.series = append(r.series, s.Series())
	if r.err != nil {
		return "", r.err
	}
	return "logs/b2g_logs.xlsx", nil
}

func (r *countingReporter) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// recordingDisplay keeps every rendered view.
type recordingDisplay struct {
	views []display.View
}

func (d *recordingDisplay) Render(v display.View) error {
	d.views = append(d.views, v)
	return nil
}

func (d *recordingDisplay) Close() error { return nil }

func out(stdout string) devtesting.Step {
	return devtesting.Step{Output: device.Output{Stdout: stdout}}
}

func newSource(steps ...devtesting.Step) *devtesting.FakeSource {
	src := devtesting.NewFakeSource("abc", "")
	src.Steps = steps
	return src
}

func runWithTimeout(t *testing.T, s *Scheduler, ctx context.Context) (Result, error) {
	t.Helper()
	type done struct {
		res Result
		err error
	}
	ch := make(chan done, 1)
	go func() {
		res, err := s.Run(ctx)
		ch <- done{res, err}
	}()
	select {
	case d := <-ch:
		return d.res, d.err
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
		return Result{}, nil
	}
}

func TestScheduler_RecordsUntilStopped(t *testing.T) {
	src := newSource(
		out(infoText(row("App1", 100, 10, 20))),
		out(infoText(row("App1", 100, 30, 40))),
	)
	rep := &countingReporter{}
	disp := &recordingDisplay{}
	s := NewScheduler(src,
		WithTracked([]string{"App1"}),
		WithReporter(rep),
		WithDisplay(disp),
		WithLogger(logger.Noop()),
	)
	src.OnQuery = func(n int) {
		if n == 2 {
			s.Stop()
		}
	}

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, "logs/b2g_logs.xlsx", res.Report)
	assert.Equal(t, 2, res.Cycles)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, 1, rep.Writes())
	require.Len(t, rep.series[0], 1)
	assert.Len(t, rep.series[0][0].Samples, 2)
	assert.Len(t, disp.views, 2)
	assert.Equal(t, 2, disp.views[1].Cycle)
	assert.Equal(t, StateDone, s.State())
	assert.Equal(t, 1, src.Identified())
}

func TestScheduler_ParsesWithTrackedFilter(t *testing.T) {
	src := newSource(out(infoText(row("App1", 1, 1, 1), row("Other", 2, 2, 2))))
	disp := &recordingDisplay{}
	s := NewScheduler(src, WithTracked([]string{"app1"}), WithDisplay(disp), WithLogger(logger.Noop()))
	src.OnQuery = func(int) { s.Stop() }

	_, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	require.Len(t, disp.views, 1)
	require.Len(t, disp.views[0].Apps, 1)
	assert.Equal(t, "App1", disp.views[0].Apps[0].Name)
}

func TestScheduler_DurationExpires(t *testing.T) {
	src := newSource(out(infoText(row("App1", 1, 1, 1))))
	rep := &countingReporter{}
	s := NewScheduler(src,
		WithTracked([]string{"App1"}),
		WithReporter(rep),
		WithInterval(5*time.Millisecond),
		WithDuration(40*time.Millisecond),
		WithLogger(logger.Noop()),
	)

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Cycles, 1)
	assert.Equal(t, 1, rep.Writes())
}

func TestScheduler_ConcurrentStopsWriteOnce(t *testing.T) {
	src := newSource(out(infoText(row("App1", 1, 1, 1))))
	rep := &countingReporter{}
	s := NewScheduler(src,
		WithTracked([]string{"App1"}),
		WithReporter(rep),
		WithDuration(time.Millisecond),
		WithLogger(logger.Noop()),
	)
	src.OnQuery = func(n int) {
		if n != 1 {
			return
		}
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Stop()
			}()
		}
		wg.Wait()
	}

	_, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Writes())
	assert.Equal(t, 1, src.Queries(), "the loop stops after the cycle in flight")
}

func TestScheduler_StopInterruptsInterval(t *testing.T) {
	src := newSource(out(infoText()))
	s := NewScheduler(src, WithInterval(time.Hour), WithLogger(logger.Noop()))
	src.OnQuery = func(int) {
		go s.Stop()
	}

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cycles)
}

func TestScheduler_ContextCancelWritesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := newSource(out(infoText(row("App1", 1, 1, 1))))
	src.OnQuery = func(int) { cancel() }
	rep := &countingReporter{}
	s := NewScheduler(src, WithTracked([]string{"App1"}), WithReporter(rep), WithInterval(time.Hour), WithLogger(logger.Noop()))

	_, err := runWithTimeout(t, s, ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, rep.Writes())
}

func TestScheduler_NoDevice(t *testing.T) {
	src := newSource()
	src.IdentifyErr = errors.New("No device connected")
	rep := &countingReporter{}
	s := NewScheduler(src, WithReporter(rep), WithLogger(logger.Noop()))

	_, err := s.Run(context.Background())

	assert.ErrorIs(t, err, ErrNoDevice)
	assert.ErrorIs(t, err, src.IdentifyErr)
	assert.Equal(t, "No device connected", err.Error())
	assert.Zero(t, src.Queries())
	assert.Zero(t, rep.Writes())
	assert.Equal(t, StateDone, s.State())
}

func TestScheduler_Disconnected(t *testing.T) {
	tests := []struct {
		name string
		step devtesting.Step
	}{
		{name: "stderr", step: devtesting.Step{Output: device.Output{Stderr: "error: device 'abc' not found\n"}}},
		{name: "transport error", step: devtesting.Step{Err: errors.New("broken pipe")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource(out(infoText(row("App1", 1, 1, 1))), tt.step)
			rep := &countingReporter{}
			s := NewScheduler(src, WithTracked([]string{"App1"}), WithReporter(rep), WithLogger(logger.Noop()))

			res, err := s.Run(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDisconnected)
			assert.Contains(t, err.Error(), "Device: abc disconnected")
			assert.Zero(t, rep.Writes(), "a lost device ends the run without a report")
			assert.Equal(t, 1, res.Cycles)
		})
	}
}

func TestScheduler_RootRetry(t *testing.T) {
	src := newSource(
		out(b2ginfo.RootRequiredMarker+"\n"),
		out(infoText(row("App1", 1, 1, 1))),
	)
	var states []State
	s := NewScheduler(src,
		WithTracked([]string{"App1"}),
		WithLogger(logger.Noop()),
		WithStateHook(func(st State) { states = append(states, st) }),
	)
	src.OnQuery = func(n int) {
		if n == 2 {
			s.Stop()
		}
	}

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, src.Elevations())
	assert.Equal(t, 1, res.Cycles, "the retry belongs to the same cycle")
	assert.Equal(t, []State{StateConnecting, StatePolling, StateRootRetry, StatePolling, StateTerminating, StateDone}, states)
}

func TestScheduler_RootRequiredTwiceIsFatal(t *testing.T) {
	src := newSource(out(b2ginfo.RootRequiredMarker + "\n"))
	rep := &countingReporter{}
	s := NewScheduler(src, WithReporter(rep), WithLogger(logger.Noop()))

	_, err := s.Run(context.Background())

	assert.ErrorIs(t, err, ErrElevation)
	assert.Equal(t, 1, src.Elevations())
	assert.Equal(t, 2, src.Queries())
	assert.Zero(t, rep.Writes())
}

func TestScheduler_ElevationFails(t *testing.T) {
	src := newSource(out(b2ginfo.RootRequiredMarker + "\n"))
	src.ElevateErr = errors.New("adbd cannot run as root in production builds")
	s := NewScheduler(src, WithLogger(logger.Noop()))

	_, err := s.Run(context.Background())

	assert.ErrorIs(t, err, ErrElevation)
	assert.ErrorIs(t, err, src.ElevateErr)
	assert.Contains(t, err.Error(), "Failed to boot device as root")
}

func TestScheduler_MalformedCycleIsSkipped(t *testing.T) {
	src := newSource(
		out(infoText(row("App1", 1, 10, 20))),
		out("garbage"),
		out(infoText(row("App1", 1, 30, 40))),
	)
	log := logger.NewBufferLogger()
	s := NewScheduler(src, WithTracked([]string{"App1"}), WithLogger(log))
	src.OnQuery = func(n int) {
		if n == 3 {
			s.Stop()
		}
	}

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Cycles)
	assert.Equal(t, 1, res.Skipped)
	ser, _ := res.Session.seriesFor("App1")
	require.Len(t, ser.Samples, 2)
	assert.Equal(t, []float64{20, 40}, []float64{ser.Samples[0].PSS, ser.Samples[1].PSS})
	assert.True(t, log.HasLevel("warn"))
}

func TestScheduler_ReportErrorIsReturned(t *testing.T) {
	src := newSource(out(infoText()))
	rep := &countingReporter{err: errors.New("disk full")}
	s := NewScheduler(src, WithReporter(rep), WithLogger(logger.Noop()))
	src.OnQuery = func(int) { s.Stop() }

	res, err := runWithTimeout(t, s, context.Background())

	assert.EqualError(t, err, "disk full")
	assert.Empty(t, res.Report)
	assert.Equal(t, 1, rep.Writes())
}

func TestScheduler_ElapsedUsesClock(t *testing.T) {
	now := t0
	src := newSource(out(infoText()))
	s := NewScheduler(src, WithClock(func() time.Time { return now }), WithLogger(logger.Noop()))
	src.OnQuery = func(int) {
		now = now.Add(3 * time.Second)
		s.Stop()
	}

	res, err := runWithTimeout(t, s, context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, res.Elapsed)
}
