package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/display"
	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/logger"
)

// Reporter writes the end-of-session report.
type Reporter interface {
	Write(s *Session, finished time.Time) (string, error)
}

// Result describes a finished run.
type Result struct {
	// Report is the path of the written report, empty when none was written.
	Report  string
	Cycles  int
	Skipped int
	Elapsed time.Duration
	Session *Session
}

// Scheduler drives the poll, parse, record and render cycle until it is
// stopped, the duration runs out or the device goes away.
type Scheduler struct {
	source   device.Source
	display  display.Display
	reporter Reporter
	tracked  []string
	interval time.Duration
	duration time.Duration
	now      func() time.Time
	log      logger.Logger

	stop       chan struct{}
	stopped    bool
	reportOnce sync.Once
	state      atomic.Int32
	onState    func(State)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDisplay sets where each cycle is rendered.
func WithDisplay(d display.Display) Option {
	return func(s *Scheduler) { s.display = d }
}

// WithReporter sets the report writer used on termination.
func WithReporter(r Reporter) Option {
	return func(s *Scheduler) { s.reporter = r }
}

// WithTracked sets the app names to sample and report on.
func WithTracked(names []string) Option {
	return func(s *Scheduler) { s.tracked = names }
}

// WithInterval sets the pause between cycles. Zero polls back to back.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithDuration stops the run after d. Zero runs until Stop is called.
func WithDuration(d time.Duration) Option {
	return func(s *Scheduler) { s.duration = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(s *Scheduler) { s.onState = fn }
}

// NewScheduler creates a scheduler reading from source.
func NewScheduler(source device.Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:  source,
		display: display.Discard{},
		now:     time.Now,
		log:     logger.Default(),
		stop:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stop asks the run to finish its current cycle, write the report and
// return. It is safe to call from any goroutine, any number of times.
func (s *Scheduler) Stop() {
	select {
	case s.stop <- struct{}{}:
	default:
	}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	s.log.Debug("state: %s", st)
	if s.onState != nil {
		s.onState(st)
	}
}

// Run identifies the device and polls it until termination. Fatal errors
// (ErrNoDevice, ErrDisconnected, ErrElevation) return without a report.
// Cancelling ctx terminates like Stop, except that the in-flight command
// is interrupted.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	s.setState(StateConnecting)
	s.log.Info("Establishing connection to device")

	info, err := s.source.Identify(ctx)
	if err != nil {
		s.setState(StateDone)
		return Result{}, fatal(ErrNoDevice, err)
	}
	s.log.Info("connected to %s (%s %s)", info.Serial, info.Product, info.Model)

	sess := New(info, s.tracked, s.now())

	if s.duration > 0 {
		timer := time.AfterFunc(s.duration, s.Stop)
		defer timer.Stop()
	}

	s.setState(StatePolling)
	for !s.stopping(ctx) {
		if err := s.cycle(ctx, sess); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.setState(StateDone)
			return s.result(sess, ""), err
		}
		if !s.wait(ctx) {
			break
		}
	}

	return s.finish(sess)
}

// cycle runs one poll. A root-required answer triggers one elevation and
// one retry within the same cycle.
func (s *Scheduler) cycle(ctx context.Context, sess *Session) error {
	for attempt := 0; ; attempt++ {
		out, err := s.source.Query(ctx)
		if err != nil {
			return s.disconnected(sess, err)
		}
		if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
			return s.disconnected(sess, errors.New(stderr))
		}

		snap, err := b2ginfo.Parse(out.Stdout, sess.Tracked())
		switch {
		case errors.Is(err, b2ginfo.ErrRootRequired):
			if attempt > 0 {
				return fatal(ErrElevation, b2gerrors.New(b2gerrors.ErrADB,
					"Failed to boot device as root",
					"b2g-info still asks for root after 'adb root'. Check that adbd restarted."))
			}
			if err := s.elevate(ctx); err != nil {
				return err
			}
			continue
		case errors.Is(err, b2ginfo.ErrMalformed):
			sess.Skip()
			s.log.Warn("skipping cycle: %v", err)
			return nil
		case err != nil:
			return err
		}

		sess.Record(snap, s.now())
		if err := s.display.Render(sess.View(s.now())); err != nil {
			s.log.Warn("render failed: %v", err)
		}
		return nil
	}
}

func (s *Scheduler) elevate(ctx context.Context) error {
	s.setState(StateRootRetry)
	if err := s.source.Elevate(ctx); err != nil {
		return fatal(ErrElevation, b2gerrors.WrapWithCode(err, b2gerrors.ErrADB,
			"Failed to boot device as root",
			"b2g-info needs root to read process memory. Use an engineering build that allows 'adb root'."))
	}
	s.setState(StatePolling)
	return nil
}

func (s *Scheduler) disconnected(sess *Session, cause error) error {
	return fatal(ErrDisconnected, b2gerrors.WrapWithCode(cause, b2gerrors.ErrDevice,
		"Device: "+sess.Device().Serial+" disconnected",
		"Reconnect the device and start a new session."))
}

// stopping reports whether a stop was requested. The first request is
// latched so later checks see it too.
func (s *Scheduler) stopping(ctx context.Context) bool {
	if s.stopped {
		return true
	}
	select {
	case <-s.stop:
		s.stopped = true
	case <-ctx.Done():
		s.stopped = true
	default:
	}
	return s.stopped
}

// wait pauses for the interval. It returns false when the run should end.
func (s *Scheduler) wait(ctx context.Context) bool {
	if s.interval <= 0 {
		return !s.stopping(ctx)
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.stop:
	case <-ctx.Done():
	}
	s.stopped = true
	return false
}

// finish writes the report. The latch keeps repeated terminations from
// writing it twice.
func (s *Scheduler) finish(sess *Session) (Result, error) {
	s.setState(StateTerminating)
	s.log.Info("Closing connection to device")

	var path string
	var err error
	s.reportOnce.Do(func() {
		if s.reporter == nil {
			return
		}
		path, err = s.reporter.Write(sess, s.now())
	})

	s.setState(StateDone)
	return s.result(sess, path), err
}

func (s *Scheduler) result(sess *Session, path string) Result {
	return Result{
		Report:  path,
		Cycles:  sess.Cycles(),
		Skipped: sess.Skipped(),
		Elapsed: s.now().Sub(sess.Started()),
		Session: sess,
	}
}
