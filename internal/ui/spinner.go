package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerTick = 80 * time.Millisecond

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner animates one line while b2gmon waits for the device, then
// replaces it with a ✓ or ✗ and how long the wait took.
type Spinner struct {
	mu      sync.Mutex
	label   string
	out     io.Writer
	frame   int
	started time.Time
	width   int // printed width of the last frame

	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{label: label, out: os.Stderr}
}

// SetOutput redirects the spinner.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

// Start draws the first frame and animates until Success or Fail.
// Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawFrame()
	go s.animate(s.stop, s.done)
}

// Spinning reports whether the spinner is animating.
func (s *Spinner) Spinning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Success ends the animation with a ✓.
func (s *Spinner) Success() {
	s.finish(SymbolSuccess, ColorSuccess)
}

// Fail ends the animation with a ✗.
func (s *Spinner) Fail() {
	s.finish(SymbolFail, ColorError)
}

// finish is a no-op unless the spinner is running.
func (s *Spinner) finish(symbol string, color lipgloss.Color) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	took := time.Since(s.started).Round(10 * time.Millisecond)
	fmt.Fprintf(s.out, "%s %s %s\n",
		lipgloss.NewStyle().Foreground(color).Render(symbol),
		s.label,
		MutedStyle().Render(took.String()))
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawFrame()
			s.mu.Unlock()
		}
	}
}

// drawFrame redraws the current frame. Callers hold mu.
func (s *Spinner) drawFrame() {
	color := SpinnerColors[(s.frame/2)%len(SpinnerColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]) + " " + s.label + "..."
	s.clear()
	fmt.Fprint(s.out, "\r"+line)
	s.width = lipgloss.Width(line)
}

// clear blanks the last frame. Callers hold mu.
func (s *Spinner) clear() {
	if s.width == 0 {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
	s.width = 0
}
