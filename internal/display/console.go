package display

import (
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// Console redraws the whole screen on every cycle.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	term  *termenv.Output
	clear bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithoutClear appends each view instead of clearing the screen first.
// Used when output is not a terminal.
func WithoutClear() ConsoleOption {
	return func(c *Console) { c.clear = false }
}

// NewConsole creates a console display writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:   w,
		term:  termenv.NewOutput(w),
		clear: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render clears the screen and prints v.
func (c *Console) Render(v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clear {
		c.term.ClearScreen()
	}
	_, err := io.WriteString(c.out, renderScreen(v, 0))
	return err
}

// Close leaves the last screen in place.
func (c *Console) Close() error {
	return nil
}
