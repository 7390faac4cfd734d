package display

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/b2gmon/internal/ui"
)

// ErrClosed is returned by Render once the dashboard has exited.
var ErrClosed = errors.New("display closed")

// viewMsg carries a new cycle into the model.
type viewMsg View

// closeMsg asks the model to exit.
type closeMsg struct{}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "stop and write report"),
	),
}

// Model is the Bubble Tea model for the live dashboard.
type Model struct {
	view     View
	ready    bool
	stopping bool
	width    int
	height   int
	onQuit   func()
}

// NewModel creates a dashboard model. onQuit runs once when the user asks
// to stop; the dashboard keeps showing cycles until it is closed.
func NewModel(onQuit func()) Model {
	return Model{onQuit: onQuit}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && !m.stopping {
			m.stopping = true
			if m.onQuit != nil {
				m.onQuit()
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case viewMsg:
		m.view = View(msg)
		m.ready = true
	case closeMsg:
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ui.MutedStyle().Render("Establishing connection to device...") + "\n"
	}

	var b strings.Builder
	b.WriteString(renderScreen(m.view, m.appRowBudget()))
	b.WriteString("\n")
	if m.stopping {
		b.WriteString(lipgloss.NewStyle().Foreground(ui.ColorWarning).Render("Stopping after this cycle..."))
	} else {
		b.WriteString(ui.MutedStyle().Render(keys.Quit.Help().Key + " " + keys.Quit.Help().Desc))
	}
	return b.String()
}

// appRowBudget keeps the apps table inside the terminal height.
func (m Model) appRowBudget() int {
	if m.height == 0 {
		return 0
	}
	// header, device, memory and tracked blocks plus the footer
	fixed := 16 + 2*len(m.view.Tracked)
	if budget := m.height - fixed; budget > 3 {
		return budget
	}
	return 3
}

// TUI runs the dashboard as a full-screen Bubble Tea program.
type TUI struct {
	program *tea.Program
	done    chan struct{}
	started bool
	err     error
}

// NewTUI creates the dashboard. Extra program options are mostly for
// tests (input and output redirection).
func NewTUI(onQuit func(), opts ...tea.ProgramOption) *TUI {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}, opts...)
	return &TUI{
		program: tea.NewProgram(NewModel(onQuit), opts...),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background.
func (t *TUI) Start() {
	t.started = true
	go func() {
		defer close(t.done)
		_, t.err = t.program.Run()
	}()
}

// Render sends v to the dashboard.
func (t *TUI) Render(v View) error {
	if !t.started {
		return ErrClosed
	}
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	t.program.Send(viewMsg(v))
	return nil
}

// Close exits the program and restores the terminal.
func (t *TUI) Close() error {
	if !t.started {
		return nil
	}
	select {
	case <-t.done:
		return t.err
	default:
	}
	t.program.Send(closeMsg{})
	<-t.done
	return t.err
}
