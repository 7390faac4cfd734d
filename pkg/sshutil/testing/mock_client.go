// Package testing provides an in-memory SSHClient for tests.
package testing

import (
	"errors"
	"regexp"
	"sync"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockClient answers commands from canned responses and records every
// command it was asked to run.
type MockClient struct {
	mu       sync.Mutex
	host     string
	closed   bool
	exact    map[string]CommandResponse
	patterns []patternResponse
	history  []string
}

type patternResponse struct {
	re   *regexp.Regexp
	resp CommandResponse
}

// NewMockClient creates a mock client for host.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:  host,
		exact: make(map[string]CommandResponse),
	}
}

// Exec returns the registered response for cmd. Exact matches win over
// patterns; patterns are tried in registration order. Unknown commands
// exit 127 like a shell would.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.history = append(m.history, cmd)

	if resp, ok := m.exact[cmd]; ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}
	for _, p := range m.patterns {
		if p.re.MatchString(cmd) {
			return p.resp.Stdout, p.resp.Stderr, p.resp.ExitCode, p.resp.Error
		}
	}
	return nil, []byte("command not found"), 127, nil
}

// SetCommandResponse registers a response for an exact command line.
func (m *MockClient) SetCommandResponse(cmd string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact[cmd] = resp
}

// SetPatternResponse registers a response for commands matching pattern.
func (m *MockClient) SetPatternResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, patternResponse{re: regexp.MustCompile(pattern), resp: resp})
}

// Commands returns the commands run so far.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.history))
	copy(out, m.history)
	return out
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}
