package session

import "errors"

// Fatal conditions that end a session without a report.
var (
	ErrNoDevice     = errors.New("no device connected")
	ErrDisconnected = errors.New("device disconnected")
	ErrElevation    = errors.New("failed to boot device as root")
)

// fatalError tags a cause with one of the sentinels above so callers can
// match with errors.Is while the cause keeps its own message.
type fatalError struct {
	kind  error
	cause error
}

func fatal(kind, cause error) error {
	return &fatalError{kind: kind, cause: cause}
}

func (e *fatalError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.cause.Error()
}

func (e *fatalError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}
