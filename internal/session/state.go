package session

// State is where the scheduler is in its lifecycle.
type State int

const (
	StateConnecting State = iota
	StatePolling
	StateRootRetry
	StateTerminating
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePolling:
		return "polling"
	case StateRootRetry:
		return "root-retry"
	case StateTerminating:
		return "terminating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
