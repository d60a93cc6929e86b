package model

// ConnectionState represents the lifecycle state of a connection engine.
// Legal transitions: Closed→Connecting→Open→{Closing→Closed | Faulted},
// Faulted→Closed via reset.
type ConnectionState int

const (
	StateClosed ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateFaulted
)

func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
