package transport

// ReadyState is the lifecycle phase of a transport.
type ReadyState int

const (
	StateNone ReadyState = iota
	StateOpening
	StateOpen
	StatePausing
	StatePaused
	StateClosing
	StateClosed
)

func (rs ReadyState) String() string {
	switch rs {
	case StateNone:
		return "none"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StatePausing:
		return "pausing"
	case StatePaused:
		return "paused"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
