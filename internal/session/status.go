package session

// Status is the connection state of the transport session. It only ever
// moves forward through the handshake and collapses back to
// StatusDisconnected on socket loss; the machine is re-entrant and can
// restart from StatusDisconnected.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusAuthenticated
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
