package enum

type SessionStatus string

const (
	SessionStatusPending SessionStatus = "PENDING"
	SessionStatusPaid    SessionStatus = "PAID"
	SessionStatusFailed  SessionStatus = "FAILED"
	SessionStatusExpired SessionStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition is expected for the status.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusPaid, SessionStatusFailed, SessionStatusExpired:
		return true
	default:
		return false
	}
}
