package session

// State is the lifecycle position of a session
type State int

const (
	// Anonymous means no token is held in memory
	Anonymous State = iota
	// Verifying means a rehydrated token is held but not yet confirmed by the backend
	Verifying
	// Authenticated means the token was issued by a login or confirmed by the backend
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the store's state
type Session struct {
	Token string
	Role  string
	State State
}

// IsAdmin reports whether the session's role is admin
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
