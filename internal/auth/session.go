package auth

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// IsAdmin reports whether the session belongs to an administrator
func (s *SessionData) IsAdmin() bool {
	return s.Role == RoleAdmin
}
