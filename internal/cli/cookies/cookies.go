// Package cookies persists the client's credential cookies between CLI runs.
//
// Cookies are kept in Set-Cookie form so that expiry, path and SameSite
// survive a round trip. A cookie without an expiry is session-scoped: the
// file store keeps it in a runtime directory that does not outlive the login
// session, while persistent cookies live in the user's config directory.
package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// TokenCookie holds the bearer token issued at login
	TokenCookie = "token"

	// SessionCookie is the backend's own session cookie
	SessionCookie = "session"

	// RememberFor is the lifetime of a "remember me" token cookie
	RememberFor = 30 * 24 * time.Hour
)

// ErrNotFound is returned when no live cookie exists under the requested name
var ErrNotFound = errors.New("cookie not found")

// Store defines the interface for cookie persistence.
// This allows us to mock the storage backends in tests.
type Store interface {
	Get(name string) (*http.Cookie, error)
	Set(c *http.Cookie) error
	Remove(name string) error
}

// NewToken builds the token cookie. A zero lifetime yields a session cookie.
func NewToken(value string, lifetime time.Duration, now time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if lifetime > 0 {
		c.Expires = now.Add(lifetime).UTC()
	}
	return c
}

// IsSession reports whether c has no explicit expiry
func IsSession(c *http.Cookie) bool {
	return c.Expires.IsZero() && c.MaxAge == 0
}

// expired reports whether c is past its expiry at now
func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// encode serializes a cookie into a Set-Cookie line
func encode(c *http.Cookie) (string, error) {
	line := c.String()
	if line == "" {
		return "", fmt.Errorf("invalid cookie %q", c.Name)
	}
	return line, nil
}

// decode parses a stored Set-Cookie line
func decode(line string) (*http.Cookie, error) {
	c, err := http.ParseSetCookie(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored cookie: %w", err)
	}
	return c, nil
}
