// Package session owns the client's authentication state.
//
// A Store is created once per process, rehydrated from cookie storage, and
// handed to every consumer that needs the token. The API client reports
// rejected credentials through HandleForcedLogout; the store then clears the
// session and, once per session, redirects the user to login with a notice.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/algohub-dev/algohub/internal/cli/client"
	"github.com/algohub-dev/algohub/internal/cli/cookies"
)

// ExpiredNotice is shown when the backend ends a session
const ExpiredNotice = "session expired, please log in again"

// Router sends the user to the login entry point
type Router interface {
	RedirectToLogin()
}

// Notifier shows a transient message to the user
type Notifier interface {
	Warn(message string)
}

// CookieForgetter drops a cookie from the live HTTP cookie jar
type CookieForgetter interface {
	Forget(name string) error
}

// ProfileVerifier confirms a token against the backend
type ProfileVerifier interface {
	VerifyToken(ctx context.Context, token string) error
}

// Store holds the current session
type Store struct {
	mu       sync.Mutex
	cookies  cookies.Store
	jar      CookieForgetter
	router   Router
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	token string
	role  string
	state State

	// redirected is set once the forced-logout side effects ran for the
	// current session and cleared by Login
	redirected bool
}

// Option configures a Store
type Option func(*Store)

// WithRouter sets the login redirect target
func WithRouter(r Router) Option {
	return func(s *Store) { s.router = r }
}

// WithNotifier sets where the expiry notice is shown
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithJar sets the live cookie jar cleared on logout
func WithJar(j CookieForgetter) Option {
	return func(s *Store) { s.jar = j }
}

// WithLogger sets the store's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source used for cookie expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store and rehydrates it from the persisted token cookie.
// A rehydrated session starts in Verifying until Verify confirms it.
func New(store cookies.Store, opts ...Option) *Store {
	s := &Store{
		cookies: store,
		logger:  log.Logger,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	c, err := store.Get(cookies.TokenCookie)
	switch {
	case err == nil && c.Value != "":
		s.token = c.Value
		s.role = ParseRole(c.Value)
		s.state = Verifying
		s.logger.Debug().Str("role", s.role).Msg("Session rehydrated")
	case err != nil && !errors.Is(err, cookies.ErrNotFound):
		s.logger.Warn().Err(err).Msg("Failed to read stored session")
	}

	return s
}

// Token returns the current bearer token, empty when anonymous
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Role returns the role decoded from the current token
func (s *Store) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// IsAdmin reports whether the current role is admin
func (s *Store) IsAdmin() bool {
	return s.Role() == RoleAdmin
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a consistent copy of token, role and state
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{Token: s.token, Role: s.role, State: s.state}
}

// Login stores token and persists it as a cookie. With rememberMe the cookie
// lasts 30 days, otherwise it ends with the login session.
func (s *Store) Login(token string, rememberMe bool) error {
	if token == "" {
		return fmt.Errorf("cannot log in with an empty token")
	}

	var lifetime time.Duration
	if rememberMe {
		lifetime = cookies.RememberFor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cookies.Set(cookies.NewToken(token, lifetime, s.now())); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.token = token
	s.role = ParseRole(token)
	s.state = Authenticated
	s.redirected = false

	s.logger.Debug().Str("role", s.role).Bool("remember", rememberMe).Msg("Logged in")
	return nil
}

// Logout clears the session and its cookies. Calling it again is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked()
}

func (s *Store) logoutLocked() error {
	if s.state != Anonymous {
		s.logger.Debug().Str("from", s.state.String()).Msg("Logged out")
	}

	s.token = ""
	s.role = ""
	s.state = Anonymous

	var errs []error
	for _, name := range []string{cookies.TokenCookie, cookies.SessionCookie} {
		if err := s.cookies.Remove(name); err != nil {
			errs = append(errs, err)
		}
	}
	if s.jar != nil {
		if err := s.jar.Forget(cookies.SessionCookie); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// HandleForcedLogout receives the API client's forced-logout signal. It is
// safe for concurrent use: the first signal for a session logs out and, when
// forced, redirects and notifies; later ones are no-ops. Signals raised by
// requests that carried a token other than the current one are ignored.
func (s *Store) HandleForcedLogout(sig client.Signal) {
	s.mu.Lock()

	if sig.Token != s.token {
		s.mu.Unlock()
		s.logger.Debug().Msg("Ignoring forced logout for a previous session")
		return
	}

	fire := s.forceLocked(sig.Forced)
	s.mu.Unlock()

	if fire {
		s.redirect()
	}
}

// forceLocked logs out and reports whether the redirect and notice are due
func (s *Store) forceLocked(forced bool) bool {
	if err := s.logoutLocked(); err != nil {
		s.logger.Warn().Err(err).Msg("Forced logout could not clear stored cookies")
	}

	if !forced || s.redirected {
		return false
	}
	s.redirected = true
	return true
}

func (s *Store) redirect() {
	if s.notifier != nil {
		s.notifier.Warn(ExpiredNotice)
	}
	if s.router != nil {
		s.router.RedirectToLogin()
	}
}

// Verify confirms the current token with the backend. Rejected credentials
// end the session. Any other failure drops to Anonymous in memory only, so
// the stored cookie is retried on the next run. A result for a token that
// is no longer current is discarded.
func (s *Store) Verify(ctx context.Context, v ProfileVerifier) error {
	token := s.Token()
	if token == "" {
		return nil
	}

	err := v.VerifyToken(ctx, token)

	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		if errors.Is(err, client.ErrAuthRequired) {
			return err
		}
		return nil
	}

	switch {
	case err == nil:
		s.state = Authenticated
		s.mu.Unlock()
		s.logger.Debug().Msg("Session verified")
		return nil

	case errors.Is(err, client.ErrAuthRequired):
		fire := s.forceLocked(true)
		s.mu.Unlock()
		if fire {
			s.redirect()
		}
		return err

	default:
		s.token = ""
		s.role = ""
		s.state = Anonymous
		s.mu.Unlock()
		s.logger.Debug().Err(err).Msg("Session could not be verified, continuing anonymously")
		return err
	}
}

// VerifyAsync runs Verify in the background and delivers its result once
func (s *Store) VerifyAsync(ctx context.Context, v ProfileVerifier) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Verify(ctx, v)
	}()
	return done
}
