package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	service = "algohub-cli"
)

// KeyringStore persists cookies in the OS keychain/credential manager.
// The keychain has no notion of a login session, so session cookies stored
// here live until logout.
type KeyringStore struct {
	scope string
	now   func() time.Time
}

// NewKeyringStore creates a keychain-backed store for one server scope
func NewKeyringStore(scope string) *KeyringStore {
	return &KeyringStore{scope: sanitizeScope(scope), now: time.Now}
}

// getKeyringKey returns a unique key for storing cookies per server
func (s *KeyringStore) getKeyringKey(name string) string {
	return fmt.Sprintf("cookie-%s-%s", s.scope, name)
}

// Get retrieves the cookie from the keychain, pruning it when expired
func (s *KeyringStore) Get(name string) (*http.Cookie, error) {
	line, err := keyring.Get(service, s.getKeyringKey(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cookie: %w", err)
	}

	c, err := decode(line)
	if err != nil {
		return nil, err
	}

	if expired(c, s.now()) {
		if err := s.Remove(name); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return c, nil
}

// Set saves the cookie securely in the keychain
func (s *KeyringStore) Set(c *http.Cookie) error {
	line, err := encode(c)
	if err != nil {
		return err
	}
	if err := keyring.Set(service, s.getKeyringKey(c.Name), line); err != nil {
		return fmt.Errorf("failed to save cookie: %w", err)
	}
	return nil
}

// Remove deletes the cookie from the keychain
func (s *KeyringStore) Remove(name string) error {
	if err := keyring.Delete(service, s.getKeyringKey(name)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}
