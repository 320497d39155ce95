package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps cookies in two JSON files per scope: one under the config
// directory for cookies with an expiry, one under the runtime directory for
// session cookies.
type FileStore struct {
	mu             sync.Mutex
	persistentPath string
	sessionPath    string
	now            func() time.Time
}

// NewFileStore creates a file-backed store. scope separates servers that
// share the same directories.
func NewFileStore(configDir, runtimeDir, scope string) *FileStore {
	name := sanitizeScope(scope) + ".json"
	return &FileStore{
		persistentPath: filepath.Join(configDir, "cookies", name),
		sessionPath:    filepath.Join(runtimeDir, "cookies", name),
		now:            time.Now,
	}
}

// Get returns the live cookie stored under name. Expired cookies are pruned.
func (s *FileStore) Get(name string) (*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.sessionPath, s.persistentPath} {
		jar, err := readJarFile(path)
		if err != nil {
			return nil, err
		}

		line, ok := jar[name]
		if !ok {
			continue
		}

		c, err := decode(line)
		if err != nil {
			return nil, err
		}

		if expired(c, s.now()) {
			delete(jar, name)
			if err := writeJarFile(path, jar); err != nil {
				return nil, err
			}
			continue
		}

		return c, nil
	}

	return nil, ErrNotFound
}

// Set persists c, replacing any cookie of the same name in either file
func (s *FileStore) Set(c *http.Cookie) error {
	line, err := encode(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, other := s.persistentPath, s.sessionPath
	if IsSession(c) {
		target, other = s.sessionPath, s.persistentPath
	}

	if err := s.removeFrom(other, c.Name); err != nil {
		return err
	}

	jar, err := readJarFile(target)
	if err != nil {
		return err
	}
	jar[c.Name] = line

	return writeJarFile(target, jar)
}

// Remove deletes the cookie from both files. Missing cookies are not an error.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeFrom(s.sessionPath, name); err != nil {
		return err
	}
	return s.removeFrom(s.persistentPath, name)
}

func (s *FileStore) removeFrom(path, name string) error {
	jar, err := readJarFile(path)
	if err != nil {
		return err
	}
	if _, ok := jar[name]; !ok {
		return nil
	}
	delete(jar, name)
	return writeJarFile(path, jar)
}

func readJarFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	jar := map[string]string{}
	if len(data) == 0 {
		return jar, nil
	}
	if err := json.Unmarshal(data, &jar); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}
	return jar, nil
}

func writeJarFile(path string, jar map[string]string) error {
	if len(jar) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove cookie file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	// Credentials: owner-only
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

func sanitizeScope(scope string) string {
	if scope == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, scope)
}
