package cookies

import (
	"net/http"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Nothing survives the process, which
// makes it the store of choice for tests and throwaway sessions.
type MemoryStore struct {
	mu      sync.Mutex
	cookies map[string]http.Cookie
	Now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cookies: make(map[string]http.Cookie),
		Now:     time.Now,
	}
}

func (m *MemoryStore) Get(name string) (*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cookies[name]
	if !ok {
		return nil, ErrNotFound
	}
	if expired(&c, m.Now()) {
		delete(m.cookies, name)
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) Set(c *http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cookies[c.Name] = *c
	return nil
}

func (m *MemoryStore) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cookies, name)
	return nil
}

// Len returns the number of stored cookies, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.cookies)
}
