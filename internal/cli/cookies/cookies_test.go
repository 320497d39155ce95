package cookies

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestFileStore(t *testing.T) (*FileStore, string, string) {
	t.Helper()

	configDir := t.TempDir()
	runtimeDir := t.TempDir()
	return NewFileStore(configDir, runtimeDir, "localhost:8080"), configDir, runtimeDir
}

func TestNewToken_RememberMeSetsExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c := NewToken("abc", RememberFor, now)

	assert.Equal(t, TokenCookie, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, now.Add(30*24*time.Hour), c.Expires)
	assert.False(t, IsSession(c))
}

func TestNewToken_SessionScoped(t *testing.T) {
	c := NewToken("abc", 0, time.Now())

	assert.True(t, c.Expires.IsZero())
	assert.True(t, IsSession(c))
}

func TestFileStore_PersistentCookieGoesToConfigDir(t *testing.T) {
	store, configDir, runtimeDir := newTestFileStore(t)

	require.NoError(t, store.Set(NewToken("abc", RememberFor, time.Now())))

	_, err := os.Stat(filepath.Join(configDir, "cookies", "localhost_8080.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(runtimeDir, "cookies", "localhost_8080.json"))
	assert.True(t, os.IsNotExist(err))

	c, err := store.Get(TokenCookie)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.False(t, c.Expires.IsZero())
}

func TestFileStore_SessionCookieGoesToRuntimeDir(t *testing.T) {
	store, configDir, runtimeDir := newTestFileStore(t)

	require.NoError(t, store.Set(NewToken("abc", 0, time.Now())))

	_, err := os.Stat(filepath.Join(runtimeDir, "cookies", "localhost_8080.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(configDir, "cookies", "localhost_8080.json"))
	assert.True(t, os.IsNotExist(err))

	// A wiped runtime dir ends the session
	require.NoError(t, os.RemoveAll(runtimeDir))
	_, err = store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_SetReplacesAcrossScopes(t *testing.T) {
	store, _, _ := newTestFileStore(t)

	require.NoError(t, store.Set(NewToken("persistent", RememberFor, time.Now())))
	require.NoError(t, store.Set(NewToken("session", 0, time.Now())))

	c, err := store.Get(TokenCookie)
	require.NoError(t, err)
	assert.Equal(t, "session", c.Value)

	require.NoError(t, store.Remove(TokenCookie))
	_, err = store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_ExpiredCookieIsPruned(t *testing.T) {
	store, configDir, _ := newTestFileStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(NewToken("abc", time.Hour, now)))

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err := store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)

	// Pruning removed the now-empty file
	_, err = os.Stat(filepath.Join(configDir, "cookies", "localhost_8080.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RemoveMissingIsNoop(t *testing.T) {
	store, _, _ := newTestFileStore(t)
	assert.NoError(t, store.Remove(SessionCookie))
}

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore("http://localhost:8080")

	_, err := store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(NewToken("abc", RememberFor, time.Now())))

	c, err := store.Get(TokenCookie)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)

	require.NoError(t, store.Remove(TokenCookie))
	require.NoError(t, store.Remove(TokenCookie))

	_, err = store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyringStore_ExpiredCookieIsPruned(t *testing.T) {
	keyring.MockInit()

	now := time.Now()
	store := NewKeyringStore("dev")
	store.now = func() time.Time { return now.Add(time.Hour) }

	require.NoError(t, store.Set(NewToken("abc", time.Minute, now)))

	_, err := store.Get(TokenCookie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJar_MirrorsTrackedCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "backend-session", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "ignored", Path: "/"})
	}))
	defer srv.Close()

	origin, err := url.Parse(srv.URL)
	require.NoError(t, err)

	store := NewMemoryStore()
	jar, err := NewJar(store, origin, SessionCookie)
	require.NoError(t, err)

	client := &http.Client{Jar: jar}
	resp, err := client.Get(srv.URL + "/api/auth/login")
	require.NoError(t, err)
	resp.Body.Close()

	c, err := store.Get(SessionCookie)
	require.NoError(t, err)
	assert.Equal(t, "backend-session", c.Value)

	_, err = store.Get("tracking")
	assert.ErrorIs(t, err, ErrNotFound)

	// A fresh jar picks the session up from storage
	reloaded, err := NewJar(store, origin, SessionCookie)
	require.NoError(t, err)
	assert.Len(t, reloaded.Cookies(origin), 1)

	require.NoError(t, reloaded.Forget(SessionCookie))
	assert.Empty(t, reloaded.Cookies(origin))
	assert.Equal(t, 0, store.Len())
}

func TestJar_MaxAgeBecomesAbsoluteExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "s", Path: "/", MaxAge: 60})
	}))
	defer srv.Close()

	origin, err := url.Parse(srv.URL)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.Now = func() time.Time { return now }

	jar, err := NewJar(store, origin, SessionCookie)
	require.NoError(t, err)
	jar.Now = store.Now

	resp, err := (&http.Client{Jar: jar}).Get(srv.URL + "/api/auth/login")
	require.NoError(t, err)
	resp.Body.Close()

	c, err := store.Get(SessionCookie)
	require.NoError(t, err)
	assert.Equal(t, 0, c.MaxAge)
	assert.Equal(t, now.Add(time.Minute), c.Expires)

	// Two days later the stored cookie is gone and a fresh jar sends nothing
	now = now.Add(48 * time.Hour)

	_, err = store.Get(SessionCookie)
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := NewJar(store, origin, SessionCookie)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Cookies(origin))
}
