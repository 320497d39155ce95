package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar is an http.CookieJar that mirrors selected backend cookies into a
// Store, so a backend session set during login is still sent on the next run.
type Jar struct {
	inner   *cookiejar.Jar
	store   Store
	origin  *url.URL
	tracked map[string]bool

	// Now anchors relative Max-Age lifetimes before they are stored
	Now func() time.Time
}

// NewJar creates a jar for origin and preloads the tracked cookies from store
func NewJar(store Store, origin *url.URL, tracked ...string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	j := &Jar{
		inner:   inner,
		store:   store,
		origin:  origin,
		tracked: make(map[string]bool, len(tracked)),
		Now:     time.Now,
	}

	for _, name := range tracked {
		j.tracked[name] = true

		c, err := store.Get(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		inner.SetCookies(origin, []*http.Cookie{c})
	}

	return j, nil
}

// SetCookies implements http.CookieJar. Persisting tracked cookies is best
// effort: a storage failure only costs the cookie on the next run.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	for _, c := range cookies {
		if !j.tracked[c.Name] {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			_ = j.store.Remove(c.Name)
			continue
		}
		_ = j.store.Set(j.absolute(c))
	}
}

// absolute converts a relative Max-Age into an absolute Expires, since a
// stored Max-Age would restart its countdown every time it is loaded
func (j *Jar) absolute(c *http.Cookie) *http.Cookie {
	if c.MaxAge <= 0 {
		return c
	}
	stored := *c
	stored.Expires = j.Now().Add(time.Duration(c.MaxAge) * time.Second).UTC()
	stored.MaxAge = 0
	stored.RawExpires = ""
	return &stored
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Forget drops a cookie from the live jar and from storage
func (j *Jar) Forget(name string) error {
	j.inner.SetCookies(j.origin, []*http.Cookie{{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
	return j.store.Remove(name)
}
