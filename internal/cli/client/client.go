package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultParallelism = 8

// Signal is raised when the backend rejects the caller's credentials
type Signal struct {
	Message string
	Forced  bool
	// Token is the bearer the failing request carried, empty if none
	Token string
}

// SignalFunc receives forced-logout signals
type SignalFunc func(Signal)

// TokenSource supplies the bearer token for endpoint calls
type TokenSource interface {
	Token() string
}

// Client represents an HTTP client for the AlgoHub API
type Client struct {
	baseURL      string
	httpClient   *http.Client
	jar          http.CookieJar
	tokens       TokenSource
	onLogout     SignalFunc
	authPatterns []string
	parallelism  int
	logger       zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithCookieJar attaches the jar used to send credentials on every request
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithTokenSource sets where endpoint calls read the bearer token from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithForcedLogout registers the receiver of forced-logout signals
func WithForcedLogout(fn SignalFunc) Option {
	return func(c *Client) { c.onLogout = fn }
}

// WithAuthPatterns replaces the substrings that identify authorization failures
func WithAuthPatterns(patterns ...string) Option {
	return func(c *Client) {
		c.authPatterns = make([]string, 0, len(patterns))
		for _, p := range patterns {
			c.authPatterns = append(c.authPatterns, strings.ToLower(p))
		}
	}
}

// WithParallelism bounds concurrent requests issued by fan-out helpers
func WithParallelism(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a new API client. baseURL includes the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		authPatterns: defaultAuthPatterns,
		parallelism:  defaultParallelism,
		logger:       log.Logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.jar != nil {
		hc := *c.httpClient
		hc.Jar = c.jar
		c.httpClient = &hc
	}

	return c
}

// BaseURL returns the API root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes one API call
type RequestOptions struct {
	Method string
	Body   any
	Query  url.Values

	// SkipAuthCheck disables forced-logout detection, for calls made
	// before a session exists (login, signup)
	SkipAuthCheck bool
}

// Request performs one API call against path (relative to the base URL).
// A non-empty token is sent as a bearer credential; cookies from the jar are
// always sent. On success the JSON body is decoded into out, if non-nil.
//
// Authorization failures raise exactly one forced-logout signal and return
// ErrAuthRequired. Other non-2xx responses return *APIError carrying the
// extracted message.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions, token string, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !opts.SkipAuthCheck && c.detectAuthFailure(ErrorMessage(err), token) {
			return ErrAuthRequired
		}
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := bodyMessage(data, resp.StatusCode)
		if !opts.SkipAuthCheck && c.detectAuthFailure(message, token) {
			return ErrAuthRequired
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    message,
			Body:       data,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// detectAuthFailure raises the forced-logout signal when message names an
// authorization failure
func (c *Client) detectAuthFailure(message, token string) bool {
	if !matchesAuthPattern(message, c.authPatterns) {
		return false
	}

	c.logger.Warn().Str("message", message).Msg("Authorization failure detected")

	if c.onLogout != nil {
		c.onLogout(Signal{Message: message, Forced: true, Token: token})
	}
	return true
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}
