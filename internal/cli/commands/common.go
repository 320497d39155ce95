package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/algohub-dev/algohub/internal/cli/client"
	cliconfig "github.com/algohub-dev/algohub/internal/cli/config"
	"github.com/algohub-dev/algohub/internal/cli/cookies"
	"github.com/algohub-dev/algohub/internal/cli/serverselect"
	"github.com/algohub-dev/algohub/internal/cli/session"
	"github.com/algohub-dev/algohub/internal/cli/ui"
	"github.com/algohub-dev/algohub/internal/config"
)

// ErrNotLoggedIn is returned by commands that need a session when none exists
var ErrNotLoggedIn = errors.New("not logged in")

// GlobalOptions holds the root command's persistent flags
type GlobalOptions struct {
	Server  string
	Verbose bool
	NoColor bool

	Out io.Writer
	In  io.Reader
}

// App is the per-invocation wiring: one session store and one API client
// that reports forced logouts back to it
type App struct {
	Config  *config.CLIConfig
	Server  *cliconfig.Server
	Session *session.Store
	Client  *client.Client
	UI      *ui.Printer

	verified <-chan error
}

func newApp(opts *GlobalOptions) (*App, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	server, err := resolveServer(cfg, opts.Server)
	if err != nil {
		return nil, err
	}

	apiBase := server.APIBase()
	origin, err := url.Parse(apiBase)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", server.URL, err)
	}

	store := newCookieStore(cfg, origin.Host)
	jar, err := cookies.NewJar(store, origin, cookies.SessionCookie)
	if err != nil {
		return nil, err
	}

	printer := ui.New(opts.Out)
	sess := session.New(store,
		session.WithJar(jar),
		session.WithRouter(printer),
		session.WithNotifier(printer),
		session.WithLogger(log.Logger),
	)

	api := client.New(apiBase,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithCookieJar(jar),
		client.WithTokenSource(sess),
		client.WithForcedLogout(sess.HandleForcedLogout),
		client.WithLogger(log.Logger),
	)

	log.Debug().Str("server", server.Alias).Str("api", apiBase).Str("store", cfg.TokenStore).Msg("Client configured")

	return &App{
		Config:  cfg,
		Server:  server,
		Session: sess,
		Client:  api,
		UI:      printer,
	}, nil
}

// resolveServer picks the backend: --server flag (URL or alias), then
// ALGOHUB_API_URL, then algohub.yaml, then the local default
func resolveServer(cfg *config.CLIConfig, flag string) (*cliconfig.Server, error) {
	if strings.Contains(flag, "://") {
		return &cliconfig.Server{Alias: flag, URL: flag}, nil
	}

	if flag == "" && cfg.APIURL != "" {
		return &cliconfig.Server{Alias: "env", URL: cfg.APIURL}, nil
	}

	project, err := cliconfig.LoadFromCurrentDir()
	switch {
	case errors.Is(err, cliconfig.ErrConfigNotFound):
		if flag != "" {
			return nil, fmt.Errorf("server '%s' not found: no algohub.yaml\nRun 'algohub init <url>' to create one", flag)
		}
		return &cliconfig.Server{Alias: "default", URL: config.DefaultAPIURL}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return serverselect.ResolveServer(project, flag, cfg.ConfigDir)
}

func newCookieStore(cfg *config.CLIConfig, scope string) cookies.Store {
	if cfg.TokenStore == "keyring" {
		return cookies.NewKeyringStore(scope)
	}
	return cookies.NewFileStore(cfg.ConfigDir, cfg.RuntimeDir, scope)
}

// requireLogin fails when no token is held and starts background
// verification of a rehydrated one
func (a *App) requireLogin(ctx context.Context) error {
	switch a.Session.State() {
	case session.Anonymous:
		a.UI.RedirectToLogin()
		return ErrNotLoggedIn
	case session.Verifying:
		a.verified = a.Session.VerifyAsync(ctx, a.Client)
	}
	return nil
}

// requireAdmin also checks the decoded role. The backend enforces the same
// rule; this only avoids a pointless round trip.
func (a *App) requireAdmin(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	if !a.Session.IsAdmin() {
		return fmt.Errorf("admin access required")
	}
	return nil
}

// Close waits for background verification to finish
func (a *App) Close() {
	if a.verified == nil {
		return
	}
	if err := <-a.verified; err != nil && !errors.Is(err, client.ErrAuthRequired) {
		log.Debug().Err(err).Msg("Session verification failed")
	}
}

func stdinOrDefault(in io.Reader) io.Reader {
	if in != nil {
		return in
	}
	return os.Stdin
}
