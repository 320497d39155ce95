package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIURL is the backend origin plus the /api prefix
	DefaultAPIURL = "http://localhost:8080/api"

	defaultRequestTimeout = 30 * time.Second
	defaultSessionTTL     = 24 * time.Hour
)

// ServerConfig holds configuration for the development backend
type ServerConfig struct {
	// Database Configuration
	Database DatabaseConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Auth Configuration
	Auth AuthConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// HTTPConfig holds listener and CORS settings
type HTTPConfig struct {
	ListenAddr     string
	AllowedOrigins []string
}

// AuthConfig holds token signing and bootstrap admin settings
type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	AdminUsername string
	AdminPassword string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// CLIConfig holds configuration for the algohub command line client
type CLIConfig struct {
	// APIURL overrides every configured server when set
	APIURL string

	// TokenStore selects the credential backend: "file" or "keyring"
	TokenStore string

	// ConfigDir holds persistent cookies and user preferences
	ConfigDir string

	// RuntimeDir holds session-scoped cookies; it is expected to be wiped on reboot
	RuntimeDir string

	RequestTimeout time.Duration

	Logging LoggingConfig
}

func loadDotEnv() {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// LoadServer loads dev server configuration from environment variables
func LoadServer() (*ServerConfig, error) {
	loadDotEnv()

	ttl, err := durationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &ServerConfig{
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "algohub.sqlite"),
		},
		HTTP: HTTPConfig{
			ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
			AllowedOrigins: origins,
		},
		Auth: AuthConfig{
			JWTSecret:     secret,
			SessionTTL:    ttl,
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// LoadCLI loads client configuration from environment variables
func LoadCLI() (*CLIConfig, error) {
	loadDotEnv()

	timeout, err := durationEnv("ALGOHUB_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnv("ALGOHUB_TOKEN_STORE", "file"))
	if store != "file" && store != "keyring" {
		return nil, fmt.Errorf("ALGOHUB_TOKEN_STORE must be 'file' or 'keyring', got %q", store)
	}

	configDir := os.Getenv("ALGOHUB_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "algohub")
	}

	runtimeDir := os.Getenv("ALGOHUB_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = defaultRuntimeDir()
	}

	return &CLIConfig{
		APIURL:         os.Getenv("ALGOHUB_API_URL"),
		TokenStore:     store,
		ConfigDir:      configDir,
		RuntimeDir:     runtimeDir,
		RequestTimeout: timeout,
		Logging: LoggingConfig{
			Level:  getEnv("ALGOHUB_LOG_LEVEL", "warn"),
			Format: getEnv("ALGOHUB_LOG_FORMAT", "console"),
		},
	}, nil
}

// defaultRuntimeDir prefers XDG_RUNTIME_DIR, which systemd clears on logout/reboot
func defaultRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "algohub")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("algohub-%d", os.Getuid()))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
