package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// DefaultAPIBaseURL is the hosted backend the portal talks to when nothing
// else is configured.
const DefaultAPIBaseURL = "https://job-porta1-backend.vercel.app/api"

// Mirror backends.
const (
	MirrorFile   = "file"
	MirrorSQLite = "sqlite"
)

// Config holds runtime configuration sourced from JOBPORTAL_* env vars.
type Config struct {
	APIBaseURL    string  `envconfig:"API_BASE_URL"`
	StateDir      string  `envconfig:"STATE_DIR"`
	MirrorBackend string  `envconfig:"MIRROR_BACKEND" default:"file"`
	LogLevel      string  `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat     string  `envconfig:"LOG_FORMAT" default:"text"`
	RemoteLogout  bool    `envconfig:"REMOTE_LOGOUT" default:"false"`
	RateLimit     float64 `envconfig:"RATE_LIMIT" default:"0"`
	MetricsAddr   string  `envconfig:"METRICS_ADDR"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("jobportal", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	// Same variable the web client reads, kept for drop-in .env files.
	cfg.APIBaseURL = fallback(cfg.APIBaseURL, fallback(os.Getenv("NEXT_PUBLIC_API_BASE_URL"), DefaultAPIBaseURL))
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.MirrorBackend = strings.ToLower(fallback(cfg.MirrorBackend, MirrorFile))
	cfg.LogLevel = strings.ToLower(fallback(cfg.LogLevel, "warn"))
	cfg.LogFormat = strings.ToLower(fallback(cfg.LogFormat, "text"))

	if cfg.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return Config{}, err
		}
		cfg.StateDir = dir
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("JOBPORTAL_API_BASE_URL is not an absolute URL: %q", c.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("JOBPORTAL_API_BASE_URL must use http or https, got %q", u.Scheme)
	}
	switch c.MirrorBackend {
	case MirrorFile, MirrorSQLite:
	default:
		return fmt.Errorf("JOBPORTAL_MIRROR_BACKEND must be %q or %q, got %q", MirrorFile, MirrorSQLite, c.MirrorBackend)
	}
	if c.RateLimit < 0 {
		return errors.New("JOBPORTAL_RATE_LIMIT must not be negative")
	}
	return nil
}

// MirrorPath is where the display copy of the signed-in identity lives.
func (c Config) MirrorPath() string {
	if c.MirrorBackend == MirrorSQLite {
		return filepath.Join(c.StateDir, "mirror.db")
	}
	return filepath.Join(c.StateDir, "user.json")
}

// CookieJarPath is where the gateway keeps the backend's session cookies.
func (c Config) CookieJarPath() string {
	return filepath.Join(c.StateDir, "cookies.json")
}

// HistoryPath is the interactive shell's line history.
func (c Config) HistoryPath() string {
	return filepath.Join(c.StateDir, "history")
}

func defaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "jobportal"), nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
