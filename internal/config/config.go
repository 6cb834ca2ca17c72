// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sakif/repo-explorer/internal/github"
	"github.com/sakif/repo-explorer/internal/logging"
)

// Config holds everything cmd/server needs to start.
type Config struct {
	Port      int
	DBPath    string // SQLite path, ":memory:" for a throwaway database
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool

	GitHubAPIURL  string
	GitHubToken   string
	GitHubTimeout time.Duration

	// CacheTTL enables the lookup cache when positive. Zero re-fetches
	// every lookup.
	CacheTTL time.Duration
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Port:          8080,
		DBPath:        "data/explorer.db",
		LogLevel:      "info",
		LogFormat:     logging.FormatText,
		GitHubAPIURL:  github.DefaultBaseURL,
		GitHubTimeout: github.DefaultTimeout,
	}
}

// Load reads the environment through getenv (os.Getenv in production)
// on top of Default.
func Load(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if _, err := logging.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("config: invalid LOG_LEVEL %q", v)
		}
		cfg.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		format, err := logging.ParseFormat(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid LOG_FORMAT %q", v)
		}
		cfg.LogFormat = format
	}
	if v := getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHubAPIURL = v
	}
	cfg.GitHubToken = getenv("GITHUB_TOKEN")

	if v := getenv("SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid SECURE_COOKIES %q", v)
		}
		cfg.SecureCookies = b
	}

	if v := getenv("GITHUB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid GITHUB_TIMEOUT %q", v)
		}
		cfg.GitHubTimeout = d
	}
	if v := getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("config: invalid CACHE_TTL %q", v)
		}
		cfg.CacheTTL = d
	}

	return cfg, nil
}
