// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	AuthBaseURL       string
	APIBaseURL        string
	DBPath            string // Empty selects the in-memory store.
	SecretKey         []byte // 32 bytes, or nil when unset.
	HTTPTimeout       time.Duration
	PageSize          int
	RequestsPerSecond float64 // 0 disables pacing.
	ListenAddr        string
	LogLevel          string // Empty lets each command pick its default.
}

// HasSecretKey returns true when a credential encryption key is configured.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// Level returns the configured log level, or fallback when none is set.
func (c *Config) Level(fallback slog.Level) slog.Level {
	if c.LogLevel == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fallback
	}
	return lvl
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: ACTIONPANEL_AUTH_BASE_URL
// (https://dev.apinetbo.bekindnetwork.com/api), ACTIONPANEL_API_BASE_URL
// (https://dev.api.bekindnetwork.com/api/v1), ACTIONPANEL_DB_PATH (actionpanel.db),
// ACTIONPANEL_HTTP_TIMEOUT (20s), ACTIONPANEL_PAGE_SIZE (10),
// ACTIONPANEL_REQUESTS_PER_SECOND (5), ACTIONPANEL_LISTEN_ADDR (127.0.0.1:8080).
// ACTIONPANEL_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	authBaseURL := "https://dev.apinetbo.bekindnetwork.com/api"
	if v, ok := os.LookupEnv("ACTIONPANEL_AUTH_BASE_URL"); ok {
		if err := validateBaseURL(v); err != nil {
			return nil, fmt.Errorf("ACTIONPANEL_AUTH_BASE_URL %w", err)
		}
		authBaseURL = v
	}

	apiBaseURL := "https://dev.api.bekindnetwork.com/api/v1"
	if v, ok := os.LookupEnv("ACTIONPANEL_API_BASE_URL"); ok {
		if err := validateBaseURL(v); err != nil {
			return nil, fmt.Errorf("ACTIONPANEL_API_BASE_URL %w", err)
		}
		apiBaseURL = v
	}

	dbPath := "actionpanel.db"
	if v, ok := os.LookupEnv("ACTIONPANEL_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("ACTIONPANEL_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("ACTIONPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("ACTIONPANEL_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		secretKey = key
	}

	httpTimeout := 20 * time.Second
	if v, ok := os.LookupEnv("ACTIONPANEL_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ACTIONPANEL_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("ACTIONPANEL_HTTP_TIMEOUT must be positive, got %s", parsed)
		}
		httpTimeout = parsed
	}

	pageSize := 10
	if v, ok := os.LookupEnv("ACTIONPANEL_PAGE_SIZE"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("ACTIONPANEL_PAGE_SIZE must be a positive integer, got %q", v)
		}
		pageSize = parsed
	}

	requestsPerSecond := 5.0
	if v, ok := os.LookupEnv("ACTIONPANEL_REQUESTS_PER_SECOND"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("ACTIONPANEL_REQUESTS_PER_SECOND must be a non-negative number, got %q", v)
		}
		requestsPerSecond = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("ACTIONPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	var logLevel string
	if v, ok := os.LookupEnv("ACTIONPANEL_LOG_LEVEL"); ok && v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("ACTIONPANEL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
		logLevel = strings.ToLower(v)
	}

	return &Config{
		AuthBaseURL:       authBaseURL,
		APIBaseURL:        apiBaseURL,
		DBPath:            dbPath,
		SecretKey:         secretKey,
		HTTPTimeout:       httpTimeout,
		PageSize:          pageSize,
		RequestsPerSecond: requestsPerSecond,
		ListenAddr:        listenAddr,
		LogLevel:          logLevel,
	}, nil
}

func validateBaseURL(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("is not a valid URL %q: %w", v, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", v)
	}
	return nil
}
