package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration
type Config struct {
	Port           string `toml:"port"`
	CatalogFile    string `toml:"catalog_file"`
	MediaDir       string `toml:"media_dir"`
	CatalogBaseURL string `toml:"catalog_base_url"`
	SessionTTL     string `toml:"session_ttl"`
	LoadTimeout    string `toml:"load_timeout"`
	LogLevel       string `toml:"log_level"`

	sessionTTL  time.Duration
	loadTimeout time.Duration
	logLevel    slog.Level
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        "8080",
		CatalogFile: "data/data.json",
		MediaDir:    "media",
		SessionTTL:  "30m",
		LoadTimeout: "15s",
		LogLevel:    "info",
	}
}

// Load reads the optional TOML file at path, then applies environment
// overrides. A missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			decoder := toml.NewDecoder(file)
			decoder.DisallowUnknownFields()
			if err := decoder.Decode(&cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.CatalogFile = getEnv("CATALOG_FILE", c.CatalogFile)
	c.MediaDir = getEnv("MEDIA_DIR", c.MediaDir)
	c.CatalogBaseURL = getEnv("CATALOG_BASE_URL", c.CatalogBaseURL)
	c.SessionTTL = getEnv("SESSION_TTL", c.SessionTTL)
	c.LoadTimeout = getEnv("LOAD_TIMEOUT", c.LoadTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Normalize parses the string-valued settings and validates the result.
// It must be called again after fields are changed directly (e.g. by flags).
func (c *Config) Normalize() error {
	c.Port = strings.TrimSpace(c.Port)
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	ttl, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return fmt.Errorf("invalid session_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", ttl)
	}
	c.sessionTTL = ttl

	timeout, err := time.ParseDuration(c.LoadTimeout)
	if err != nil {
		return fmt.Errorf("invalid load_timeout: %w", err)
	}
	if timeout < 0 {
		return fmt.Errorf("load_timeout must not be negative, got %s", timeout)
	}
	c.loadTimeout = timeout

	if err := c.logLevel.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if c.CatalogBaseURL == "" {
		c.CatalogBaseURL = "http://localhost:" + c.Port
	}
	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid catalog_base_url %q", c.CatalogBaseURL)
	}
	return nil
}

// SessionTTLDuration is how long an idle browser session is kept.
func (c *Config) SessionTTLDuration() time.Duration { return c.sessionTTL }

// LoadTimeoutDuration bounds the catalog fetch; zero means no limit.
func (c *Config) LoadTimeoutDuration() time.Duration { return c.loadTimeout }

// Level is the parsed log level.
func (c *Config) Level() slog.Level { return c.logLevel }

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
