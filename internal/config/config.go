// Package config loads plagdesk settings from .env, an optional YAML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddr           = ":8080"
	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultDBPath         = "plagdesk.db"
	DefaultCheckTimeout   = 5 * time.Minute
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultHistoryPerPage = 10
	DefaultSlowUpstreamMs = 1000
)

// DefaultStageSchedule is the offset, from entering PROCESSING, at which each
// later cosmetic stage tick fires.
var DefaultStageSchedule = []time.Duration{1500 * time.Millisecond, 3000 * time.Millisecond}

// Config holds every tunable the server and the CLI read.
type Config struct {
	Addr           string          `yaml:"addr"`
	APIBaseURL     string          `yaml:"api_base_url"`
	DBPath         string          `yaml:"db"`
	Env            string          `yaml:"env"`
	CSRFKey        string          `yaml:"csrf_key"`
	StoreKey       string          `yaml:"store_key"`
	CheckTimeout   time.Duration   `yaml:"check_timeout"`
	HTTPTimeout    time.Duration   `yaml:"http_timeout"`
	StageSchedule  []time.Duration `yaml:"stage_schedule"`
	HistoryPerPage int             `yaml:"history_per_page"`
	SlowUpstreamMs int             `yaml:"slow_upstream_ms"`
	Log            LogConfig       `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Addr:           DefaultAddr,
		APIBaseURL:     DefaultAPIBaseURL,
		DBPath:         DefaultDBPath,
		Env:            "development",
		CheckTimeout:   DefaultCheckTimeout,
		HTTPTimeout:    DefaultHTTPTimeout,
		StageSchedule:  append([]time.Duration(nil), DefaultStageSchedule...),
		HistoryPerPage: DefaultHistoryPerPage,
		SlowUpstreamMs: DefaultSlowUpstreamMs,
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config. A missing .env or YAML file is not an error.
// PRE: path may be empty (falls back to $PLAGDESK_CONFIG)
// POST: returns a validated Config or an error describing the first bad field
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("PLAGDESK_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config_file_missing", "path", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides copies PLAGDESK_* variables over file values.
func (c *Config) applyEnvOverrides() error {
	c.Addr = envOrDefault("PLAGDESK_ADDR", c.Addr)
	c.APIBaseURL = envOrDefault("PLAGDESK_API_BASE_URL", c.APIBaseURL)
	c.DBPath = envOrDefault("PLAGDESK_DB", c.DBPath)
	c.Env = envOrDefault("PLAGDESK_ENV", c.Env)
	c.CSRFKey = envOrDefault("PLAGDESK_CSRF_KEY", c.CSRFKey)
	c.StoreKey = envOrDefault("PLAGDESK_STORE_KEY", c.StoreKey)
	c.Log.Level = envOrDefault("PLAGDESK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOrDefault("PLAGDESK_LOG_FORMAT", c.Log.Format)

	var err error
	if c.CheckTimeout, err = parseDurationEnv("PLAGDESK_CHECK_TIMEOUT", c.CheckTimeout); err != nil {
		return err
	}
	if c.HTTPTimeout, err = parseDurationEnv("PLAGDESK_HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.HistoryPerPage, err = parseIntEnv("PLAGDESK_HISTORY_PER_PAGE", c.HistoryPerPage); err != nil {
		return err
	}
	if c.SlowUpstreamMs, err = parseIntEnv("PLAGDESK_SLOW_UPSTREAM_MS", c.SlowUpstreamMs); err != nil {
		return err
	}
	if v := os.Getenv("PLAGDESK_STAGE_SCHEDULE"); v != "" {
		schedule, err := ParseSchedule(v)
		if err != nil {
			return fmt.Errorf("PLAGDESK_STAGE_SCHEDULE: %w", err)
		}
		c.StageSchedule = schedule
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
// PRE: none
// POST: returns nil if every field is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base url %q", c.APIBaseURL)
	}
	if c.CheckTimeout < 0 {
		return fmt.Errorf("check timeout must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	if c.HistoryPerPage <= 0 {
		return fmt.Errorf("history per page must be positive")
	}
	for i, d := range c.StageSchedule {
		if d < 0 || (i > 0 && d < c.StageSchedule[i-1]) {
			return fmt.Errorf("stage schedule must be non-negative and ascending")
		}
	}
	if c.CSRFKey != "" {
		if _, err := decodeKey(c.CSRFKey); err != nil {
			return fmt.Errorf("csrf key: %w", err)
		}
	} else if c.IsProduction() {
		return fmt.Errorf("PLAGDESK_CSRF_KEY is required in production")
	}
	if c.StoreKey != "" {
		if _, err := decodeKey(c.StoreKey); err != nil {
			return fmt.Errorf("store key: %w", err)
		}
	}
	return nil
}

// IsProduction reports whether secure cookies and mandatory keys apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CSRFKeyBytes returns the decoded CSRF key, or nil when unset.
func (c *Config) CSRFKeyBytes() []byte {
	k, _ := decodeKey(c.CSRFKey)
	return k
}

// StoreKeyBytes returns the decoded credential sealing key, or nil when unset.
func (c *Config) StoreKeyBytes() []byte {
	k, _ := decodeKey(c.StoreKey)
	return k
}

// SlogLevel maps Log.Level onto a slog.Level, defaulting to INFO.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by Log.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ParseSchedule parses a comma-separated list of durations such as "1.5s,3s".
func ParseSchedule(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// decodeKey decodes a 32-byte hex key.
func decodeKey(s string) ([]byte, error) {
	k, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("must be hex encoded: %w", err)
	}
	if len(k) != 32 {
		return nil, fmt.Errorf("must be 32 bytes, got %d", len(k))
	}
	return k, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
