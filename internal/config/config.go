// Package config loads panelctl configuration from an optional YAML file and
// environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tehran must resolve on hosts without a zoneinfo database.

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// keySalt is fixed so a passphrase always derives the same key on every run.
var keySalt = []byte("panelctl/credential-store/v1")

// Config holds the application configuration.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	LandingPage string        `yaml:"landing_page"`
	Store       string        `yaml:"store"`
	DBPath      string        `yaml:"db_path"`
	RedisURL    string        `yaml:"redis_url"`
	Timezone    string        `yaml:"timezone"`
	OpenBrowser bool          `yaml:"open_browser"`
	LogLevel    string        `yaml:"log_level"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheDir    string        `yaml:"cache_dir"`
	MaxStale    time.Duration `yaml:"max_stale"`

	// SecretKey is the 32-byte credential encryption key, nil when neither
	// PANELCTL_SECRET_KEY nor PANELCTL_PASSPHRASE is set. Never read from YAML.
	SecretKey []byte `yaml:"-"`
}

func defaults() Config {
	return Config{
		BaseURL:     "http://127.0.0.1:8080",
		LandingPage: "index.html",
		Store:       StoreSQLite,
		DBPath:      "panelctl.db",
		Timezone:    "Asia/Tehran",
		LogLevel:    "warn",
		Timeout:     30 * time.Second,
		CacheDir:    defaultCacheDir(),
	}
}

// defaultCacheDir is panelctl under the user cache directory, or "" (an
// in-memory cache) when the platform has none.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "panelctl")
}

// Load reads configuration. Precedence: environment, then the YAML file named
// by PANELCTL_CONFIG, then defaults. Secrets (PANELCTL_SECRET_KEY,
// PANELCTL_PASSPHRASE) are only taken from the environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path, ok := os.LookupEnv("PANELCTL_CONFIG"); ok && path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if v, ok := os.LookupEnv("PANELCTL_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv("PANELCTL_LANDING_PAGE"); ok {
		cfg.LandingPage = v
	}
	if v, ok := os.LookupEnv("PANELCTL_STORE"); ok {
		cfg.Store = v
	}
	if v, ok := os.LookupEnv("PANELCTL_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("PANELCTL_REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := os.LookupEnv("PANELCTL_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := os.LookupEnv("PANELCTL_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("PANELCTL_OPEN_BROWSER"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PANELCTL_OPEN_BROWSER has invalid boolean %q: %w", v, err)
		}
		cfg.OpenBrowser = b
	}
	if v, ok := os.LookupEnv("PANELCTL_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PANELCTL_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.Timeout = parsed
	}

	if v, ok := os.LookupEnv("PANELCTL_CACHE_DIR"); ok {
		cfg.CacheDir = v
	}
	if v, ok := os.LookupEnv("PANELCTL_MAX_STALE"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PANELCTL_MAX_STALE has invalid duration %q: %w", v, err)
		}
		cfg.MaxStale = parsed
	}

	key, err := loadSecretKey()
	if err != nil {
		return nil, err
	}
	cfg.SecretKey = key

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("PANELCTL_CONFIG: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("PANELCTL_CONFIG: parse %s: %w", path, err)
	}
	return nil
}

// loadSecretKey returns the hex key from PANELCTL_SECRET_KEY, or one derived
// from PANELCTL_PASSPHRASE, or nil.
func loadSecretKey() ([]byte, error) {
	if v, ok := os.LookupEnv("PANELCTL_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("PANELCTL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("PANELCTL_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		return key, nil
	}
	if v, ok := os.LookupEnv("PANELCTL_PASSPHRASE"); ok && v != "" {
		return DeriveKey(v), nil
	}
	return nil, nil
}

// DeriveKey stretches passphrase into a 32-byte key with argon2id.
func DeriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), keySalt, 1, 64*1024, 4, 32)
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("PANELCTL_BASE_URL must not be empty")
	}
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("PANELCTL_DB_PATH must not be empty")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("PANELCTL_REDIS_URL is required when PANELCTL_STORE=redis")
		}
	default:
		return fmt.Errorf("PANELCTL_STORE has unknown backend %q (want %s or %s)", c.Store, StoreSQLite, StoreRedis)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("PANELCTL_TIMEZONE has unknown zone %q: %w", c.Timezone, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("PANELCTL_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.MaxStale < 0 {
		return fmt.Errorf("PANELCTL_MAX_STALE must not be negative, got %s", c.MaxStale)
	}
	return nil
}

// Location returns the configured time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("PANELCTL_LOG_LEVEL has invalid level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// HasSecretKey reports whether credential encryption is configured.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}
