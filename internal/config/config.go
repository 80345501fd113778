// Package config loads tidea settings from defaults, an optional TOML file,
// an optional .env file and the environment, in that order.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultLanguage  = "auto"
	DefaultRole      = "editor"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds every runtime setting.
type Config struct {
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	Role           string `toml:"role"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	LogFile        string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Language:  DefaultLanguage,
		Role:      DefaultRole,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Timeout is TimeoutSeconds as a duration; zero means no client timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Sample returns the commented sample configuration file.
func Sample() string {
	return sampleConfig
}

// DefaultPath returns $XDG_CONFIG_HOME/tidea/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "tidea", "config.toml"), nil
}

// Load builds the configuration. An explicit path must exist; the default
// path and the .env file are optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	// .env never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Overrides are command-line values. Empty fields leave the loaded value alone.
type Overrides struct {
	BaseURL  string
	Language string
	Role     string
	LogLevel string
}

// Apply layers o on top of c and re-validates.
func (c *Config) Apply(o Overrides) error {
	setIf(&c.BaseURL, o.BaseURL)
	setIf(&c.Language, o.Language)
	setIf(&c.Role, o.Role)
	setIf(&c.LogLevel, o.LogLevel)
	c.normalize()
	return c.Validate()
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.BaseURL, "TIDEA_API_BASE_URL")
	setString(&c.Language, "TIDEA_LANGUAGE")
	setString(&c.Role, "TIDEA_ROLE")
	setString(&c.LogLevel, "TIDEA_LOG_LEVEL")
	setString(&c.LogFormat, "TIDEA_LOG_FORMAT")
	setString(&c.LogFile, "TIDEA_LOG_FILE")

	if v := strings.TrimSpace(os.Getenv("TIDEA_TIMEOUT_SECONDS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIDEA_TIMEOUT_SECONDS: %w", err)
		}
		c.TimeoutSeconds = n
	}
	return nil
}

func setString(dst *string, key string) {
	setIf(dst, os.Getenv(key))
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	c.Role = strings.ToLower(strings.TrimSpace(c.Role))
	if c.Role == "" {
		c.Role = DefaultRole
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogFile = expandHome(strings.TrimSpace(c.LogFile))
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url: %q is not an http(s) URL", c.BaseURL)
	}
	switch c.Role {
	case "editor", "creator":
	default:
		return fmt.Errorf("role: unsupported value %q (want editor or creator)", c.Role)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds: must not be negative, got %d", c.TimeoutSeconds)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
