// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied to unset fields.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8585
	DefaultLogLevel        = "info"
	DefaultTMDBBaseURL     = "https://api.themoviedb.org"
	DefaultImageBaseURL    = "https://image.tmdb.org/t/p/"
	DefaultTimeout         = 10 * time.Second
	DefaultStaleTime       = 360 * time.Second
	DefaultRefetchInterval = 360 * time.Second
	DefaultRetries         = 3
	DefaultRetryDelay      = time.Second
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	TMDB   TMDBConfig   `toml:"tmdb"`
	Cache  CacheConfig  `toml:"cache"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type TMDBConfig struct {
	APIKey         string        `toml:"api_key"`
	BaseURL        string        `toml:"base_url"`
	ImageBaseURL   string        `toml:"image_base_url"`
	GuestSessionID string        `toml:"guest_session_id"`
	Timeout        time.Duration `toml:"timeout"`
	RateLimit      float64       `toml:"rate_limit"` // requests per second, 0 = unlimited
}

type CacheConfig struct {
	StaleTime       time.Duration `toml:"stale_time"`
	RefetchInterval time.Duration `toml:"refetch_interval"`
	// Retries is a pointer so that an explicit 0 disables retrying.
	Retries    *int          `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
}

// RetryCount returns the configured retries, or the default when unset.
func (c CacheConfig) RetryCount() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads, substitutes, parses and validates the configuration file.
// Unresolved variables and validation failures are reported together in a
// *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, leaving
// unresolved variables in place.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = DefaultTMDBBaseURL
	}
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = DefaultImageBaseURL
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = DefaultTimeout
	}
	if c.Cache.StaleTime == 0 {
		c.Cache.StaleTime = DefaultStaleTime
	}
	if c.Cache.RefetchInterval == 0 {
		c.Cache.RefetchInterval = DefaultRefetchInterval
	}
	if c.Cache.RetryDelay == 0 {
		c.Cache.RetryDelay = DefaultRetryDelay
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references. Unresolvable references
// are left in place and reported in missing, once each.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	report := func(s string) {
		if !slices.Contains(missing, s) {
			missing = append(missing, s)
		}
	}

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				report(name + ": " + arg)
				return match
			}
			return value
		default:
			if !ok {
				report(name)
				return match
			}
			return value
		}
	})
	return out, missing
}
