// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort, LogLevel: "info"},
		TMDB: TMDBConfig{
			APIKey:       "abc123",
			BaseURL:      DefaultTMDBBaseURL,
			ImageBaseURL: DefaultImageBaseURL,
			Timeout:      DefaultTimeout,
		},
		Cache: CacheConfig{
			StaleTime:       DefaultStaleTime,
			RefetchInterval: DefaultRefetchInterval,
			RetryDelay:      DefaultRetryDelay,
		},
	}
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidate_MinimalValid(t *testing.T) {
	errs := validConfig().Validate()
	assert.Empty(t, errs, "expected no errors for minimal valid config")
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIKey = ""
	errs := cfg.Validate()
	assert.Equal(t, []string{"tmdb.api_key: required"}, errs)
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 99999
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "server.port"), "expected port error, got %v", errs)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Server.LogLevel = "verbose"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log_level"), "expected log_level error, got %v", errs)
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		cfg := validConfig()
		cfg.Server.LogLevel = level
		assert.False(t, containsError(cfg.Validate(), "log_level"), "level %q should be valid", level)
	}
}

func TestValidate_RelativeURL(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.BaseURL = "api.themoviedb.org"
	cfg.TMDB.ImageBaseURL = "/t/p/"
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "tmdb.base_url"), "got %v", errs)
	assert.True(t, containsError(errs, "tmdb.image_base_url"), "got %v", errs)
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := validConfig()
	retries := -1
	cfg.TMDB.Timeout = -time.Second
	cfg.TMDB.RateLimit = -1
	cfg.Cache.StaleTime = -time.Second
	cfg.Cache.RefetchInterval = -time.Second
	cfg.Cache.Retries = &retries
	cfg.Cache.RetryDelay = -time.Second

	errs := cfg.Validate()
	for _, field := range []string{
		"tmdb.timeout", "tmdb.rate_limit",
		"cache.stale_time", "cache.refetch_interval", "cache.retries", "cache.retry_delay",
	} {
		assert.True(t, containsError(errs, field), "expected %s error, got %v", field, errs)
	}
	assert.Len(t, errs, 6)
}
