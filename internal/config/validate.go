// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// TMDB validation
	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	errs = appendURLError(errs, "tmdb.base_url", c.TMDB.BaseURL)
	errs = appendURLError(errs, "tmdb.image_base_url", c.TMDB.ImageBaseURL)
	if c.TMDB.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.timeout: must not be negative, got %s", c.TMDB.Timeout))
	}
	if c.TMDB.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.rate_limit: must not be negative, got %g", c.TMDB.RateLimit))
	}

	// Cache validation
	if c.Cache.StaleTime < 0 {
		errs = append(errs, fmt.Sprintf("cache.stale_time: must not be negative, got %s", c.Cache.StaleTime))
	}
	if c.Cache.RefetchInterval < 0 {
		errs = append(errs, fmt.Sprintf("cache.refetch_interval: must not be negative, got %s", c.Cache.RefetchInterval))
	}
	if c.Cache.RetryCount() < 0 {
		errs = append(errs, fmt.Sprintf("cache.retries: must not be negative, got %d", c.Cache.RetryCount()))
	}
	if c.Cache.RetryDelay < 0 {
		errs = append(errs, fmt.Sprintf("cache.retry_delay: must not be negative, got %s", c.Cache.RetryDelay))
	}

	return errs
}

func appendURLError(errs []string, field, raw string) []string {
	if raw == "" {
		return errs
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		return append(errs, fmt.Sprintf("%s: must be an absolute URL, got %q", field, raw))
	}
	return errs
}
