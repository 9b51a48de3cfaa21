// internal/config/error_test.go
package config

import (
	"strings"
	"testing"
)

func TestConfigError_Error_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/cinelist/config.toml"}
	if got := e.Error(); got != "" {
		t.Errorf("expected empty string for no errors, got %q", got)
	}
	if e.HasErrors() {
		t.Error("expected HasErrors to be false")
	}
}

func TestConfigError_Error_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/cinelist/config.toml",
		Missing: []string{"TMDB_API_KEY", "TMDB_GUEST_SESSION"},
	}
	got := e.Error()
	if !strings.HasPrefix(got, "config /etc/cinelist/config.toml:") {
		t.Errorf("expected path header, got %q", got)
	}
	if !strings.Contains(got, "missing environment variables: TMDB_API_KEY, TMDB_GUEST_SESSION") {
		t.Errorf("expected var names in error, got %q", got)
	}
}

func TestConfigError_Error_ValidationErrors(t *testing.T) {
	e := &ConfigError{
		Errors: []string{"server.port: must be between 1 and 65535, got 0", "tmdb.api_key: required"},
	}
	got := e.Error()
	want := "validation failed:\n  - server.port: must be between 1 and 65535, got 0\n  - tmdb.api_key: required"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestConfigError_Error_Both(t *testing.T) {
	e := &ConfigError{
		Path:    "config.toml",
		Missing: []string{"TMDB_API_KEY"},
		Errors:  []string{"server.port: invalid"},
	}
	got := e.Error()
	if !strings.Contains(got, "missing environment variables") {
		t.Errorf("expected missing vars section, got %q", got)
	}
	if !strings.Contains(got, "validation failed") {
		t.Errorf("expected validation section, got %q", got)
	}
}
