package v1

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/events"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required
	Catalog *catalog.Service

	// Optional
	EventLog *events.EventLog // session event log
	Logger   *slog.Logger
	Version  string
	Started  time.Time // zero means the server's construction time
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Catalog == nil {
		return errors.New("catalog service is required")
	}
	return nil
}
