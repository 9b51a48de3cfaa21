package catalog

import (
	"context"
	"log/slog"

	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/favorites"
)

// EventNotifier publishes favorites changes as list events.
type EventNotifier struct {
	pub Publisher
	log *slog.Logger
}

// NewEventNotifier creates a notifier publishing to pub.
func NewEventNotifier(pub Publisher, log *slog.Logger) *EventNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &EventNotifier{pub: pub, log: log}
}

// Notify implements favorites.Notifier.
func (n *EventNotifier) Notify(c favorites.Change) {
	e := events.NewListChanged(string(c.List), string(c.Op), c.MovieID)
	if err := n.pub.Publish(context.Background(), e); err != nil {
		n.log.Warn("failed to publish list change", "list", c.List, "op", c.Op, "movie_id", c.MovieID, "error", err)
	}
}

var _ favorites.Notifier = (*EventNotifier)(nil)
