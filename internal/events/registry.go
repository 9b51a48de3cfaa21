package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory returns an empty event to decode a stored payload into.
type EventFactory func() Event

// Registry decodes rows of the event log back into their concrete types.
// It is not safe for concurrent Register calls; build it once, then share.
type Registry struct {
	factories map[string]EventFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]EventFactory)}
}

// Register binds an event type to the factory for its payload.
func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal decodes raw into its registered type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}
	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return event, nil
}

// Summary decodes raw and returns its one-line description, or "" when the
// type is unknown, the payload is unreadable or the event has none.
func (r *Registry) Summary(raw RawEvent) string {
	e, err := r.Unmarshal(raw)
	if err != nil {
		return ""
	}
	if s, ok := e.(Summarizer); ok {
		return s.Summary()
	}
	return ""
}

// DefaultRegistry knows the list change and review events.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []string{EventFavoriteAdded, EventFavoriteRemoved, EventMustWatchAdded, EventMustWatchRemoved} {
		r.Register(t, func() Event { return &ListChanged{} })
	}
	r.Register(EventReviewSubmitted, func() Event { return &ReviewSubmitted{} })
	return r
}
