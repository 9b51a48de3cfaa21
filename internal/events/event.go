// Package events carries catalogue changes between components.
//
// The favorites store and the review flow publish events on a Bus; the Bus
// appends each one to the session EventLog before fanning it out, so the
// log and every subscriber see the same sequence. Stored rows are turned
// back into typed events through a Registry.
package events

import "time"

// Event is a recorded catalogue change. The entity is what the change is
// about: the movie for list changes and reviews alike.
type Event interface {
	EventType() string
	EntityType() string // EntityMovie or EntityReview
	EntityID() int64
	OccurredAt() time.Time
}

// Summarizer is an Event that can describe itself in one line.
type Summarizer interface {
	Summary() string
}

// BaseEvent holds the fields every catalogue event carries. Concrete events
// embed it and add their own payload.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a change to entityType/entityID with the current UTC
// time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now().UTC(),
	}
}
