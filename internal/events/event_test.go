package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    EntityMovie,
		ID:        42,
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, "movie", e.EntityType())
	assert.Equal(t, int64(42), e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventFavoriteAdded, EntityMovie, 27205)

	assert.Equal(t, "favorite.added", e.EventType())
	assert.Equal(t, "movie", e.EntityType())
	assert.Equal(t, int64(27205), e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestListEventType(t *testing.T) {
	tests := []struct {
		list, op string
		want     string
	}{
		{"favorites", "added", EventFavoriteAdded},
		{"favorites", "removed", EventFavoriteRemoved},
		{"mustwatch", "added", EventMustWatchAdded},
		{"mustwatch", "removed", EventMustWatchRemoved},
		{"watched", "added", ""},
		{"favorites", "renamed", ""},
	}
	for _, tt := range tests {
		t.Run(tt.list+"/"+tt.op, func(t *testing.T) {
			assert.Equal(t, tt.want, ListEventType(tt.list, tt.op))
		})
	}
}

func TestNewListChanged_Payload(t *testing.T) {
	e := NewListChanged("mustwatch", "added", 157336)

	assert.Equal(t, EventMustWatchAdded, e.EventType())
	assert.Equal(t, int64(157336), e.EntityID())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"list":"mustwatch"`)
	assert.Contains(t, string(data), `"movie_id":157336`)
	assert.Contains(t, string(data), `"type":"mustwatch.added"`)
}
