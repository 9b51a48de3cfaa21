package events

import (
	"fmt"
	"strconv"
)

// Entity types
const (
	EntityMovie  = "movie"
	EntityReview = "review"
)

// Event type constants
const (
	EventFavoriteAdded    = "favorite.added"
	EventFavoriteRemoved  = "favorite.removed"
	EventMustWatchAdded   = "mustwatch.added"
	EventMustWatchRemoved = "mustwatch.removed"
	EventReviewSubmitted  = "review.submitted"
)

// ListChanged is emitted when a movie enters or leaves the favorites or
// must-watch list. Entity is the movie.
type ListChanged struct {
	BaseEvent
	MovieID int64  `json:"movie_id"`
	List    string `json:"list"` // "favorites" or "mustwatch"
	Op      string `json:"op"`   // "added" or "removed"
}

// ReviewSubmitted is emitted after a review was accepted. Entity is the
// reviewed movie; the review itself is identified by ReviewID.
type ReviewSubmitted struct {
	BaseEvent
	ReviewID string  `json:"review_id"`
	MovieID  int64   `json:"movie_id"`
	Author   string  `json:"author"`
	Rating   float64 `json:"rating"`
}

// ListEventType maps a list name and operation to its event type.
// Returns "" for unknown combinations.
func ListEventType(list, op string) string {
	switch {
	case list == "favorites" && op == "added":
		return EventFavoriteAdded
	case list == "favorites" && op == "removed":
		return EventFavoriteRemoved
	case list == "mustwatch" && op == "added":
		return EventMustWatchAdded
	case list == "mustwatch" && op == "removed":
		return EventMustWatchRemoved
	default:
		return ""
	}
}

// NewListChanged builds the event for one list mutation.
func NewListChanged(list, op string, movieID int64) *ListChanged {
	return &ListChanged{
		BaseEvent: NewBaseEvent(ListEventType(list, op), EntityMovie, movieID),
		MovieID:   movieID,
		List:      list,
		Op:        op,
	}
}

// Summary implements Summarizer.
func (e *ListChanged) Summary() string {
	if e.Op == "removed" {
		return fmt.Sprintf("removed %d from %s", e.MovieID, e.List)
	}
	return fmt.Sprintf("added %d to %s", e.MovieID, e.List)
}

// Summary implements Summarizer.
func (e *ReviewSubmitted) Summary() string {
	return fmt.Sprintf("%s reviewed %d (%s)", e.Author, e.MovieID, strconv.FormatFloat(e.Rating, 'f', -1, 64))
}
