package v1

import (
	"encoding/json"

	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/tmdb"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// listMoviesResponse is the response for GET /favorites and GET /mustwatch.
type listMoviesResponse struct {
	Items []catalog.MovieView `json:"items"`
	Total int                 `json:"total"`
}

// membershipResponse is returned by PUT and DELETE on a list member.
type membershipResponse struct {
	List    string  `json:"list"`
	MovieID int64   `json:"movie_id"`
	Changed bool    `json:"changed"`
	IDs     []int64 `json:"ids"`
}

// reviewRequest is the body of POST /movies/{id}/reviews.
type reviewRequest struct {
	Author  string  `json:"author"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

type genresResponse struct {
	Genres []tmdb.Genre `json:"genres"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version,omitempty"`
	StartedAt string        `json:"started_at"`
	Uptime    string        `json:"uptime"`
	Stats     catalog.Stats `json:"stats"`
}

// EventResponse is the API representation of a recorded event.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
