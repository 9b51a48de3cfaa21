package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmunix/cinelist/internal/events"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	// Validate pagination parameters
	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	recorded, total, err := s.deps.EventLog.Recent(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Items:  s.toEventResponses(recorded),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) listMovieEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	recorded, err := s.deps.EventLog.ForEntity(r.Context(), events.EntityMovie, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Items:  s.toEventResponses(recorded),
		Total:  len(recorded),
		Limit:  len(recorded),
		Offset: 0,
	})
}

func (s *Server) toEventResponses(recorded []events.RawEvent) []EventResponse {
	out := make([]EventResponse, len(recorded))
	for i, e := range recorded {
		out[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Summary:    s.registry.Summary(e),
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		}
		if json.Valid([]byte(e.Payload)) {
			out[i].Payload = json.RawMessage(e.Payload)
		}
	}
	return out
}
