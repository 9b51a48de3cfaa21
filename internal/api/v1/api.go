// Package v1 implements the native REST API.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/favorites"
	"github.com/vmunix/cinelist/internal/tmdb"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	log      *slog.Logger
	registry *events.Registry
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		deps:     deps,
		log:      log.With("component", "api"),
		registry: events.DefaultRegistry(),
	}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Movies
	mux.HandleFunc("GET /api/v1/movies/popular", s.listPopular)
	mux.HandleFunc("GET /api/v1/movies/upcoming", s.listUpcoming)
	mux.HandleFunc("GET /api/v1/movies/{id}", s.getMovie)
	mux.HandleFunc("GET /api/v1/movies/{id}/reviews", s.listReviews)
	mux.HandleFunc("POST /api/v1/movies/{id}/reviews", s.submitReview)
	mux.HandleFunc("GET /api/v1/movies/{id}/events", s.requireEventLog(s.listMovieEvents))
	mux.HandleFunc("GET /api/v1/genres", s.listGenres)

	// Lists
	mux.HandleFunc("GET /api/v1/favorites", s.listFavorites)
	mux.HandleFunc("PUT /api/v1/favorites/{id}", s.addFavorite)
	mux.HandleFunc("DELETE /api/v1/favorites/{id}", s.removeFavorite)
	mux.HandleFunc("GET /api/v1/mustwatch", s.listMustWatch)
	mux.HandleFunc("PUT /api/v1/mustwatch/{id}", s.addMustWatch)
	mux.HandleFunc("DELETE /api/v1/mustwatch/{id}", s.removeMustWatch)

	// System
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("/api/", s.notFound)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a catalog error onto a status code.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  verr.Error(),
			Code:   "INVALID_REQUEST",
			Fields: verr.Fields,
		})
	case errors.Is(err, tmdb.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
	default:
		s.log.Warn("upstream request failed", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	}
}

// pathID extracts a positive integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, idStr)
	}
	return id, nil
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func filterFrom(r *http.Request) catalog.Filter {
	return catalog.Filter{
		Title: r.URL.Query().Get("title"),
		Genre: queryInt(r, "genre", 0),
	}
}

func (s *Server) listPopular(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Catalog.Popular(r.Context(), queryInt(r, "page", 1), filterFrom(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) listUpcoming(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Catalog.Upcoming(r.Context(), queryInt(r, "page", 1), filterFrom(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	m, err := s.deps.Catalog.Movie(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	view, err := s.deps.Catalog.Reviews(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	review, err := s.deps.Catalog.SubmitReview(r.Context(), catalog.ReviewInput{
		MovieID: id,
		Author:  req.Author,
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.deps.Catalog.Genres(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genresResponse{Genres: genres})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	movies, err := s.deps.Catalog.FavoriteMovies(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listMoviesResponse{Items: movies, Total: len(movies)})
}

func (s *Server) listMustWatch(w http.ResponseWriter, r *http.Request) {
	movies, err := s.deps.Catalog.MustWatchMovies(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listMoviesResponse{Items: movies, Total: len(movies)})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, favorites.ListFavorites, s.deps.Catalog.AddFavorite)
}

func (s *Server) addMustWatch(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, favorites.ListMustWatch, s.deps.Catalog.AddMustWatch)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, favorites.ListFavorites, func(_ context.Context, id int64) (bool, error) {
		return s.deps.Catalog.RemoveFavorite(id), nil
	})
}

func (s *Server) removeMustWatch(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, favorites.ListMustWatch, func(_ context.Context, id int64) (bool, error) {
		return s.deps.Catalog.RemoveMustWatch(id), nil
	})
}

// mutate applies op to the movie named in the path and replies with the
// list's ids afterwards. Repeating a request yields the same body.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, list favorites.List,
	op func(context.Context, int64) (bool, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	changed, err := op(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{
		List:    string(list),
		MovieID: id,
		Changed: changed,
		IDs:     s.deps.Catalog.Store().IDs(list),
	})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Version:   s.deps.Version,
		StartedAt: s.deps.Started.UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.deps.Started).Round(time.Second).String(),
		Stats:     s.deps.Catalog.Stats(),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "No such endpoint: "+r.Method+" "+r.URL.Path)
}
