// Package web renders the catalogue as server-side HTML pages.
//
// Routes:
//
//	GET  /                       popular movies (?page, ?title, ?genre)
//	GET  /movies/upcoming        upcoming movies (same parameters)
//	GET  /movies/favorites       favorites and must-watch lists
//	GET  /movies/{id}            movie detail
//	GET  /reviews/{id}           reviews of a movie
//	GET  /reviews/form           review form (?movie)
//	POST /reviews/form           submit a review
//	POST /movies/{id}/favorite   and unfavorite, mustwatch, unmustwatch
//
// Every other path redirects to /. Actions redirect back to the referring
// page.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/tmdb"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the HTML pages.
type Handler struct {
	svc       *catalog.Service
	log       *slog.Logger
	imageBase string
	pages     map[string]*template.Template
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithImageBaseURL sets the prefix for poster URLs.
func WithImageBaseURL(u string) Option {
	return func(h *Handler) { h.imageBase = u }
}

// New parses the page templates and returns a Handler.
func New(svc *catalog.Service, opts ...Option) (*Handler, error) {
	h := &Handler{svc: svc, imageBase: tmdb.DefaultImageBaseURL}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	funcs := template.FuncMap{
		"poster": h.posterURL,
		"year":   year,
		"date":   func(t time.Time) string { return t.Format("2 Jan 2006") },
		"rating": func(r float64) string { return strconv.FormatFloat(r, 'f', -1, 64) },
	}
	h.pages = make(map[string]*template.Template)
	for _, name := range []string{"list", "movie", "favorites", "reviews", "form", "error"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		h.pages[name] = t
	}
	return h, nil
}

// RegisterRoutes registers the page routes, including the catch-all
// redirect, on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.popular)
	mux.HandleFunc("GET /movies/upcoming", h.upcoming)
	mux.HandleFunc("GET /movies/favorites", h.favorites)
	mux.HandleFunc("GET /movies/{id}", h.movie)
	mux.HandleFunc("GET /reviews/form", h.reviewForm)
	mux.HandleFunc("POST /reviews/form", h.submitReview)
	mux.HandleFunc("GET /reviews/{id}", h.reviews)

	mux.HandleFunc("POST /movies/{id}/favorite", h.action(h.addFavorite))
	mux.HandleFunc("POST /movies/{id}/unfavorite", h.action(h.removeFavorite))
	mux.HandleFunc("POST /movies/{id}/mustwatch", h.action(h.addMustWatch))
	mux.HandleFunc("POST /movies/{id}/unmustwatch", h.action(h.removeMustWatch))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
}

type page struct {
	Title  string
	Active string
}

type listPage struct {
	page
	List    *catalog.ListView
	Genres  []tmdb.Genre
	PrevURL string
	NextURL string
}

func (h *Handler) popular(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "popular", h.svc.Popular)
}

func (h *Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "upcoming", h.svc.Upcoming)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, active string,
	fetch func(ctx context.Context, page int, f catalog.Filter) (*catalog.ListView, error)) {
	q := r.URL.Query()
	pageNum := queryInt(q, "page", 1)
	filter := catalog.Filter{
		Title: strings.TrimSpace(q.Get("title")),
		Genre: queryInt(q, "genre", 0),
	}

	view, err := fetch(r.Context(), pageNum, filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	genres, err := h.svc.Genres(r.Context())
	if err != nil {
		// The list is still useful without the genre picker
		h.log.Warn("genres unavailable", "error", err)
	}

	data := listPage{
		page:   page{Title: view.Title, Active: active},
		List:   view,
		Genres: genres,
	}
	if view.Page > 1 {
		data.PrevURL = pageURL(q, view.Page-1)
	}
	if view.Page < view.TotalPages {
		data.NextURL = pageURL(q, view.Page+1)
	}
	h.render(w, r, http.StatusOK, "list", data)
}

type moviePage struct {
	page
	Movie *catalog.MovieView
}

func (h *Handler) movie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Movie(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "movie", moviePage{page: page{Title: m.Title}, Movie: m})
}

type favoritesPage struct {
	page
	Favorites []catalog.MovieView
	MustWatch []catalog.MovieView
}

func (h *Handler) favorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.svc.FavoriteMovies(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	must, err := h.svc.MustWatchMovies(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "favorites", favoritesPage{
		page:      page{Title: "My Lists", Active: "favorites"},
		Favorites: favs,
		MustWatch: must,
	})
}

type reviewsPage struct {
	page
	Movie   *catalog.MovieView
	Reviews *catalog.ReviewsView
}

func (h *Handler) reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := movieID(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Movie(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	rv, err := h.svc.Reviews(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "reviews", reviewsPage{
		page:    page{Title: "Reviews of " + m.Title},
		Movie:   m,
		Reviews: rv,
	})
}

type formPage struct {
	page
	Input  catalog.ReviewInput
	Errors map[string]string
}

func (h *Handler) reviewForm(w http.ResponseWriter, r *http.Request) {
	in := catalog.ReviewInput{MovieID: int64(queryInt(r.URL.Query(), "movie", 0))}
	h.render(w, r, http.StatusOK, "form", formPage{page: page{Title: "Write a review"}, Input: in})
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	movie, _ := strconv.ParseInt(r.PostForm.Get("movie_id"), 10, 64)
	rating, _ := strconv.ParseFloat(r.PostForm.Get("rating"), 64)
	in := catalog.ReviewInput{
		MovieID: movie,
		Author:  r.PostForm.Get("author"),
		Content: r.PostForm.Get("content"),
		Rating:  rating,
	}

	review, err := h.svc.SubmitReview(r.Context(), in)
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		h.render(w, r, http.StatusBadRequest, "form", formPage{
			page:   page{Title: "Write a review"},
			Input:  in,
			Errors: verr.Fields,
		})
		return
	case err != nil:
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/reviews/"+strconv.FormatInt(review.MovieID, 10), http.StatusSeeOther)
}

// action wraps a list mutation: on success the client goes back to where it
// came from; on failure the error page is shown and nothing changed.
func (h *Handler) action(fn func(r *http.Request, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := movieID(w, r)
		if !ok {
			return
		}
		if err := fn(r, id); err != nil {
			h.renderError(w, r, err)
			return
		}
		http.Redirect(w, r, backTo(r), http.StatusSeeOther)
	}
}

func (h *Handler) addFavorite(r *http.Request, id int64) error {
	_, err := h.svc.AddFavorite(r.Context(), id)
	return err
}

func (h *Handler) removeFavorite(_ *http.Request, id int64) error {
	h.svc.RemoveFavorite(id)
	return nil
}

func (h *Handler) addMustWatch(r *http.Request, id int64) error {
	_, err := h.svc.AddMustWatch(r.Context(), id)
	return err
}

func (h *Handler) removeMustWatch(_ *http.Request, id int64) error {
	h.svc.RemoveMustWatch(id)
	return nil
}

type errorPage struct {
	page
	Status  int
	Message string
}

// renderError shows a gateway failure: 404 when TMDB does not know the
// movie, 502 for any other upstream failure.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	title := "Movie service unavailable"
	if errors.Is(err, tmdb.ErrNotFound) {
		status = http.StatusNotFound
		title = "Movie not found"
	}
	h.log.Warn("page failed", "path", r.URL.Path, "status", status, "error", err)
	h.render(w, r, status, "error", errorPage{
		page:    page{Title: title},
		Status:  status,
		Message: err.Error(),
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.Error("render failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) posterURL(path, size string) string {
	return tmdb.ImageURL(h.imageBase, size, path)
}

// movieID reads the {id} path value. Anything that is not a positive
// integer is not a movie route, so the client is sent home.
func movieID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Redirect(w, r, "/", http.StatusFound)
		return 0, false
	}
	return id, true
}

// backTo returns the local part of the Referer, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	back := ref.EscapedPath()
	if ref.RawQuery != "" {
		back += "?" + ref.RawQuery
	}
	return back
}

func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// pageURL is the current query with page replaced, as a relative URL.
func pageURL(q url.Values, page int) string {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("page", strconv.Itoa(page))
	return "?" + out.Encode()
}

func year(date string) string {
	m := tmdb.Movie{ReleaseDate: date}
	if y := m.Year(); y > 0 {
		return strconv.Itoa(y)
	}
	return ""
}
