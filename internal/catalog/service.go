package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/favorites"
	"github.com/vmunix/cinelist/internal/querycache"
	"github.com/vmunix/cinelist/internal/tmdb"
)

// maxParallelLookups bounds the movie lookups issued for one listing.
const maxParallelLookups = 8

// Service serves page data. Movie records come from the gateway through
// the cache; membership flags come from the store at read time.
type Service struct {
	gateway Gateway
	cache   *querycache.Cache
	store   *favorites.Store
	journal *journal
	pub     Publisher
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends review events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the review id source (for testing).
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a Service.
func New(gw Gateway, cache *querycache.Cache, store *favorites.Store, opts ...Option) *Service {
	s := &Service{
		gateway: gw,
		cache:   cache,
		store:   store,
		journal: newJournal(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Store returns the favorites store the service decorates with.
func (s *Service) Store() *favorites.Store { return s.store }

// Popular returns a page of popular movies.
func (s *Service) Popular(ctx context.Context, page int, f Filter) (*ListView, error) {
	return s.list(ctx, "Popular Movies", "popular", page, f, s.gateway.Popular)
}

// Upcoming returns a page of upcoming movies.
func (s *Service) Upcoming(ctx context.Context, page int, f Filter) (*ListView, error) {
	return s.list(ctx, "Upcoming Movies", "upcoming", page, f, s.gateway.Upcoming)
}

func (s *Service) list(ctx context.Context, title, query string, page int, f Filter,
	fetch func(context.Context, int) (*tmdb.MoviePage, error)) (*ListView, error) {
	if page < 1 {
		page = 1
	}
	p, err := querycache.Get(ctx, s.cache, querycache.Key(query, page), func(ctx context.Context) (*tmdb.MoviePage, error) {
		return fetch(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	view := &ListView{
		Title:        title,
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Filter:       f,
		Movies:       make([]MovieView, 0, len(p.Results)),
	}
	if f.IsZero() {
		for _, m := range p.Results {
			view.Movies = append(view.Movies, decorate(s.store, m))
		}
		return view, nil
	}
	for _, m := range f.apply(p.Results) {
		view.Movies = append(view.Movies, decorate(s.store, *m))
	}
	return view, nil
}

// Movie returns the detail view of one movie.
func (s *Service) Movie(ctx context.Context, id int64) (*MovieView, error) {
	m, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	v := decorate(s.store, *m)
	return &v, nil
}

func (s *Service) lookup(ctx context.Context, id int64) (*tmdb.Movie, error) {
	return querycache.Get(ctx, s.cache, querycache.Key("movie", id), func(ctx context.Context) (*tmdb.Movie, error) {
		return s.gateway.GetMovie(ctx, id)
	})
}

// FavoriteMovies resolves the favorites set to movies, ordered by id.
func (s *Service) FavoriteMovies(ctx context.Context) ([]MovieView, error) {
	return s.resolve(ctx, s.store.Favorites())
}

// MustWatchMovies resolves the must-watch set to movies, ordered by id.
func (s *Service) MustWatchMovies(ctx context.Context) ([]MovieView, error) {
	return s.resolve(ctx, s.store.MustWatch())
}

// resolve looks up ids in parallel. The first failure fails the listing.
func (s *Service) resolve(ctx context.Context, ids []int64) ([]MovieView, error) {
	out := make([]MovieView, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, id := range ids {
		g.Go(func() error {
			m, err := s.lookup(gctx, id)
			if err != nil {
				return fmt.Errorf("movie %d: %w", id, err)
			}
			out[i] = decorate(s.store, *m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AddFavorite marks the movie as a favorite once the gateway knows it.
// On a lookup failure the store is left untouched.
func (s *Service) AddFavorite(ctx context.Context, id int64) (bool, error) {
	m, err := s.lookup(ctx, id)
	if err != nil {
		return false, err
	}
	return s.store.AddToFavorites(m), nil
}

// RemoveFavorite unmarks the movie.
func (s *Service) RemoveFavorite(id int64) bool {
	return s.store.RemoveFromFavorites(favorites.ID(id))
}

// AddMustWatch marks the movie as must-watch once the gateway knows it.
func (s *Service) AddMustWatch(ctx context.Context, id int64) (bool, error) {
	m, err := s.lookup(ctx, id)
	if err != nil {
		return false, err
	}
	return s.store.AddToMustWatch(m), nil
}

// RemoveMustWatch unmarks the movie as must-watch.
func (s *Service) RemoveMustWatch(id int64) bool {
	return s.store.RemoveFromMustWatch(favorites.ID(id))
}

// ReviewsView holds every known review of a movie, newest first.
type ReviewsView struct {
	MovieID int64         `json:"movie_id"`
	Reviews []tmdb.Review `json:"reviews"`
	Remote  int           `json:"remote"`
	Session int           `json:"session"`
}

// Reviews merges TMDB reviews with the ones submitted this session.
func (s *Service) Reviews(ctx context.Context, movieID int64) (*ReviewsView, error) {
	p, err := querycache.Get(ctx, s.cache, querycache.Key("reviews", movieID), func(ctx context.Context) (*tmdb.ReviewPage, error) {
		return s.gateway.Reviews(ctx, movieID, 1)
	})
	if err != nil {
		return nil, err
	}

	local := s.journal.forMovie(movieID)
	all := make([]tmdb.Review, 0, len(local)+len(p.Results))
	all = append(all, local...)
	all = append(all, p.Results...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	return &ReviewsView{
		MovieID: movieID,
		Reviews: all,
		Remote:  len(p.Results),
		Session: len(local),
	}, nil
}

// SubmitReview validates in, sends the rating to TMDB and records the
// review. Without a guest session the review is kept locally only.
func (s *Service) SubmitReview(ctx context.Context, in ReviewInput) (*tmdb.Review, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.lookup(ctx, in.MovieID); err != nil {
		return nil, err
	}

	r := tmdb.Review{
		ID:        s.newID(),
		MovieID:   in.MovieID,
		Author:    in.Author,
		Content:   in.Content,
		Rating:    in.Rating,
		CreatedAt: s.now().UTC(),
	}
	if err := s.gateway.AddReview(ctx, r); err != nil {
		if !errors.Is(err, tmdb.ErrNoGuestSession) {
			return nil, fmt.Errorf("submit review: %w", err)
		}
		s.log.Debug("no guest session, review kept locally", "movie_id", r.MovieID)
	}

	s.journal.add(r)
	s.cache.Invalidate(querycache.Key("reviews", r.MovieID))
	s.log.Info("review submitted", "movie_id", r.MovieID, "review_id", r.ID)

	if s.pub != nil {
		e := &events.ReviewSubmitted{
			BaseEvent: events.NewBaseEvent(events.EventReviewSubmitted, events.EntityMovie, r.MovieID),
			ReviewID:  r.ID,
			MovieID:   r.MovieID,
			Author:    r.Author,
			Rating:    r.Rating,
		}
		if err := s.pub.Publish(ctx, e); err != nil {
			s.log.Warn("failed to publish review event", "review_id", r.ID, "error", err)
		}
	}
	return &r, nil
}

// Genres returns the movie genres.
func (s *Service) Genres(ctx context.Context) ([]tmdb.Genre, error) {
	return querycache.Get(ctx, s.cache, querycache.Key("genres"), s.gateway.Genres)
}

// Stats summarizes session state for status reporting.
type Stats struct {
	CachedQueries int `json:"cached_queries"`
	Favorites     int `json:"favorites"`
	MustWatch     int `json:"must_watch"`
	Reviews       int `json:"session_reviews"`
}

// Stats returns the current counts.
func (s *Service) Stats() Stats {
	snap := s.store.Snapshot()
	return Stats{
		CachedQueries: s.cache.Len(),
		Favorites:     len(snap.Favorites),
		MustWatch:     len(snap.MustWatch),
		Reviews:       s.journal.len(),
	}
}
