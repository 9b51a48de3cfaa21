// Package catalog is the page data layer: it binds logical queries to the
// TMDB gateway through the query cache and decorates movies with their
// favorites and must-watch membership.
package catalog

//go:generate mockgen -source=gateway.go -destination=mocks/mock_gateway.go -package=mocks

import (
	"context"

	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/tmdb"
)

// Gateway is the remote movie service. *tmdb.Client implements it.
type Gateway interface {
	Popular(ctx context.Context, page int) (*tmdb.MoviePage, error)
	Upcoming(ctx context.Context, page int) (*tmdb.MoviePage, error)
	GetMovie(ctx context.Context, id int64) (*tmdb.Movie, error)
	Reviews(ctx context.Context, id int64, page int) (*tmdb.ReviewPage, error)
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	AddReview(ctx context.Context, r tmdb.Review) error
}

// Publisher receives catalogue events. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

var _ Gateway = (*tmdb.Client)(nil)
