package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/catalog/mocks"
	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/favorites"
	"github.com/vmunix/cinelist/internal/querycache"
	"github.com/vmunix/cinelist/internal/tmdb"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *catalog.Service
	gw    *mocks.MockGateway
	store *favorites.Store
	cache *querycache.Cache
}

func newFixture(t *testing.T, opts ...catalog.Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	store := favorites.NewStore()
	cache := querycache.New(
		querycache.WithRetry(0, time.Millisecond),
		querycache.WithLogger(testLogger()),
	)
	opts = append([]catalog.Option{
		catalog.WithLogger(testLogger()),
		catalog.WithClock(func() time.Time { return fixedNow }),
		catalog.WithIDGenerator(func() string { return "review-1" }),
	}, opts...)
	return &fixture{
		svc:   catalog.New(gw, cache, store, opts...),
		gw:    gw,
		store: store,
		cache: cache,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notFound() error {
	return &tmdb.RemoteFetchError{Status: 404, Message: "The resource you requested could not be found."}
}

func popularPage() *tmdb.MoviePage {
	return &tmdb.MoviePage{
		Page: 1,
		Results: []tmdb.Movie{
			{ID: 27205, Title: "Inception", GenreIDs: []int{28, 878}},
			{ID: 157336, Title: "Interstellar", GenreIDs: []int{18, 878}},
			{ID: 155, Title: "The Dark Knight", GenreIDs: []int{28, 80}},
		},
		TotalPages:   10,
		TotalResults: 200,
	}
}

func TestService_PopularDecoratesMembership(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().Popular(gomock.Any(), 1).Return(popularPage(), nil)

	f.store.AddToFavorites(favorites.ID(27205))
	f.store.AddToMustWatch(favorites.ID(155))

	view, err := f.svc.Popular(context.Background(), 0, catalog.Filter{})
	require.NoError(t, err)

	assert.Equal(t, "Popular Movies", view.Title)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 10, view.TotalPages)
	require.Len(t, view.Movies, 3)
	assert.True(t, view.Movies[0].Favorite)
	assert.False(t, view.Movies[0].MustWatch)
	assert.False(t, view.Movies[1].Favorite)
	assert.True(t, view.Movies[2].MustWatch)
}

func TestService_ListPagesAreCached(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().Upcoming(gomock.Any(), 2).Return(&tmdb.MoviePage{Page: 2}, nil).Times(1)

	for i := 0; i < 3; i++ {
		view, err := f.svc.Upcoming(context.Background(), 2, catalog.Filter{})
		require.NoError(t, err)
		assert.Equal(t, "Upcoming Movies", view.Title)
		assert.Equal(t, 2, view.Page)
	}
}

func TestService_MembershipReadAfterCaching(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().Popular(gomock.Any(), 1).Return(popularPage(), nil).Times(1)

	ctx := context.Background()
	_, err := f.svc.Popular(ctx, 1, catalog.Filter{})
	require.NoError(t, err)

	f.store.AddToFavorites(favorites.ID(157336))

	view, err := f.svc.Popular(ctx, 1, catalog.Filter{})
	require.NoError(t, err)
	assert.True(t, view.Movies[1].Favorite, "flags come from the store, not the cached page")
}

func TestService_PopularFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter catalog.Filter
		want   []int64
	}{
		{"title substring", catalog.Filter{Title: "dark"}, []int64{155}},
		{"title fuzzy", catalog.Filter{Title: "inceptoin"}, []int64{27205}},
		{"genre", catalog.Filter{Genre: 878}, []int64{27205, 157336}},
		{"genre and title", catalog.Filter{Title: "inter", Genre: 878}, []int64{157336}},
		{"no match", catalog.Filter{Genre: 99}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gw.EXPECT().Popular(gomock.Any(), 1).Return(popularPage(), nil)

			view, err := f.svc.Popular(context.Background(), 1, tt.filter)
			require.NoError(t, err)

			var got []int64
			for _, m := range view.Movies {
				got = append(got, m.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.filter, view.Filter)
		})
	}
}

func TestService_PopularGatewayError(t *testing.T) {
	f := newFixture(t)
	upstream := &tmdb.RemoteFetchError{Status: 503, Message: "Service Unavailable"}
	f.gw.EXPECT().Popular(gomock.Any(), 1).Return(nil, upstream)

	_, err := f.svc.Popular(context.Background(), 1, catalog.Filter{})
	var rfe *tmdb.RemoteFetchError
	require.ErrorAs(t, err, &rfe)
	assert.Equal(t, 503, rfe.Status)
}

func TestService_Movie(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(27205)).
		Return(&tmdb.Movie{ID: 27205, Title: "Inception", Runtime: 148}, nil)
	f.store.AddToMustWatch(favorites.ID(27205))

	v, err := f.svc.Movie(context.Background(), 27205)
	require.NoError(t, err)
	assert.Equal(t, "Inception", v.Title)
	assert.Equal(t, 148, v.Runtime)
	assert.True(t, v.MustWatch)
	assert.False(t, v.Favorite)
}

func TestService_UnknownMovieLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(999999999)).Return(nil, notFound()).AnyTimes()

	ctx := context.Background()
	_, err := f.svc.Movie(ctx, 999999999)
	require.ErrorIs(t, err, tmdb.ErrNotFound)

	changed, err := f.svc.AddFavorite(ctx, 999999999)
	require.ErrorIs(t, err, tmdb.ErrNotFound)
	assert.False(t, changed)

	changed, err = f.svc.AddMustWatch(ctx, 999999999)
	require.ErrorIs(t, err, tmdb.ErrNotFound)
	assert.False(t, changed)

	assert.Equal(t, favorites.State{Favorites: []int64{}, MustWatch: []int64{}}, f.store.Snapshot())
}

func TestService_AddAndRemoveFavorite(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(27205)).Return(&tmdb.Movie{ID: 27205}, nil).Times(1)

	ctx := context.Background()
	changed, err := f.svc.AddFavorite(ctx, 27205)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.AddFavorite(ctx, 27205)
	require.NoError(t, err)
	assert.False(t, changed, "second add is a no-op")
	assert.Equal(t, []int64{27205}, f.store.Favorites())

	// Removal needs no lookup
	assert.True(t, f.svc.RemoveFavorite(27205))
	assert.False(t, f.svc.RemoveFavorite(27205))
	assert.Empty(t, f.store.Favorites())
}

func TestService_AddAndRemoveMustWatch(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(550)).Return(&tmdb.Movie{ID: 550}, nil)

	changed, err := f.svc.AddMustWatch(context.Background(), 550)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, f.store.IsFavorite(550))

	assert.True(t, f.svc.RemoveMustWatch(550))
	assert.Empty(t, f.store.MustWatch())
}

func TestService_FavoriteMovies(t *testing.T) {
	f := newFixture(t)
	for _, id := range []int64{157336, 27205, 155} {
		f.gw.EXPECT().GetMovie(gomock.Any(), id).Return(&tmdb.Movie{ID: id}, nil)
		f.store.AddToFavorites(favorites.ID(id))
	}

	got, err := f.svc.FavoriteMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(155), got[0].ID)
	assert.Equal(t, int64(27205), got[1].ID)
	assert.Equal(t, int64(157336), got[2].ID)
	for _, m := range got {
		assert.True(t, m.Favorite)
	}
}

func TestService_FavoriteMoviesEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.MustWatchMovies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_MustWatchMoviesOneFailure(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(1)).Return(&tmdb.Movie{ID: 1}, nil).AnyTimes()
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(2)).Return(nil, notFound())
	f.store.AddToMustWatch(favorites.ID(1))
	f.store.AddToMustWatch(favorites.ID(2))

	_, err := f.svc.MustWatchMovies(context.Background())
	require.ErrorIs(t, err, tmdb.ErrNotFound)
	assert.Contains(t, err.Error(), "movie 2")
}

func TestService_Genres(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().Genres(gomock.Any()).Return([]tmdb.Genre{{ID: 28, Name: "Action"}}, nil).Times(1)

	for i := 0; i < 2; i++ {
		genres, err := f.svc.Genres(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []tmdb.Genre{{ID: 28, Name: "Action"}}, genres)
	}
}

func TestService_SubmitReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	f := newFixture(t, catalog.WithPublisher(pub))

	older := fixedNow.Add(-48 * time.Hour)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(27205)).Return(&tmdb.Movie{ID: 27205}, nil)
	f.gw.EXPECT().Reviews(gomock.Any(), int64(27205), 1).Return(&tmdb.ReviewPage{
		MovieID: 27205,
		Results: []tmdb.Review{{ID: "remote-1", MovieID: 27205, Author: "critic", CreatedAt: older}},
	}, nil).Times(2)
	f.gw.EXPECT().AddReview(gomock.Any(), tmdb.Review{
		ID:        "review-1",
		MovieID:   27205,
		Author:    "cobb",
		Content:   "Dreams within dreams, brilliantly done.",
		Rating:    9.5,
		CreatedAt: fixedNow,
	}).Return(nil)

	var published events.Event
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
		published = e
		return nil
	})

	ctx := context.Background()
	before, err := f.svc.Reviews(ctx, 27205)
	require.NoError(t, err)
	require.Len(t, before.Reviews, 1)

	r, err := f.svc.SubmitReview(ctx, catalog.ReviewInput{
		MovieID: 27205,
		Author:  "  cobb ",
		Content: "Dreams within dreams, brilliantly done.",
		Rating:  9.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "review-1", r.ID)
	assert.Equal(t, "cobb", r.Author)

	rs, ok := published.(*events.ReviewSubmitted)
	require.True(t, ok)
	assert.Equal(t, "review-1", rs.ReviewID)
	assert.Equal(t, events.EventReviewSubmitted, rs.EventType())

	after, err := f.svc.Reviews(ctx, 27205)
	require.NoError(t, err)
	f.cache.Wait()

	require.Len(t, after.Reviews, 2)
	assert.Equal(t, "review-1", after.Reviews[0].ID, "newest first")
	assert.Equal(t, "remote-1", after.Reviews[1].ID)
	assert.Equal(t, 1, after.Remote)
	assert.Equal(t, 1, after.Session)
	assert.Equal(t, 1, f.svc.Stats().Reviews)
}

func TestService_SubmitReviewWithoutGuestSession(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(1)).Return(&tmdb.Movie{ID: 1}, nil)
	f.gw.EXPECT().AddReview(gomock.Any(), gomock.Any()).Return(tmdb.ErrNoGuestSession)

	r, err := f.svc.SubmitReview(context.Background(), catalog.ReviewInput{
		MovieID: 1, Author: "a", Content: "long enough content", Rating: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, r.Rating)
	assert.Equal(t, 1, f.svc.Stats().Reviews)
}

func TestService_SubmitReviewGatewayError(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(1)).Return(&tmdb.Movie{ID: 1}, nil)
	f.gw.EXPECT().AddReview(gomock.Any(), gomock.Any()).
		Return(&tmdb.RemoteFetchError{Status: 401, Message: "Invalid API key"})

	_, err := f.svc.SubmitReview(context.Background(), catalog.ReviewInput{
		MovieID: 1, Author: "a", Content: "long enough content", Rating: 5,
	})
	require.Error(t, err)
	assert.True(t, tmdb.IsClientError(err))
	assert.Zero(t, f.svc.Stats().Reviews, "failed submission is not recorded")
}

func TestService_SubmitReviewUnknownMovie(t *testing.T) {
	f := newFixture(t)
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(42)).Return(nil, notFound())

	_, err := f.svc.SubmitReview(context.Background(), catalog.ReviewInput{
		MovieID: 42, Author: "a", Content: "long enough content", Rating: 5,
	})
	require.ErrorIs(t, err, tmdb.ErrNotFound)
}

func TestService_SubmitReviewInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitReview(context.Background(), catalog.ReviewInput{MovieID: 1, Author: "a", Content: "short", Rating: 5})
	require.ErrorIs(t, err, catalog.ErrInvalidReview)

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "content")
}

func TestEventNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	var got []events.Event
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	}).Times(2)

	store := favorites.NewStore(catalog.NewEventNotifier(pub, testLogger()))
	store.AddToFavorites(favorites.ID(27205))
	store.AddToFavorites(favorites.ID(27205))
	store.RemoveFromFavorites(favorites.ID(27205))

	require.Len(t, got, 2)
	assert.Equal(t, events.EventFavoriteAdded, got[0].EventType())
	assert.Equal(t, events.EventFavoriteRemoved, got[1].EventType())
	assert.Equal(t, int64(27205), got[1].EntityID())
}

func TestEventNotifier_PublishErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("bus down"))

	store := favorites.NewStore(catalog.NewEventNotifier(pub, testLogger()))
	assert.True(t, store.AddToMustWatch(favorites.ID(1)), "store mutation succeeds regardless")
}

func TestService_ConcurrentAddsShareLookup(t *testing.T) {
	f := newFixture(t)
	var calls atomic.Int32
	f.gw.EXPECT().GetMovie(gomock.Any(), int64(7)).DoAndReturn(func(context.Context, int64) (*tmdb.Movie, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &tmdb.Movie{ID: 7}, nil
	}).MinTimes(1)

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = f.svc.AddFavorite(context.Background(), 7)
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	assert.Equal(t, []int64{7}, f.store.Favorites())
	assert.LessOrEqual(t, calls.Load(), int32(5))
}
