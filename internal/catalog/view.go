package catalog

import (
	"github.com/vmunix/cinelist/internal/favorites"
	"github.com/vmunix/cinelist/internal/tmdb"
	"github.com/vmunix/cinelist/pkg/titlematch"
)

// MovieView is a movie decorated with its list membership at read time.
type MovieView struct {
	tmdb.Movie
	Favorite  bool `json:"favorite"`
	MustWatch bool `json:"must_watch"`
}

// ListView is one page of a movie list after filtering.
type ListView struct {
	Title        string      `json:"title"`
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Filter       Filter      `json:"filter"`
	Movies       []MovieView `json:"movies"`
}

// Filter narrows a list page by title text and genre.
type Filter struct {
	Title string `json:"title,omitempty"`
	Genre int    `json:"genre,omitempty"` // 0 matches any genre
}

// IsZero reports whether the filter lets every movie through.
func (f Filter) IsZero() bool {
	return f.Title == "" && f.Genre == 0
}

// apply returns the movies of page that pass f. A title query orders them
// best match first; otherwise page order is kept.
func (f Filter) apply(page []tmdb.Movie) []*tmdb.Movie {
	out := make([]*tmdb.Movie, 0, len(page))
	titles := make([]string, 0, len(page))
	for i := range page {
		if f.Genre != 0 && !page[i].HasGenre(f.Genre) {
			continue
		}
		out = append(out, &page[i])
		titles = append(titles, page[i].Title)
	}
	if f.Title == "" {
		return out
	}
	ranked := titlematch.Rank(f.Title, titles)
	matched := make([]*tmdb.Movie, len(ranked))
	for i, r := range ranked {
		matched[i] = out[r.Index]
	}
	return matched
}

func decorate(store *favorites.Store, m tmdb.Movie) MovieView {
	return MovieView{
		Movie:     m,
		Favorite:  store.IsFavorite(m.ID),
		MustWatch: store.IsMustWatch(m.ID),
	}
}
