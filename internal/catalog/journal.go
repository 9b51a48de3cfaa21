package catalog

import (
	"slices"
	"sync"

	"github.com/vmunix/cinelist/internal/tmdb"
)

// journal keeps reviews submitted during this process. TMDB has no endpoint
// for review text, so these are merged into the remote reviews on read.
type journal struct {
	mu      sync.RWMutex
	byMovie map[int64][]tmdb.Review
	count   int
}

func newJournal() *journal {
	return &journal{byMovie: make(map[int64][]tmdb.Review)}
}

func (j *journal) add(r tmdb.Review) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byMovie[r.MovieID] = append(j.byMovie[r.MovieID], r)
	j.count++
}

func (j *journal) forMovie(id int64) []tmdb.Review {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.byMovie[id])
}

func (j *journal) len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.count
}
