// Package favorites holds the session's favorite and must-watch movie lists.
//
// A Store owns two independent sets of movie ids. All mutation goes through
// its methods; every read observes the most recent completed mutation.
// State lives in memory only and is gone when the process exits.
package favorites

import (
	"slices"
	"sync"
)

// List names one of the two sets.
type List string

const (
	ListFavorites List = "favorites"
	ListMustWatch List = "mustwatch"
)

// Op is the kind of mutation carried by a Change.
type Op string

const (
	OpAdded   Op = "added"
	OpRemoved Op = "removed"
)

// Movie is anything that carries a movie id. Only the id is retained.
type Movie interface {
	MovieID() int64
}

// ID adapts a bare movie id to Movie.
type ID int64

// MovieID implements Movie.
func (id ID) MovieID() int64 { return int64(id) }

// Change describes one mutation that altered a set.
type Change struct {
	List    List
	Op      Op
	MovieID int64
}

// Notifier is told about every mutation that changed a set.
type Notifier interface {
	Notify(Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Change)

// Notify implements Notifier.
func (f NotifierFunc) Notify(c Change) { f(c) }

// State is a consistent snapshot of both sets, each sorted ascending.
type State struct {
	Favorites []int64 `json:"favorites"`
	MustWatch []int64 `json:"must_watch"`
}

// Store is the favorites state container.
type Store struct {
	// notifyMu orders delivery: it is taken before mu and held while
	// notifiers run, so Changes arrive in mutation order.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	favorites map[int64]struct{}
	mustWatch map[int64]struct{}
	notifiers []Notifier
}

// NewStore creates an empty store. Notifiers are called after each
// mutation that changed a set, outside the lock guarding the sets, one
// mutation at a time. A notifier may read the store but must not mutate it.
func NewStore(notifiers ...Notifier) *Store {
	return &Store{
		favorites: make(map[int64]struct{}),
		mustWatch: make(map[int64]struct{}),
		notifiers: notifiers,
	}
}

// AddToFavorites marks m as a favorite. Adding a movie that is already a
// favorite changes nothing. Reports whether the set changed.
func (s *Store) AddToFavorites(m Movie) bool {
	return s.mutate(ListFavorites, OpAdded, m.MovieID())
}

// RemoveFromFavorites unmarks m. Removing an absent movie changes nothing.
func (s *Store) RemoveFromFavorites(m Movie) bool {
	return s.mutate(ListFavorites, OpRemoved, m.MovieID())
}

// AddToMustWatch marks m as must-watch.
func (s *Store) AddToMustWatch(m Movie) bool {
	return s.mutate(ListMustWatch, OpAdded, m.MovieID())
}

// RemoveFromMustWatch unmarks m as must-watch.
func (s *Store) RemoveFromMustWatch(m Movie) bool {
	return s.mutate(ListMustWatch, OpRemoved, m.MovieID())
}

// IsFavorite reports whether id is in the favorites set.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[id]
	return ok
}

// IsMustWatch reports whether id is in the must-watch set.
func (s *Store) IsMustWatch(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.mustWatch[id]
	return ok
}

// Favorites returns the favorite ids, sorted ascending.
func (s *Store) Favorites() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.favorites)
}

// MustWatch returns the must-watch ids, sorted ascending.
func (s *Store) MustWatch() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.mustWatch)
}

// IDs returns the ids of the named list.
func (s *Store) IDs(l List) []int64 {
	if l == ListMustWatch {
		return s.MustWatch()
	}
	return s.Favorites()
}

// Snapshot returns both sets as of the same instant.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Favorites: sortedIDs(s.favorites),
		MustWatch: sortedIDs(s.mustWatch),
	}
}

func (s *Store) mutate(l List, op Op, id int64) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	set := s.favorites
	if l == ListMustWatch {
		set = s.mustWatch
	}
	_, present := set[id]
	changed := false
	switch {
	case op == OpAdded && !present:
		set[id] = struct{}{}
		changed = true
	case op == OpRemoved && present:
		delete(set, id)
		changed = true
	}
	s.mu.Unlock()

	if changed {
		c := Change{List: l, Op: op, MovieID: id}
		for _, n := range s.notifiers {
			n.Notify(c)
		}
	}
	return changed
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
