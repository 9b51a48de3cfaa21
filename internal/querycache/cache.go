// Package querycache caches the results of keyed queries with a freshness
// window, single-flight deduplication and stale-while-revalidate reads.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime       = 360 * time.Second
	DefaultRefetchInterval = 360 * time.Second
	DefaultGCTime          = 5 * time.Minute
	DefaultRetries         = 3
	DefaultRetryDelay      = time.Second
	maxRetryDelay          = 30 * time.Second
)

// ErrTypeMismatch is returned by Get when a key holds a value of another type.
var ErrTypeMismatch = errors.New("cached value has unexpected type")

// Fetcher loads the value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Recorder receives exactly one call per Fetch with its outcome: "hit",
// "stale", "miss" (a blocking fetch that succeeded) or "error" (a blocking
// fetch that failed).
type Recorder interface {
	ObserveLookup(outcome string)
}

type entry struct {
	gen       uint64
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	lastRead  time.Time
	fetch     Fetcher
}

// Cache is a keyed query cache. The zero value is not usable; use New.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	group   singleflight.Group
	bg      sync.WaitGroup

	staleTime       time.Duration
	refetchInterval time.Duration
	gcTime          time.Duration
	retries         int
	retryDelay      time.Duration
	shouldRetry     func(error) bool
	now             func() time.Time
	log             *slog.Logger
	recorder        Recorder
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime sets how long fetched data counts as fresh.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithRefetchInterval sets the age after which Refetch reloads an entry.
func WithRefetchInterval(d time.Duration) Option {
	return func(c *Cache) { c.refetchInterval = d }
}

// WithGCTime sets how long an unread entry is kept before Prune drops it.
func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// WithRetry sets the number of retries after a failed fetch and the first
// backoff delay. Each further retry doubles the delay, up to 30s.
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Cache) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// WithShouldRetry installs a predicate that can veto retrying an error.
func WithShouldRetry(fn func(error) bool) Option {
	return func(c *Cache) { c.shouldRetry = fn }
}

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithRecorder reports lookup outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Cache) { c.recorder = r }
}

// New creates a cache with the given options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:         make(map[string]*entry),
		staleTime:       DefaultStaleTime,
		refetchInterval: DefaultRefetchInterval,
		gcTime:          DefaultGCTime,
		retries:         DefaultRetries,
		retryDelay:      DefaultRetryDelay,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Key builds a cache key from a query name and its parameters,
// e.g. Key("movie", 27205) == "movie:27205".
func Key(name string, params ...any) string {
	if len(params) == 0 {
		return name
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, name)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

// Fetch returns the value for key. Fresh data is returned as is. Stale data
// is returned immediately and refreshed in the background. Without data the
// call blocks on fn; concurrent callers for the same key share one call.
func (c *Cache) Fetch(ctx context.Context, key string, fn Fetcher) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{gen: c.nextGen()}
		c.entries[key] = e
	}
	now := c.now()
	e.lastRead = now
	e.fetch = fn
	gen := e.gen

	if e.hasData && e.err == nil && now.Sub(e.updatedAt) < c.staleTime {
		data := e.data
		c.mu.Unlock()
		c.observe("hit")
		c.log.Debug("cache hit", "key", key)
		return data, nil
	}
	if e.hasData {
		data := e.data
		c.mu.Unlock()
		c.observe("stale")
		c.log.Debug("cache stale, revalidating", "key", key)
		c.revalidate(ctx, key, gen, fn)
		return data, nil
	}
	c.mu.Unlock()

	c.log.Debug("cache miss", "key", key)
	v, err := c.load(ctx, key, gen, fn)
	if err != nil {
		c.observe("error")
		return nil, err
	}
	c.observe("miss")
	return v, nil
}

// Peek reports the current state of key without fetching.
func (c *Cache) Peek(key string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{Status: StatusPending}
	}
	return e.result(c.now(), c.staleTime)
}

// Invalidate marks key stale and supersedes any fetch already in flight for
// it: that fetch's result is handed to its waiting callers but not stored.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.gen = c.nextGen()
		e.updatedAt = time.Time{}
	}
}

// Remove drops key entirely.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of keys held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Refetch reloads every entry older than the refetch interval that was read
// within the GC window. It blocks until all reloads finish and returns the
// number of keys reloaded.
func (c *Cache) Refetch(ctx context.Context) int {
	type job struct {
		key string
		gen uint64
		fn  Fetcher
	}

	c.mu.Lock()
	now := c.now()
	var jobs []job
	for key, e := range c.entries {
		if e.fetch == nil || now.Sub(e.lastRead) >= c.gcTime {
			continue
		}
		if e.hasData && e.err == nil && now.Sub(e.updatedAt) < c.refetchInterval {
			continue
		}
		jobs = append(jobs, job{key: key, gen: e.gen, fn: e.fetch})
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.load(ctx, j.key, j.gen, j.fn); err != nil {
				c.log.Warn("refetch failed", "key", j.key, "error", err)
			}
		}()
	}
	wg.Wait()
	return len(jobs)
}

// Prune drops entries not read within the GC window and returns how many
// were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.lastRead) >= c.gcTime {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Wait blocks until background revalidations started so far have finished.
func (c *Cache) Wait() {
	c.bg.Wait()
}

func (c *Cache) nextGen() uint64 {
	c.seq++
	return c.seq
}

func (c *Cache) observe(outcome string) {
	if c.recorder != nil {
		c.recorder.ObserveLookup(outcome)
	}
}

// load runs fn once per key generation, whatever the number of callers.
// The shared call is detached from the caller's cancellation; a caller that
// gives up gets its own ctx error while the call completes for the others.
func (c *Cache) load(ctx context.Context, key string, gen uint64, fn Fetcher) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		v, err := c.run(detached, fn)
		c.store(key, gen, v, err)
		return v, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Cache) revalidate(ctx context.Context, key string, gen uint64, fn Fetcher) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		if _, err := c.load(context.WithoutCancel(ctx), key, gen, fn); err != nil {
			c.log.Warn("background revalidation failed", "key", key, "error", err)
		}
	}()
}

func (c *Cache) run(ctx context.Context, fn Fetcher) (any, error) {
	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= c.retries || !c.retryable(err) {
			return nil, err
		}
		c.log.Debug("fetch failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func (c *Cache) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.shouldRetry != nil {
		return c.shouldRetry(err)
	}
	return true
}

func (c *Cache) store(key string, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.gen != gen {
		c.log.Debug("discarding superseded result", "key", key)
		return
	}
	if err != nil {
		e.err = err
		return
	}
	e.data = v
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
}

// Get is Fetch with a typed result.
func Get[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}
