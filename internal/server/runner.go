// Package server runs the daemon's long-lived components.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/querycache"
)

// DefaultShutdownTimeout bounds how long in-flight requests may take to
// finish once shutdown starts.
const DefaultShutdownTimeout = 30 * time.Second

// Config for the runner.
type Config struct {
	Addr            string
	RefetchInterval time.Duration // 0 disables background refetch
	EventRetention  time.Duration // 0 keeps every event for the session
	ShutdownTimeout time.Duration
}

// EventRecorder is told about catalogue events seen on the bus.
type EventRecorder interface {
	ObserveListChange(list, op string)
	ObserveReview()
}

// Deps are the components the runner drives. Only Handler is required.
type Deps struct {
	Handler  http.Handler
	Cache    *querycache.Cache
	Bus      *events.Bus
	EventLog *events.EventLog
	Recorder EventRecorder
}

// Runner manages the HTTP server and its background loops.
type Runner struct {
	config Config
	deps   Deps
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, deps Deps, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Runner{
		config: cfg,
		deps:   deps,
		logger: logger,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return err
	}
	return r.Serve(ctx, ln)
}

// Serve runs every component on ln. It blocks until ctx is canceled or a
// component fails, then shuts the rest down.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           r.deps.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		r.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		r.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if r.deps.Cache != nil && r.config.RefetchInterval > 0 {
		g.Go(func() error {
			r.maintain(ctx)
			return nil
		})
	}

	if r.deps.Bus != nil && r.deps.Recorder != nil {
		ch := r.deps.Bus.SubscribeAll(100)
		g.Go(func() error {
			defer r.deps.Bus.Unsubscribe(ch)
			r.record(ctx, ch)
			return nil
		})
	}

	err := g.Wait()
	if r.deps.Cache != nil {
		r.deps.Cache.Wait()
	}
	return err
}

// maintain refetches and prunes on every tick.
func (r *Runner) maintain(ctx context.Context) {
	ticker := time.NewTicker(r.config.RefetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refetched := r.deps.Cache.Refetch(ctx)
			pruned := r.deps.Cache.Prune()
			if refetched > 0 || pruned > 0 {
				r.logger.Debug("cache maintenance", "refetched", refetched, "pruned", pruned)
			}
			if r.deps.EventLog != nil && r.config.EventRetention > 0 {
				if _, err := r.deps.EventLog.Prune(ctx, r.config.EventRetention); err != nil && ctx.Err() == nil {
					r.logger.Warn("event log prune failed", "error", err)
				}
			}
		}
	}
}

func (r *Runner) record(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			switch e := e.(type) {
			case *events.ListChanged:
				r.deps.Recorder.ObserveListChange(e.List, e.Op)
			case *events.ReviewSubmitted:
				r.deps.Recorder.ObserveReview()
			}
		}
	}
}
