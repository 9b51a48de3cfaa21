package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/cinelist/internal/api/v1"
	"github.com/vmunix/cinelist/internal/catalog"
	"github.com/vmunix/cinelist/internal/config"
	"github.com/vmunix/cinelist/internal/events"
	"github.com/vmunix/cinelist/internal/favorites"
	"github.com/vmunix/cinelist/internal/metrics"
	"github.com/vmunix/cinelist/internal/querycache"
	"github.com/vmunix/cinelist/internal/server"
	"github.com/vmunix/cinelist/internal/tmdb"
	"github.com/vmunix/cinelist/internal/web"
)

// eventRetention is how long session events stay queryable.
const eventRetention = 24 * time.Hour

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger, m *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		elapsed := time.Since(start)
		if m != nil {
			m.ObserveHTTP(r.Method, wrapped.status, elapsed)
		}
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// app is the assembled daemon.
type app struct {
	handler http.Handler
	runner  *server.Runner
	service *catalog.Service
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newApp(cfg *config.Config, logger *slog.Logger, m *metrics.Collector) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// === Gateway + cache ===
	client := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.TMDB.Timeout}),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit),
		tmdb.WithGuestSession(cfg.TMDB.GuestSessionID),
		tmdb.WithObserver(m),
	)
	cache := querycache.New(
		querycache.WithStaleTime(cfg.Cache.StaleTime),
		querycache.WithRefetchInterval(cfg.Cache.RefetchInterval),
		querycache.WithRetry(cfg.Cache.RetryCount(), cfg.Cache.RetryDelay),
		// A 4xx answer will not change on retry
		querycache.WithShouldRetry(func(err error) bool { return !tmdb.IsClientError(err) }),
		querycache.WithLogger(logger.With("component", "cache")),
		querycache.WithRecorder(m),
	)

	// === Session event log ===
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open event db: %w", err)
	}
	// Every connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	a.closers = append(a.closers, db.Close)
	if _, err := db.Exec(events.Schema); err != nil {
		return nil, fmt.Errorf("create event schema: %w", err)
	}
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger.With("component", "bus"))
	a.closers = append(a.closers, bus.Close)

	// === Services ===
	store := favorites.NewStore(catalog.NewEventNotifier(bus, logger.With("component", "favorites")))
	a.service = catalog.New(client, cache, store,
		catalog.WithPublisher(bus),
		catalog.WithLogger(logger.With("component", "catalog")),
	)

	// === HTTP Setup ===
	mux := http.NewServeMux()

	pages, err := web.New(a.service,
		web.WithLogger(logger.With("component", "web")),
		web.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	pages.RegisterRoutes(mux)

	apiV1, err := v1.New(v1.ServerDeps{
		Catalog:  a.service,
		EventLog: eventLog,
		Logger:   logger,
		Version:  version,
	})
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	apiV1.RegisterRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())

	a.handler = logRequests(mux, logger, m)
	a.runner = server.NewRunner(server.Config{
		Addr:            cfg.Server.Addr(),
		RefetchInterval: cfg.Cache.RefetchInterval,
		EventRetention:  eventRetention,
		ShutdownTimeout: server.DefaultShutdownTimeout,
	}, server.Deps{
		Handler:  a.handler,
		Cache:    cache,
		Bus:      bus,
		EventLog: eventLog,
		Recorder: m,
	}, logger.With("component", "runner"))
	return a, nil
}

func runServer(configPath string) error {
	if configPath == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		configPath = found
	}

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	a, err := newApp(cfg, logger, metrics.New(true))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	logger.Info("server starting",
		"addr", cfg.Server.Addr(),
		"config", configPath,
		"tmdb", cfg.TMDB.BaseURL,
		"guest_session", cfg.TMDB.GuestSessionID != "",
		"log_level", cfg.Server.LogLevel,
	)

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.runner.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
