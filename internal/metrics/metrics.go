// Package metrics exposes Prometheus instrumentation for the daemon.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinelist"

// Collector holds every metric the daemon records. Each Collector owns its
// registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	ListChanges     *prometheus.CounterVec
	Reviews         prometheus.Counter
}

// New creates a Collector with all metrics registered. Process and Go
// runtime collectors are included when withRuntime is set.
func New(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served.",
			},
			[]string{"method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Query cache lookups, one per fetch, by outcome (hit, stale, miss, error).",
			},
			[]string{"outcome"},
		),
		GatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tmdb_requests_total",
				Help:      "Requests sent to TMDB by endpoint and status code.",
			},
			[]string{"endpoint", "status"},
		),
		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tmdb_request_duration_seconds",
				Help:      "TMDB request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ListChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "list_changes_total",
				Help:      "Favorites and must-watch mutations.",
			},
			[]string{"list", "op"},
		),
		Reviews: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_submitted_total",
				Help:      "Reviews accepted this session.",
			},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CacheLookups,
		c.GatewayRequests,
		c.GatewayDuration,
		c.ListChanges,
		c.Reviews,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveLookup records one query cache lookup.
func (c *Collector) ObserveLookup(outcome string) {
	c.CacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one TMDB exchange. status 0 means transport failure.
func (c *Collector) ObserveRequest(endpoint string, status int, d time.Duration) {
	c.GatewayRequests.WithLabelValues(endpoint, statusLabel(status)).Inc()
	c.GatewayDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, statusLabel(status)).Inc()
	c.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveListChange records one favorites or must-watch mutation.
func (c *Collector) ObserveListChange(list, op string) {
	c.ListChanges.WithLabelValues(list, op).Inc()
}

// ObserveReview records one accepted review.
func (c *Collector) ObserveReview() {
	c.Reviews.Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
