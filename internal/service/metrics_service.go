package service

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService exposes Prometheus instrumentation for the API plus a
// small JSON snapshot used by the health endpoints.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	chartLoads     *prometheus.CounterVec
	commitOutcomes *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	dbDuration     *prometheus.HistogramVec

	startedAt      time.Time
	requestCount   atomic.Int64
	chartLoadCount atomic.Int64
	conflictCount  atomic.Int64
}

// MetricsSnapshot is a coarse counter readout for health responses.
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	HTTPRequests  int64   `json:"http_requests"`
	ChartLoads    int64   `json:"chart_loads"`
	Conflicts     int64   `json:"selection_conflicts"`
}

// NewMetricsService builds the service with its own registry so tests can
// run several instances side by side.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labops_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labops_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		chartLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labops_chart_loads_total",
			Help: "Scheduling chart loads by cache outcome.",
		}, []string{"outcome"}),
		commitOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labops_selection_commits_total",
			Help: "Drag-selection commits by outcome.",
		}, []string{"outcome"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labops_cache_operations_total",
			Help: "Cache operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labops_db_query_duration_seconds",
			Help:    "Database query latency by query name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		startedAt: time.Now(),
	}
	registry.MustRegister(s.httpRequests, s.httpDuration, s.chartLoads, s.commitOutcomes, s.cacheOps, s.dbDuration)
	return s
}

// ObserveHTTPRequest records one finished HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, path, status).Inc()
	s.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	s.requestCount.Add(1)
}

// RecordChartLoad records one chart load; outcome is "hit", "miss" or
// "error".
func (s *MetricsService) RecordChartLoad(outcome string) {
	s.chartLoads.WithLabelValues(outcome).Inc()
	s.chartLoadCount.Add(1)
}

// RecordCommit records one selection commit; outcome is "created" or
// "conflict".
func (s *MetricsService) RecordCommit(outcome string) {
	s.commitOutcomes.WithLabelValues(outcome).Inc()
	if outcome == "conflict" {
		s.conflictCount.Add(1)
	}
}

// RecordCacheOperation records a cache read or write outcome.
func (s *MetricsService) RecordCacheOperation(operation, outcome string) {
	s.cacheOps.WithLabelValues(operation, outcome).Inc()
}

// ObserveDBQuery records the latency of one named query.
func (s *MetricsService) ObserveDBQuery(query string, duration time.Duration) {
	s.dbDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// Snapshot returns the coarse counters for health responses.
func (s *MetricsService) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		HTTPRequests:  s.requestCount.Load(),
		ChartLoads:    s.chartLoadCount.Load(),
		Conflicts:     s.conflictCount.Load(),
	}
}

// Handler serves the Prometheus exposition endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
