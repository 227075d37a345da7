package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Generation metrics
	generationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_generation_requests_total",
		Help: "Total number of generation requests",
	}, []string{"operation", "model", "status"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "careerhub_generation_request_duration_seconds",
		Help:    "Duration of generation requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	generationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_generation_fallbacks_total",
		Help: "Total number of model fallback substitutions",
	}, []string{"from", "to"})

	templateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerhub_template_fallbacks_total",
		Help: "Total number of static template substitutions after failed quality checks",
	})

	// Feed metrics
	feedQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_feed_queries_total",
		Help: "Total number of feed page queries",
	}, []string{"status"})

	feedQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "careerhub_feed_query_duration_seconds",
		Help:    "Duration of feed page queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerhub_cache_hits_total",
		Help: "Total number of response cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerhub_cache_misses_total",
		Help: "Total number of response cache misses",
	})

	// Rate limit metrics
	rateLimitExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerhub_rate_limit_exceeded_total",
		Help: "Total number of rate limit exceeded events",
	})

	// Match queue metrics
	matchJobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_match_jobs_enqueued_total",
		Help: "Total number of match jobs enqueued",
	}, []string{"kind", "status"})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordGeneration records a generation request
func (m *Metrics) RecordGeneration(operation, model, status string, duration time.Duration) {
	generationRequests.WithLabelValues(operation, model, status).Inc()
	generationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordFallback records a model fallback substitution
func (m *Metrics) RecordFallback(from, to string) {
	generationFallbacks.WithLabelValues(from, to).Inc()
}

// RecordTemplateFallback records a static template substitution
func (m *Metrics) RecordTemplateFallback() {
	templateFallbacks.Inc()
}

// RecordFeedQuery records a feed page query
func (m *Metrics) RecordFeedQuery(status string, duration time.Duration) {
	feedQueries.WithLabelValues(status).Inc()
	feedQueryDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCacheHit records a response cache hit
func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a response cache miss
func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordRateLimitExceeded records a rate limit exceeded event
func (m *Metrics) RecordRateLimitExceeded() {
	rateLimitExceeded.Inc()
}

// RecordMatchJob records a match job enqueue attempt
func (m *Metrics) RecordMatchJob(kind, status string) {
	matchJobsEnqueued.WithLabelValues(kind, status).Inc()
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
