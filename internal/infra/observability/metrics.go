package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	providerErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokenRefreshes  prometheus.Counter
	degradedQueries *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of outbound provider calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		providerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_provider_errors_total",
				Help: "Total provider call failures by error kind.",
			},
			[]string{"kind"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokenRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_token_refreshes_total",
				Help: "Total OAuth token round-trips to the provider.",
			},
		),
		degradedQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_degraded_queries_total",
				Help: "Status queries downgraded to a synthetic pending result.",
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total payment operations processed.",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrProviderError increments the provider error counter by kind
// (timeout, transport, rejected, auth).
func (m *Metrics) IncrProviderError(kind string) {
	m.providerErrors.WithLabelValues(kind).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrTokenRefresh counts a fresh authentication round-trip.
func (m *Metrics) IncrTokenRefresh() {
	m.tokenRefreshes.Inc()
}

// IncrDegradedQuery counts a status query that fell back to the
// synthetic pending result. Operators alert on this to detect provider
// outages that are otherwise invisible to polling callers.
func (m *Metrics) IncrDegradedQuery(operation string) {
	m.degradedQueries.WithLabelValues(operation).Inc()
}

// IncrRequest increments the operation counter with a status label.
func (m *Metrics) IncrRequest(operation, status string) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
}

// Snapshot is a point-in-time view of gateway health for the ops
// endpoint.
type Snapshot struct {
	PixCreated      float64 `json:"pix_created"`
	BoletosCreated  float64 `json:"boletos_created"`
	TokenRefreshes  float64 `json:"token_refreshes"`
	DegradedQueries float64 `json:"degraded_queries"`
	ErrorRate       float64 `json:"error_rate"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
}

// GetSnapshot gathers current counter values.
func (m *Metrics) GetSnapshot() *Snapshot {
	pixOK := getCounterValue(m.requestsTotal, "pix", "success")
	pixErr := getCounterValue(m.requestsTotal, "pix", "error")
	bolOK := getCounterValue(m.requestsTotal, "boleto", "success")
	bolErr := getCounterValue(m.requestsTotal, "boleto", "error")

	total := pixOK + pixErr + bolOK + bolErr
	errorRate := float64(0)
	if total > 0 {
		errorRate = (pixErr + bolErr) / total
	}

	hits := getCounterValue(m.cacheHits, "config")
	misses := getCounterValue(m.cacheMisses, "config")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	degraded := getCounterValue(m.degradedQueries, "pix") +
		getCounterValue(m.degradedQueries, "boleto")

	return &Snapshot{
		PixCreated:      pixOK,
		BoletosCreated:  bolOK,
		TokenRefreshes:  getSingleCounterValue(m.tokenRefreshes),
		DegradedQueries: degraded,
		ErrorRate:       errorRate,
		CacheHitRate:    hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getSingleCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
