package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
// A nil *Registry is valid and records nothing.
type Registry struct {
	*prometheus.Registry

	// Upstream HTTP metrics
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	upstreamInFlight  prometheus.Gauge
	upstreamRetries   *prometheus.CounterVec
	rateLimitWaits    *prometheus.CounterVec
	rateLimitWaitSecs *prometheus.CounterVec

	// Business metrics
	cacheLookups     *prometheus.CounterVec
	quotesFetched    *prometheus.CounterVec
	categoryFailures *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
// Runtime collectors are left out: the registry is dumped to a node_exporter
// textfile, which already exports go_* and process_* series of its own.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricefeed_upstream_requests_total",
				Help: "Total number of upstream API requests",
			},
			[]string{"provider", "status"},
		),

		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricefeed_upstream_request_duration_seconds",
				Help:    "Upstream API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		upstreamInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pricefeed_upstream_requests_in_flight",
				Help: "Number of upstream requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.upstreamRequests)
	reg.MustRegister(r.upstreamDuration)
	reg.MustRegister(r.upstreamInFlight)

	r.upstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_upstream_retries_total",
			Help: "Total number of retried upstream requests after a transport failure",
		},
		[]string{"provider"},
	)
	r.rateLimitWaits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_rate_limit_waits_total",
			Help: "Total number of rate-limit responses honoured with a wait",
		},
		[]string{"provider"},
	)
	r.rateLimitWaitSecs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_rate_limit_wait_seconds_total",
			Help: "Total time spent waiting on rate limits",
		},
		[]string{"provider"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)
	r.quotesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_quotes_fetched_total",
			Help: "Quotes fetched from upstream by category",
		},
		[]string{"category"},
	)
	r.categoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_category_failures_total",
			Help: "Category fetches that failed",
		},
		[]string{"category"},
	)

	reg.MustRegister(r.upstreamRetries)
	reg.MustRegister(r.rateLimitWaits)
	reg.MustRegister(r.rateLimitWaitSecs)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.quotesFetched)
	reg.MustRegister(r.categoryFailures)

	return r
}

// RecordUpstream records one upstream round trip. Status 0 means no response.
func (r *Registry) RecordUpstream(provider string, status int, duration float64) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(provider, statusToString(status)).Inc()
	r.upstreamDuration.WithLabelValues(provider).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.upstreamInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.upstreamInFlight.Dec()
}

// RecordRetry records a retry after a transport failure.
func (r *Registry) RecordRetry(provider string) {
	if r == nil {
		return
	}
	r.upstreamRetries.WithLabelValues(provider).Inc()
}

// RecordRateLimitWait records a cooperative wait after a 429.
func (r *Registry) RecordRateLimitWait(provider string, seconds float64) {
	if r == nil {
		return
	}
	r.rateLimitWaits.WithLabelValues(provider).Inc()
	r.rateLimitWaitSecs.WithLabelValues(provider).Add(seconds)
}

// RecordCacheLookup records a cache lookup result: hit, miss, expired or corrupt.
func (r *Registry) RecordCacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordQuotesFetched records quotes fetched upstream for a category.
func (r *Registry) RecordQuotesFetched(category string, n int) {
	if r == nil {
		return
	}
	r.quotesFetched.WithLabelValues(category).Add(float64(n))
}

// RecordCategoryFailure records a failed category fetch.
func (r *Registry) RecordCategoryFailure(category string) {
	if r == nil {
		return
	}
	r.categoryFailures.WithLabelValues(category).Inc()
}

// WriteTextfile dumps all metrics in the text exposition format to path.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}

func statusToString(status int) string {
	switch {
	case status == 0:
		return "error"
	case status >= 500:
		return "5xx"
	case status == 429:
		return "429"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
