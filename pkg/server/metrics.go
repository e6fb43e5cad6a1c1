package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus collectors. Each Server owns its
// registry so several servers (and tests) can coexist in one process.
type metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	rankings     *prometheus.CounterVec
	alternatives prometheus.Histogram
	mailsSent    *prometheus.CounterVec
	rateLimited  prometheus.Counter
	storedFiles  prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topsis_http_requests_total",
				Help: "HTTP requests handled, by route and status code.",
			},
			[]string{"route", "code"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topsis_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		rankings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topsis_rankings_total",
				Help: "Ranking attempts by outcome (ok, invalid, error).",
			},
			[]string{"outcome"},
		),
		alternatives: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "topsis_ranking_alternatives",
				Help:    "Number of alternatives per successful ranking.",
				Buckets: prometheus.ExponentialBuckets(2, 2, 10),
			},
		),
		mailsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topsis_mail_deliveries_total",
				Help: "Result mail deliveries by outcome (sent, failed, unconfigured).",
			},
			[]string{"outcome"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "topsis_rate_limited_total",
				Help: "Requests rejected by the rate limiter.",
			},
		),
		storedFiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "topsis_stored_results",
				Help: "Result files currently kept for download.",
			},
		),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// instrument records count and latency for a route.
func (m *metrics) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
