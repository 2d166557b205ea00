package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcome label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultExpired = "expired"
	ResultReplay  = "replay"
	ResultError   = "error"
)

// Metrics holds the application metrics.
type Metrics struct {
	registry *prometheus.Registry

	TokensIssued  prometheus.Counter
	Verifications *prometheus.CounterVec
	VerifySeconds prometheus.Histogram
}

// New creates and registers the application metrics on a fresh
// registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "timecloak",
			Name:      "tokens_issued_total",
			Help:      "Tokens minted by the issuer.",
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timecloak",
			Name:      "verifications_total",
			Help:      "Verification attempts by outcome.",
		}, []string{"result"}),
		VerifySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "timecloak",
			Name:      "verify_duration_seconds",
			Help:      "Wall time spent verifying a token.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	registry.MustRegister(
		m.TokensIssued,
		m.Verifications,
		m.VerifySeconds,
	)

	return m
}

// ObserveVerification records one verification attempt.
func (m *Metrics) ObserveVerification(result string, elapsed time.Duration) {
	m.Verifications.WithLabelValues(result).Inc()
	m.VerifySeconds.Observe(elapsed.Seconds())
}

// RegisterReplayGauge registers a gauge reporting the replay cache
// size from the supplied callback. Only caches that can count entries
// cheaply register one.
func (m *Metrics) RegisterReplayGauge(size func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "timecloak",
		Name:      "replay_cache_entries",
		Help:      "Entries currently held by the replay cache.",
	}, size))
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
