// Package metrics exposes Prometheus instrumentation for the mini-check API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LabelMethod   = "method"
	LabelEndpoint = "endpoint"
	LabelStatus   = "status"
	LabelOutcome  = "outcome"
	LabelScore    = "score"
	LabelDecision = "decision"
)

// Metrics holds every collector the service reports.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Mini-check
	ChecksTotal          *prometheus.CounterVec
	CheckDuration        prometheus.Histogram
	Scores               *prometheus.HistogramVec
	CappedTotal          prometheus.Counter
	Redirects            prometheus.Histogram
	InterpretationsTotal *prometheus.CounterVec

	// Rate limiting
	RateLimitTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minicheck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{LabelMethod, LabelEndpoint, LabelStatus},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minicheck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{LabelMethod, LabelEndpoint},
		),

		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "minicheck_http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		ChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minicheck_checks_total",
				Help: "Total number of mini-checks by outcome",
			},
			[]string{LabelOutcome},
		),

		CheckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minicheck_check_duration_seconds",
				Help:    "Mini-check duration in seconds, fetch included",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 20},
			},
		),

		Scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minicheck_score",
				Help:    "Distribution of reported scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{LabelScore},
		),

		CappedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "minicheck_ai_score_capped_total",
				Help: "Total number of AI scores limited by a cap",
			},
		),

		Redirects: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minicheck_redirects",
				Help:    "Redirects followed per successful fetch",
				Buckets: []float64{0, 1, 2, 3, 4},
			},
		),

		InterpretationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minicheck_interpretations_total",
				Help: "Total number of interpretation attempts by outcome",
			},
			[]string{LabelOutcome},
		),

		RateLimitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minicheck_rate_limit_decisions_total",
				Help: "Total number of rate limit decisions",
			},
			[]string{LabelDecision},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ChecksTotal,
		m.CheckDuration,
		m.Scores,
		m.CappedTotal,
		m.Redirects,
		m.InterpretationsTotal,
		m.RateLimitTotal,
	)

	return m
}

func (m *Metrics) RecordCheck(outcome string, d time.Duration) {
	m.ChecksTotal.WithLabelValues(outcome).Inc()
	m.CheckDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordScores(hygiene, ai int, capped bool) {
	m.Scores.WithLabelValues("hygiene").Observe(float64(hygiene))
	m.Scores.WithLabelValues("ai").Observe(float64(ai))
	if capped {
		m.CappedTotal.Inc()
	}
}

func (m *Metrics) RecordRedirects(n int) {
	m.Redirects.Observe(float64(n))
}

func (m *Metrics) RecordInterpretation(outcome string) {
	m.InterpretationsTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimit counts one rate limit decision. Store failures are
// recorded separately because the request is let through.
func (m *Metrics) RecordRateLimit(allowed bool, err error) {
	decision := "allowed"
	switch {
	case err != nil:
		decision = "error"
	case !allowed:
		decision = "rejected"
	}
	m.RateLimitTotal.WithLabelValues(decision).Inc()
}

// HTTPMiddleware records request counts, latencies and in-flight requests.
// Requests that matched no route are grouped under a single endpoint label.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		endpoint := r.URL.Path
		if wrapped.statusCode == http.StatusNotFound {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.statusCode = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}
