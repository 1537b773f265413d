package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	answers          *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	sourceLoads      *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	activeSessions   prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Sessions started, by question origin.",
		}, []string{"origin"}),
		sessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_sessions_finished_total",
			Help: "Sessions that reached a terminal phase.",
		}, []string{"result"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Resolved answers by outcome.",
		}, []string{"outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_answers_rejected_total",
			Help: "Submissions rejected without mutating the session.",
		}, []string{"reason"}),
		sourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_question_source_loads_total",
			Help: "Question set loads by origin and failure reason.",
		}, []string{"origin", "reason"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_llm_request_duration_seconds",
			Help:    "Latency of upstream generation requests.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"model", "success"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Sessions currently attached to a connection.",
		}),
	}
	m.registry.MustRegister(
		m.sessionsStarted,
		m.sessionsFinished,
		m.answers,
		m.rejected,
		m.sourceLoads,
		m.llmDuration,
		m.activeSessions,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SessionStarted(origin string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(origin).Inc()
}

func (m *Metrics) SessionFinished(won bool) {
	if m == nil {
		return
	}
	result := "lost"
	if won {
		result = "won"
	}
	m.sessionsFinished.WithLabelValues(result).Inc()
}

func (m *Metrics) AnswerResolved(outcome string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AnswerRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// SourceLoaded records a question set load; reason is "ok", "fetch" or "parse".
func (m *Metrics) SourceLoaded(origin, reason string) {
	if m == nil {
		return
	}
	m.sourceLoads.WithLabelValues(origin, reason).Inc()
}

func (m *Metrics) ObserveLLMRequest(model string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	m.llmDuration.WithLabelValues(model, label).Observe(d.Seconds())
}

func (m *Metrics) SessionAttached() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionDetached() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
