package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Turns             *prometheus.CounterVec
	CompletionLatency *prometheus.HistogramVec
	Extractions       *prometheus.CounterVec
	Commands          *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by transport and outcome.",
		}, []string{"transport", "outcome"}),
		CompletionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_seconds",
			Help:      "Chat completion latency by purpose.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 120},
		}, []string{"purpose"}),
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_extractions_total",
			Help:      "Fact extraction runs by outcome.",
		}, []string{"outcome"}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Slash commands by name.",
		}, []string{"command"}),
	}
}

func (m *Metrics) ObserveTurn(transport, outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(transport, outcome).Inc()
}

func (m *Metrics) ObserveCompletion(purpose string, d time.Duration) {
	if m == nil {
		return
	}
	m.CompletionLatency.WithLabelValues(purpose).Observe(d.Seconds())
}

func (m *Metrics) ObserveExtraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCommand(name string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
