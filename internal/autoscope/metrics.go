package autoscope

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the pipeline and audit metrics, kept on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	// CompilesTotal counts drafts that compiled and passed authorization.
	CompilesTotal prometheus.Counter

	// ValidationFailuresTotal counts drafts rejected before compilation.
	ValidationFailuresTotal prometheus.Counter

	// DenialsTotal counts authorization denials by operation.
	DenialsTotal *prometheus.CounterVec

	// HubWritesTotal counts writes sent to the hub by operation.
	HubWritesTotal *prometheus.CounterVec

	// Automations is the number of automations seen by the last audit run by kind.
	Automations *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),

		CompilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoscope_compiles_total",
			Help: "Total number of drafts compiled and authorized.",
		}),
		ValidationFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoscope_validation_failures_total",
			Help: "Total number of drafts rejected by validation or the capability gate.",
		}),
		DenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoscope_denials_total",
				Help: "Total authorization denials by operation.",
			},
			[]string{"operation"},
		),
		HubWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoscope_hub_writes_total",
				Help: "Total writes sent to the hub by operation.",
			},
			[]string{"operation"},
		),
		Automations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autoscope_automations",
				Help: "Automations seen by the last audit run by kind.",
			},
			[]string{"kind"},
		),
	}

	metrics.registry.MustRegister(
		metrics.CompilesTotal,
		metrics.ValidationFailuresTotal,
		metrics.DenialsTotal,
		metrics.HubWritesTotal,
		metrics.Automations,
	)

	return metrics
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
