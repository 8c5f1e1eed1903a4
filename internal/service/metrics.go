package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the site's Prometheus collectors on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	submissions  *prometheus.CounterVec
	catalogLoads *prometheus.CounterVec
}

// NewMetrics builds a registry with the Go and process collectors and the
// site counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: reg,
		submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "lenvers_form_submissions_total",
			Help: "Form submissions sent to the backend, by flow and outcome.",
		}, []string{"flow", "outcome"}),
		catalogLoads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "lenvers_catalog_loads_total",
			Help: "Events catalog loads, by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveVisits exposes the number of live visits as a gauge.
func (m *Metrics) ObserveVisits(live func() int) {
	promauto.With(m.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lenvers_live_visits",
		Help: "Visits currently held in memory.",
	}, func() float64 { return float64(live()) })
}

func (m *Metrics) observeSubmission(flow string, outcome Outcome) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(flow, string(outcome)).Inc()
}

func (m *Metrics) observeCatalog(outcome string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
}
