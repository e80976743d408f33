package metrics

import (
	"context"
	"net/http"

	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	readingsTotal prometheus.Counter
	alertsTotal   *prometheus.CounterVec
	viewers       prometheus.Gauge
	values        *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors with reg. A nil reg uses a private
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		readingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquavise",
			Name:      "readings_total",
			Help:      "Total number of simulated readings.",
		}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquavise",
			Name:      "alert_observations_total",
			Help:      "Readings outside the safety envelope, by variable and direction.",
		}, []string{"variable", "direction"}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aquavise",
			Name:      "viewers",
			Help:      "Number of connected live viewers.",
		}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "aquavise",
			Name:      "value",
			Help:      "Latest reading per variable.",
		}, []string{"variable"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.readingsTotal,
		m.alertsTotal,
		m.viewers,
		m.values,
	)

	return m
}

// Observe records a snapshot. It has the signature of a dashboard listener.
func (m *Metrics) Observe(ctx context.Context, s types.Snapshot) {
	m.readingsTotal.Inc()

	for _, v := range types.Variables {
		m.values.WithLabelValues(string(v)).Set(s.Reading.Value(v))
	}

	for _, a := range s.Alerts {
		m.alertsTotal.WithLabelValues(string(a.Variable), string(a.Direction)).Inc()
	}
}

func (m *Metrics) SetViewers(n int) {
	m.viewers.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
