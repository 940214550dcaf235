package dapp

import (
	"net/http"

	"github.com/Mohsinsiddi/w3dapp/internal/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts transfer outcomes and times settlement. Each instance has
// its own registry so several servers can live in one process.
type Metrics struct {
	registry   *prometheus.Registry
	transfers  *prometheus.CounterVec
	settlement prometheus.Histogram
}

// NewMetrics registers the transfer collectors plus the Go runtime ones.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "w3dapp_transfers_total",
			Help: "Token transfers by outcome.",
		}, []string{"outcome"}),
		settlement: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "w3dapp_transfer_settlement_seconds",
			Help:    "Time from submit to outcome.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),
	}
	m.registry.MustRegister(
		m.transfers,
		m.settlement,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one transfer result.
func (m *Metrics) Observe(res transfer.Result) {
	if res.Outcome == transfer.OutcomeNone {
		return
	}
	m.transfers.WithLabelValues(res.Outcome.String()).Inc()
	m.settlement.Observe(res.Elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
