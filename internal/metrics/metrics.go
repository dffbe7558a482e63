package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RefreshMetrics describes the rate refresh cycles.
type RefreshMetrics struct {
	CyclesTotal          *prometheus.CounterVec
	CycleDuration        prometheus.Histogram
	RatesReconciledTotal *prometheus.CounterVec
}

func NewRefreshMetrics(reg prometheus.Registerer) *RefreshMetrics {
	factory := promauto.With(reg)
	return &RefreshMetrics{
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_refresh_cycles_total",
				Help: "Number of rate refresh cycles by result",
			},
			[]string{"result"},
		),
		CycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rates_refresh_cycle_duration_seconds",
				Help:    "Duration of a full fetch-merge-reconcile cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		RatesReconciledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_reconciled_total",
				Help: "Number of rates written by refresh cycles",
			},
			[]string{"action"},
		),
	}
}

func (m *RefreshMetrics) ObserveCycle(took time.Duration, inserted, updated int, err error) {
	m.CycleDuration.Observe(took.Seconds())
	if err != nil {
		m.CyclesTotal.WithLabelValues("failure").Inc()
		return
	}
	m.CyclesTotal.WithLabelValues("success").Inc()
	m.RatesReconciledTotal.WithLabelValues("inserted").Add(float64(inserted))
	m.RatesReconciledTotal.WithLabelValues("updated").Add(float64(updated))
}
