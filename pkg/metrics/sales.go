package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics tracks the sale-creation transaction.
type SaleMetrics struct {
	created  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	duration prometheus.Histogram
	lines    prometheus.Histogram
}

func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sales",
		Name:      "created_total",
		Help:      "Sales committed, by payment method.",
	}, []string{"payment_method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sales",
		Name:      "failed_total",
		Help:      "Sale attempts that rolled back, by error code.",
	}, []string{"reason"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sales",
		Name:      "transaction_duration_seconds",
		Help:      "Wall time of the sale-creation transaction.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
	lines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sales",
		Name:      "line_items",
		Help:      "Line items per committed sale.",
		Buckets:   []float64{1, 2, 3, 5, 10, 20, 50, 100},
	})
	reg.MustRegister(created, failed, duration, lines)
	return &SaleMetrics{created: created, failed: failed, duration: duration, lines: lines}
}

func (m *SaleMetrics) ObserveCreated(paymentMethod string, lineCount int, elapsed time.Duration) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	m.lines.Observe(float64(lineCount))
	m.duration.Observe(elapsed.Seconds())
}

func (m *SaleMetrics) ObserveFailed(reason string, elapsed time.Duration) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
