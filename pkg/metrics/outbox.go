package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics tracks the publisher loop.
type OutboxMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	dlq       *prometheus.CounterVec
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox events published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "publish_failed_total",
		Help:      "Retryable publish failures.",
	}, []string{"event_type"})
	dlq := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "dead_lettered_total",
		Help:      "Events moved to the dead-letter table.",
	}, []string{"event_type", "reason"})
	reg.MustRegister(published, failed, dlq)
	return &OutboxMetrics{published: published, failed: failed, dlq: dlq}
}

func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncDeadLettered(eventType, reason string) {
	if m == nil || m.dlq == nil {
		return
	}
	m.dlq.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}
