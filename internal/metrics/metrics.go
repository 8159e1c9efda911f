package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	MessagesPersisted *prometheus.CounterVec
	MessagesFailed    *prometheus.CounterVec
	MessagesRequeued  *prometheus.CounterVec
	PersistLatency    *prometheus.HistogramVec
	MessagesSubmitted *prometheus.CounterVec
	QueueDepth        *prometheus.GaugeVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_persisted_total",
			Help: "Total number of dequeued messages written to the store.",
		}, []string{"queue"}),

		MessagesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_failed_total",
			Help: "Ingestion loop failures by reason (pop, persist, invalid).",
		}, []string{"queue", "reason"}),

		MessagesRequeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_requeued_total",
			Help: "Messages pushed back onto the queue after a persistence failure.",
		}, []string{"queue"}),

		PersistLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "message_persist_seconds",
			Help:    "Latency of a single record insert.",
			Buckets: prometheus.DefBuckets,
		}, []string{"queue"}),

		MessagesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messages_submitted_total",
			Help: "Messages accepted by the producer and pushed onto the queue.",
		}, []string{"queue"}),

		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Number of items waiting in the queue at the last sample.",
		}, []string{"queue"}),
	}

	reg.MustRegister(
		m.MessagesPersisted,
		m.MessagesFailed,
		m.MessagesRequeued,
		m.PersistLatency,
		m.MessagesSubmitted,
		m.QueueDepth,
	)

	return m
}

// ConsumerHooks returns the metric callback functions expected by
// worker.MetricHooks. Centralises the prometheus observation calls so the
// worker package stays metrics-agnostic.
func (m *Metrics) ConsumerHooks(queue string) (
	onPersisted func(latency time.Duration),
	onFailed func(reason string),
	onRequeued func(),
) {
	onPersisted = func(latency time.Duration) {
		m.MessagesPersisted.WithLabelValues(queue).Inc()
		m.PersistLatency.WithLabelValues(queue).Observe(latency.Seconds())
	}
	onFailed = func(reason string) {
		m.MessagesFailed.WithLabelValues(queue, reason).Inc()
	}
	onRequeued = func() {
		m.MessagesRequeued.WithLabelValues(queue).Inc()
	}
	return
}

// DepthHook returns a setter for the queue depth gauge.
func (m *Metrics) DepthHook(queue string) func(int64) {
	g := m.QueueDepth.WithLabelValues(queue)
	return func(n int64) { g.Set(float64(n)) }
}

// SubmitHook returns a callback counting n accepted submissions.
func (m *Metrics) SubmitHook(queue string) func(n int) {
	c := m.MessagesSubmitted.WithLabelValues(queue)
	return func(n int) { c.Add(float64(n)) }
}
