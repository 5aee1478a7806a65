package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	RecipientsQueued  prometheus.Counter
	DeliveriesSent    prometheus.Counter
	DeliveriesFailed  prometheus.Counter
	DrainCycles       prometheus.Counter
	DrainCycleSeconds prometheus.Histogram
	DrainProcessed    prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecipientsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fanout_recipients_queued_total",
			Help: "Total number of queue rows written by fan-out.",
		}),
		DeliveriesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deliveries_sent_total",
			Help: "Total number of successful delivery attempts.",
		}),
		DeliveriesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deliveries_failed_total",
			Help: "Total number of failed delivery attempts.",
		}),
		DrainCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drain_cycles_total",
			Help: "Total number of completed drain cycles.",
		}),
		DrainCycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "drain_cycle_seconds",
			Help:    "Wall-clock duration of one drain cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		DrainProcessed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "drain_cycle_processed_entries",
			Help:    "Queue entries consumed per drain cycle.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 7),
		}),
	}

	reg.MustRegister(
		m.RecipientsQueued,
		m.DeliveriesSent,
		m.DeliveriesFailed,
		m.DrainCycles,
		m.DrainCycleSeconds,
		m.DrainProcessed,
	)

	return m
}

// DrainHooks returns the callbacks expected by service.DrainHooks.
// Centralises the prometheus observation calls so the drainer stays
// import-free.
func (m *Metrics) DrainHooks() (
	onSent func(),
	onFailed func(),
	onCycle func(processed int, elapsed time.Duration),
) {
	onSent = func() { m.DeliveriesSent.Inc() }
	onFailed = func() { m.DeliveriesFailed.Inc() }
	onCycle = func(processed int, elapsed time.Duration) {
		m.DrainCycles.Inc()
		m.DrainCycleSeconds.Observe(elapsed.Seconds())
		m.DrainProcessed.Observe(float64(processed))
	}
	return
}

// OnQueued is the fan-out hook counting queue rows written.
func (m *Metrics) OnQueued(count int) {
	m.RecipientsQueued.Add(float64(count))
}
