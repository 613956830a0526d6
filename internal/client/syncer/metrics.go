package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the sync counters of one client. Passing a nil registerer to
// NewMetrics yields working but unregistered collectors.
type Metrics struct {
	events       *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	resubscribes prometheus.Counter
	state        prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "worklogger_client",
				Subsystem: "sync",
				Name:      "events_total",
				Help:      "Change notifications received, by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "worklogger_client",
				Subsystem: "sync",
				Name:      "fetches_total",
				Help:      "Projection fetches, by view and result.",
			},
			[]string{"view", "result"},
		),
		resubscribes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "worklogger_client",
				Subsystem: "sync",
				Name:      "resubscribes_total",
				Help:      "Subscription attempts after a failure or a dropped feed.",
			},
		),
		state: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "worklogger_client",
				Subsystem: "sync",
				Name:      "state",
				Help:      "Current subscription state (0 unsubscribed, 1 subscribing, 2 subscribed).",
			},
		),
	}
}
