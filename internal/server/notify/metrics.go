package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of the change feed. A nil registerer gives unregistered
// collectors.
type Metrics struct {
	subscribers prometheus.Gauge
	published   *prometheus.CounterVec
	dropped     prometheus.Counter
	reconnects  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		subscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "worklogger_server",
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Live change feed subscriptions.",
		}),
		published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worklogger_server",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Change events fanned out, by type.",
		}, []string{"type"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "worklogger_server",
			Subsystem: "feed",
			Name:      "dropped_subscribers_total",
			Help:      "Subscriptions closed by the broker, slow consumers and feed resets.",
		}),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: "worklogger_server",
			Subsystem: "feed",
			Name:      "source_reconnects_total",
			Help:      "Times the upstream change source had to be reconnected.",
		}),
	}
}
