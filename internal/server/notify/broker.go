// Package notify carries committed work_logs changes to subscribed streams.
//
// A Broker fans events out to subscriptions. It is fed either by PGListener,
// which LISTENs for the notifications raised by the work_logs trigger, or by
// RedisFeed when several server instances share a Redis channel. Whenever a
// source loses events (a reconnect, a lagging subscriber) the affected
// subscriptions are closed; clients resubscribe and reconcile with a full
// fetch.
package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/worklogger/internal/logging"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// DefaultBuffer is how many events a subscription may lag behind.
const DefaultBuffer = 64

// Subscription receives the events of one table until it is closed.
type Subscription struct {
	table  string
	events chan models.ChangeEvent
	broker *Broker
	once   sync.Once
}

// Events is closed when the subscription ends, by Close or by the broker.
func (s *Subscription) Events() <-chan models.ChangeEvent { return s.events }

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() { s.broker.remove(s, false) }

type Broker struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	buffer  int
	logger  logging.Logger
	metrics *Metrics
}

// NewBroker creates a broker. metrics may be nil.
func NewBroker(logger logging.Logger, metrics *Metrics) *Broker {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Broker{
		subs:    make(map[*Subscription]struct{}),
		buffer:  DefaultBuffer,
		logger:  logger.With("module", "broker"),
		metrics: metrics,
	}
}

// Subscribe attaches a subscription for table. Events published after
// Subscribe returns are delivered.
func (b *Broker) Subscribe(table string) *Subscription {
	s := &Subscription{table: table, events: make(chan models.ChangeEvent, b.buffer), broker: b}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()

	b.metrics.subscribers.Set(float64(n))
	return s
}

// Publish delivers ev to every subscription of ev.Table without blocking.
// A subscription whose buffer is full is closed.
func (b *Broker) Publish(ev models.ChangeEvent) {
	b.metrics.published.WithLabelValues(ev.Type).Inc()

	var slow []*Subscription
	b.mu.Lock()
	for s := range b.subs {
		if s.table != ev.Table {
			continue
		}
		select {
		case s.events <- ev:
		default:
			slow = append(slow, s)
		}
	}
	b.mu.Unlock()

	for _, s := range slow {
		b.logger.Warn(context.Background(), "dropping slow subscriber", "table", s.table)
		b.remove(s, true)
	}
}

// DropAll closes every subscription.
func (b *Broker) DropAll() {
	b.mu.Lock()
	all := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		all = append(all, s)
	}
	b.mu.Unlock()

	for _, s := range all {
		b.remove(s, true)
	}
	if len(all) > 0 {
		b.logger.Info(context.Background(), "all subscribers dropped", "count", len(all))
	}
}

// Len returns the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) remove(s *Subscription, dropped bool) {
	s.once.Do(func() {
		b.mu.Lock()
		delete(b.subs, s)
		n := len(b.subs)
		close(s.events)
		b.mu.Unlock()

		b.metrics.subscribers.Set(float64(n))
		if dropped {
			b.metrics.dropped.Inc()
		}
	})
}
