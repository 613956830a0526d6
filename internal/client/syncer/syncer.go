// Package syncer keeps the projection store in step with the remote entry
// log.
//
// A Syncer owns at most one change subscription at a time. Every time the
// identity context signals a change it tears the subscription down, opens a
// new one and reconciles both views with a full fetch before it reports
// Subscribed. Inserts of the member's own rows are patched into Mine
// directly; every insert triggers a refetch of Recent, which needs the
// owner join that only the store can do. Deletes are applied to both views.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/projection"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
)

// State of the subscription lifecycle.
type State int32

const (
	Unsubscribed State = iota
	Subscribing
	Subscribed
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	}
	return "unknown"
}

// Gateway is the part of the log store the syncer reads from.
type Gateway interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Entry, error)
	Subscribe(ctx context.Context, table string) (client.Subscription, error)
}

// Identity is satisfied by *identity.Context.
type Identity interface {
	Identity() *models.Identity
	Profile() *models.Profile
	Watch() (<-chan struct{}, func())
}

type Config struct {
	Table          string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = common.EntriesTable
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

type Syncer struct {
	gw      Gateway
	ids     Identity
	store   *projection.Store
	logger  logging.Logger
	metrics *Metrics
	cfg     Config

	state atomic.Int32
	gen   atomic.Uint64

	mu         sync.Mutex
	idle       *sync.Cond
	pending    int
	refetching bool
	queued     *refetch
}

type refetch struct {
	ctx context.Context
	gen uint64
}

// New creates a syncer. metrics may be nil.
func New(gw Gateway, ids Identity, store *projection.Store, logger logging.Logger, metrics *Metrics, cfg Config) *Syncer {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	s := &Syncer{
		gw:      gw,
		ids:     ids,
		store:   store,
		logger:  logger.With("module", "syncer"),
		metrics: metrics,
		cfg:     cfg.withDefaults(),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func (s *Syncer) State() State {
	return State(s.state.Load())
}

func (s *Syncer) setState(st State) {
	s.state.Store(int32(st))
	s.metrics.state.Set(float64(st))
}

// Run binds to the current identity and rebinds whenever it changes, until
// ctx is done. The subscription is always closed before Run returns.
func (s *Syncer) Run(ctx context.Context) {
	watch, stop := s.ids.Watch()
	defer stop()
	defer s.setState(Unsubscribed)

	for {
		sctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.session(sctx)
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			s.WaitIdle()
			return
		case <-watch:
			s.logger.Debug(ctx, "identity changed, rebinding")
			cancel()
			<-done
		}
	}
}

// session runs one binding: subscribe, reconcile, consume, and resubscribe
// with backoff while ctx lives.
func (s *Syncer) session(ctx context.Context) {
	defer s.setState(Unsubscribed)

	id := s.ids.Identity()
	if id == nil {
		s.store.Reset("")
		s.setState(Unsubscribed)
		<-ctx.Done()
		return
	}
	if s.store.Owner() != id.ID {
		s.store.Reset(id.ID)
	}

	gen := s.gen.Add(1)
	b := s.newBackOff()

	for {
		s.setState(Subscribing)

		sub, err := s.gw.Subscribe(ctx, s.cfg.Table)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "subscribe failed", "error", err)
			if !s.wait(ctx, b) {
				return
			}
			continue
		}

		if err := s.reconcile(ctx, gen, id.ID); err != nil {
			sub.Close()
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "reconcile failed, resubscribing", "error", err)
			if !s.wait(ctx, b) {
				return
			}
			continue
		}
		s.setState(Subscribed)
		b.Reset()
		s.logger.Info(ctx, "subscribed", "table", s.cfg.Table, "user_id", id.ID)

		err = s.consume(ctx, gen, id.ID, sub)
		sub.Close()
		if ctx.Err() != nil {
			return
		}

		s.logger.Warn(ctx, "change feed dropped", "error", err)
		if !s.wait(ctx, b) {
			return
		}
	}
}

func (s *Syncer) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.InitialBackoff
	exp.Multiplier = 2
	exp.MaxInterval = s.cfg.MaxBackoff
	exp.MaxElapsedTime = 0
	exp.Reset()
	return exp
}

// wait sleeps for the next backoff interval. It reports false if ctx ended.
func (s *Syncer) wait(ctx context.Context, b backoff.BackOff) bool {
	s.setState(Unsubscribed)
	s.metrics.resubscribes.Inc()

	d := b.NextBackOff()
	if d == backoff.Stop {
		d = s.cfg.MaxBackoff
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// reconcile replaces both views with a fresh fetch. It fails if either
// view could not be loaded.
func (s *Syncer) reconcile(ctx context.Context, gen uint64, owner string) error {
	if err := s.fetch(ctx, gen, projection.Mine, func(ctx context.Context) ([]*models.Entry, error) {
		return s.gw.ListByOwner(ctx, owner)
	}); err != nil {
		return err
	}
	return s.fetch(ctx, gen, projection.Recent, s.listRecent)
}

func (s *Syncer) listRecent(ctx context.Context) ([]*models.Entry, error) {
	return s.gw.ListRecent(ctx, s.store.Limit())
}

// fetch loads view v and applies it unless the binding it was issued for is
// gone. A failed load leaves the view as it was and is returned.
func (s *Syncer) fetch(ctx context.Context, gen uint64, v projection.View, load func(context.Context) ([]*models.Entry, error)) error {
	m := s.store.BeginFetch(v)

	rows, err := load(ctx)
	if err != nil {
		s.store.AbortFetch(m)
		s.metrics.fetches.WithLabelValues(v.String(), "error").Inc()
		if ctx.Err() == nil {
			s.logger.Warn(ctx, "fetch failed", "view", v.String(), "error", err)
		}
		return fmt.Errorf("fetch %s: %w", v, err)
	}

	if s.gen.Load() != gen {
		s.store.AbortFetch(m)
		s.metrics.fetches.WithLabelValues(v.String(), "discarded").Inc()
		return nil
	}

	if s.store.ApplyFetch(m, rows) {
		s.metrics.fetches.WithLabelValues(v.String(), "applied").Inc()
	} else {
		s.metrics.fetches.WithLabelValues(v.String(), "stale").Inc()
	}
	return nil
}

func (s *Syncer) consume(ctx context.Context, gen uint64, owner string, sub client.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.Events():
			if !ok {
				return sub.Err()
			}
			s.handle(ctx, gen, owner, ev)
		}
	}
}

func (s *Syncer) handle(ctx context.Context, gen uint64, owner string, ev models.ChangeEvent) {
	if s.gen.Load() != gen || (ev.Table != "" && ev.Table != s.cfg.Table) {
		s.metrics.events.WithLabelValues(string(ev.Type), "ignored").Inc()
		return
	}

	switch ev.Type {
	case models.ChangeInsert:
		outcome := "refetch"
		if ev.New.OwnerID == owner {
			if p := s.ids.Profile(); p != nil {
				row := *ev.New
				if row.Owner == nil {
					row.Owner = p.Display()
				}
				if s.store.Append(projection.Mine, &row) {
					outcome = "patched"
				} else {
					outcome = "duplicate"
				}
			}
		}
		s.metrics.events.WithLabelValues(string(ev.Type), outcome).Inc()
		s.logger.Debug(ctx, "insert", "id", ev.New.ID, "outcome", outcome)
		s.refetchRecent(ctx, gen)

	case models.ChangeDelete:
		outcome := "noop"
		if s.store.Remove(ev.Old.ID) {
			outcome = "removed"
		}
		s.metrics.events.WithLabelValues(string(ev.Type), outcome).Inc()
		s.logger.Debug(ctx, "delete", "id", ev.Old.ID, "outcome", outcome)
	}
}

// refetchRecent reloads Recent in the background. At most one reload runs at
// a time; requests made while it runs collapse into one more reload for the
// latest binding.
func (s *Syncer) refetchRecent(ctx context.Context, gen uint64) {
	req := &refetch{ctx: ctx, gen: gen}

	s.mu.Lock()
	if s.refetching {
		s.queued = req
		s.mu.Unlock()
		s.metrics.fetches.WithLabelValues(projection.Recent.String(), "coalesced").Inc()
		return
	}
	s.refetching = true
	s.pending++
	s.mu.Unlock()

	go func() {
		defer s.done()
		for req != nil {
			_ = s.fetch(req.ctx, req.gen, projection.Recent, s.listRecent)

			s.mu.Lock()
			req, s.queued = s.queued, nil
			if req == nil {
				s.refetching = false
			}
			s.mu.Unlock()
		}
	}()
}

func (s *Syncer) done() {
	s.mu.Lock()
	s.pending--
	if s.pending == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

// WaitIdle blocks until no triggered refetch is running.
func (s *Syncer) WaitIdle() {
	s.mu.Lock()
	for s.pending > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}
