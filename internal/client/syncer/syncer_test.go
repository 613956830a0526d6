package syncer

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worklogger/internal/client/client"
	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/client/projection"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/logging"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

type fakeSub struct {
	events chan models.ChangeEvent
	once   sync.Once
	err    error
	closed chan struct{}
}

func newFakeSub() *fakeSub {
	return &fakeSub{events: make(chan models.ChangeEvent, 16), closed: make(chan struct{})}
}

func (f *fakeSub) Events() <-chan models.ChangeEvent { return f.events }
func (f *fakeSub) Err() error                        { return f.err }
func (f *fakeSub) Close()                            { f.once.Do(func() { close(f.closed) }) }

// drop ends the feed from the server side.
func (f *fakeSub) drop(err error) {
	f.err = err
	close(f.events)
}

// fakeGateway is an in-memory log store. Rows carry the owner join for every
// member with a registered profile, like the real store query does.
type fakeGateway struct {
	mu       sync.Mutex
	rows     []*models.Entry
	profiles map[string]*models.OwnerDisplay
	subs     []*fakeSub
	subErrs  int
	recentN  int
	ownerN   int
	next     int
	failList error
	// recentGate, when set, holds ListRecent until it is closed.
	recentGate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{profiles: map[string]*models.OwnerDisplay{}}
}

func (g *fakeGateway) joined(e *models.Entry) *models.Entry {
	c := *e
	c.Owner = g.profiles[e.OwnerID]
	return &c
}

func (g *fakeGateway) ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ownerN++
	if g.failList != nil {
		return nil, g.failList
	}
	var out []*models.Entry
	for _, e := range g.rows {
		if e.OwnerID == ownerID {
			out = append(out, g.joined(e))
		}
	}
	return out, nil
}

func (g *fakeGateway) ListRecent(ctx context.Context, limit int) ([]*models.Entry, error) {
	g.mu.Lock()
	gate := g.recentGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.recentN++
	if g.failList != nil {
		return nil, g.failList
	}
	out := make([]*models.Entry, 0, len(g.rows))
	for _, e := range g.rows {
		out = append(out, g.joined(e))
	}
	slices.SortStableFunc(out, func(a, b *models.Entry) int {
		switch {
		case a.NewerThan(b):
			return -1
		case b.NewerThan(a):
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *fakeGateway) Subscribe(ctx context.Context, table string) (client.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subErrs > 0 {
		g.subErrs--
		return nil, client.ErrUnavailable
	}
	s := newFakeSub()
	g.subs = append(g.subs, s)
	return s, nil
}

// insert stores a row and pushes the notification to the live feed.
func (g *fakeGateway) insert(owner string, date civil.Date, desc string) *models.Entry {
	g.mu.Lock()
	g.next++
	e := &models.Entry{
		ID:          "e" + string(rune('0'+g.next)),
		OwnerID:     owner,
		Date:        date,
		Description: desc,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, g.next, 0, time.UTC),
	}
	g.rows = append(g.rows, e)
	sub := g.subs[len(g.subs)-1]
	g.mu.Unlock()

	sub.events <- models.ChangeEvent{Type: models.ChangeInsert, Table: common.EntriesTable, New: e}
	return e
}

func (g *fakeGateway) delete(id string) {
	g.mu.Lock()
	g.rows = slices.DeleteFunc(g.rows, func(e *models.Entry) bool { return e.ID == id })
	sub := g.subs[len(g.subs)-1]
	g.mu.Unlock()

	sub.events <- models.ChangeEvent{Type: models.ChangeDelete, Table: common.EntriesTable, Old: &models.Entry{ID: id}}
}

func (g *fakeGateway) subCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

func (g *fakeGateway) lastSub() *fakeSub {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subs[len(g.subs)-1]
}

func (g *fakeGateway) recentCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recentN
}

type fakeIdentity struct {
	mu       sync.Mutex
	identity *models.Identity
	profile  *models.Profile
	watchers []chan struct{}
}

func (f *fakeIdentity) Identity() *models.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity
}

func (f *fakeIdentity) Profile() *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

func (f *fakeIdentity) Watch() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{}, 1)
	f.watchers = append(f.watchers, ch)
	return ch, func() {}
}

func (f *fakeIdentity) set(id *models.Identity, p *models.Profile) {
	f.mu.Lock()
	f.identity, f.profile = id, p
	ws := f.watchers
	f.mu.Unlock()
	for _, ch := range ws {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

var (
	userU = &models.Identity{ID: "U", Username: "u", FullName: "Una"}
	profU = &models.Profile{ID: "U", DisplayName: "Una", StudyYear: 2}
	jan10 = civil.Date{Year: 2024, Month: 1, Day: 10}
)

type harness struct {
	gw     *fakeGateway
	ids    *fakeIdentity
	store  *projection.Store
	syncer *Syncer
	reg    *prometheus.Registry
	cancel context.CancelFunc
	done   chan struct{}
}

func start(t *testing.T, gw *fakeGateway, ids *fakeIdentity) *harness {
	t.Helper()
	reg := prometheus.NewRegistry()
	store := projection.NewStore(common.DefaultRecentLimit)
	s := New(gw, ids, store, logging.NopLogger{}, NewMetrics(reg), Config{InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{gw: gw, ids: ids, store: store, syncer: s, reg: reg, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		s.Run(ctx)
	}()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) waitSubscribed(t *testing.T, subs int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.syncer.State() == Subscribed && h.gw.subCount() == subs
	}, waitFor, tick)
}

func idsOf(rows []*models.Entry) []string {
	out := make([]string, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.ID)
	}
	return out
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unsubscribed", Unsubscribed.String())
	assert.Equal(t, "subscribing", Subscribing.String())
	assert.Equal(t, "subscribed", Subscribed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestRun_ReconcilesBeforeSubscribed(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	gw.rows = []*models.Entry{
		{ID: "a", OwnerID: "U", Date: jan10, Description: "mine"},
		{ID: "b", OwnerID: "V", Date: jan10.AddDays(1), Description: "other"},
	}
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})

	h.waitSubscribed(t, 1)
	assert.Equal(t, []string{"a"}, idsOf(h.store.Mine()))
	assert.Equal(t, []string{"b", "a"}, idsOf(h.store.Recent()))
	assert.Equal(t, "U", h.store.Owner())
}

// An own submission arrives through the feed and lands in both views.
func TestInsert_OwnRowPatchedIntoMineAndRecentRefetched(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	e := gw.insert("U", jan10, "wrote report")

	require.Eventually(t, func() bool { return len(h.store.Mine()) == 1 }, waitFor, tick)
	h.syncer.WaitIdle()

	mine := h.store.Mine()
	assert.Equal(t, e.ID, mine[0].ID)
	assert.Equal(t, "wrote report", mine[0].Description)
	assert.Equal(t, jan10, mine[0].Date)
	require.NotNil(t, mine[0].Owner)
	assert.Equal(t, "Una", mine[0].Owner.Name)

	require.Eventually(t, func() bool { return slices.Contains(idsOf(h.store.Recent()), e.ID) }, waitFor, tick)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.syncer.metrics.events.WithLabelValues("INSERT", "patched")))
}

// A remote member's insert does not touch Mine; Recent gets the owner join
// from the store.
func TestInsert_RemoteRowOnlyRefetchesRecent(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["V"] = &models.OwnerDisplay{Name: "Vic", StudyYear: 4}
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)
	before := gw.recentCalls()

	e := gw.insert("V", jan10, "shot event")

	require.Eventually(t, func() bool { return gw.recentCalls() > before }, waitFor, tick)
	h.syncer.WaitIdle()

	assert.Empty(t, h.store.Mine())
	recent := h.store.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, e.ID, recent[0].ID)
	require.NotNil(t, recent[0].Owner)
	assert.Equal(t, "Vic", recent[0].Owner.Name)
	assert.Equal(t, 4, recent[0].Owner.StudyYear)
}

func TestInsert_OwnRowWithoutProfileWaitsForRefetch(t *testing.T) {
	gw := newFakeGateway()
	h := start(t, gw, &fakeIdentity{identity: userU})
	h.waitSubscribed(t, 1)
	before := gw.recentCalls()

	gw.insert("U", jan10, "no profile yet")

	require.Eventually(t, func() bool { return gw.recentCalls() > before }, waitFor, tick)
	h.syncer.WaitIdle()
	assert.Empty(t, h.store.Mine())
	assert.Len(t, h.store.Recent(), 1)
}

// The same insert delivered twice leaves one copy in each view.
func TestInsert_DuplicateDeliveryKeepsOneCopy(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	e := gw.insert("U", jan10, "twice")
	h.gw.lastSub().events <- models.ChangeEvent{Type: models.ChangeInsert, Table: common.EntriesTable, New: e}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.syncer.metrics.events.WithLabelValues("INSERT", "duplicate")) == 1
	}, waitFor, tick)
	h.syncer.WaitIdle()

	assert.Equal(t, []string{e.ID}, idsOf(h.store.Mine()))
	assert.Equal(t, []string{e.ID}, idsOf(h.store.Recent()))
}

func TestDelete_RemovesFromBothViews(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	gw.rows = []*models.Entry{{ID: "E7", OwnerID: "U", Date: jan10}, {ID: "E8", OwnerID: "U", Date: jan10}}
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)
	require.Len(t, h.store.Recent(), 2)

	gw.delete("E7")

	require.Eventually(t, func() bool { return len(h.store.Mine()) == 1 }, waitFor, tick)
	assert.Equal(t, []string{"E8"}, idsOf(h.store.Mine()))
	assert.Equal(t, []string{"E8"}, idsOf(h.store.Recent()))

	// a repeated delete is a no-op
	gw.lastSub().events <- models.ChangeEvent{Type: models.ChangeDelete, Old: &models.Entry{ID: "E7"}}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.syncer.metrics.events.WithLabelValues("DELETE", "noop")) == 1
	}, waitFor, tick)
	assert.Equal(t, []string{"E8"}, idsOf(h.store.Mine()))
}

func TestEvents_OtherTableIgnored(t *testing.T) {
	gw := newFakeGateway()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)
	before := gw.recentCalls()

	gw.lastSub().events <- models.ChangeEvent{Type: models.ChangeInsert, Table: "profiles", New: &models.Entry{ID: "x", OwnerID: "U"}}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.syncer.metrics.events.WithLabelValues("INSERT", "ignored")) == 1
	}, waitFor, tick)
	assert.Equal(t, before, gw.recentCalls())
	assert.Empty(t, h.store.Mine())
}

func TestRun_ProfileChangeRebinds(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	gw.rows = []*models.Entry{{ID: "a", OwnerID: "U", Date: jan10}}
	who := &fakeIdentity{identity: userU}
	h := start(t, gw, who)
	h.waitSubscribed(t, 1)
	first := gw.lastSub()

	who.set(userU, profU)

	h.waitSubscribed(t, 2)
	select {
	case <-first.closed:
	default:
		t.Fatal("old subscription must be closed before the new one is used")
	}
	assert.Len(t, h.store.Mine(), 1)
}

func TestRun_IdentityChangeResetsViews(t *testing.T) {
	gw := newFakeGateway()
	gw.rows = []*models.Entry{
		{ID: "a", OwnerID: "U", Date: jan10},
		{ID: "b", OwnerID: "V", Date: jan10},
	}
	who := &fakeIdentity{identity: userU, profile: profU}
	h := start(t, gw, who)
	h.waitSubscribed(t, 1)
	require.Equal(t, []string{"a"}, idsOf(h.store.Mine()))

	who.set(&models.Identity{ID: "V"}, nil)
	h.waitSubscribed(t, 2)
	assert.Equal(t, "V", h.store.Owner())
	assert.Equal(t, []string{"b"}, idsOf(h.store.Mine()))

	who.set(nil, nil)
	require.Eventually(t, func() bool {
		return h.syncer.State() == Unsubscribed && h.store.Owner() == ""
	}, waitFor, tick)
	assert.Empty(t, h.store.Mine())
	assert.Empty(t, h.store.Recent())
	select {
	case <-gw.lastSub().closed:
	case <-time.After(waitFor):
		t.Fatal("subscription leaked after sign-out")
	}
}

func TestRun_ResubscribesAfterDropAndReconciles(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	// a row committed while the feed is down is recovered by the refetch
	gw.mu.Lock()
	gw.rows = append(gw.rows, &models.Entry{ID: "missed", OwnerID: "U", Date: jan10})
	gw.subErrs = 2
	gw.mu.Unlock()
	gw.lastSub().drop(io.ErrUnexpectedEOF)

	h.waitSubscribed(t, 2)
	assert.Equal(t, []string{"missed"}, idsOf(h.store.Mine()))
	assert.Equal(t, []string{"missed"}, idsOf(h.store.Recent()))
	assert.GreaterOrEqual(t, testutil.ToFloat64(h.syncer.metrics.resubscribes), 3.0)
}

func TestRun_ReconcileFailureKeepsRetrying(t *testing.T) {
	gw := newFakeGateway()
	gw.profiles["U"] = profU.Display()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	gw.mu.Lock()
	gw.rows = append(gw.rows, &models.Entry{ID: "missed", OwnerID: "U", Date: jan10})
	gw.failList = errors.New("store unavailable")
	gw.mu.Unlock()
	gw.lastSub().drop(io.ErrUnexpectedEOF)

	require.Eventually(t, func() bool { return gw.subCount() >= 3 }, waitFor, tick)
	assert.NotEqual(t, Subscribed, h.syncer.State(), "views are not current until a reconcile succeeds")
	assert.Empty(t, h.store.Mine())
	gw.mu.Lock()
	failedSubs := slices.Clone(gw.subs[1:2])
	gw.mu.Unlock()
	for _, sub := range failedSubs {
		select {
		case <-sub.closed:
		case <-time.After(waitFor):
			t.Fatal("subscription kept open after a failed reconcile")
		}
	}

	gw.mu.Lock()
	gw.failList = nil
	gw.mu.Unlock()

	require.Eventually(t, func() bool {
		return h.syncer.State() == Subscribed && slices.Contains(idsOf(h.store.Mine()), "missed")
	}, waitFor, tick)
	assert.Equal(t, []string{"missed"}, idsOf(h.store.Recent()))
}

func TestInsert_BurstCoalescesRecentRefetches(t *testing.T) {
	gw := newFakeGateway()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)
	before := gw.recentCalls()

	gate := make(chan struct{})
	gw.mu.Lock()
	gw.recentGate = gate
	gw.mu.Unlock()

	const burst = 15
	for i := 0; i < burst; i++ {
		gw.insert("V", jan10, "burst")
	}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.syncer.metrics.fetches.WithLabelValues("recent", "coalesced")) == burst-1
	}, waitFor, tick)

	gw.mu.Lock()
	gw.recentGate = nil
	gw.mu.Unlock()
	close(gate)
	h.syncer.WaitIdle()

	assert.Equal(t, 2, gw.recentCalls()-before, "one reload in flight plus one follow-up")
	assert.Len(t, h.store.Recent(), burst)
}

func TestRun_FetchFailureLeavesViewsStale(t *testing.T) {
	gw := newFakeGateway()
	gw.rows = []*models.Entry{{ID: "a", OwnerID: "U", Date: jan10}}
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	gw.mu.Lock()
	gw.failList = errors.New("boom")
	gw.mu.Unlock()

	gw.lastSub().events <- models.ChangeEvent{Type: models.ChangeInsert, New: &models.Entry{ID: "z", OwnerID: "V", Date: jan10}}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.syncer.metrics.fetches.WithLabelValues("recent", "error")) == 1
	}, waitFor, tick)
	h.syncer.WaitIdle()
	assert.Equal(t, []string{"a"}, idsOf(h.store.Recent()))
}

func TestRun_TeardownClosesSubscription(t *testing.T) {
	gw := newFakeGateway()
	h := start(t, gw, &fakeIdentity{identity: userU, profile: profU})
	h.waitSubscribed(t, 1)

	h.stop()

	assert.Equal(t, Unsubscribed, h.syncer.State())
	select {
	case <-gw.lastSub().closed:
	default:
		t.Fatal("subscription not closed on teardown")
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(h.syncer.metrics.state))
}
