// Package projection keeps the two client-side views of the shared entry
// log: the signed-in member's own entries and the most recent entries of
// everyone.
//
// Both views are ordered by date descending with ties broken by creation
// time, newest first, and hold any entry id at most once. Mutations come from
// three directions at once: bulk fetches that replace a view, synchronous
// appends and removals driven by change notifications, and optimistic deletes
// issued by the member. Store serializes them under one lock and uses a
// logical clock so that a fetch which was already in flight when a row was
// deleted or appended cannot undo that change when it lands.
package projection

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

// View selects one of the two projections.
type View int

const (
	// Mine holds the signed-in member's entries, unbounded.
	Mine View = iota
	// Recent holds the newest entries of all members, bounded by the limit.
	Recent
)

func (v View) String() string {
	switch v {
	case Mine:
		return "mine"
	case Recent:
		return "recent"
	}
	return "unknown"
}

// Mark stamps a fetch with the store clock at the moment it was issued.
type Mark struct {
	view View
	seq  uint64
}

func (m Mark) View() View { return m.view }

type pendingDelete struct {
	rows      [2]*models.Entry
	confirmed bool
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	limit int
	owner string
	clock uint64

	views   [2][]*models.Entry
	applied [2]uint64

	// appended and tombstones map an id to the clock value of the
	// synchronous append or removal. They are kept only while a fetch
	// issued before that value is still in flight.
	appended   map[string]uint64
	tombstones map[string]uint64
	inflight   map[uint64]struct{}
	pending    map[string]*pendingDelete
}

// NewStore creates an empty store whose Recent view holds at most limit rows.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1
	}
	return &Store{
		limit:      limit,
		appended:   make(map[string]uint64),
		tombstones: make(map[string]uint64),
		inflight:   make(map[uint64]struct{}),
		pending:    make(map[string]*pendingDelete),
	}
}

// Limit is the Recent bound.
func (s *Store) Limit() int { return s.limit }

// Owner is the identity the Mine view is filtered to.
func (s *Store) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Reset empties both views and binds Mine to owner. Fetches issued before the
// reset are ignored when they land.
func (s *Store) Reset(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = owner
	s.clock++
	s.views = [2][]*models.Entry{}
	s.applied = [2]uint64{s.clock, s.clock}
	clear(s.appended)
	clear(s.tombstones)
	clear(s.inflight)
	clear(s.pending)
}

// BeginFetch registers a fetch of view v and returns its mark. Every mark must
// be passed to exactly one of ApplyFetch or AbortFetch.
func (s *Store) BeginFetch(v View) Mark {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock++
	s.inflight[s.clock] = struct{}{}
	return Mark{view: v, seq: s.clock}
}

// AbortFetch releases a mark whose fetch failed. The view is left as it was.
func (s *Store) AbortFetch(m Mark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, m.seq)
	s.prune()
}

// ApplyFetch replaces the view with rows fetched under mark m. It returns
// false, leaving the view untouched, when a fetch issued after m has already
// been applied.
//
// Rows deleted locally, or pending an optimistic delete, are dropped. Rows
// appended after m was issued are kept even if the fetch did not see them.
func (s *Store) ApplyFetch(m Mark, rows []*models.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, m.seq)
	defer s.prune()

	if m.seq <= s.applied[m.view] {
		return false
	}
	s.applied[m.view] = m.seq

	seen := make(map[string]struct{}, len(rows))
	out := make([]*models.Entry, 0, len(rows))
	for _, e := range rows {
		if !s.admits(m.view, e) {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}

	for _, e := range s.views[m.view] {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		if seq, ok := s.appended[e.ID]; ok && seq > m.seq {
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}

	sortEntries(out)
	s.views[m.view] = s.bound(m.view, out)
	return true
}

// Append inserts e into view v unless its id is already present, it has been
// deleted, or it belongs to someone else and v is Mine. The row is placed
// before the first row that is not newer than it. It reports whether the view
// changed.
func (s *Store) Append(v View, e *models.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.admits(v, e) || s.index(v, e.ID) >= 0 {
		return false
	}

	s.clock++
	s.appended[e.ID] = s.clock
	s.insertSorted(v, e)
	s.prune()
	return true
}

// Remove drops id from both views. Removing an absent id is a no-op apart
// from remembering the deletion for fetches already in flight.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.confirmed = true
	}

	s.clock++
	s.tombstones[id] = s.clock
	delete(s.appended, id)

	removed := false
	for v := range s.views {
		if i := s.index(View(v), id); i >= 0 {
			s.views[v] = slices.Delete(s.views[v], i, i+1)
			removed = true
		}
	}
	s.prune()
	return removed
}

// BeginDelete optimistically removes id from both views and holds the removed
// rows until CommitDelete or RollbackDelete. It returns false when a delete of
// id is already pending.
func (s *Store) BeginDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; ok {
		return false
	}

	p := &pendingDelete{}
	for v := range s.views {
		if i := s.index(View(v), id); i >= 0 {
			p.rows[v] = s.views[v][i]
			s.views[v] = slices.Delete(s.views[v], i, i+1)
		}
	}
	s.pending[id] = p
	return true
}

// CommitDelete finalizes a pending delete the store has accepted.
func (s *Store) CommitDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return
	}
	delete(s.pending, id)

	s.clock++
	s.tombstones[id] = s.clock
	delete(s.appended, id)
	s.prune()
}

// RollbackDelete puts back the rows removed by BeginDelete. Nothing is
// restored when a delete notification for id arrived in the meantime.
func (s *Store) RollbackDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)

	if p.confirmed {
		return false
	}

	restored := false
	for v, e := range p.rows {
		if e == nil || s.index(View(v), id) >= 0 {
			continue
		}
		s.insertSorted(View(v), e)
		restored = true
	}
	return restored
}

// Mine returns a copy of the Mine view.
func (s *Store) Mine() []*models.Entry {
	return s.Snapshot(Mine)
}

// Recent returns a copy of the Recent view.
func (s *Store) Recent() []*models.Entry {
	return s.Snapshot(Recent)
}

// Snapshot returns a copy of view v. Entries are shared and must not be
// modified.
func (s *Store) Snapshot(v View) []*models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.views[v])
}

// Find looks id up in Mine first, then Recent.
func (s *Store) Find(id string) *models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for v := range s.views {
		if i := s.index(View(v), id); i >= 0 {
			return s.views[v][i]
		}
	}
	return nil
}

func (s *Store) admits(v View, e *models.Entry) bool {
	if e == nil || e.ID == "" {
		return false
	}
	if _, ok := s.tombstones[e.ID]; ok {
		return false
	}
	if _, ok := s.pending[e.ID]; ok {
		return false
	}
	return v != Mine || e.OwnerID == s.owner
}

func (s *Store) index(v View, id string) int {
	return slices.IndexFunc(s.views[v], func(e *models.Entry) bool { return e.ID == id })
}

func (s *Store) insertSorted(v View, e *models.Entry) {
	rows := s.views[v]
	i := slices.IndexFunc(rows, func(r *models.Entry) bool { return !r.NewerThan(e) })
	if i < 0 {
		i = len(rows)
	}
	s.views[v] = s.bound(v, slices.Insert(rows, i, e))
}

func (s *Store) bound(v View, rows []*models.Entry) []*models.Entry {
	if v == Recent && len(rows) > s.limit {
		clear(rows[s.limit:])
		return rows[:s.limit]
	}
	return rows
}

// prune forgets appends and removals that no in-flight fetch predates.
func (s *Store) prune() {
	oldest := s.clock + 1
	for seq := range s.inflight {
		oldest = min(oldest, seq)
	}
	for id, seq := range s.appended {
		if seq < oldest {
			delete(s.appended, id)
		}
	}
	for id, seq := range s.tombstones {
		if seq < oldest {
			delete(s.tombstones, id)
		}
	}
}

func sortEntries(rows []*models.Entry) {
	slices.SortStableFunc(rows, func(a, b *models.Entry) int {
		switch {
		case a.NewerThan(b):
			return -1
		case b.NewerThan(a):
			return 1
		}
		return 0
	})
}
