package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/dbx"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/entries"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/exports"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/worklogger/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	byLogin    *models.User
	byLoginErr error

	byID    *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	u.ID = "42"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.byLoginErr != nil {
		return nil, f.byLoginErr
	}
	return f.byLogin, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byID, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error
	created   []string

	pruned   int64
	pruneErr error
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, _ time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(context.Context, string) error { return f.delErr }

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.pruned, f.pruneErr
}

type fakeProfilesRepo struct {
	profile  *models.Profile
	getErr   error
	saved    *models.Profile
	upErr    error
	upserted int
}

func (f *fakeProfilesRepo) Get(context.Context, string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.profile == nil {
		return nil, common.ErrorNotFound
	}
	return f.profile, nil
}

func (f *fakeProfilesRepo) Upsert(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.upserted++
	if f.upErr != nil {
		return nil, f.upErr
	}
	f.saved = p
	return p, nil
}

type fakeEntriesRepo struct {
	mu      sync.Mutex
	rows    map[string]*models.Entry
	nextID  int
	err     error
	limit   int
	deleted []string
}

func newFakeEntries(rows ...*models.Entry) *fakeEntriesRepo {
	f := &fakeEntriesRepo{rows: map[string]*models.Entry{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeEntriesRepo) Create(_ context.Context, e *models.Entry) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	e.ID = fmt.Sprintf("e%d", f.nextID)
	e.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.rows[e.ID] = e
	return e, nil
}

func (f *fakeEntriesRepo) ListByOwner(_ context.Context, userID string) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Entry
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEntriesRepo) ListRecent(_ context.Context, limit int) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeEntriesRepo) Get(_ context.Context, id string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeEntriesRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeExportsRepo struct {
	created []*models.Export
	err     error
}

func (f *fakeExportsRepo) Create(_ context.Context, e *models.Export) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, e)
	return nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	p  *fakeProfilesRepo
	e  *fakeEntriesRepo
	ex *fakeExportsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.p }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.e }
func (m *fakeRepoManager) Exports(dbx.DBTX) exports.Repository             { return m.ex }

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
