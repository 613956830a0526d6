package profiles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worklogger/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE profile_cache (
  id         TEXT PRIMARY KEY,
  full_name  TEXT NOT NULL DEFAULT '',
  study_year INTEGER NOT NULL DEFAULT 0,
  email      TEXT NOT NULL DEFAULT '',
  cached_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	p, err := r.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSave_InsertThenUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Profile{ID: "u1", DisplayName: "Ann Lee", StudyYear: 2, Email: "ann@example.com"}))

	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.Profile{ID: "u1", DisplayName: "Ann Lee", StudyYear: 2, Email: "ann@example.com"}, *p)

	require.NoError(t, r.Save(ctx, &models.Profile{ID: "u1", DisplayName: "Ann Lee", StudyYear: 3}))
	p, err = r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.StudyYear)
	assert.Equal(t, "", p.Email)
}

func TestSave_ReplacesOtherAccount(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Profile{ID: "u1", DisplayName: "Ann"}))
	require.NoError(t, r.Save(ctx, &models.Profile{ID: "u2", DisplayName: "Bob"}))

	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = r.Get(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Bob", p.DisplayName)
}

func TestSave_RejectsEmptyID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	require.Error(t, r.Save(context.Background(), &models.Profile{}))
	require.Error(t, r.Save(context.Background(), nil))
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, &models.Profile{ID: "u1", DisplayName: "Ann"}))
	require.NoError(t, r.Clear(ctx))

	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "u1")
	require.ErrorContains(t, err, "failed to get cached profile")

	require.Error(t, r.Save(ctx, &models.Profile{ID: "u1"}))

	require.ErrorContains(t, r.Clear(ctx), "failed to clear profile cache")
}
