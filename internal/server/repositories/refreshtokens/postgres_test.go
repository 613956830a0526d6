package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worklogger/internal/common"
)

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)
	exp := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("EET", 2*3600))

	mock.ExpectExec(q(insertToken)).
		WithArgs("u1", "tok", exp.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), "u1", "tok", exp))

	mock.ExpectExec(q(insertToken)).WillReturnError(errors.New("db down"))
	require.ErrorContains(t, repo.Create(context.Background(), "u1", "tok", exp), "insert refresh token: db down")
}

func TestFind(t *testing.T) {
	repo, mock := newRepo(t)
	exp := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	created := exp.Add(-time.Hour)

	mock.ExpectQuery(q(selectToken)).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow("r1", "u1", "tok", exp, created))
	got, err := repo.Find(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "tok", got.Token)
	assert.True(t, got.Expires.Equal(exp))
	assert.True(t, got.CreatedAt.Equal(created))

	mock.ExpectQuery(q(selectToken)).WithArgs("gone").WillReturnError(sql.ErrNoRows)
	_, err = repo.Find(context.Background(), "gone")
	require.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(q(selectToken)).WithArgs("tok").WillReturnError(errors.New("conn reset"))
	_, err = repo.Find(context.Background(), "tok")
	require.ErrorContains(t, err, "select refresh token: conn reset")
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(q(deleteToken)).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "tok"))

	mock.ExpectExec(q(deleteToken)).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "tok"), common.ErrorNotFound)

	mock.ExpectExec(q(deleteToken)).WithArgs("tok").WillReturnError(errors.New("conn reset"))
	require.ErrorContains(t, repo.Delete(context.Background(), "tok"), "delete refresh token: conn reset")
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(q(pruneExpired)).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	mock.ExpectExec(q(pruneExpired)).WithArgs(now).WillReturnError(errors.New("locked"))
	_, err = repo.DeleteExpired(context.Background(), now)
	require.ErrorContains(t, err, "prune refresh tokens: locked")
}
