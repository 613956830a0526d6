// Package entries provides the PostgreSQL-backed work log repository.
package entries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/dbx"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

const selectJoined = `
	SELECT w.id, w.user_id, w.log_date, w.description, COALESCE(w.category, ''), w.created_at,
	       p.full_name, p.study_year
	FROM work_logs w
	LEFT JOIN profiles p ON p.id = w.user_id
`

const orderNewest = `
	ORDER BY w.log_date DESC, w.created_at DESC
`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts entry and fills in its id and creation time. An empty
// category is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO work_logs (user_id, log_date, description, category)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.LogDate.String(), entry.Description, entry.Category).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Entry, error) {
	return r.list(ctx, selectJoined+` WHERE w.user_id = $1`+orderNewest, userID)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.Entry, error) {
	return r.list(ctx, selectJoined+orderNewest+` LIMIT $1`, limit)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	rows, err := r.list(ctx, selectJoined+` WHERE w.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return rows[0], nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM work_logs
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var (
			item      models.Entry
			logDate   time.Time
			ownerName sql.NullString
			ownerYear sql.NullInt32
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &logDate, &item.Description, &item.Category, &item.CreatedAt,
			&ownerName, &ownerYear,
		); err != nil {
			return nil, err
		}
		item.LogDate = civil.DateOf(logDate)
		if ownerName.Valid {
			item.Owner = &models.Owner{FullName: ownerName.String, StudyYear: int(ownerYear.Int32)}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
