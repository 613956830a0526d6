package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `select id, full_name, study_year, email from profile_cache where id = ?`

	var p models.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.DisplayName, &p.StudyYear, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached profile: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, p *models.Profile) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("failed to cache profile: empty id")
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from profile_cache where id <> ?`, p.ID); err != nil {
			return fmt.Errorf("failed to evict cached profiles: %w", err)
		}

		query := `insert into profile_cache (id, full_name, study_year, email, cached_at)
			values (?, ?, ?, ?, CURRENT_TIMESTAMP)
			on conflict(id) do update set
				full_name = excluded.full_name,
				study_year = excluded.study_year,
				email = excluded.email,
				cached_at = excluded.cached_at`
		if _, err := tx.ExecContext(ctx, query, p.ID, p.DisplayName, p.StudyYear, p.Email); err != nil {
			return fmt.Errorf("failed to cache profile: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `delete from profile_cache`); err != nil {
		return fmt.Errorf("failed to clear profile cache: %w", err)
	}
	return nil
}
