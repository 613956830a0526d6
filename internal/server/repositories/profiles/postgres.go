package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/dbx"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, full_name, study_year, email, updated_at
		FROM profiles
		WHERE id = $1
	`
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FullName, &p.StudyYear, &p.Email, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, full_name, study_year, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			full_name = EXCLUDED.full_name,
			study_year = EXCLUDED.study_year,
			email = EXCLUDED.email,
			updated_at = now()
		RETURNING updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, p.ID, p.FullName, p.StudyYear, p.Email).Scan(&p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
