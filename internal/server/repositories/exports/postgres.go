package exports

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/dbx"
	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// PostgresRepository implements export records over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Export) error {
	query := `
		INSERT INTO exports (user_id, filename, storage_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, e.UserID, e.Filename, e.StorageKey).Scan(&e.ID, &e.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
