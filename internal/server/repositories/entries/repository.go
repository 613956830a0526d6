package entries

import (
	"context"

	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// Repository reads and writes work_logs. Listings join the owner's profile
// and are ordered by log date, then creation time, newest first.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Entry, error)
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.Entry, error)
	// Delete removes id and returns common.ErrorNotFound if there was no row.
	Delete(ctx context.Context, id string) error
}
