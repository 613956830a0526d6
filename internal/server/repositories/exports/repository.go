// Package exports records the export files handed to object storage.
package exports

import (
	"context"

	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

type Repository interface {
	// Create stores e and fills its ID and CreatedAt.
	Create(ctx context.Context, e *models.Export) error
}
