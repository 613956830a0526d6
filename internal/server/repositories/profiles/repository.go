// Package profiles stores member profiles.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when id has no profile.
	Get(ctx context.Context, id string) (*models.Profile, error)
	// Upsert creates or replaces the profile with p.ID.
	Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error)
}
