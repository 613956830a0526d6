package profiles

import (
	"context"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

// Repository is the local profile cache.
type Repository interface {
	// Get returns the cached profile of id, or (nil, nil).
	Get(ctx context.Context, id string) (*models.Profile, error)

	// Save replaces the cached profile.
	Save(ctx context.Context, p *models.Profile) error

	// Clear drops everything, typically on sign-out.
	Clear(ctx context.Context) error
}
