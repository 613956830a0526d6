package uploads

import (
	"context"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

type Repository interface {
	// Enqueue records u as pending, replacing any earlier record of the
	// same local file.
	Enqueue(ctx context.Context, u *models.ExportUpload) error

	// Pending lists the uploads still owed, oldest first.
	Pending(ctx context.Context) ([]*models.ExportUpload, error)

	// MarkUploaded completes the upload of localPath and stores its
	// download URL.
	MarkUploaded(ctx context.Context, localPath, url string) error

	// Drop forgets localPath.
	Drop(ctx context.Context, localPath string) error
}
