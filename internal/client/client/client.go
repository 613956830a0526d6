package client

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

// Client is the log store gateway used by the CLI.
type Client interface {
	Close() error

	Register(ctx context.Context, username, fullName, email string, salt, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Restore(ctx context.Context, refreshToken string) error
	Logout()
	SetTokenObserver(fn func(refreshToken string))
	WhoAmI(ctx context.Context) (*models.Identity, error)
	Ping(ctx context.Context) error

	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, studyYear int) (*models.Profile, error)

	ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Entry, error)
	Insert(ctx context.Context, date civil.Date, description, category string) (*models.Entry, error)
	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, table string) (Subscription, error)

	GetExportUploadURL(ctx context.Context, filename string) (*UploadTarget, error)
}

// Subscription is a live change feed. Events is closed when the feed ends;
// Err then tells why, nil meaning Close was called.
type Subscription interface {
	Events() <-chan models.ChangeEvent
	Err() error
	Close()
}

// UploadTarget is a presigned object storage location.
type UploadTarget struct {
	Key    string
	PutURL string
	GetURL string
}
