package models

import "time"

// Export is an export file a member was given an upload URL for.
type Export struct {
	ID         string
	UserID     string
	Filename   string
	StorageKey string
	CreatedAt  time.Time
}
