package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Entry is a work_logs row. The json tags follow the column names, which is
// also the shape of the rows carried by change notifications.
type Entry struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	LogDate     civil.Date `json:"log_date"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`

	// Owner is the profiles join, nil when the owner has no profile or the
	// row did not come from a query.
	Owner *Owner `json:"-"`
}

// Owner holds the display attributes joined in from profiles.
type Owner struct {
	FullName  string
	StudyYear int
}
