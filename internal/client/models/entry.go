// Package models defines client-side data models used by the worklogger CLI.
package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Entry is one work log record as seen by the client.
type Entry struct {
	// ID is store-assigned and never reused.
	ID      string
	OwnerID string

	// Date is the calendar day the work was done on.
	Date        civil.Date
	Description string

	// Category is an optional subclub key, see common.Categories.
	Category string

	CreatedAt time.Time

	// Owner is the display join returned by the store; nil when absent.
	Owner *OwnerDisplay
}

// OwnerDisplay is the owner's name and study year joined in at read time.
type OwnerDisplay struct {
	Name      string
	StudyYear int
}

// NewerThan reports whether e sorts before o: later date first, then later
// creation time.
func (e *Entry) NewerThan(o *Entry) bool {
	if e.Date != o.Date {
		return e.Date.After(o.Date)
	}
	return e.CreatedAt.After(o.CreatedAt)
}

// OwnerLabel is the name column for listings and exports. Rows owned by self
// read "You".
func (e *Entry) OwnerLabel(self string) string {
	if self != "" && e.OwnerID == self {
		return "You"
	}
	if e.Owner != nil && e.Owner.Name != "" {
		return e.Owner.Name
	}
	return "Member"
}

// StudyYearLabel renders the owner's study year as "Year N" or "-".
func (e *Entry) StudyYearLabel() string {
	if e.Owner == nil || e.Owner.StudyYear == 0 {
		return "-"
	}
	return fmt.Sprintf("Year %d", e.Owner.StudyYear)
}
