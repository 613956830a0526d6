package models

import "time"

// Profile is the member record keyed by the user id. Name and email are
// copied from the account when the profile is saved.
type Profile struct {
	ID        string
	FullName  string
	StudyYear int
	Email     string
	UpdatedAt time.Time
}
