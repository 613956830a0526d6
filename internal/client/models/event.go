package models

// ChangeType is the kind of a pushed change.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is one notification from the entry change feed. New is set for
// inserts and Old for deletes.
type ChangeEvent struct {
	Type  ChangeType
	Table string
	New   *Entry
	Old   *Entry
}
