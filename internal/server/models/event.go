package models

// Change types.
const (
	EventInsert = "INSERT"
	EventDelete = "DELETE"
)

// ChangeEvent is one change of a table. New is set for inserts and Old for
// deletes.
type ChangeEvent struct {
	Type  string  `json:"type"`
	Table string  `json:"table"`
	New   *Entry  `json:"new,omitempty"`
	Old   *RowKey `json:"old,omitempty"`
}

// RowKey identifies a deleted row.
type RowKey struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}
