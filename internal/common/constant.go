// Package common contains shared constants and sentinel errors used across
// worklogger components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// EntriesTable is the change-feed table name of work log entries.
const EntriesTable = "work_logs"

// DefaultRecentLimit bounds the recent projection and the recent query.
const DefaultRecentLimit = 50

// MaxDescriptionLen caps an entry description in runes. It keeps change
// notifications under the Postgres NOTIFY payload limit.
const MaxDescriptionLen = 1000

// Change event types carried by the notification stream.
const (
	EventInsert = "INSERT"
	EventDelete = "DELETE"

	// EventSubscribed is sent once on every stream after the server has
	// attached it to the feed.
	EventSubscribed = "SUBSCRIBED"
)

// Category is the optional subclub an entry is filed under.
type Category struct {
	Key   string
	Label string
}

// Categories lists the accepted category keys in display order.
var Categories = []Category{
	{Key: "photo", Label: "Photography"},
	{Key: "video", Label: "Videography"},
	{Key: "smd", Label: "social media and design"},
	{Key: "edit", Label: "Editing"},
	{Key: "hr", Label: "Humans"},
}

// CategoryLabel returns the label for key, or "" when key is unknown.
func CategoryLabel(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label
		}
	}
	return ""
}
