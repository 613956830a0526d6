package notify

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/server/models"
)

// decodeEvent parses a change payload as written by the work_logs trigger
// or by RedisFeed.Publish.
func decodeEvent(payload []byte) (models.ChangeEvent, error) {
	var ev models.ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode change: %w", err)
	}

	switch ev.Type {
	case models.EventInsert:
		if ev.New == nil || ev.New.ID == "" {
			return ev, fmt.Errorf("decode change: insert without row")
		}
	case models.EventDelete:
		if ev.Old == nil || ev.Old.ID == "" {
			return ev, fmt.Errorf("decode change: delete without key")
		}
	default:
		return ev, fmt.Errorf("decode change: unknown type %q", ev.Type)
	}
	return ev, nil
}

func encodeEvent(ev models.ChangeEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return b, nil
}
