package export

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
)

// Scope selects which rows go into an export.
type Scope int

const (
	All Scope = iota
	Mine
	ByCategory
)

type Filter struct {
	Scope    Scope
	Category common.Category
}

// ParseFilter understands "all", "mine", and a category key or label.
func ParseFilter(arg string) (Filter, error) {
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(arg) {
	case "", "all":
		return Filter{Scope: All}, nil
	case "mine", "my":
		return Filter{Scope: Mine}, nil
	}

	for _, c := range common.Categories {
		if strings.EqualFold(arg, c.Key) || strings.EqualFold(arg, c.Label) {
			return Filter{Scope: ByCategory, Category: c}, nil
		}
	}
	return Filter{}, fmt.Errorf("%w: unknown export selection %q", common.ErrorValidation, arg)
}

// Apply keeps the rows of entries matched by f. Mine scope expects entries
// that are already the member's own.
func (f Filter) Apply(entries []*models.Entry) []*models.Entry {
	if f.Scope != ByCategory {
		return entries
	}
	var out []*models.Entry
	for _, e := range entries {
		if e.Category == f.Category.Key {
			out = append(out, e)
		}
	}
	return out
}

// Describe names the selection for messages.
func (f Filter) Describe() string {
	switch f.Scope {
	case Mine:
		return "your entries"
	case ByCategory:
		return f.Category.Label
	}
	return "the whole club"
}

// FileName is the export file name for f in the given extension.
func (f Filter) FileName(ext string) string {
	var base string
	switch f.Scope {
	case Mine:
		base = "my"
	case ByCategory:
		base = strings.ReplaceAll(strings.ToLower(f.Category.Label), " ", "_")
	default:
		base = "whole_club"
	}
	return base + "_logs." + ext
}
