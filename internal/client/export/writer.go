// Package export renders entry listings as CSV or XLSX files.
//
// Both formats carry the same columns: the owner's name and study year as
// joined by the store, the entry date and its description.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

var headers = []string{"Name", "Study Year", "Date", "Description"}

type Writer interface {
	Write(w io.Writer, entries []*models.Entry) error
	Ext() string
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "", "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &XLSXWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// record is one output row. An unknown owner yields empty name and year.
func record(e *models.Entry) []string {
	var name, year string
	if e.Owner != nil {
		name = e.Owner.Name
		if e.Owner.StudyYear > 0 {
			year = strconv.Itoa(e.Owner.StudyYear)
		}
	}
	return []string{name, year, e.Date.String(), e.Description}
}
