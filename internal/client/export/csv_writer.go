package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
)

// CSVWriter writes a plain header line followed by one line per entry with
// every value double-quoted.
type CSVWriter struct{}

func (w *CSVWriter) Ext() string { return "csv" }

func (w *CSVWriter) Write(out io.Writer, entries []*models.Entry) error {
	bw := bufio.NewWriter(out)

	if _, err := bw.WriteString(strings.Join(headers, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, e := range entries {
		values := record(e)
		for i, v := range values {
			values[i] = quote(v)
		}
		if _, err := bw.WriteString(strings.Join(values, ",") + "\n"); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
