package export

import (
	"bytes"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
)

func sample() []*models.Entry {
	return []*models.Entry{
		{
			ID:          "e1",
			Date:        civil.Date{Year: 2024, Month: 1, Day: 10},
			Description: `wrote "report"`,
			Category:    "photo",
			Owner:       &models.OwnerDisplay{Name: "Ann Lee", StudyYear: 2},
		},
		{
			ID:          "e2",
			Date:        civil.Date{Year: 2024, Month: 1, Day: 9},
			Description: "edited, cut",
			Category:    "edit",
		},
	}
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCSVWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, sample()))
	golden(t).Assert(t, "entries_csv", buf.Bytes())
}

func TestCSVWriter_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, nil))
	golden(t).Assert(t, "empty_csv", buf.Bytes())
}

func TestXLSXWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&XLSXWriter{}).Write(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Study Year", "Date", "Description"}, rows[0])
	assert.Equal(t, []string{"Ann Lee", "2", "2024-01-10", `wrote "report"`}, rows[1])
	// trailing empty cells are trimmed by GetRows
	assert.Equal(t, "2024-01-09", rows[2][2])
	assert.Equal(t, "edited, cut", rows[2][3])
}

func TestWriterForFormat(t *testing.T) {
	w, err := WriterForFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, "csv", w.Ext())

	w, err = WriterForFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", w.Ext())

	_, err = WriterForFormat("pdf")
	require.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		arg   string
		scope Scope
		key   string
	}{
		{"", All, ""},
		{"all", All, ""},
		{"mine", Mine, ""},
		{"photo", ByCategory, "photo"},
		{"Editing", ByCategory, "edit"},
		{"social media and design", ByCategory, "smd"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			f, err := ParseFilter(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.scope, f.Scope)
			assert.Equal(t, tt.key, f.Category.Key)
		})
	}

	_, err := ParseFilter("cooking")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestFilter_ApplyAndFileName(t *testing.T) {
	rows := sample()

	all := Filter{Scope: All}
	assert.Len(t, all.Apply(rows), 2)
	assert.Equal(t, "whole_club_logs.csv", all.FileName("csv"))

	mine := Filter{Scope: Mine}
	assert.Equal(t, "my_logs.xlsx", mine.FileName("xlsx"))

	smd, err := ParseFilter("smd")
	require.NoError(t, err)
	assert.Empty(t, smd.Apply(rows))
	assert.Equal(t, "social_media_and_design_logs.csv", smd.FileName("csv"))
	assert.Equal(t, "social media and design", smd.Describe())

	edit, err := ParseFilter("edit")
	require.NoError(t, err)
	got := edit.Apply(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "e2", got[0].ID)
}
