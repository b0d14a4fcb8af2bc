package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(&domain.Report{
		Title:    "Overview",
		Source:   "sales.csv",
		LoadedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Sections: []domain.ReportSection{
			{
				Title:   "Summary",
				Columns: []string{"Metric", "Value"},
				Rows: [][]string{
					{"Receipts", "2"},
					{"Total sales", "9.00"},
				},
			},
			{
				Title:   "Bought together with Milk",
				Columns: []string{"Item", "Lines"},
				Empty:   "Always purchased alone.",
			},
		},
		Notes: []string{"Category ranks count sales only."},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Source: sales.csv (loaded 2024-05-01 09:30:00)")
	assert.Contains(t, out, "=== Summary ===")
	assert.Contains(t, out, "+-------------+-------+")
	assert.Contains(t, out, "| Metric      | Value |")
	assert.Contains(t, out, "| Total sales | 9.00  |")
	assert.Contains(t, out, "=== Bought together with Milk ===\nAlways purchased alone.")
	assert.Contains(t, out, "Note: Category ranks count sales only.")
}

func TestReporter_Widths(t *testing.T) {
	reporter := &Reporter{config: TableConfig{MinColumnWidth: 4, MaxColumnWidth: 8}}

	widths := reporter.widths(domain.ReportSection{
		Columns: []string{"#", "Item"},
		Rows: [][]string{
			{"1", "おにぎり"},
			{"2", "Extremely long name"},
		},
	})

	assert.Equal(t, []int{4, 8}, widths)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 8))
	assert.Equal(t, "Extreme…", clip("Extremely long name", 8))
	assert.Equal(t, "おにぎ…", clip("おにぎりサンドイッチ", 8))
	assert.LessOrEqual(t, displayWidth(clip("おにぎりサンドイッチ", 8)), 8)
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 4, displayWidth("Male"))
	assert.Equal(t, 4, displayWidth("男性"))
	assert.Equal(t, 6, displayWidth("ＡＢＣ"))
	assert.Equal(t, 3, displayWidth("ｱｲｳ"))
}

func TestReporter_AlignsFullWidthLabels(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(&domain.Report{
		Title: "Customer demographics",
		Sections: []domain.ReportSection{{
			Title:   "By gender",
			Columns: []string{"Group", "Receipts"},
			Rows: [][]string{
				{"男性", "2"},
				{"女性", "1"},
				{"実年", "1"},
				{"Unknown", "1"},
			},
		}},
	})
	require.NoError(t, err)

	var table []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "|") || strings.HasPrefix(line, "+") {
			table = append(table, line)
		}
	}
	require.Len(t, table, 8)
	for _, line := range table {
		assert.Equal(t, displayWidth(table[0]), displayWidth(line), line)
	}
	assert.Contains(t, table, "| 男性    | 2        |")
}

func TestReporter_RowsShorterThanColumns(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	err := reporter.Handle(&domain.Report{
		Title: "Sales by hour",
		Sections: []domain.ReportSection{{
			Title:   "Hourly",
			Columns: []string{"Hour", "Receipts"},
			Rows:    [][]string{{"9"}},
		}},
	})
	require.NoError(t, err)

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines, "| 9    |          |")
}
