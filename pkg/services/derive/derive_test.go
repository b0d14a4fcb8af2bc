package derive

import (
	"errors"
	"testing"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(receipt string, year, month, day, hour, minute, second int) domain.LineItem {
	return domain.LineItem{
		ReceiptID: receipt,
		ItemName:  "Apple",
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      hour,
		Minute:    minute,
		Second:    second,
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		row     domain.LineItem
		want    time.Time
		wantErr bool
	}{
		{
			name: "single digit fields are padded",
			row:  row("A", 2024, 3, 7, 9, 5, 1),
			want: time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC),
		},
		{
			name: "leap day",
			row:  row("A", 2024, 2, 29, 23, 59, 59),
			want: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{name: "day past month end", row: row("A", 2023, 2, 29, 10, 0, 0), wantErr: true},
		{name: "month 13", row: row("A", 2024, 13, 1, 10, 0, 0), wantErr: true},
		{name: "hour 24", row: row("A", 2024, 1, 1, 24, 0, 0), wantErr: true},
		{name: "minute 60", row: row("A", 2024, 1, 1, 10, 60, 0), wantErr: true},
		{name: "negative second", row: row("A", 2024, 1, 1, 10, 0, -1), wantErr: true},
		{name: "day zero", row: row("A", 2024, 1, 0, 10, 0, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Timestamp(tt.row)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDerive_LabelsAndReceiptKeys(t *testing.T) {
	table := &domain.Table{Rows: []domain.LineItem{
		{ReceiptID: "R9", ItemName: "Apple", Year: 2024, Month: 1, Day: 1, WeekdayCode: 1, GenderCode: 1, AgeCode: 4},
		{ReceiptID: "R2", ItemName: "Bread", Year: 2024, Month: 1, Day: 1, WeekdayCode: 7, GenderCode: 2, AgeCode: 2},
		{ReceiptID: "R9", ItemName: "Milk", Year: 2024, Month: 1, Day: 1, WeekdayCode: 8, GenderCode: 9, AgeCode: 0},
	}}

	items, err := Derive(table, domain.EnglishLabels)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Monday", items[0].WeekdayLabel)
	assert.Equal(t, "Male", items[0].GenderLabel)
	assert.Equal(t, "Senior", items[0].AgeLabel)

	assert.Equal(t, "Sunday", items[1].WeekdayLabel)
	assert.Equal(t, "Female", items[1].GenderLabel)
	assert.Equal(t, "Young Adult", items[1].AgeLabel)

	assert.Equal(t, "Unknown", items[2].WeekdayLabel)
	assert.Equal(t, "Unknown", items[2].GenderLabel)
	assert.Equal(t, "Unknown", items[2].AgeLabel)

	assert.Equal(t, uint32(0), items[0].ReceiptKey)
	assert.Equal(t, uint32(1), items[1].ReceiptKey)
	assert.Equal(t, uint32(0), items[2].ReceiptKey)
}

func TestDerive_JapaneseLabels(t *testing.T) {
	table := &domain.Table{Rows: []domain.LineItem{
		{ReceiptID: "R1", Year: 2024, Month: 1, Day: 1, WeekdayCode: 6, GenderCode: 3, AgeCode: 3},
	}}

	items, err := Derive(table, domain.JapaneseLabels)
	require.NoError(t, err)
	assert.Equal(t, "土曜日", items[0].WeekdayLabel)
	assert.Equal(t, "不明", items[0].GenderLabel)
	assert.Equal(t, "大人", items[0].AgeLabel)
}

func TestDerive_InvalidRowFailsWholeTable(t *testing.T) {
	table := &domain.Table{Rows: []domain.LineItem{
		row("A", 2024, 4, 30, 10, 0, 0),
		row("B", 2024, 4, 31, 10, 0, 0),
	}}

	items, err := Derive(table, domain.EnglishLabels)
	assert.Nil(t, items)

	var derr *DerivationError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 2, derr.Row)
	assert.Error(t, errors.Unwrap(err))
}

func TestDerive_EmptyTable(t *testing.T) {
	items, err := Derive(&domain.Table{}, domain.EnglishLabels)
	require.NoError(t, err)
	assert.Empty(t, items)
}
