package derive

import (
	"fmt"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

const timestampLayout = "2006-1-2 15:04:05"

// DerivationError reports a row whose time fields do not form a valid
// calendar date and time. Row is 1-based.
type DerivationError struct {
	Row int
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive row %d: invalid timestamp: %v", e.Row, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// Derive attaches the timestamp, labels and receipt key to every row. It fails
// on the first row with an invalid timestamp; no partial result is returned.
func Derive(t *domain.Table, labels domain.LabelSet) ([]domain.DerivedItem, error) {
	items := make([]domain.DerivedItem, 0, len(t.Rows))
	receiptKeys := make(map[string]uint32)

	for i, row := range t.Rows {
		ts, err := Timestamp(row)
		if err != nil {
			return nil, &DerivationError{Row: i + 1, Err: err}
		}

		key, ok := receiptKeys[row.ReceiptID]
		if !ok {
			key = uint32(len(receiptKeys))
			receiptKeys[row.ReceiptID] = key
		}

		items = append(items, domain.DerivedItem{
			LineItem:     row,
			Timestamp:    ts,
			WeekdayLabel: labels.Weekday(row.WeekdayCode),
			GenderLabel:  labels.Gender(row.GenderCode),
			AgeLabel:     labels.Age(row.AgeCode),
			ReceiptKey:   key,
		})
	}

	return items, nil
}

// Timestamp composes the six time components of a row into a UTC time.
// Out-of-range components are rejected rather than normalized.
func Timestamp(row domain.LineItem) (time.Time, error) {
	s := fmt.Sprintf("%d-%d-%d %02d:%02d:%02d",
		row.Year, row.Month, row.Day, row.Hour, row.Minute, row.Second)
	return time.Parse(timestampLayout, s)
}
