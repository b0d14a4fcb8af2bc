package domain

import (
	"slices"
	"time"
)

// LineItem is one row of a POS export as read from the input file.
type LineItem struct {
	ReceiptID    string
	ItemName     string
	CategoryName string
	// Price is the line amount charged for the row, already multiplied by quantity.
	Price    float64
	Quantity int64

	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	WeekdayCode int
	GenderCode  int
	AgeCode     int
}

// Table is the typed output of the record loader, in source order.
type Table struct {
	Source string
	Rows   []LineItem
}

// DerivedItem is a line item with its derived fields attached.
type DerivedItem struct {
	LineItem
	Timestamp    time.Time
	WeekdayLabel string
	GenderLabel  string
	AgeLabel     string
	// ReceiptKey is the first-seen ordinal of ReceiptID within the dataset.
	ReceiptKey uint32
}

// Dataset is the immutable snapshot a session queries against.
type Dataset struct {
	id        string
	source    string
	loadedAt  time.Time
	labels    LabelSet
	items     []DerivedItem
	itemNames []string
	receipts  int
}

func NewDataset(id, source string, labels LabelSet, items []DerivedItem, loadedAt time.Time) *Dataset {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	receipts := make(map[uint32]struct{})
	for _, it := range items {
		receipts[it.ReceiptKey] = struct{}{}
		if _, ok := seen[it.ItemName]; ok {
			continue
		}
		seen[it.ItemName] = struct{}{}
		names = append(names, it.ItemName)
	}
	slices.Sort(names)

	return &Dataset{
		id:        id,
		source:    source,
		loadedAt:  loadedAt,
		labels:    labels,
		items:     items,
		itemNames: names,
		receipts:  len(receipts),
	}
}

func (d *Dataset) ID() string          { return d.id }
func (d *Dataset) Source() string      { return d.source }
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }
func (d *Dataset) Labels() LabelSet    { return d.labels }
func (d *Dataset) Len() int            { return len(d.items) }
func (d *Dataset) ReceiptCount() int   { return d.receipts }
func (d *Dataset) ItemCount() int      { return len(d.itemNames) }

// Items returns the rows in source order. Callers must not modify the slice.
func (d *Dataset) Items() []DerivedItem { return d.items }

// ItemNames returns the sorted, deduplicated item names of the dataset.
func (d *Dataset) ItemNames() []string { return slices.Clone(d.itemNames) }

// HasItem reports whether any row carries the given item name.
func (d *Dataset) HasItem(name string) bool {
	_, found := slices.BinarySearch(d.itemNames, name)
	return found
}

// Head returns up to n leading rows.
func (d *Dataset) Head(n int) []DerivedItem {
	if n < 0 || n > len(d.items) {
		n = len(d.items)
	}
	return d.items[:n]
}
