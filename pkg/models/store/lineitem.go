package store

import "time"

// LineItem is a derived row as stored in the line_items table.
type LineItem struct {
	Seq          int64
	ReceiptID    string
	ItemName     string
	CategoryName string
	Price        float64
	Quantity     int64
	Hour         int
	OccurredAt   time.Time
	WeekdayLabel string
	GenderLabel  string
	GenderRank   int
	AgeLabel     string
	AgeRank      int
}

type Totals struct {
	Receipts int64
	Sales    float64
	Quantity int64
	Items    int64
}

type HourlyTotal struct {
	Hour     int
	Receipts int64
	Sales    float64
}

type ItemTotal struct {
	Item     string
	Sales    float64
	Quantity int64
}

type CategoryTotal struct {
	Category string
	Sales    float64
}

type LabelTotal struct {
	Label    string
	Receipts int64
	Sales    float64
}

type LabelCategoryTotal struct {
	Label    string
	Category string
	Sales    float64
	Rank     int64
}

type ItemCount struct {
	Item  string
	Count int64
}
