package api

import "time"

type Session struct {
	SessionID string    `json:"session_id"`
	DatasetID string    `json:"dataset_id"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Receipts  int       `json:"receipts"`
	Items     int       `json:"items"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type Items struct {
	Items []string `json:"items"`
}

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Column  string `json:"column,omitempty"`
	Row     int    `json:"row,omitempty"`
}

type Overview struct {
	Receipts      int     `json:"receipts"`
	TotalSales    float64 `json:"total_sales"`
	TotalQuantity int64   `json:"total_quantity"`
	AvgSpend      float64 `json:"avg_spend"`
	UniqueItems   int     `json:"unique_items"`
}

type PreviewRow struct {
	ReceiptID string    `json:"receipt_id"`
	Item      string    `json:"item"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
	Weekday   string    `json:"weekday"`
	Gender    string    `json:"gender"`
	Age       string    `json:"age"`
}

type HourlyStat struct {
	Hour     int     `json:"hour"`
	Receipts int     `json:"receipts"`
	Sales    float64 `json:"sales"`
	AvgSpend float64 `json:"avg_spend"`
}

type ProductRank struct {
	Item     string  `json:"item"`
	Sales    float64 `json:"sales"`
	Quantity int64   `json:"quantity"`
}

type CategoryShare struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Share    float64 `json:"share"`
}

type DemographicStat struct {
	Label    string  `json:"label"`
	Receipts int     `json:"receipts"`
	Sales    float64 `json:"sales"`
	AvgSpend float64 `json:"avg_spend"`
}

type CategoryRank struct {
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Rank     int     `json:"rank"`
}

type CoPurchase struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type Cooccurrence struct {
	Target string       `json:"target"`
	Found  bool         `json:"found"`
	Items  []CoPurchase `json:"items"`
}

// View holds the tables of one dashboard view. Tables of the requested view
// are always present, as [] when empty; tables of other views are omitted.
type View struct {
	View string `json:"view"`

	Overview *Overview    `json:"overview,omitempty"`
	Preview  []PreviewRow `json:"preview,omitzero"`

	Hourly []HourlyStat `json:"hourly,omitzero"`

	TopBySales    []ProductRank   `json:"top_by_sales,omitzero"`
	TopByQuantity []ProductRank   `json:"top_by_quantity,omitzero"`
	Categories    []CategoryShare `json:"categories,omitzero"`

	Gender              []DemographicStat `json:"gender,omitzero"`
	Age                 []DemographicStat `json:"age,omitzero"`
	GenderTopCategories []CategoryRank    `json:"gender_top_categories,omitzero"`
	AgeTopCategories    []CategoryRank    `json:"age_top_categories,omitzero"`

	Cooccurrence *Cooccurrence `json:"cooccurrence,omitempty"`

	Notes []string `json:"notes,omitempty"`
}
