package domain

type Overview struct {
	Receipts      int
	TotalSales    float64
	TotalQuantity int64
	AvgSpend      float64
	UniqueItems   int
}

type HourlyStat struct {
	Hour     int
	Receipts int
	Sales    float64
	AvgSpend float64
}

type RankMetric string

const (
	RankBySales    RankMetric = "sales"
	RankByQuantity RankMetric = "quantity"
)

type ProductRank struct {
	Item     string
	Sales    float64
	Quantity int64
}

type CategoryShare struct {
	Category string
	Sales    float64
	Share    float64
}

type DemographicStat struct {
	Label    string
	Receipts int
	Sales    float64
	AvgSpend float64
}

type CategoryRank struct {
	Label    string
	Category string
	Sales    float64
	Rank     int
}

type CoPurchase struct {
	Item  string
	Count int
}

// Cooccurrence is the basket lookup result. Found is false when the target
// item does not appear in the dataset at all.
type Cooccurrence struct {
	Target string
	Found  bool
	Items  []CoPurchase
}
