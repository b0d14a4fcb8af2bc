package analytics

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

const (
	DefaultTopProducts     = 20
	DefaultTopCategories   = 5
	DefaultTopCooccurrence = 10
)

// ratio is the zero-guarded average used for every per-receipt figure.
func ratio(sum float64, receipts int) float64 {
	if receipts == 0 {
		return 0
	}
	return sum / float64(receipts)
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

type receiptGroup struct {
	receipts *roaring.Bitmap
	sales    float64
}

func newReceiptGroup() *receiptGroup {
	return &receiptGroup{receipts: roaring.New()}
}

func (g *receiptGroup) add(it domain.DerivedItem) {
	g.receipts.Add(it.ReceiptKey)
	g.sales += it.Price
}

func (g *receiptGroup) count() int {
	return int(g.receipts.GetCardinality())
}

func Overview(ds *domain.Dataset) domain.Overview {
	all := newReceiptGroup()
	var quantity int64
	for _, it := range ds.Items() {
		all.add(it)
		quantity += it.Quantity
	}

	receipts := all.count()
	return domain.Overview{
		Receipts:      receipts,
		TotalSales:    all.sales,
		TotalQuantity: quantity,
		AvgSpend:      ratio(all.sales, receipts),
		UniqueItems:   ds.ItemCount(),
	}
}

func groupByHour(ds *domain.Dataset) map[int]*receiptGroup {
	groups := make(map[int]*receiptGroup)
	for _, it := range ds.Items() {
		g, ok := groups[it.Hour]
		if !ok {
			g = newReceiptGroup()
			groups[it.Hour] = g
		}
		g.add(it)
	}
	return groups
}

// Hourly groups by the raw hour field, in ascending hour order.
func Hourly(ds *domain.Dataset) []domain.HourlyStat {
	groups := groupByHour(ds)
	stats := make([]domain.HourlyStat, 0, len(groups))
	for hour, g := range groups {
		stats = append(stats, domain.HourlyStat{
			Hour:     hour,
			Receipts: g.count(),
			Sales:    g.sales,
			AvgSpend: ratio(g.sales, g.count()),
		})
	}
	slices.SortFunc(stats, func(a, b domain.HourlyStat) int { return cmp.Compare(a.Hour, b.Hour) })
	return stats
}

// TopProducts ranks items by the given metric, descending. Equal totals keep
// the order in which the items first appear in the dataset. n <= 0 keeps all.
func TopProducts(ds *domain.Dataset, metric domain.RankMetric, n int) []domain.ProductRank {
	index := make(map[string]int)
	ranks := make([]domain.ProductRank, 0)
	for _, it := range ds.Items() {
		i, ok := index[it.ItemName]
		if !ok {
			i = len(ranks)
			index[it.ItemName] = i
			ranks = append(ranks, domain.ProductRank{Item: it.ItemName})
		}
		ranks[i].Sales += it.Price
		ranks[i].Quantity += it.Quantity
	}

	slices.SortStableFunc(ranks, func(a, b domain.ProductRank) int {
		if metric == domain.RankByQuantity {
			return cmp.Compare(b.Quantity, a.Quantity)
		}
		return cmp.Compare(b.Sales, a.Sales)
	})
	return truncate(ranks, n)
}

// CategoryShares reports sales per category and its share of total sales,
// largest first with first-seen order breaking ties.
func CategoryShares(ds *domain.Dataset) []domain.CategoryShare {
	index := make(map[string]int)
	shares := make([]domain.CategoryShare, 0)
	var total float64
	for _, it := range ds.Items() {
		i, ok := index[it.CategoryName]
		if !ok {
			i = len(shares)
			index[it.CategoryName] = i
			shares = append(shares, domain.CategoryShare{Category: it.CategoryName})
		}
		shares[i].Sales += it.Price
		total += it.Price
	}

	for i := range shares {
		if total != 0 {
			shares[i].Share = shares[i].Sales / total
		}
	}
	slices.SortStableFunc(shares, func(a, b domain.CategoryShare) int { return cmp.Compare(b.Sales, a.Sales) })
	return shares
}

// Demographics breaks receipts and sales down by a demographic label. Every
// mapped label is reported in code order, with zero figures when absent; the
// unknown label follows only when some row carries it. An empty dataset
// yields no rows.
func Demographics(ds *domain.Dataset, dim domain.Dimension) []domain.DemographicStat {
	groups := make(map[string]*receiptGroup)
	for _, it := range ds.Items() {
		label := dim.Label(it)
		g, ok := groups[label]
		if !ok {
			g = newReceiptGroup()
			groups[label] = g
		}
		g.add(it)
	}

	found := make([]domain.DemographicStat, 0, len(groups))
	for label, g := range groups {
		found = append(found, domain.DemographicStat{
			Label:    label,
			Receipts: g.count(),
			Sales:    g.sales,
		})
	}
	return CompleteDemographics(ds.Labels(), dim, found)
}

// CompleteDemographics orders found stats by label code and fills in a zero
// row for every mapped label that has no rows. An empty table stays empty.
func CompleteDemographics(labels domain.LabelSet, dim domain.Dimension, found []domain.DemographicStat) []domain.DemographicStat {
	if len(found) == 0 {
		return []domain.DemographicStat{}
	}

	byLabel := make(map[string]domain.DemographicStat, len(found))
	for _, stat := range found {
		byLabel[stat.Label] = stat
	}

	order := slices.Clone(labels.Labels(dim))
	if _, ok := byLabel[labels.Unknown]; ok {
		order = append(order, labels.Unknown)
	}

	stats := make([]domain.DemographicStat, 0, len(order))
	for _, label := range order {
		stat, ok := byLabel[label]
		if !ok {
			stat = domain.DemographicStat{Label: label}
		}
		stat.AvgSpend = ratio(stat.Sales, stat.Receipts)
		stats = append(stats, stat)
	}
	return stats
}

// TopCategories keeps the n best-selling categories within each demographic
// label. A category missing from a label's list may still have sales there.
func TopCategories(ds *domain.Dataset, dim domain.Dimension, n int) []domain.CategoryRank {
	type key struct{ label, category string }
	sales := make(map[key]float64)
	for _, it := range ds.Items() {
		sales[key{dim.Label(it), it.CategoryName}] += it.Price
	}

	byLabel := make(map[string][]domain.CategoryRank)
	for k, v := range sales {
		byLabel[k.label] = append(byLabel[k.label], domain.CategoryRank{Label: k.label, Category: k.category, Sales: v})
	}

	labels := ds.Labels()
	order := make([]string, 0, len(byLabel))
	for label := range byLabel {
		order = append(order, label)
	}
	slices.SortFunc(order, func(a, b string) int {
		return cmp.Or(cmp.Compare(labels.Rank(dim, a), labels.Rank(dim, b)), cmp.Compare(a, b))
	})

	out := make([]domain.CategoryRank, 0)
	for _, label := range order {
		ranks := byLabel[label]
		sortCategoryRanks(ranks)
		ranks = truncate(ranks, n)
		for i := range ranks {
			ranks[i].Rank = i + 1
		}
		out = append(out, ranks...)
	}
	return out
}

// sortCategoryRanks orders ranks within one label by sales descending, then
// category name ascending.
func sortCategoryRanks(ranks []domain.CategoryRank) {
	slices.SortFunc(ranks, func(a, b domain.CategoryRank) int {
		return cmp.Or(cmp.Compare(b.Sales, a.Sales), cmp.Compare(a.Category, b.Category))
	})
}
