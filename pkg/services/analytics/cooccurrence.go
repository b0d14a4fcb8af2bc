package analytics

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

// Cooccurrence ranks the items bought on the same receipts as target.
//
// Every row of a matching receipt counts once, so an item bought twice next
// to the target counts twice. Rows of the target itself never count, also
// when a receipt carries the target more than once. Counts are sorted
// descending with item name breaking ties, and the first n are kept.
//
// A target absent from the dataset yields Found == false; a target that was
// always bought alone yields Found == true with no items.
func Cooccurrence(ds *domain.Dataset, target string, n int) domain.Cooccurrence {
	result := domain.Cooccurrence{Target: target, Items: []domain.CoPurchase{}}
	if !ds.HasItem(target) {
		return result
	}
	result.Found = true

	baskets := roaring.New()
	for _, it := range ds.Items() {
		if it.ItemName == target {
			baskets.Add(it.ReceiptKey)
		}
	}

	counts := make(map[string]int)
	for _, it := range ds.Items() {
		if it.ItemName != target && baskets.Contains(it.ReceiptKey) {
			counts[it.ItemName]++
		}
	}

	for item, count := range counts {
		result.Items = append(result.Items, domain.CoPurchase{Item: item, Count: count})
	}
	slices.SortFunc(result.Items, func(a, b domain.CoPurchase) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Item, b.Item))
	})
	result.Items = truncate(result.Items, n)
	return result
}
