package adapters

import (
	"github.com/de-tools/pos-atlas/pkg/models/api"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

func MapDatasetToApiSession(sessionID string, ds *domain.Dataset) api.Session {
	return api.Session{
		SessionID: sessionID,
		DatasetID: ds.ID(),
		Source:    ds.Source(),
		Rows:      ds.Len(),
		Receipts:  ds.ReceiptCount(),
		Items:     ds.ItemCount(),
		LoadedAt:  ds.LoadedAt(),
	}
}

// MapDomainViewToApiView keeps only the tables of the rendered view. Those are
// never nil, so an empty table encodes as [] rather than being dropped.
func MapDomainViewToApiView(v domain.ViewResult) api.View {
	out := api.View{
		View:  string(v.View),
		Notes: v.Notes,
	}

	switch v.View {
	case domain.ViewOverview:
		if v.Overview != nil {
			out.Overview = &api.Overview{
				Receipts:      v.Overview.Receipts,
				TotalSales:    v.Overview.TotalSales,
				TotalQuantity: v.Overview.TotalQuantity,
				AvgSpend:      v.Overview.AvgSpend,
				UniqueItems:   v.Overview.UniqueItems,
			}
		}
		out.Preview = mapTable(v.Preview, func(it domain.DerivedItem) api.PreviewRow {
			return api.PreviewRow{
				ReceiptID: it.ReceiptID,
				Item:      it.ItemName,
				Category:  it.CategoryName,
				Price:     it.Price,
				Quantity:  it.Quantity,
				Timestamp: it.Timestamp,
				Weekday:   it.WeekdayLabel,
				Gender:    it.GenderLabel,
				Age:       it.AgeLabel,
			}
		})

	case domain.ViewHourly:
		out.Hourly = mapTable(v.Hourly, func(h domain.HourlyStat) api.HourlyStat { return api.HourlyStat(h) })

	case domain.ViewProductRanking:
		out.TopBySales = mapTable(v.TopBySales, mapProductRank)
		out.TopByQuantity = mapTable(v.TopByQuantity, mapProductRank)
		out.Categories = mapTable(v.Categories, func(c domain.CategoryShare) api.CategoryShare { return api.CategoryShare(c) })

	case domain.ViewDemographics:
		out.Gender = mapTable(v.Gender, mapDemographic)
		out.Age = mapTable(v.Age, mapDemographic)
		out.GenderTopCategories = mapTable(v.GenderTopCategories, mapCategoryRank)
		out.AgeTopCategories = mapTable(v.AgeTopCategories, mapCategoryRank)

	case domain.ViewCooccurrence:
		if v.Cooccurrence != nil {
			out.Cooccurrence = &api.Cooccurrence{
				Target: v.Cooccurrence.Target,
				Found:  v.Cooccurrence.Found,
				Items:  mapTable(v.Cooccurrence.Items, func(c domain.CoPurchase) api.CoPurchase { return api.CoPurchase(c) }),
			}
		}
	}

	return out
}

func mapTable[D, A any](in []D, mapRow func(D) A) []A {
	out := make([]A, 0, len(in))
	for _, row := range in {
		out = append(out, mapRow(row))
	}
	return out
}

func mapProductRank(p domain.ProductRank) api.ProductRank { return api.ProductRank(p) }

func mapDemographic(d domain.DemographicStat) api.DemographicStat { return api.DemographicStat(d) }

func mapCategoryRank(c domain.CategoryRank) api.CategoryRank { return api.CategoryRank(c) }
