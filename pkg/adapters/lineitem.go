package adapters

import (
	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/de-tools/pos-atlas/pkg/models/store"
)

func MapDomainItemToStoreItem(seq int, it domain.DerivedItem, labels domain.LabelSet) store.LineItem {
	return store.LineItem{
		Seq:          int64(seq),
		ReceiptID:    it.ReceiptID,
		ItemName:     it.ItemName,
		CategoryName: it.CategoryName,
		Price:        it.Price,
		Quantity:     it.Quantity,
		Hour:         it.Hour,
		OccurredAt:   it.Timestamp,
		WeekdayLabel: it.WeekdayLabel,
		GenderLabel:  it.GenderLabel,
		GenderRank:   labels.Rank(domain.DimensionGender, it.GenderLabel),
		AgeLabel:     it.AgeLabel,
		AgeRank:      labels.Rank(domain.DimensionAge, it.AgeLabel),
	}
}

func MapDatasetToStoreItems(ds *domain.Dataset) []store.LineItem {
	items := make([]store.LineItem, 0, ds.Len())
	for i, it := range ds.Items() {
		items = append(items, MapDomainItemToStoreItem(i, it, ds.Labels()))
	}
	return items
}

func MapStoreHourlyToDomain(h store.HourlyTotal) domain.HourlyStat {
	return domain.HourlyStat{
		Hour:     h.Hour,
		Receipts: int(h.Receipts),
		Sales:    h.Sales,
	}
}

func MapStoreItemTotalToDomain(it store.ItemTotal) domain.ProductRank {
	return domain.ProductRank{
		Item:     it.Item,
		Sales:    it.Sales,
		Quantity: it.Quantity,
	}
}

func MapStoreLabelTotalToDomain(l store.LabelTotal) domain.DemographicStat {
	return domain.DemographicStat{
		Label:    l.Label,
		Receipts: int(l.Receipts),
		Sales:    l.Sales,
	}
}

func MapStoreLabelCategoryToDomain(l store.LabelCategoryTotal) domain.CategoryRank {
	return domain.CategoryRank{
		Label:    l.Label,
		Category: l.Category,
		Sales:    l.Sales,
		Rank:     int(l.Rank),
	}
}

func MapStoreItemCountToDomain(c store.ItemCount) domain.CoPurchase {
	return domain.CoPurchase{
		Item:  c.Item,
		Count: int(c.Count),
	}
}
