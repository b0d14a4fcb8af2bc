package adapters

import (
	"fmt"
	"strconv"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

var viewTitles = map[domain.View]string{
	domain.ViewOverview:       "Overview",
	domain.ViewHourly:         "Sales by hour",
	domain.ViewProductRanking: "Product ranking",
	domain.ViewDemographics:   "Customer demographics",
	domain.ViewCooccurrence:   "Co-occurrence",
}

func MapViewToReport(ds *domain.Dataset, v domain.ViewResult) *domain.Report {
	report := &domain.Report{
		Title:    viewTitles[v.View],
		Source:   ds.Source(),
		LoadedAt: ds.LoadedAt(),
		Notes:    v.Notes,
	}

	if v.Overview != nil {
		report.Sections = append(report.Sections, domain.ReportSection{
			Title:   "Summary",
			Columns: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Receipts", strconv.Itoa(v.Overview.Receipts)},
				{"Total sales", money(v.Overview.TotalSales)},
				{"Items sold", strconv.FormatInt(v.Overview.TotalQuantity, 10)},
				{"Average spend", money(v.Overview.AvgSpend)},
				{"Unique items", strconv.Itoa(v.Overview.UniqueItems)},
			},
		})

		preview := domain.ReportSection{
			Title:   fmt.Sprintf("First %d rows", len(v.Preview)),
			Columns: []string{"Receipt", "Item", "Category", "Price", "Qty", "Time", "Weekday", "Gender", "Age"},
		}
		for _, it := range v.Preview {
			preview.Rows = append(preview.Rows, []string{
				it.ReceiptID,
				it.ItemName,
				it.CategoryName,
				money(it.Price),
				strconv.FormatInt(it.Quantity, 10),
				it.Timestamp.Format("2006-01-02 15:04:05"),
				it.WeekdayLabel,
				it.GenderLabel,
				it.AgeLabel,
			})
		}
		report.Sections = append(report.Sections, preview)
	}

	if v.View == domain.ViewHourly {
		section := domain.ReportSection{
			Title:   "Hourly",
			Columns: []string{"Hour", "Receipts", "Sales", "Avg spend"},
			Empty:   "No transactions.",
		}
		for _, h := range v.Hourly {
			section.Rows = append(section.Rows, []string{
				strconv.Itoa(h.Hour), strconv.Itoa(h.Receipts), money(h.Sales), money(h.AvgSpend),
			})
		}
		report.Sections = append(report.Sections, section)
	}

	if v.View == domain.ViewProductRanking {
		report.Sections = append(report.Sections,
			productSection("Top products by sales", v.TopBySales),
			productSection("Top products by quantity", v.TopByQuantity),
		)
		section := domain.ReportSection{
			Title:   "Sales by category",
			Columns: []string{"Category", "Sales", "Share"},
			Empty:   "No transactions.",
		}
		for _, c := range v.Categories {
			section.Rows = append(section.Rows, []string{c.Category, money(c.Sales), percent(c.Share)})
		}
		report.Sections = append(report.Sections, section)
	}

	if v.View == domain.ViewDemographics {
		report.Sections = append(report.Sections,
			demographicSection("By gender", v.Gender),
			demographicSection("By age group", v.Age),
			categoryRankSection("Top categories by gender", v.GenderTopCategories),
			categoryRankSection("Top categories by age group", v.AgeTopCategories),
		)
	}

	if v.Cooccurrence != nil {
		section := domain.ReportSection{
			Title:   fmt.Sprintf("Bought together with %s", v.Cooccurrence.Target),
			Columns: []string{"Item", "Lines"},
			Empty:   "Always purchased alone.",
		}
		if !v.Cooccurrence.Found {
			section.Empty = "No data for this item."
		}
		for _, c := range v.Cooccurrence.Items {
			section.Rows = append(section.Rows, []string{c.Item, strconv.Itoa(c.Count)})
		}
		report.Sections = append(report.Sections, section)
	}

	return report
}

func productSection(title string, ranks []domain.ProductRank) domain.ReportSection {
	section := domain.ReportSection{
		Title:   title,
		Columns: []string{"#", "Item", "Sales", "Quantity"},
		Empty:   "No transactions.",
	}
	for i, p := range ranks {
		section.Rows = append(section.Rows, []string{
			strconv.Itoa(i + 1), p.Item, money(p.Sales), strconv.FormatInt(p.Quantity, 10),
		})
	}
	return section
}

func demographicSection(title string, stats []domain.DemographicStat) domain.ReportSection {
	section := domain.ReportSection{
		Title:   title,
		Columns: []string{"Group", "Receipts", "Sales", "Avg spend"},
	}
	for _, s := range stats {
		section.Rows = append(section.Rows, []string{
			s.Label, strconv.Itoa(s.Receipts), money(s.Sales), money(s.AvgSpend),
		})
	}
	return section
}

func categoryRankSection(title string, ranks []domain.CategoryRank) domain.ReportSection {
	section := domain.ReportSection{
		Title:   title,
		Columns: []string{"Group", "#", "Category", "Sales"},
		Empty:   "No transactions.",
	}
	for _, r := range ranks {
		section.Rows = append(section.Rows, []string{r.Label, strconv.Itoa(r.Rank), r.Category, money(r.Sales)})
	}
	return section
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
