package lineitems

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/pos-atlas/pkg/models/store"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
)

// Store keeps derived line items in DuckDB, partitioned by dataset id, and
// answers the dashboard aggregations in SQL.
type Store interface {
	Add(ctx context.Context, dataset string, items []store.LineItem) error
	Delete(ctx context.Context, dataset string) error

	Totals(ctx context.Context, dataset string) (store.Totals, error)
	Hourly(ctx context.Context, dataset string) ([]store.HourlyTotal, error)
	ItemTotals(ctx context.Context, dataset string, metric Metric, limit int) ([]store.ItemTotal, error)
	CategoryTotals(ctx context.Context, dataset string) ([]store.CategoryTotal, error)
	LabelTotals(ctx context.Context, dataset string, dim Dimension) ([]store.LabelTotal, error)
	LabelCategoryTotals(ctx context.Context, dataset string, dim Dimension, limit int) ([]store.LabelCategoryTotal, error)
	ItemExists(ctx context.Context, dataset, item string) (bool, error)
	CoPurchases(ctx context.Context, dataset, item string, limit int) ([]store.ItemCount, error)
}

type Metric string

const (
	MetricSales    Metric = "sales"
	MetricQuantity Metric = "quantity"
)

// Dimension names the label column family (<dim>_label, <dim>_rank).
type Dimension string

const (
	DimensionGender Dimension = "gender"
	DimensionAge    Dimension = "age"
)

type lineItemStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &lineItemStore{db: db}, nil
}

const insertQuery = `
	INSERT INTO line_items (
		dataset, seq, receipt_id, item_name, category_name, price, quantity, hour,
		occurred_at, weekday_label, gender_label, gender_rank, age_label, age_rank
	) VALUES (
		?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
	)`

func (s *lineItemStore) Add(ctx context.Context, dataset string, items []store.LineItem) (err error) {
	if len(items) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	if tx == nil {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if cerr := tx.Commit(); cerr != nil {
				err = fmt.Errorf("commit line items: %w", cerr)
			}
		}()
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err = stmt.ExecContext(ctx,
			dataset,
			item.Seq,
			item.ReceiptID,
			item.ItemName,
			item.CategoryName,
			item.Price,
			item.Quantity,
			item.Hour,
			item.OccurredAt,
			item.WeekdayLabel,
			item.GenderLabel,
			item.GenderRank,
			item.AgeLabel,
			item.AgeRank,
		)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", item.Seq, err)
		}
	}

	return nil
}

func (s *lineItemStore) Delete(ctx context.Context, dataset string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM line_items WHERE dataset = ?`, dataset)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", dataset, err)
	}
	return nil
}

func (s *lineItemStore) Totals(ctx context.Context, dataset string) (store.Totals, error) {
	query := `
		SELECT
			COUNT(DISTINCT receipt_id),
			COALESCE(SUM(price), 0),
			COALESCE(CAST(SUM(quantity) AS BIGINT), 0),
			COUNT(DISTINCT item_name)
		FROM line_items
		WHERE dataset = ?`

	var t store.Totals
	err := s.db.QueryRowContext(ctx, query, dataset).Scan(&t.Receipts, &t.Sales, &t.Quantity, &t.Items)
	if err != nil {
		return store.Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return t, nil
}

func (s *lineItemStore) Hourly(ctx context.Context, dataset string) ([]store.HourlyTotal, error) {
	query := `
		SELECT hour, COUNT(DISTINCT receipt_id), SUM(price)
		FROM line_items
		WHERE dataset = ?
		GROUP BY hour
		ORDER BY hour`

	rows, err := s.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("query hourly totals: %w", err)
	}
	defer rows.Close()

	out := make([]store.HourlyTotal, 0)
	for rows.Next() {
		var h store.HourlyTotal
		if err := rows.Scan(&h.Hour, &h.Receipts, &h.Sales); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *lineItemStore) ItemTotals(ctx context.Context, dataset string, metric Metric, limit int) ([]store.ItemTotal, error) {
	orderBy := "total_sales"
	if metric == MetricQuantity {
		orderBy = "total_quantity"
	}

	// Equal totals keep first-seen order, as seq is the source row index.
	query := fmt.Sprintf(`
		SELECT item_name, SUM(price) AS total_sales, CAST(SUM(quantity) AS BIGINT) AS total_quantity
		FROM line_items
		WHERE dataset = ?
		GROUP BY item_name
		ORDER BY %s DESC, MIN(seq) ASC%s`, orderBy, limitClause(limit))

	rows, err := s.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("query item totals: %w", err)
	}
	defer rows.Close()

	out := make([]store.ItemTotal, 0)
	for rows.Next() {
		var it store.ItemTotal
		if err := rows.Scan(&it.Item, &it.Sales, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *lineItemStore) CategoryTotals(ctx context.Context, dataset string) ([]store.CategoryTotal, error) {
	query := `
		SELECT category_name, SUM(price) AS sales
		FROM line_items
		WHERE dataset = ?
		GROUP BY category_name
		ORDER BY sales DESC, MIN(seq) ASC`

	rows, err := s.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	out := make([]store.CategoryTotal, 0)
	for rows.Next() {
		var c store.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Sales); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *lineItemStore) LabelTotals(ctx context.Context, dataset string, dim Dimension) ([]store.LabelTotal, error) {
	column, err := labelColumn(dim)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %[1]s_label, COUNT(DISTINCT receipt_id), SUM(price)
		FROM line_items
		WHERE dataset = ?
		GROUP BY %[1]s_label
		ORDER BY MIN(%[1]s_rank), %[1]s_label`, column)

	rows, err := s.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("query %s totals: %w", column, err)
	}
	defer rows.Close()

	out := make([]store.LabelTotal, 0)
	for rows.Next() {
		var l store.LabelTotal
		if err := rows.Scan(&l.Label, &l.Receipts, &l.Sales); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *lineItemStore) LabelCategoryTotals(
	ctx context.Context,
	dataset string,
	dim Dimension,
	limit int,
) ([]store.LabelCategoryTotal, error) {
	column, err := labelColumn(dim)
	if err != nil {
		return nil, err
	}

	where := ""
	if limit > 0 {
		where = fmt.Sprintf("WHERE rn <= %d", limit)
	}

	query := fmt.Sprintf(`
		SELECT label, category_name, sales, rn
		FROM (
			SELECT
				%[1]s_label AS label,
				MIN(%[1]s_rank) AS label_rank,
				category_name,
				SUM(price) AS sales,
				ROW_NUMBER() OVER (
					PARTITION BY %[1]s_label
					ORDER BY SUM(price) DESC, category_name ASC
				) AS rn
			FROM line_items
			WHERE dataset = ?
			GROUP BY %[1]s_label, category_name
		) ranked
		%[2]s
		ORDER BY label_rank, label, rn`, column, where)

	rows, err := s.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("query %s category totals: %w", column, err)
	}
	defer rows.Close()

	out := make([]store.LabelCategoryTotal, 0)
	for rows.Next() {
		var l store.LabelCategoryTotal
		if err := rows.Scan(&l.Label, &l.Category, &l.Sales, &l.Rank); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *lineItemStore) ItemExists(ctx context.Context, dataset, item string) (bool, error) {
	query := `SELECT COUNT(*) FROM line_items WHERE dataset = ? AND item_name = ?`

	var n int64
	if err := s.db.QueryRowContext(ctx, query, dataset, item).Scan(&n); err != nil {
		return false, fmt.Errorf("query item existence: %w", err)
	}
	return n > 0, nil
}

func (s *lineItemStore) CoPurchases(ctx context.Context, dataset, item string, limit int) ([]store.ItemCount, error) {
	query := fmt.Sprintf(`
		SELECT item_name, COUNT(*) AS cnt
		FROM line_items
		WHERE dataset = ?
			AND item_name <> ?
			AND receipt_id IN (
				SELECT receipt_id FROM line_items WHERE dataset = ? AND item_name = ?
			)
		GROUP BY item_name
		ORDER BY cnt DESC, item_name ASC%s`, limitClause(limit))

	rows, err := s.db.QueryContext(ctx, query, dataset, item, dataset, item)
	if err != nil {
		return nil, fmt.Errorf("query co-purchases: %w", err)
	}
	defer rows.Close()

	out := make([]store.ItemCount, 0)
	for rows.Next() {
		var c store.ItemCount
		if err := rows.Scan(&c.Item, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func labelColumn(dim Dimension) (string, error) {
	switch dim {
	case DimensionGender, DimensionAge:
		return string(dim), nil
	}
	return "", fmt.Errorf("unsupported dimension: %s", dim)
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("\n\t\tLIMIT %d", limit)
}
