package lineitems

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/pos-atlas/pkg/models/store"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func item(seq int64, receipt, name, category string, price float64, qty int64, hour int, gender string, genderRank int) store.LineItem {
	return store.LineItem{
		Seq:          seq,
		ReceiptID:    receipt,
		ItemName:     name,
		CategoryName: category,
		Price:        price,
		Quantity:     qty,
		Hour:         hour,
		OccurredAt:   time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC),
		WeekdayLabel: "Wednesday",
		GenderLabel:  gender,
		GenderRank:   genderRank,
		AgeLabel:     "Adult",
		AgeRank:      3,
	}
}

// basket is the two-receipt sample: A = {Apple x2 (2), Bread (2)}, B = {Bread (2), Milk (3)}.
func basket() []store.LineItem {
	return []store.LineItem{
		item(0, "A", "Apple", "Fruit", 2, 2, 9, "Male", 1),
		item(1, "A", "Bread", "Bakery", 2, 1, 9, "Male", 1),
		item(2, "B", "Bread", "Bakery", 2, 1, 18, "Unknown", 3),
		item(3, "B", "Milk", "Dairy", 3, 1, 18, "Unknown", 3),
	}
}

func TestLineItemStore_Aggregations(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Add(ctx, "ds-1", basket()))
	require.NoError(t, f.store.Add(ctx, "ds-2", []store.LineItem{item(0, "Z", "Tea", "Drinks", 99, 9, 7, "Female", 2)}))

	t.Run("totals", func(t *testing.T) {
		totals, err := f.store.Totals(ctx, "ds-1")
		require.NoError(t, err)
		assert.Equal(t, store.Totals{Receipts: 2, Sales: 9, Quantity: 5, Items: 3}, totals)
	})

	t.Run("totals of unknown dataset are zero", func(t *testing.T) {
		totals, err := f.store.Totals(ctx, "missing")
		require.NoError(t, err)
		assert.Equal(t, store.Totals{}, totals)
	})

	t.Run("hourly", func(t *testing.T) {
		hourly, err := f.store.Hourly(ctx, "ds-1")
		require.NoError(t, err)
		assert.Equal(t, []store.HourlyTotal{
			{Hour: 9, Receipts: 1, Sales: 4},
			{Hour: 18, Receipts: 1, Sales: 5},
		}, hourly)
	})

	t.Run("item totals by sales keep first-seen order on ties", func(t *testing.T) {
		items, err := f.store.ItemTotals(ctx, "ds-1", MetricSales, 20)
		require.NoError(t, err)
		assert.Equal(t, []store.ItemTotal{
			{Item: "Bread", Sales: 4, Quantity: 2},
			{Item: "Milk", Sales: 3, Quantity: 1},
			{Item: "Apple", Sales: 2, Quantity: 2},
		}, items)
	})

	t.Run("item totals by quantity", func(t *testing.T) {
		items, err := f.store.ItemTotals(ctx, "ds-1", MetricQuantity, 2)
		require.NoError(t, err)
		assert.Equal(t, []store.ItemTotal{
			{Item: "Apple", Sales: 2, Quantity: 2},
			{Item: "Bread", Sales: 4, Quantity: 2},
		}, items)
	})

	t.Run("category totals", func(t *testing.T) {
		cats, err := f.store.CategoryTotals(ctx, "ds-1")
		require.NoError(t, err)
		assert.Equal(t, []store.CategoryTotal{
			{Category: "Bakery", Sales: 4},
			{Category: "Dairy", Sales: 3},
			{Category: "Fruit", Sales: 2},
		}, cats)
	})

	t.Run("label totals", func(t *testing.T) {
		labels, err := f.store.LabelTotals(ctx, "ds-1", DimensionGender)
		require.NoError(t, err)
		assert.Equal(t, []store.LabelTotal{
			{Label: "Male", Receipts: 1, Sales: 4},
			{Label: "Unknown", Receipts: 1, Sales: 5},
		}, labels)
	})

	t.Run("label category totals", func(t *testing.T) {
		ranks, err := f.store.LabelCategoryTotals(ctx, "ds-1", DimensionGender, 1)
		require.NoError(t, err)
		assert.Equal(t, []store.LabelCategoryTotal{
			{Label: "Male", Category: "Bakery", Sales: 2, Rank: 1},
			{Label: "Unknown", Category: "Dairy", Sales: 3, Rank: 1},
		}, ranks)
	})

	t.Run("co-purchases", func(t *testing.T) {
		exists, err := f.store.ItemExists(ctx, "ds-1", "Bread")
		require.NoError(t, err)
		assert.True(t, exists)

		counts, err := f.store.CoPurchases(ctx, "ds-1", "Bread", 10)
		require.NoError(t, err)
		assert.Equal(t, []store.ItemCount{
			{Item: "Apple", Count: 1},
			{Item: "Milk", Count: 1},
		}, counts)
	})

	t.Run("delete drops only the dataset", func(t *testing.T) {
		require.NoError(t, f.store.Delete(ctx, "ds-1"))

		var n int
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM line_items WHERE dataset = 'ds-1'").Scan(&n))
		assert.Equal(t, 0, n)
		require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM line_items WHERE dataset = 'ds-2'").Scan(&n))
		assert.Equal(t, 1, n)
	})
}

func TestLineItemStore_AddUsesTransactionFromContext(t *testing.T) {
	f := setupFixture(t)

	tx, err := f.db.Begin()
	require.NoError(t, err)

	ctx := duckdb.WithTransaction(context.Background(), tx)
	require.NoError(t, f.store.Add(ctx, "ds-tx", basket()))
	require.NoError(t, tx.Rollback())

	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM line_items WHERE dataset = 'ds-tx'").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestLineItemStore_AddDuplicateSeqFails(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	rows := []store.LineItem{item(0, "A", "Apple", "Fruit", 1, 1, 9, "Male", 1)}
	require.NoError(t, f.store.Add(ctx, "ds", rows))
	assert.Error(t, f.store.Add(ctx, "ds", rows))
}

func TestLineItemStore_CoPurchasesQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta(`
		SELECT item_name, COUNT(*) AS cnt
		FROM line_items
		WHERE dataset = ?
			AND item_name <> ?
			AND receipt_id IN (
				SELECT receipt_id FROM line_items WHERE dataset = ? AND item_name = ?
			)
		GROUP BY item_name
		ORDER BY cnt DESC, item_name ASC
		LIMIT 10`)

	mock.ExpectQuery(query).
		WithArgs("ds", "Bread", "ds", "Bread").
		WillReturnRows(sqlmock.NewRows([]string{"item_name", "cnt"}).
			AddRow("Apple", 3).
			AddRow("Milk", 1))

	s, err := NewStore(db)
	require.NoError(t, err)

	counts, err := s.CoPurchases(context.Background(), "ds", "Bread", 10)
	require.NoError(t, err)
	assert.Equal(t, []store.ItemCount{{Item: "Apple", Count: 3}, {Item: "Milk", Count: 1}}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLineItemStore_ErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("FROM line_items")).WillReturnError(boom)

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.Totals(context.Background(), "ds")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "query totals")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLineItemStore_AddRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO line_items")).
		ExpectExec().
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Add(context.Background(), "ds", basket()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert line item 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestLabelColumn_RejectsUnknownDimension(t *testing.T) {
	f := setupFixture(t)
	_, err := f.store.LabelTotals(context.Background(), "ds", Dimension("weekday; DROP TABLE line_items"))
	assert.Error(t, err)
}
