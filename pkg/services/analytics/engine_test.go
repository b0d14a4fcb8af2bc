package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb/lineitems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLEngine(t *testing.T) Engine {
	t.Helper()
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: duckdb.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := lineitems.NewStore(db)
	require.NoError(t, err)
	return NewSQLEngine(db, store)
}

func mixedDataset(t *testing.T) *domain.Dataset {
	return newDataset(t, "mixed",
		row("A", "Apple", "Fruit", 2, 2, 9, 1, 3),
		row("A", "Bread", "Bakery", 2, 1, 9, 1, 3),
		row("B", "Bread", "Bakery", 2, 1, 18, 2, 2),
		row("B", "Milk", "Dairy", 3, 1, 18, 2, 2),
		row("C", "Milk", "Dairy", 3, 1, 18, 9, 1),
		row("C", "Apple", "Fruit", 1, 1, 18, 9, 1),
		row("C", "Cheese", "Dairy", 6, 1, 18, 9, 1),
		row("D", "Cheese", "Dairy", 6, 1, 7, 2, 0),
		row("D", "Bread", "Bakery", 2, 1, 7, 2, 0),
		row("D", "Bread", "Bakery", 2, 1, 7, 2, 0),
	)
}

func TestEngines_Agree(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryEngine()
	sqlEng := newSQLEngine(t)

	for _, ds := range []*domain.Dataset{mixedDataset(t), basket(t), newDataset(t, "empty")} {
		require.NoError(t, mem.Attach(ctx, ds))
		require.NoError(t, sqlEng.Attach(ctx, ds))

		t.Run(ds.ID(), func(t *testing.T) {
			assertSame(t, func(e Engine) (any, error) { return e.Overview(ctx, ds) }, mem, sqlEng)
			assertSame(t, func(e Engine) (any, error) { return e.Hourly(ctx, ds) }, mem, sqlEng)
			assertSame(t, func(e Engine) (any, error) { return e.CategoryShares(ctx, ds) }, mem, sqlEng)

			for _, metric := range []domain.RankMetric{domain.RankBySales, domain.RankByQuantity} {
				assertSame(t, func(e Engine) (any, error) { return e.TopProducts(ctx, ds, metric, 2) }, mem, sqlEng)
				assertSame(t, func(e Engine) (any, error) { return e.TopProducts(ctx, ds, metric, 0) }, mem, sqlEng)
			}

			for _, dim := range []domain.Dimension{domain.DimensionGender, domain.DimensionAge} {
				assertSame(t, func(e Engine) (any, error) { return e.Demographics(ctx, ds, dim) }, mem, sqlEng)
				assertSame(t, func(e Engine) (any, error) { return e.TopCategories(ctx, ds, dim, 1) }, mem, sqlEng)
				assertSame(t, func(e Engine) (any, error) {
					return e.TopCategories(ctx, ds, dim, DefaultTopCategories)
				}, mem, sqlEng)
			}

			for _, target := range []string{"Bread", "Apple", "Cheese", "Caviar"} {
				assertSame(t, func(e Engine) (any, error) {
					return e.Cooccurrence(ctx, ds, target, DefaultTopCooccurrence)
				}, mem, sqlEng)
			}
		})
	}
}

func TestSQLEngine_DetachDropsDataset(t *testing.T) {
	ctx := context.Background()
	e := newSQLEngine(t)
	ds := basket(t)

	require.NoError(t, e.Attach(ctx, ds))
	overview, err := e.Overview(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Receipts)

	require.NoError(t, e.Detach(ctx, ds.ID()))
	_, err = e.Overview(ctx, ds)
	require.ErrorIs(t, err, ErrNotAttached)
	_, err = e.Acquire(ctx, ds.ID())
	require.ErrorIs(t, err, ErrNotAttached)
}

func TestSQLEngine_DetachWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	e := newSQLEngine(t)
	ds := basket(t)
	require.NoError(t, e.Attach(ctx, ds))

	release, err := e.Acquire(ctx, ds.ID())
	require.NoError(t, err)

	detached := make(chan error, 1)
	go func() { detached <- e.Detach(ctx, ds.ID()) }()

	select {
	case <-detached:
		t.Fatal("detach did not wait for the held dataset")
	case <-time.After(50 * time.Millisecond):
	}

	overview, err := e.Overview(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 9.0, overview.TotalSales)

	release()
	release()
	require.NoError(t, <-detached)

	_, err = e.Hourly(ctx, ds)
	require.ErrorIs(t, err, ErrNotAttached)
}

func TestSQLEngine_AttachTwiceFails(t *testing.T) {
	ctx := context.Background()
	e := newSQLEngine(t)
	ds := basket(t)

	require.NoError(t, e.Attach(ctx, ds))
	assert.Error(t, e.Attach(ctx, ds))

	overview, err := e.Overview(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 9.0, overview.TotalSales)
}

func TestParseEngineKind(t *testing.T) {
	k, err := ParseEngineKind("duckdb")
	require.NoError(t, err)
	assert.Equal(t, EngineDuckDB, k)

	_, err = ParseEngineKind("spark")
	assert.Error(t, err)
}

func assertSame(t *testing.T, query func(Engine) (any, error), want, got Engine) {
	t.Helper()
	expected, err := query(want)
	require.NoError(t, err)
	actual, err := query(got)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}
