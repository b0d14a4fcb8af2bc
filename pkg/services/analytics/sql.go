package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/pos-atlas/pkg/adapters"
	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb/lineitems"
	"github.com/rs/zerolog"
)

var ErrNotAttached = errors.New("dataset is not attached")

// sqlEngine mirrors the in-memory aggregations with SQL over the line_items
// table. A dataset must be attached before it is queried. Detach waits until
// no query or render holds the dataset.
type sqlEngine struct {
	db    *sql.DB
	store lineitems.Store

	mu       sync.Mutex
	released *sync.Cond
	refs     map[string]int
}

func NewSQLEngine(db *sql.DB, store lineitems.Store) Engine {
	e := &sqlEngine{
		db:    db,
		store: store,
		refs:  make(map[string]int),
	}
	e.released = sync.NewCond(&e.mu)
	return e
}

// Acquire pins an attached dataset until release is called.
func (e *sqlEngine) Acquire(_ context.Context, datasetID string) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.refs[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, datasetID)
	}
	e.refs[datasetID] = n + 1

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if n, ok := e.refs[datasetID]; ok && n > 0 {
				e.refs[datasetID] = n - 1
			}
			e.released.Broadcast()
		})
	}, nil
}

func (e *sqlEngine) Attach(ctx context.Context, ds *domain.Dataset) (err error) {
	logger := zerolog.Ctx(ctx)

	e.mu.Lock()
	_, attached := e.refs[ds.ID()]
	e.mu.Unlock()
	if attached {
		return fmt.Errorf("dataset %s is already attached", ds.ID())
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attach transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txCtx := duckdb.WithTransaction(ctx, tx)
	if err = e.store.Add(txCtx, ds.ID(), adapters.MapDatasetToStoreItems(ds)); err != nil {
		return fmt.Errorf("attach dataset %s: %w", ds.ID(), err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset %s: %w", ds.ID(), err)
	}

	e.mu.Lock()
	e.refs[ds.ID()] = 0
	e.mu.Unlock()

	logger.Debug().
		Str("dataset", ds.ID()).
		Int("rows", ds.Len()).
		Msg("dataset attached to duckdb")
	return nil
}

func (e *sqlEngine) Detach(ctx context.Context, datasetID string) error {
	e.mu.Lock()
	for e.refs[datasetID] > 0 {
		e.released.Wait()
	}
	delete(e.refs, datasetID)
	e.mu.Unlock()

	if err := e.store.Delete(ctx, datasetID); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("dataset", datasetID).Msg("dataset detached from duckdb")
	return nil
}

func (e *sqlEngine) Overview(ctx context.Context, ds *domain.Dataset) (domain.Overview, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return domain.Overview{}, err
	}
	defer release()

	totals, err := e.store.Totals(ctx, ds.ID())
	if err != nil {
		return domain.Overview{}, err
	}

	receipts := int(totals.Receipts)
	return domain.Overview{
		Receipts:      receipts,
		TotalSales:    totals.Sales,
		TotalQuantity: totals.Quantity,
		AvgSpend:      ratio(totals.Sales, receipts),
		UniqueItems:   int(totals.Items),
	}, nil
}

func (e *sqlEngine) Hourly(ctx context.Context, ds *domain.Dataset) ([]domain.HourlyStat, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := e.store.Hourly(ctx, ds.ID())
	if err != nil {
		return nil, err
	}

	stats := make([]domain.HourlyStat, 0, len(rows))
	for _, row := range rows {
		stat := adapters.MapStoreHourlyToDomain(row)
		stat.AvgSpend = ratio(stat.Sales, stat.Receipts)
		stats = append(stats, stat)
	}
	return stats, nil
}

func (e *sqlEngine) TopProducts(
	ctx context.Context,
	ds *domain.Dataset,
	metric domain.RankMetric,
	n int,
) ([]domain.ProductRank, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	m := lineitems.MetricSales
	if metric == domain.RankByQuantity {
		m = lineitems.MetricQuantity
	}

	rows, err := e.store.ItemTotals(ctx, ds.ID(), m, n)
	if err != nil {
		return nil, err
	}

	ranks := make([]domain.ProductRank, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, adapters.MapStoreItemTotalToDomain(row))
	}
	return ranks, nil
}

func (e *sqlEngine) CategoryShares(ctx context.Context, ds *domain.Dataset) ([]domain.CategoryShare, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := e.store.CategoryTotals(ctx, ds.ID())
	if err != nil {
		return nil, err
	}

	var total float64
	for _, row := range rows {
		total += row.Sales
	}

	shares := make([]domain.CategoryShare, 0, len(rows))
	for _, row := range rows {
		share := domain.CategoryShare{Category: row.Category, Sales: row.Sales}
		if total != 0 {
			share.Share = row.Sales / total
		}
		shares = append(shares, share)
	}
	return shares, nil
}

func (e *sqlEngine) Demographics(
	ctx context.Context,
	ds *domain.Dataset,
	dim domain.Dimension,
) ([]domain.DemographicStat, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := e.store.LabelTotals(ctx, ds.ID(), lineitems.Dimension(dim))
	if err != nil {
		return nil, err
	}

	found := make([]domain.DemographicStat, 0, len(rows))
	for _, row := range rows {
		found = append(found, adapters.MapStoreLabelTotalToDomain(row))
	}
	return CompleteDemographics(ds.Labels(), dim, found), nil
}

func (e *sqlEngine) TopCategories(
	ctx context.Context,
	ds *domain.Dataset,
	dim domain.Dimension,
	n int,
) ([]domain.CategoryRank, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := e.store.LabelCategoryTotals(ctx, ds.ID(), lineitems.Dimension(dim), n)
	if err != nil {
		return nil, err
	}

	ranks := make([]domain.CategoryRank, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, adapters.MapStoreLabelCategoryToDomain(row))
	}
	return ranks, nil
}

func (e *sqlEngine) Cooccurrence(
	ctx context.Context,
	ds *domain.Dataset,
	target string,
	n int,
) (domain.Cooccurrence, error) {
	release, err := e.Acquire(ctx, ds.ID())
	if err != nil {
		return domain.Cooccurrence{Target: target}, err
	}
	defer release()

	result := domain.Cooccurrence{Target: target, Items: []domain.CoPurchase{}}

	found, err := e.store.ItemExists(ctx, ds.ID(), target)
	if err != nil {
		return result, err
	}
	if !found {
		return result, nil
	}
	result.Found = true

	rows, err := e.store.CoPurchases(ctx, ds.ID(), target, n)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		result.Items = append(result.Items, adapters.MapStoreItemCountToDomain(row))
	}
	return result, nil
}
