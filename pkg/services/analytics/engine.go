package analytics

import (
	"context"
	"fmt"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
)

type EngineKind string

const (
	EngineMemory EngineKind = "memory"
	EngineDuckDB EngineKind = "duckdb"
)

func ParseEngineKind(s string) (EngineKind, error) {
	switch k := EngineKind(s); k {
	case EngineMemory, EngineDuckDB:
		return k, nil
	}
	return "", fmt.Errorf("unknown analytics engine %q", s)
}

// Engine answers the dashboard aggregations for attached datasets.
// Implementations must agree on results and tie-breaks.
type Engine interface {
	Attach(ctx context.Context, ds *domain.Dataset) error
	Detach(ctx context.Context, datasetID string) error
	// Acquire keeps an attached dataset queryable until release is called;
	// Detach blocks meanwhile. Queries acquire on their own, so callers only
	// need it to span several queries.
	Acquire(ctx context.Context, datasetID string) (release func(), err error)

	Overview(ctx context.Context, ds *domain.Dataset) (domain.Overview, error)
	Hourly(ctx context.Context, ds *domain.Dataset) ([]domain.HourlyStat, error)
	TopProducts(ctx context.Context, ds *domain.Dataset, metric domain.RankMetric, n int) ([]domain.ProductRank, error)
	CategoryShares(ctx context.Context, ds *domain.Dataset) ([]domain.CategoryShare, error)
	Demographics(ctx context.Context, ds *domain.Dataset, dim domain.Dimension) ([]domain.DemographicStat, error)
	TopCategories(ctx context.Context, ds *domain.Dataset, dim domain.Dimension, n int) ([]domain.CategoryRank, error)
	Cooccurrence(ctx context.Context, ds *domain.Dataset, target string, n int) (domain.Cooccurrence, error)
}

// memoryEngine evaluates every query over the dataset slice itself.
type memoryEngine struct{}

func NewMemoryEngine() Engine {
	return memoryEngine{}
}

func (memoryEngine) Attach(context.Context, *domain.Dataset) error { return nil }
func (memoryEngine) Detach(context.Context, string) error          { return nil }

// Acquire is a no-op: the dataset slice stays valid as long as it is referenced.
func (memoryEngine) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

func (memoryEngine) Overview(_ context.Context, ds *domain.Dataset) (domain.Overview, error) {
	return Overview(ds), nil
}

func (memoryEngine) Hourly(_ context.Context, ds *domain.Dataset) ([]domain.HourlyStat, error) {
	return Hourly(ds), nil
}

func (memoryEngine) TopProducts(
	_ context.Context,
	ds *domain.Dataset,
	metric domain.RankMetric,
	n int,
) ([]domain.ProductRank, error) {
	return TopProducts(ds, metric, n), nil
}

func (memoryEngine) CategoryShares(_ context.Context, ds *domain.Dataset) ([]domain.CategoryShare, error) {
	return CategoryShares(ds), nil
}

func (memoryEngine) Demographics(
	_ context.Context,
	ds *domain.Dataset,
	dim domain.Dimension,
) ([]domain.DemographicStat, error) {
	return Demographics(ds, dim), nil
}

func (memoryEngine) TopCategories(
	_ context.Context,
	ds *domain.Dataset,
	dim domain.Dimension,
	n int,
) ([]domain.CategoryRank, error) {
	return TopCategories(ds, dim, n), nil
}

func (memoryEngine) Cooccurrence(
	_ context.Context,
	ds *domain.Dataset,
	target string,
	n int,
) (domain.Cooccurrence, error) {
	return Cooccurrence(ds, target, n), nil
}
