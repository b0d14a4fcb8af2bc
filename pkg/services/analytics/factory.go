package analytics

import (
	"fmt"

	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb/lineitems"
)

// NewEngine builds the engine of the given kind. The returned close function
// releases the engine's resources and is never nil.
func NewEngine(kind EngineKind, settings duckdb.Settings) (Engine, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case EngineMemory, "":
		return NewMemoryEngine(), noop, nil
	case EngineDuckDB:
		db, err := duckdb.NewDB(settings)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		store, err := lineitems.NewStore(db)
		if err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("failed to create line item store: %w", err)
		}
		return NewSQLEngine(db, store), db.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown analytics engine %q", kind)
}
