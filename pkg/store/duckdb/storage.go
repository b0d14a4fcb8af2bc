package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const MemoryPath = ":memory:"

const LineItemsSchema = `
	CREATE TABLE IF NOT EXISTS line_items (
		dataset VARCHAR NOT NULL,
		seq BIGINT NOT NULL,
		receipt_id VARCHAR NOT NULL,
		item_name VARCHAR NOT NULL,
		category_name VARCHAR NOT NULL,
		price DOUBLE NOT NULL,
		quantity BIGINT NOT NULL,
		hour INTEGER NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		weekday_label VARCHAR NOT NULL,
		gender_label VARCHAR NOT NULL,
		gender_rank INTEGER NOT NULL,
		age_label VARCHAR NOT NULL,
		age_rank INTEGER NOT NULL,
		PRIMARY KEY (dataset, seq)
	);
`

var bootQueries = []string{
	LineItemsSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		settings.DbPath = MemoryPath
	}
	if settings.Threads <= 0 {
		settings.Threads = 4
	}

	dsn := fmt.Sprintf("%s?threads=%d", settings.DbPath, settings.Threads)
	c, err := duckdb.NewConnector(dsn, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
