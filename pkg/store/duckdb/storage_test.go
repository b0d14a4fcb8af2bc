package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesLineItemsTable(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO line_items (
			dataset, seq, receipt_id, item_name, category_name, price, quantity, hour,
			occurred_at, weekday_label, gender_label, gender_rank, age_label, age_rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"ds-1", 0, "R1", "Apple", "Fruit", 2.0, 2, 9,
		time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC), "Wednesday", "Male", 1, "Adult", 3,
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM line_items WHERE dataset = ?", "ds-1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewDB_DefaultsToMemory(t *testing.T) {
	db, err := NewDB(Settings{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM line_items").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
