package repo

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestFetchRows(t *testing.T) {
	m := NewPostgresMirror(testPool(t))

	rows, err := m.FetchRows(context.Background(), "SELECT 1 AS one, 'x' AS tag")
	if err != nil {
		t.Fatalf("FetchRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("FetchRows() rows = %d, want 1", len(rows))
	}
	if rows[0]["tag"] != "x" {
		t.Errorf("FetchRows() tag = %v, want 'x'", rows[0]["tag"])
	}
}

func TestFetchRowsRejectsWrites(t *testing.T) {
	m := NewPostgresMirror(testPool(t))

	_, err := m.FetchRows(context.Background(), "CREATE TABLE should_not_exist (id int)")
	if err == nil {
		t.Fatal("FetchRows() accepted a write inside a read-only transaction")
	}
}
