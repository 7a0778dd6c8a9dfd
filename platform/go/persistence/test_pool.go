package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// mustTestPool connects to the integration test database. Tests calling it
// are skipped unless TEST_DATABASE_URL points at a disposable Postgres.
func mustTestPool(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	url, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok || url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("create test pool: %v", err)
	}

	cleanup := func() {
		pool.Close()
	}

	return pool, cleanup
}
