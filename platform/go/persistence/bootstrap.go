package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// applySchema runs every statement in the embedded DDL against the pool.
// Statements are separated by semicolons and must be idempotent
// (CREATE ... IF NOT EXISTS), so the helper is safe to call on every
// store construction.
func applySchema(ctx context.Context, pool *pgxpool.Pool, ddl string) error {
	for _, stmt := range splitStatements(ddl) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply ddl: %w", err)
		}
	}
	return nil
}

func splitStatements(ddl string) []string {
	var out []string
	for _, chunk := range strings.Split(ddl, ";") {
		if stmt := strings.TrimSpace(chunk); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
