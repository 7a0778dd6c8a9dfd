package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/wallpapersverse/wallpapers-api/database"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
)

// CategoryRecord is a custom (operator-created) category row. Predefined
// categories live in code, not in this table.
type CategoryRecord struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
}

const categoriesTable = "categories"

// CategoryStore persists custom categories in Postgres.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore creates the table when missing and returns the store.
func NewCategoryStore(ctx context.Context, pool *pgxpool.Pool) (*CategoryStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool is required")
	}
	s := &CategoryStore{pool: pool}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CategoryStore) ensureTable(ctx context.Context) error {
	if err := applySchema(ctx, s.pool, sqlassets.CategoriesSQL); err != nil {
		return fmt.Errorf("ensure %s table: %w", categoriesTable, err)
	}
	return nil
}

// List returns all custom categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]CategoryRecord, error) {
	query := fmt.Sprintf(`SELECT slug, name, description, featured, created_at FROM %s ORDER BY name`, categoriesTable)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryRecord
	for rows.Next() {
		var rec CategoryRecord
		if err := rows.Scan(&rec.Slug, &rec.Name, &rec.Description, &rec.Featured, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one custom category by slug.
func (s *CategoryStore) Get(ctx context.Context, slug string) (CategoryRecord, error) {
	query := fmt.Sprintf(`SELECT slug, name, description, featured, created_at FROM %s WHERE slug = $1`, categoriesTable)
	var rec CategoryRecord
	err := s.pool.QueryRow(ctx, query, slug).Scan(&rec.Slug, &rec.Name, &rec.Description, &rec.Featured, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CategoryRecord{}, ErrCategoryNotFound
	}
	if err != nil {
		return CategoryRecord{}, fmt.Errorf("get category %s: %w", slug, err)
	}
	return rec, nil
}

// Insert adds a custom category. A duplicate slug maps to ErrCategoryExists.
func (s *CategoryStore) Insert(ctx context.Context, rec CategoryRecord) (CategoryRecord, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (slug, name, description, featured)
VALUES ($1, $2, $3, $4)
RETURNING slug, name, description, featured, created_at`, categoriesTable)

	var out CategoryRecord
	err := s.pool.QueryRow(ctx, query, rec.Slug, rec.Name, rec.Description, rec.Featured).
		Scan(&out.Slug, &out.Name, &out.Description, &out.Featured, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CategoryRecord{}, ErrCategoryExists
		}
		return CategoryRecord{}, fmt.Errorf("insert category %s: %w", rec.Slug, err)
	}
	return out, nil
}

// Delete removes a custom category.
func (s *CategoryStore) Delete(ctx context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE slug = $1`, categoriesTable)
	tag, err := s.pool.Exec(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", slug, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
