package repo

import (
	"context"
	"errors"

	"github.com/wallpapersverse/wallpapers-api/domains/categories/be/service"
	"github.com/wallpapersverse/wallpapers-api/platform/go/persistence"
)

// PostgresRepository adapts the category store to the service interface.
type PostgresRepository struct {
	store *persistence.CategoryStore
}

// NewPostgresRepository wraps an initialized category store.
func NewPostgresRepository(store *persistence.CategoryStore) *PostgresRepository {
	if store == nil {
		panic("category store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) ListCustom(ctx context.Context) ([]service.Category, error) {
	recs, err := r.store.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]service.Category, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toCategory(rec))
	}
	return out, nil
}

func (r *PostgresRepository) GetCustom(ctx context.Context, slug string) (service.Category, error) {
	rec, err := r.store.Get(ctx, slug)
	if err != nil {
		return service.Category{}, mapError(err)
	}
	return toCategory(rec), nil
}

func (r *PostgresRepository) Create(ctx context.Context, category service.Category) (service.Category, error) {
	rec, err := r.store.Insert(ctx, persistence.CategoryRecord{
		Slug:        category.Slug,
		Name:        category.Name,
		Description: category.Description,
		Featured:    category.Featured,
	})
	if err != nil {
		return service.Category{}, mapError(err)
	}
	return toCategory(rec), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, slug string) error {
	return mapError(r.store.Delete(ctx, slug))
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrCategoryNotFound):
		return service.ErrNotFound
	case errors.Is(err, persistence.ErrCategoryExists):
		return service.ErrExists
	default:
		return err
	}
}

func toCategory(rec persistence.CategoryRecord) service.Category {
	return service.Category{
		Slug:        rec.Slug,
		Name:        rec.Name,
		Description: rec.Description,
		Featured:    rec.Featured,
		CreatedAt:   rec.CreatedAt,
	}
}
