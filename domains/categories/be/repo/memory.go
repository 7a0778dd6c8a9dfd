// Package repo provides persistence for custom categories.
package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wallpapersverse/wallpapers-api/domains/categories/be/service"
)

// MemoryRepository keeps custom categories in process memory. Safe for
// concurrent use.
type MemoryRepository struct {
	mu         sync.RWMutex
	categories map[string]service.Category
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{categories: make(map[string]service.Category)}
}

func (r *MemoryRepository) ListCustom(_ context.Context) ([]service.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) GetCustom(_ context.Context, slug string) (service.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[slug]
	if !ok {
		return service.Category{}, service.ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepository) Create(_ context.Context, category service.Category) (service.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.Slug]; exists {
		return service.Category{}, service.ErrExists
	}
	category.CreatedAt = time.Now().UTC()
	r.categories[category.Slug] = category
	return category, nil
}

func (r *MemoryRepository) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[slug]; !ok {
		return service.ErrNotFound
	}
	delete(r.categories, slug)
	return nil
}
