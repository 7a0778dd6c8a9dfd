// Package repo provides the persistence implementations behind the wallpapers
// service: an in-memory store for tests and local development, and a Postgres
// store for real deployments.
package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
)

// MemoryRepository keeps wallpapers in process memory. Safe for concurrent
// use. Slug uniqueness is enforced under the same lock as the write, so the
// memory backend closes the slug race the same way the Postgres unique index
// does.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]service.Wallpaper
	bySlug map[string]string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]service.Wallpaper),
		bySlug: make(map[string]string),
	}
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]service.Wallpaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Wallpaper, 0, len(r.byID))
	for _, w := range r.byID {
		out = append(out, cloneWallpaper(w))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) ListByCategory(_ context.Context, category string) ([]service.Wallpaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []service.Wallpaper
	for _, w := range r.byID {
		if w.Category == category {
			out = append(out, cloneWallpaper(w))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (service.Wallpaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.byID[id]
	if !ok {
		return service.Wallpaper{}, service.ErrNotFound
	}
	return cloneWallpaper(w), nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string) (service.Wallpaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if slug == "" {
		return service.Wallpaper{}, service.ErrNotFound
	}
	id, ok := r.bySlug[slug]
	if !ok {
		return service.Wallpaper{}, service.ErrNotFound
	}
	return cloneWallpaper(r.byID[id]), nil
}

func (r *MemoryRepository) GetBySlugHistory(_ context.Context, slug string) (service.Wallpaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found service.Wallpaper
		ok    bool
	)
	for _, w := range r.byID {
		for _, h := range w.SlugHistory {
			if h != slug {
				continue
			}
			if !ok || w.UpdatedAt.After(found.UpdatedAt) {
				found = w
				ok = true
			}
		}
	}
	if !ok {
		return service.Wallpaper{}, service.ErrNotFound
	}
	return cloneWallpaper(found), nil
}

func (r *MemoryRepository) SlugExists(_ context.Context, slug string, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if slug == "" {
		return false, nil
	}
	id, ok := r.bySlug[slug]
	return ok && id != excludeID, nil
}

func (r *MemoryRepository) Create(_ context.Context, w service.Wallpaper) (service.Wallpaper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if _, exists := r.byID[w.ID]; exists {
		return service.Wallpaper{}, service.ErrDuplicateID
	}
	if w.Slug != "" {
		if owner, taken := r.bySlug[w.Slug]; taken && owner != w.ID {
			return service.Wallpaper{}, service.ErrConflictSlug
		}
	}

	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	r.byID[w.ID] = cloneWallpaper(w)
	if w.Slug != "" {
		r.bySlug[w.Slug] = w.ID
	}
	return w, nil
}

func (r *MemoryRepository) UpdateMetadata(_ context.Context, id string, update service.MetadataUpdate) (service.Wallpaper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return service.Wallpaper{}, service.ErrNotFound
	}

	if update.Title != nil {
		w.Title = *update.Title
	}
	if update.Category != nil {
		w.Category = *update.Category
	}
	if update.Tags != nil {
		w.Tags = append([]string(nil), update.Tags...)
	}
	if update.Resolution != nil {
		w.Resolution = *update.Resolution
	}
	if update.DeviceType != nil {
		w.DeviceType = *update.DeviceType
	}
	if update.ImageURL != nil {
		w.ImageURL = *update.ImageURL
	}
	if update.StorageKey != nil {
		w.StorageKey = *update.StorageKey
	}
	if update.FileSize != nil {
		w.FileSize = *update.FileSize
	}
	w.UpdatedAt = time.Now().UTC()

	r.byID[id] = cloneWallpaper(w)
	return w, nil
}

func (r *MemoryRepository) SetSlug(_ context.Context, id string, slug string, history []string, custom bool) (service.Wallpaper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return service.Wallpaper{}, service.ErrNotFound
	}
	if slug != "" {
		if owner, taken := r.bySlug[slug]; taken && owner != id {
			return service.Wallpaper{}, service.ErrConflictSlug
		}
	}

	if w.Slug != "" {
		delete(r.bySlug, w.Slug)
	}
	w.Slug = slug
	w.SlugHistory = append([]string(nil), history...)
	w.CustomSlug = custom
	w.UpdatedAt = time.Now().UTC()

	r.byID[id] = cloneWallpaper(w)
	if slug != "" {
		r.bySlug[slug] = id
	}
	return w, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return service.ErrNotFound
	}
	if w.Slug != "" {
		delete(r.bySlug, w.Slug)
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) AddDownload(_ context.Context, id string) error {
	return r.addCounter(id, func(w *service.Wallpaper) { w.Downloads++ })
}

func (r *MemoryRepository) AddLike(_ context.Context, id string) error {
	return r.addCounter(id, func(w *service.Wallpaper) { w.Likes++ })
}

func (r *MemoryRepository) RemoveLike(_ context.Context, id string) error {
	return r.addCounter(id, func(w *service.Wallpaper) {
		if w.Likes > 0 {
			w.Likes--
		}
	})
}

func (r *MemoryRepository) addCounter(id string, apply func(*service.Wallpaper)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return service.ErrNotFound
	}
	apply(&w)
	w.UpdatedAt = time.Now().UTC()
	r.byID[id] = w
	return nil
}

func cloneWallpaper(w service.Wallpaper) service.Wallpaper {
	w.SlugHistory = append([]string(nil), w.SlugHistory...)
	w.Tags = append([]string(nil), w.Tags...)
	return w
}

func sortNewestFirst(items []service.Wallpaper) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
