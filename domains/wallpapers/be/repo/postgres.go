package repo

import (
	"context"
	"errors"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
	"github.com/wallpapersverse/wallpapers-api/platform/go/persistence"
)

// PostgresRepository adapts the shared wallpaper store to the service's
// Repository interface, translating store errors into service sentinels.
type PostgresRepository struct {
	store *persistence.WallpaperStore
}

// NewPostgresRepository wraps an initialized wallpaper store.
func NewPostgresRepository(store *persistence.WallpaperStore) *PostgresRepository {
	if store == nil {
		panic("wallpaper store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]service.Wallpaper, error) {
	recs, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toWallpapers(recs), nil
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, category string) ([]service.Wallpaper, error) {
	recs, err := r.store.ListByCategory(ctx, category)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toWallpapers(recs), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (service.Wallpaper, error) {
	rec, err := r.store.GetByID(ctx, id)
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (service.Wallpaper, error) {
	rec, err := r.store.GetBySlug(ctx, slug)
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) GetBySlugHistory(ctx context.Context, slug string) (service.Wallpaper, error) {
	rec, err := r.store.GetBySlugHistory(ctx, slug)
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	exists, err := r.store.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return false, mapStoreError(err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, w service.Wallpaper) (service.Wallpaper, error) {
	rec, err := r.store.Create(ctx, toRecord(w))
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) UpdateMetadata(ctx context.Context, id string, update service.MetadataUpdate) (service.Wallpaper, error) {
	rec, err := r.store.UpdateMetadata(ctx, id, persistence.UpdateMetadataParams{
		Title:      update.Title,
		Category:   update.Category,
		Tags:       update.Tags,
		Resolution: update.Resolution,
		DeviceType: update.DeviceType,
		ImageURL:   update.ImageURL,
		StorageKey: update.StorageKey,
		FileSize:   update.FileSize,
	})
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) SetSlug(ctx context.Context, id string, slug string, history []string, custom bool) (service.Wallpaper, error) {
	rec, err := r.store.SetSlug(ctx, id, slug, history, custom)
	if err != nil {
		return service.Wallpaper{}, mapStoreError(err)
	}
	return toWallpaper(rec), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return mapStoreError(r.store.Delete(ctx, id))
}

func (r *PostgresRepository) AddDownload(ctx context.Context, id string) error {
	return mapStoreError(r.store.AddDownload(ctx, id))
}

func (r *PostgresRepository) AddLike(ctx context.Context, id string) error {
	return mapStoreError(r.store.AddLike(ctx, id))
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, id string) error {
	return mapStoreError(r.store.RemoveLike(ctx, id))
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrWallpaperNotFound):
		return service.ErrNotFound
	case errors.Is(err, persistence.ErrSlugTaken):
		return service.ErrConflictSlug
	default:
		return err
	}
}

func toRecord(w service.Wallpaper) persistence.WallpaperRecord {
	return persistence.WallpaperRecord{
		ID:          w.ID,
		Title:       w.Title,
		Slug:        w.Slug,
		SlugHistory: w.SlugHistory,
		CustomSlug:  w.CustomSlug,
		Category:    w.Category,
		Tags:        w.Tags,
		Resolution:  w.Resolution,
		DeviceType:  w.DeviceType,
		ImageURL:    w.ImageURL,
		StorageKey:  w.StorageKey,
		FileSize:    w.FileSize,
		Downloads:   w.Downloads,
		Likes:       w.Likes,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func toWallpaper(rec persistence.WallpaperRecord) service.Wallpaper {
	return service.Wallpaper{
		ID:          rec.ID,
		Title:       rec.Title,
		Slug:        rec.Slug,
		SlugHistory: rec.SlugHistory,
		CustomSlug:  rec.CustomSlug,
		Category:    rec.Category,
		Tags:        rec.Tags,
		Resolution:  rec.Resolution,
		DeviceType:  rec.DeviceType,
		ImageURL:    rec.ImageURL,
		StorageKey:  rec.StorageKey,
		FileSize:    rec.FileSize,
		Downloads:   rec.Downloads,
		Likes:       rec.Likes,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toWallpapers(recs []persistence.WallpaperRecord) []service.Wallpaper {
	out := make([]service.Wallpaper, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toWallpaper(rec))
	}
	return out
}
