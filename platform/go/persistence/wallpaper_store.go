package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/wallpapersverse/wallpapers-api/database"
)

const wallpaperTable = "wallpapers"

// ErrWallpaperNotFound indicates the requested wallpaper does not exist.
var ErrWallpaperNotFound = errors.New("wallpaper not found")

// ErrSlugTaken indicates another wallpaper already holds the slug as its
// current slug. The partial unique index on slug raises this atomically, so a
// concurrent creation racing past the existence check still cannot produce a
// duplicate current slug.
var ErrSlugTaken = errors.New("slug already in use")

// WallpaperRecord mirrors the wallpapers table shape.
type WallpaperRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug,omitempty"`
	SlugHistory []string  `json:"slugHistory"`
	CustomSlug  bool      `json:"customSlug"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Resolution  string    `json:"resolution"`
	DeviceType  string    `json:"deviceType"`
	ImageURL    string    `json:"imageUrl"`
	StorageKey  string    `json:"storageKey,omitempty"`
	FileSize    string    `json:"fileSize,omitempty"`
	Downloads   int64     `json:"downloads"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WallpaperStore persists catalog records in Postgres.
type WallpaperStore struct {
	pool *pgxpool.Pool
}

// NewWallpaperStore ensures the backing table and slug index exist and
// returns a store instance.
func NewWallpaperStore(ctx context.Context, pool *pgxpool.Pool) (*WallpaperStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}

	s := &WallpaperStore{pool: pool}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WallpaperStore) ensureTable(ctx context.Context) error {
	if err := applySchema(ctx, s.pool, sqlassets.WallpapersSQL); err != nil {
		return fmt.Errorf("ensure %s table: %w", wallpaperTable, err)
	}
	return nil
}

const wallpaperColumns = `id, title, slug, slug_history, custom_slug, category, tags,
	resolution, device_type, image_url, storage_key, file_size, downloads, likes,
	created_at, updated_at`

// ListAll returns every wallpaper, newest first.
func (s *WallpaperStore) ListAll(ctx context.Context) ([]WallpaperRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, wallpaperColumns, wallpaperTable)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallpapers: %w", err)
	}
	defer rows.Close()

	return scanWallpaperRows(rows)
}

// ListByCategory returns the wallpapers of one category, newest first.
func (s *WallpaperStore) ListByCategory(ctx context.Context, category string) ([]WallpaperRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE category = $1 ORDER BY created_at DESC`, wallpaperColumns, wallpaperTable)
	rows, err := s.pool.Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("list wallpapers by category: %w", err)
	}
	defer rows.Close()

	return scanWallpaperRows(rows)
}

// GetByID fetches a single wallpaper by its opaque id.
func (s *WallpaperStore) GetByID(ctx context.Context, id string) (WallpaperRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, wallpaperColumns, wallpaperTable)
	rec, err := scanWallpaperRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WallpaperRecord{}, ErrWallpaperNotFound
		}
		return WallpaperRecord{}, fmt.Errorf("get wallpaper %s: %w", id, err)
	}
	return rec, nil
}

// GetBySlug fetches the wallpaper currently holding the exact slug.
func (s *WallpaperStore) GetBySlug(ctx context.Context, slug string) (WallpaperRecord, error) {
	if slug == "" {
		return WallpaperRecord{}, ErrWallpaperNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, wallpaperColumns, wallpaperTable)
	rec, err := scanWallpaperRow(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WallpaperRecord{}, ErrWallpaperNotFound
		}
		return WallpaperRecord{}, fmt.Errorf("get wallpaper by slug %q: %w", slug, err)
	}
	return rec, nil
}

// GetBySlugHistory fetches the wallpaper that most recently held the slug at
// any point in its history. Callers try GetBySlug first.
func (s *WallpaperStore) GetBySlugHistory(ctx context.Context, slug string) (WallpaperRecord, error) {
	if slug == "" {
		return WallpaperRecord{}, ErrWallpaperNotFound
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE $1 = ANY(slug_history)
		ORDER BY updated_at DESC
		LIMIT 1`, wallpaperColumns, wallpaperTable)
	rec, err := scanWallpaperRow(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WallpaperRecord{}, ErrWallpaperNotFound
		}
		return WallpaperRecord{}, fmt.Errorf("get wallpaper by slug history %q: %w", slug, err)
	}
	return rec, nil
}

// SlugExists reports whether any wallpaper other than excludeID currently
// holds the slug. Served by the partial unique index, not a collection scan.
func (s *WallpaperStore) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	if slug == "" {
		return false, nil
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, wallpaperTable)
	var exists bool
	if err := s.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return exists, nil
}

// Create inserts a new wallpaper. An empty ID gets a fresh UUID. A slug
// collision surfaces as ErrSlugTaken.
func (s *WallpaperStore) Create(ctx context.Context, rec WallpaperRecord) (WallpaperRecord, error) {
	id := strings.TrimSpace(rec.ID)
	var err error
	if id == "" {
		id = uuid.NewString()
	} else {
		id, err = NormalizeIdentifier(id)
		if err != nil {
			return WallpaperRecord{}, err
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, title, slug, slug_history, custom_slug, category, tags,
			resolution, device_type, image_url, storage_key, file_size,
			downloads, likes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING %s`, wallpaperTable, wallpaperColumns)

	row := s.pool.QueryRow(ctx, query,
		id, rec.Title, rec.Slug, rec.SlugHistory, rec.CustomSlug, rec.Category, rec.Tags,
		rec.Resolution, rec.DeviceType, rec.ImageURL, rec.StorageKey, rec.FileSize,
		rec.Downloads, rec.Likes,
	)
	created, err := scanWallpaperRow(row)
	if err != nil {
		return WallpaperRecord{}, mapSlugConflict(err, "insert wallpaper")
	}
	return created, nil
}

// UpdateMetadataParams carries the mutable descriptive fields. Nil leaves a
// field unchanged.
type UpdateMetadataParams struct {
	Title      *string
	Category   *string
	Tags       []string
	Resolution *string
	DeviceType *string
	ImageURL   *string
	StorageKey *string
	FileSize   *string
}

// UpdateMetadata updates descriptive fields of a wallpaper; the slug fields
// are deliberately untouched here.
func (s *WallpaperStore) UpdateMetadata(ctx context.Context, id string, params UpdateMetadataParams) (WallpaperRecord, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET
			title = COALESCE($2, title),
			category = COALESCE($3, category),
			tags = COALESCE($4, tags),
			resolution = COALESCE($5, resolution),
			device_type = COALESCE($6, device_type),
			image_url = COALESCE($7, image_url),
			storage_key = COALESCE($8, storage_key),
			file_size = COALESCE($9, file_size),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, wallpaperTable, wallpaperColumns)

	row := s.pool.QueryRow(ctx, query, id,
		params.Title, params.Category, params.Tags, params.Resolution,
		params.DeviceType, params.ImageURL, params.StorageKey, params.FileSize,
	)
	rec, err := scanWallpaperRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WallpaperRecord{}, ErrWallpaperNotFound
		}
		return WallpaperRecord{}, fmt.Errorf("update wallpaper %s: %w", id, err)
	}
	return rec, nil
}

// SetSlug persists a slug change: current slug, full history, and the custom
// flag, in one statement. Used both for operator re-slugs and the backfill.
func (s *WallpaperStore) SetSlug(ctx context.Context, id string, slug string, history []string, custom bool) (WallpaperRecord, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET slug = $2, slug_history = $3, custom_slug = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, wallpaperTable, wallpaperColumns)

	rec, err := scanWallpaperRow(s.pool.QueryRow(ctx, query, id, slug, history, custom))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WallpaperRecord{}, ErrWallpaperNotFound
		}
		return WallpaperRecord{}, mapSlugConflict(err, fmt.Sprintf("set slug on wallpaper %s", id))
	}
	return rec, nil
}

// Delete removes a wallpaper record.
func (s *WallpaperStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, wallpaperTable)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete wallpaper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWallpaperNotFound
	}
	return nil
}

// AddDownload bumps the download counter.
func (s *WallpaperStore) AddDownload(ctx context.Context, id string) error {
	return s.addCounter(ctx, id, "downloads", 1)
}

// AddLike bumps the like counter.
func (s *WallpaperStore) AddLike(ctx context.Context, id string) error {
	return s.addCounter(ctx, id, "likes", 1)
}

// RemoveLike decrements the like counter, clamping at zero.
func (s *WallpaperStore) RemoveLike(ctx context.Context, id string) error {
	return s.addCounter(ctx, id, "likes", -1)
}

func (s *WallpaperStore) addCounter(ctx context.Context, id string, column string, delta int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = GREATEST(%s + $2, 0), updated_at = NOW() WHERE id = $1`, wallpaperTable, column, column)
	tag, err := s.pool.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("update %s on wallpaper %s: %w", column, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWallpaperNotFound
	}
	return nil
}

func mapSlugConflict(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "wallpapers_slug_key" {
		return ErrSlugTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanWallpaperRow(row pgx.Row) (WallpaperRecord, error) {
	var rec WallpaperRecord
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Slug, &rec.SlugHistory, &rec.CustomSlug,
		&rec.Category, &rec.Tags, &rec.Resolution, &rec.DeviceType,
		&rec.ImageURL, &rec.StorageKey, &rec.FileSize,
		&rec.Downloads, &rec.Likes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return WallpaperRecord{}, err
	}
	return rec, nil
}

func scanWallpaperRows(rows pgx.Rows) ([]WallpaperRecord, error) {
	var records []WallpaperRecord
	for rows.Next() {
		rec, err := scanWallpaperRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallpaper row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallpaper rows: %w", err)
	}
	return records, nil
}
