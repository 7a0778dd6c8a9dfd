package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *WallpaperStore {
	t.Helper()

	pool, cleanup := mustTestPool(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	store, err := NewWallpaperStore(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE wallpapers`)
	require.NoError(t, err)

	return store
}

func TestWallpaperStoreCreateAndLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, WallpaperRecord{
		Title:       "NEON CITY",
		Slug:        "neon-city",
		SlugHistory: []string{"neon-city"},
		Category:    "abstract",
		Tags:        []string{"neon", "city"},
		Resolution:  "1080x1920",
		DeviceType:  "phone",
		ImageURL:    "https://cdn.example.com/neon-city.jpg",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "neon-city", created.Slug)

	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, byID.ID)

	bySlug, err := store.GetBySlug(ctx, "neon-city")
	require.NoError(t, err)
	require.Equal(t, created.ID, bySlug.ID)

	_, err = store.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, ErrWallpaperNotFound)

	exists, err := store.SlugExists(ctx, "neon-city", "")
	require.NoError(t, err)
	require.True(t, exists)

	// The owning record is excluded when re-slugging.
	exists, err = store.SlugExists(ctx, "neon-city", created.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWallpaperStoreSlugUniqueIndex(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, WallpaperRecord{
		Title: "FIRST", Slug: "shared-slug", SlugHistory: []string{"shared-slug"}, Category: "nature",
	})
	require.NoError(t, err)

	_, err = store.Create(ctx, WallpaperRecord{
		Title: "SECOND", Slug: "shared-slug", SlugHistory: []string{"shared-slug"}, Category: "nature",
	})
	require.ErrorIs(t, err, ErrSlugTaken)

	// Slugless imports do not collide on the empty sentinel.
	for i := 0; i < 2; i++ {
		_, err = store.Create(ctx, WallpaperRecord{
			Title: fmt.Sprintf("LEGACY %d", i), Category: "dark",
		})
		require.NoError(t, err)
	}
}

func TestWallpaperStoreSetSlugAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, WallpaperRecord{
		Title: "MOUNTAIN PEAK", Slug: "mountain-peak", SlugHistory: []string{"mountain-peak"}, Category: "nature",
	})
	require.NoError(t, err)

	updated, err := store.SetSlug(ctx, created.ID, "alpine-peak", []string{"mountain-peak", "alpine-peak"}, true)
	require.NoError(t, err)
	require.Equal(t, "alpine-peak", updated.Slug)
	require.True(t, updated.CustomSlug)
	require.Equal(t, []string{"mountain-peak", "alpine-peak"}, updated.SlugHistory)

	// Old slug resolves through history only.
	_, err = store.GetBySlug(ctx, "mountain-peak")
	require.ErrorIs(t, err, ErrWallpaperNotFound)

	historical, err := store.GetBySlugHistory(ctx, "mountain-peak")
	require.NoError(t, err)
	require.Equal(t, created.ID, historical.ID)
}

func TestWallpaperStoreCounters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, WallpaperRecord{
		Title: "DARK FOREST", Slug: "dark-forest", SlugHistory: []string{"dark-forest"}, Category: "dark",
	})
	require.NoError(t, err)

	require.NoError(t, store.AddDownload(ctx, created.ID))
	require.NoError(t, store.AddLike(ctx, created.ID))
	require.NoError(t, store.AddLike(ctx, created.ID))
	require.NoError(t, store.RemoveLike(ctx, created.ID))

	rec, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Downloads)
	require.Equal(t, int64(1), rec.Likes)

	// Likes never go negative.
	require.NoError(t, store.RemoveLike(ctx, created.ID))
	require.NoError(t, store.RemoveLike(ctx, created.ID))
	rec, err = store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), rec.Likes)

	require.ErrorIs(t, store.AddDownload(ctx, "missing-id"), ErrWallpaperNotFound)
}

func TestNormalizeIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expect      string
		expectError bool
	}{
		{name: "uuid style", input: "b2c3d4e5-f6a7-4890-8123-456789abcdef", expect: "b2c3d4e5-f6a7-4890-8123-456789abcdef"},
		{name: "legacy numeric", input: "42", expect: "42"},
		{name: "trims whitespace", input: "  abc123 ", expect: "abc123"},
		{name: "empty", input: "   ", expectError: true},
		{name: "leading punctuation", input: "-abc", expectError: true},
		{name: "illegal characters", input: "abc/def", expectError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeIdentifier(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expect, got)
		})
	}
}
