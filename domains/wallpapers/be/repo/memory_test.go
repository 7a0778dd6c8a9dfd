package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
)

func TestMemoryCreateEnforcesSlugUniqueness(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	_, err := r.Create(ctx, service.Wallpaper{Title: "First", Slug: "sunset", Category: "nature"})
	require.NoError(t, err)

	_, err = r.Create(ctx, service.Wallpaper{Title: "Second", Slug: "sunset", Category: "nature"})
	require.ErrorIs(t, err, service.ErrConflictSlug)
}

func TestMemoryCreateRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{ID: "fixed", Title: "First", Slug: "first", Category: "nature"})
	require.NoError(t, err)
	require.Equal(t, "fixed", created.ID)

	// an id collision is not a slug conflict; the create retry loop must not
	// mistake it for one
	_, err = r.Create(ctx, service.Wallpaper{ID: "fixed", Title: "Second", Slug: "second", Category: "nature"})
	require.ErrorIs(t, err, service.ErrDuplicateID)
	require.NotErrorIs(t, err, service.ErrConflictSlug)
}

func TestMemoryConcurrentCreatesNeverDuplicateSlugs(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, service.Wallpaper{Title: "Race", Slug: "race", Category: "dark"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestMemorySetSlug(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{Title: "Forest", Slug: "forest", Category: "nature"})
	require.NoError(t, err)
	other, err := r.Create(ctx, service.Wallpaper{Title: "Ocean", Slug: "ocean", Category: "nature"})
	require.NoError(t, err)

	t.Run("frees the previous slug", func(t *testing.T) {
		updated, err := r.SetSlug(ctx, created.ID, "deep-forest", []string{"forest", "deep-forest"}, true)
		require.NoError(t, err)
		require.Equal(t, "deep-forest", updated.Slug)
		require.True(t, updated.CustomSlug)

		exists, err := r.SlugExists(ctx, "forest", "")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("rejects a slug held by another record", func(t *testing.T) {
		_, err := r.SetSlug(ctx, other.ID, "deep-forest", nil, true)
		require.ErrorIs(t, err, service.ErrConflictSlug)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := r.SetSlug(ctx, "missing", "whatever", nil, false)
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestMemorySlugExistsExcludesOwner(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{Title: "Dunes", Slug: "dunes", Category: "nature"})
	require.NoError(t, err)

	exists, err := r.SlugExists(ctx, "dunes", "")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = r.SlugExists(ctx, "dunes", created.ID)
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = r.SlugExists(ctx, "", "")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryGetBySlugHistoryPrefersLatest(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	older, err := r.Create(ctx, service.Wallpaper{Title: "Older", Slug: "older", Category: "dark"})
	require.NoError(t, err)
	newer, err := r.Create(ctx, service.Wallpaper{Title: "Newer", Slug: "newer", Category: "dark"})
	require.NoError(t, err)

	_, err = r.SetSlug(ctx, older.ID, "older-v2", []string{"shared", "older-v2"}, false)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = r.SetSlug(ctx, newer.ID, "newer-v2", []string{"shared", "newer-v2"}, false)
	require.NoError(t, err)

	found, err := r.GetBySlugHistory(ctx, "shared")
	require.NoError(t, err)
	require.Equal(t, newer.ID, found.ID)

	_, err = r.GetBySlugHistory(ctx, "never-used")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestMemoryCounters(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{Title: "Counted", Slug: "counted", Category: "cars"})
	require.NoError(t, err)

	require.NoError(t, r.AddDownload(ctx, created.ID))
	require.NoError(t, r.AddLike(ctx, created.ID))
	require.NoError(t, r.RemoveLike(ctx, created.ID))
	// likes never go negative
	require.NoError(t, r.RemoveLike(ctx, created.ID))

	w, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), w.Downloads)
	require.Equal(t, int64(0), w.Likes)

	require.ErrorIs(t, r.AddDownload(ctx, "missing"), service.ErrNotFound)
}

func TestMemoryDeleteFreesSlug(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{Title: "Gone Soon", Slug: "gone-soon", Category: "minimal"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))
	require.ErrorIs(t, r.Delete(ctx, created.ID), service.ErrNotFound)

	_, err = r.Create(ctx, service.Wallpaper{Title: "Reuses Slug", Slug: "gone-soon", Category: "minimal"})
	require.NoError(t, err)
}

func TestMemoryClonesAreIsolated(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, service.Wallpaper{
		Title:    "Isolated",
		Slug:     "isolated",
		Category: "space",
		Tags:     []string{"stars"},
	})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"stars"}, again.Tags)
}

func TestMemoryListByCategory(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Create(ctx, service.Wallpaper{
			Title:    fmt.Sprintf("Nature %d", i),
			Slug:     fmt.Sprintf("nature-%d", i),
			Category: "nature",
		})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, service.Wallpaper{Title: "Car", Slug: "car", Category: "cars"})
	require.NoError(t, err)

	natural, err := r.ListByCategory(ctx, "nature")
	require.NoError(t, err)
	require.Len(t, natural, 3)
}
