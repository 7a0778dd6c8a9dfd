// Package service manages wallpaper categories: a predefined set shipped
// with the system plus custom categories created by operators, merged into
// one catalog with live wallpaper counts.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wallpapersverse/wallpapers-api/platform/go/slug"
)

var (
	ErrNotFound   = errors.New("category not found")
	ErrExists     = errors.New("category already exists")
	ErrPredefined = errors.New("category is predefined")
)

// Category describes a catalog section.
type Category struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Count       int64     `json:"count"`
	Featured    bool      `json:"featured"`
	Predefined  bool      `json:"predefined"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// predefined is the built-in category set. Custom categories with the same
// slug override these.
var predefined = []Category{
	{Slug: "nature", Name: "NATURE", Description: "Beautiful landscapes, forests, mountains, and natural scenes", Featured: true, Predefined: true},
	{Slug: "abstract", Name: "ABSTRACT", Description: "Artistic patterns, geometric shapes, and creative designs", Featured: true, Predefined: true},
	{Slug: "minimal", Name: "MINIMAL", Description: "Clean, simple designs with plenty of white space", Featured: true, Predefined: true},
	{Slug: "dark", Name: "DARK", Description: "Dark themes perfect for OLED displays and night mode", Featured: true, Predefined: true},
	{Slug: "colorful", Name: "COLORFUL", Description: "Vibrant, bright wallpapers full of color", Predefined: true},
	{Slug: "space", Name: "SPACE", Description: "Galaxies, planets, stars, and cosmic phenomena", Predefined: true},
	{Slug: "animals", Name: "ANIMALS", Description: "Wildlife, pets, and animal photography", Predefined: true},
	{Slug: "cars", Name: "CARS", Description: "Sports cars, vintage automobiles, and automotive art", Predefined: true},
	{Slug: "architecture", Name: "ARCHITECTURE", Description: "Buildings, structures, and architectural photography", Predefined: true},
}

// CreateInput is a request to add a custom category.
type CreateInput struct {
	Slug        string
	Name        string
	Description string
	Featured    bool
}

// Repository persists custom categories. Predefined categories never hit it.
type Repository interface {
	ListCustom(ctx context.Context) ([]Category, error)
	GetCustom(ctx context.Context, slug string) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, slug string) error
}

// WallpaperCounter reports how many wallpapers each category currently holds.
type WallpaperCounter interface {
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// Service merges predefined and custom categories.
type Service struct {
	repo    Repository
	counter WallpaperCounter
}

// New constructs a Service. The counter may be nil; counts are then zero.
func New(repo Repository, counter WallpaperCounter) *Service {
	if repo == nil {
		panic("categories repo is required")
	}
	return &Service{repo: repo, counter: counter}
}

// List returns every category, custom entries overriding predefined ones
// with the same slug, sorted by name, with wallpaper counts filled in.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	custom, err := s.repo.ListCustom(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom categories: %w", err)
	}

	seen := make(map[string]struct{}, len(custom))
	merged := make([]Category, 0, len(custom)+len(predefined))
	for _, c := range custom {
		seen[c.Slug] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range predefined {
		if _, ok := seen[c.Slug]; !ok {
			merged = append(merged, c)
		}
	}

	if err := s.fillCounts(ctx, merged); err != nil {
		return nil, err
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, nil
}

// Featured returns only featured categories.
func (s *Service) Featured(ctx context.Context) ([]Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]Category, 0, len(all))
	for _, c := range all {
		if c.Featured {
			featured = append(featured, c)
		}
	}
	return featured, nil
}

// Get returns one category by slug, custom overriding predefined.
func (s *Service) Get(ctx context.Context, categorySlug string) (Category, error) {
	categorySlug = strings.ToLower(strings.TrimSpace(categorySlug))

	category, err := s.repo.GetCustom(ctx, categorySlug)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		found := false
		for _, p := range predefined {
			if p.Slug == categorySlug {
				category = p
				found = true
				break
			}
		}
		if !found {
			return Category{}, ErrNotFound
		}
	default:
		return Category{}, fmt.Errorf("get category %q: %w", categorySlug, err)
	}

	list := []Category{category}
	if err := s.fillCounts(ctx, list); err != nil {
		return Category{}, err
	}
	return list[0], nil
}

// Create adds a custom category. The slug is normalized, the name is
// uppercased. Colliding with any existing category, predefined included, is
// a conflict.
func (s *Service) Create(ctx context.Context, input CreateInput) (Category, error) {
	if strings.TrimSpace(input.Slug) == "" {
		return Category{}, fmt.Errorf("category slug is required")
	}
	normalized := slug.Normalize(input.Slug)

	for _, p := range predefined {
		if p.Slug == normalized {
			return Category{}, ErrExists
		}
	}

	name := strings.ToUpper(strings.TrimSpace(input.Name))
	if name == "" {
		name = strings.ToUpper(normalized)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = fmt.Sprintf("%s wallpapers", name)
	}

	return s.repo.Create(ctx, Category{
		Slug:        normalized,
		Name:        name,
		Description: description,
		Featured:    input.Featured,
	})
}

// EnsureExists auto-creates a custom category when neither a predefined nor
// a custom one holds the slug. Used by bulk import so unknown categories in
// the CSV become real sections instead of dangling labels.
func (s *Service) EnsureExists(ctx context.Context, categorySlug string) (Category, error) {
	existing, err := s.Get(ctx, categorySlug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Category{}, err
	}

	created, err := s.Create(ctx, CreateInput{Slug: categorySlug})
	if errors.Is(err, ErrExists) {
		// concurrent EnsureExists won the insert
		return s.Get(ctx, categorySlug)
	}
	return created, err
}

// Delete removes a custom category. Predefined categories cannot be removed.
func (s *Service) Delete(ctx context.Context, categorySlug string) error {
	categorySlug = strings.ToLower(strings.TrimSpace(categorySlug))
	for _, p := range predefined {
		if p.Slug == categorySlug {
			return fmt.Errorf("%w: %q cannot be deleted", ErrPredefined, categorySlug)
		}
	}
	return s.repo.Delete(ctx, categorySlug)
}

func (s *Service) fillCounts(ctx context.Context, categories []Category) error {
	if s.counter == nil {
		return nil
	}
	counts, err := s.counter.CountByCategory(ctx)
	if err != nil {
		return fmt.Errorf("count wallpapers per category: %w", err)
	}
	for i := range categories {
		categories[i].Count = counts[categories[i].Slug]
	}
	return nil
}
