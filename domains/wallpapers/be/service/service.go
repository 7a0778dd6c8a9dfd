// Package service implements the wallpaper catalog operations: CRUD over the
// record store, slug generation/uniqueness, identifier resolution, and the
// slug backfill migration.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wallpapersverse/wallpapers-api/platform/go/logging"
	"github.com/wallpapersverse/wallpapers-api/platform/go/slug"
	"github.com/wallpapersverse/wallpapers-api/platform/go/storage"
)

// Errors returned by the service layer.
var (
	ErrNotFound      = errors.New("wallpaper not found")
	ErrConflictSlug  = errors.New("wallpaper slug already exists")
	ErrDuplicateID   = errors.New("wallpaper id already exists")
	ErrSlugExhausted = errors.New("could not generate unique slug")
	ErrValidation    = errors.New("invalid wallpaper input")
)

// legacyPrefix is the pre-slug addressing scheme retained for old URLs.
const legacyPrefix = "wallpaper-"

// maxSlugAttempts bounds the uniqueness search: the base slug plus numeric
// suffixes -1 through -99. Beyond that the existence check is assumed broken
// or the collision storm pathological, and the operation fails.
const maxSlugAttempts = 100

// createRetries bounds how often a create is replayed after losing the
// check-then-write race to a concurrent creation with the same base slug.
const createRetries = 3

// Wallpaper is the domain model for a catalog entry.
type Wallpaper struct {
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

// CanonicalPath is the preferred public URL path for the wallpaper: derived
// from the slug when one exists, from the raw id otherwise.
func (w Wallpaper) CanonicalPath() string {
	if w.Slug != "" {
		return "/wallpaper/" + w.Slug
	}
	return "/wallpaper/" + w.ID
}

// CreateInput represents the request to create a wallpaper.
type CreateInput struct {
	Title      string
	Category   string
	Tags       []string
	Resolution string
	DeviceType string
	ImageURL   string
	StorageKey string
	FileSize   string
	CustomSlug string
}

// UpdateInput represents mutable descriptive fields. Nil leaves a field
// unchanged; slug changes go through UpdateSlug.
type UpdateInput struct {
	Title      *string
	Category   *string
	Tags       []string
	Resolution *string
	DeviceType *string
}

// MetadataUpdate is the repository-level shape of an update.
type MetadataUpdate struct {
	Title      *string
	Category   *string
	Tags       []string
	Resolution *string
	DeviceType *string
	ImageURL   *string
	StorageKey *string
	FileSize   *string
}

// ListOptions captures filters and pagination for catalog listings.
type ListOptions struct {
	Category  string
	Search    string
	ExcludeID string
	Page      int
	PageSize  int
}

// ListResult wraps a paginated catalog listing.
type ListResult struct {
	Wallpapers []Wallpaper
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// BackfillResult reports a slug backfill run.
type BackfillResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// Stats aggregates catalog counters.
type Stats struct {
	TotalWallpapers int64 `json:"totalWallpapers"`
	TotalDownloads  int64 `json:"totalDownloads"`
	TotalLikes      int64 `json:"totalLikes"`
	Categories      int   `json:"categories"`
}

// Repository abstracts persistence.
type Repository interface {
	ListAll(ctx context.Context) ([]Wallpaper, error)
	ListByCategory(ctx context.Context, category string) ([]Wallpaper, error)
	GetByID(ctx context.Context, id string) (Wallpaper, error)
	GetBySlug(ctx context.Context, slug string) (Wallpaper, error)
	GetBySlugHistory(ctx context.Context, slug string) (Wallpaper, error)
	SlugExists(ctx context.Context, slug string, excludeID string) (bool, error)
	Create(ctx context.Context, w Wallpaper) (Wallpaper, error)
	UpdateMetadata(ctx context.Context, id string, update MetadataUpdate) (Wallpaper, error)
	SetSlug(ctx context.Context, id string, slug string, history []string, custom bool) (Wallpaper, error)
	Delete(ctx context.Context, id string) error
	AddDownload(ctx context.Context, id string) error
	AddLike(ctx context.Context, id string) error
	RemoveLike(ctx context.Context, id string) error
}

// Service provides wallpaper catalog operations.
type Service struct {
	repo          Repository
	objects       storage.ObjectStore
	historyLookup bool
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithObjectStore attaches the blob store used to delete superseded images.
func WithObjectStore(store storage.ObjectStore) Option {
	return func(s *Service) { s.objects = store }
}

// WithHistoryLookup toggles whether ResolveIdentifier falls back to scanning
// slug history after slug, id, and legacy lookups miss. Enabled by default so
// old URLs keep resolving after a slug change.
func WithHistoryLookup(enabled bool) Option {
	return func(s *Service) { s.historyLookup = enabled }
}

// New constructs a Service with required dependencies.
func New(repo Repository, opts ...Option) *Service {
	if repo == nil {
		panic("wallpapers repo is required")
	}
	s := &Service{repo: repo, historyLookup: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlugExists reports whether any wallpaper other than excludeID currently
// holds the slug. Historical slugs do not count.
func (s *Service) SlugExists(ctx context.Context, candidate string, excludeID string) (bool, error) {
	return s.repo.SlugExists(ctx, candidate, excludeID)
}

// GenerateUniqueSlug starts from base and appends -1, -2, ... until a slug no
// other record holds is found. The suffix always applies to the original
// base, never to an already-suffixed candidate. excludeID exempts the record
// being re-slugged from the collision check.
func (s *Service) GenerateUniqueSlug(ctx context.Context, base string, excludeID string) (string, error) {
	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt+1)
	}
	return "", ErrSlugExhausted
}

// ResolveIdentifier maps an arbitrary incoming path segment to its canonical
// record. Lookup order is deliberate: current slug, then raw id, then the
// legacy wallpaper-<id> pattern, then (when enabled) slug history. The first
// match wins; ErrNotFound is the normal miss outcome, not a failure.
func (s *Service) ResolveIdentifier(ctx context.Context, identifier string) (Wallpaper, error) {
	if identifier == "" {
		return Wallpaper{}, ErrNotFound
	}

	w, err := s.repo.GetBySlug(ctx, identifier)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Wallpaper{}, fmt.Errorf("resolve %q by slug: %w", identifier, err)
	}

	w, err = s.repo.GetByID(ctx, identifier)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Wallpaper{}, fmt.Errorf("resolve %q by id: %w", identifier, err)
	}

	if suffix, ok := strings.CutPrefix(identifier, legacyPrefix); ok && suffix != "" {
		w, err = s.repo.GetByID(ctx, suffix)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Wallpaper{}, fmt.Errorf("resolve legacy id %q: %w", suffix, err)
		}
	}

	if s.historyLookup {
		w, err = s.repo.GetBySlugHistory(ctx, identifier)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Wallpaper{}, fmt.Errorf("resolve %q by slug history: %w", identifier, err)
		}
	}

	return Wallpaper{}, ErrNotFound
}

// Create persists a new wallpaper with a globally-unique slug derived from
// the title, or from the operator-supplied custom slug when given. A lost
// slug race against a concurrent creation is replayed with a fresh suffix.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallpaper, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Wallpaper{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		return Wallpaper{}, fmt.Errorf("%w: category is required", ErrValidation)
	}

	base := slug.Generate(title, slug.Options{})
	custom := false
	if strings.TrimSpace(input.CustomSlug) != "" {
		base = slug.Normalize(input.CustomSlug)
		custom = true
	}

	w := Wallpaper{
		Title:      strings.ToUpper(title),
		CustomSlug: custom,
		Category:   category,
		Tags:       lowerTags(input.Tags),
		Resolution: defaultString(input.Resolution, "1080x1920"),
		DeviceType: defaultString(input.DeviceType, "phone"),
		ImageURL:   input.ImageURL,
		StorageKey: input.StorageKey,
		FileSize:   input.FileSize,
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		unique, err := s.GenerateUniqueSlug(ctx, base, "")
		if err != nil {
			return Wallpaper{}, err
		}

		w.Slug = unique
		w.SlugHistory = []string{unique}

		created, err := s.repo.Create(ctx, w)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ErrConflictSlug) {
			return Wallpaper{}, err
		}
		// another creation claimed the slug between check and write
	}
	return Wallpaper{}, ErrConflictSlug
}

// All returns every wallpaper in the catalog.
func (s *Service) All(ctx context.Context) ([]Wallpaper, error) {
	return s.repo.ListAll(ctx)
}

// Get returns a wallpaper by id.
func (s *Service) Get(ctx context.Context, id string) (Wallpaper, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns the wallpaper currently holding the exact slug.
func (s *Service) GetBySlug(ctx context.Context, current string) (Wallpaper, error) {
	return s.repo.GetBySlug(ctx, current)
}

// Update modifies descriptive fields. The slug is never touched here, even
// when the title changes; re-slugging is an explicit operator action.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Wallpaper, error) {
	update := MetadataUpdate{
		Resolution: input.Resolution,
		DeviceType: input.DeviceType,
	}
	if input.Title != nil {
		title := strings.ToUpper(strings.TrimSpace(*input.Title))
		if title == "" {
			return Wallpaper{}, fmt.Errorf("%w: title is required", ErrValidation)
		}
		update.Title = &title
	}
	if input.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*input.Category))
		if category == "" {
			return Wallpaper{}, fmt.Errorf("%w: category is required", ErrValidation)
		}
		update.Category = &category
	}
	if input.Tags != nil {
		update.Tags = lowerTags(input.Tags)
	}

	return s.repo.UpdateMetadata(ctx, id, update)
}

// UpdateSlug replaces the current slug with an operator-supplied one. The old
// slug stays in history, the new slug is appended, and the record is marked
// customSlug. Setting the slug a record already holds is a no-op without a
// write.
func (s *Service) UpdateSlug(ctx context.Context, id string, newSlug string) (Wallpaper, error) {
	normalized := slug.Normalize(newSlug)

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Wallpaper{}, err
	}
	if current.Slug == normalized {
		return current, nil
	}

	exists, err := s.repo.SlugExists(ctx, normalized, id)
	if err != nil {
		return Wallpaper{}, fmt.Errorf("check slug %q: %w", normalized, err)
	}
	if exists {
		return Wallpaper{}, ErrConflictSlug
	}

	history := make([]string, 0, len(current.SlugHistory)+1)
	for _, h := range current.SlugHistory {
		if h != "" {
			history = append(history, h)
		}
	}
	history = append(history, normalized)

	return s.repo.SetSlug(ctx, id, normalized, history, true)
}

// Delete removes a wallpaper and, best effort, its image blob. A blob
// deletion failure never blocks removal of the record.
func (s *Service) Delete(ctx context.Context, id string) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if w.StorageKey != "" && s.objects != nil {
		if err := s.objects.Delete(ctx, w.StorageKey); err != nil {
			if logger, ok := logging.FromContext(ctx); ok {
				logger.Warn("delete wallpaper blob failed",
					zap.String("id", id),
					zap.String("storage_key", w.StorageKey),
					zap.Error(err),
				)
			}
		}
	}

	return s.repo.Delete(ctx, id)
}

// List returns wallpapers filtered by category or search term, minus an
// optional excluded id, paginated.
func (s *Service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	var (
		items []Wallpaper
		err   error
	)

	switch {
	case strings.TrimSpace(opts.Search) != "":
		items, err = s.Search(ctx, opts.Search)
	case opts.Category != "" && opts.Category != "all":
		items, err = s.repo.ListByCategory(ctx, opts.Category)
	default:
		items, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return ListResult{}, err
	}

	if opts.ExcludeID != "" {
		kept := items[:0]
		for _, w := range items {
			if w.ID != opts.ExcludeID {
				kept = append(kept, w)
			}
		}
		items = kept
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	return ListResult{
		Wallpapers: items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: totalPages,
		HasNext:    end < len(items),
		HasPrev:    page > 1,
	}, nil
}

// Search returns wallpapers whose title, category, or any tag contains the
// term, case-insensitively. Substring containment only; no ranking.
func (s *Service) Search(ctx context.Context, term string) ([]Wallpaper, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	var matches []Wallpaper
	for _, w := range all {
		if strings.Contains(strings.ToLower(w.Title), needle) ||
			strings.Contains(strings.ToLower(w.Category), needle) ||
			tagsContain(w.Tags, needle) {
			matches = append(matches, w)
		}
	}
	return matches, nil
}

// Popular returns the most-downloaded wallpapers.
func (s *Service) Popular(ctx context.Context, limit int) ([]Wallpaper, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Downloads > all[j].Downloads })
	return limitWallpapers(all, limit), nil
}

// Recent returns the newest wallpapers.
func (s *Service) Recent(ctx context.Context, limit int) ([]Wallpaper, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return limitWallpapers(all, limit), nil
}

// IncrementDownloads bumps the download counter.
func (s *Service) IncrementDownloads(ctx context.Context, id string) error {
	return s.repo.AddDownload(ctx, id)
}

// IncrementLikes bumps the like counter.
func (s *Service) IncrementLikes(ctx context.Context, id string) error {
	return s.repo.AddLike(ctx, id)
}

// DecrementLikes lowers the like counter.
func (s *Service) DecrementLikes(ctx context.Context, id string) error {
	return s.repo.RemoveLike(ctx, id)
}

// Stats aggregates catalog-wide counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	categories := make(map[string]struct{})
	stats := Stats{TotalWallpapers: int64(len(all))}
	for _, w := range all {
		stats.TotalDownloads += w.Downloads
		stats.TotalLikes += w.Likes
		if w.Category != "" {
			categories[w.Category] = struct{}{}
		}
	}
	stats.Categories = len(categories)
	return stats, nil
}

// CountByCategory returns the number of wallpapers per category slug.
func (s *Service) CountByCategory(ctx context.Context) (map[string]int64, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, w := range all {
		if w.Category != "" {
			counts[w.Category]++
		}
	}
	return counts, nil
}

// BackfillMissingSlugs scans every record and assigns slugs to those without
// one. Records are processed one at a time; a per-record failure is recorded
// with the wallpaper's title and never aborts the batch. Running it again
// when every record already has a slug performs zero writes.
func (s *Service) BackfillMissingSlugs(ctx context.Context) (BackfillResult, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("list wallpapers for backfill: %w", err)
	}

	result := BackfillResult{Errors: []string{}}
	for _, w := range all {
		if w.Slug != "" {
			continue
		}

		base := slug.Generate(w.Title, slug.Options{})
		unique, err := s.GenerateUniqueSlug(ctx, base, w.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to add slug to %s", w.Title))
			continue
		}

		if _, err := s.repo.SetSlug(ctx, w.ID, unique, []string{unique}, false); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to add slug to %s", w.Title))
			continue
		}
		result.Updated++
	}

	return result, nil
}

func lowerTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func tagsContain(tags []string, needle string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func limitWallpapers(items []Wallpaper, limit int) []Wallpaper {
	if limit <= 0 {
		limit = 10
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func defaultString(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
