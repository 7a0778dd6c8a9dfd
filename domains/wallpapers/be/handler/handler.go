// Package handler exposes the wallpapers service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
	"github.com/wallpapersverse/wallpapers-api/platform/go/contract"
	platformlogging "github.com/wallpapersverse/wallpapers-api/platform/go/logging"
	"github.com/wallpapersverse/wallpapers-api/platform/go/problemdetails"
	"github.com/wallpapersverse/wallpapers-api/platform/go/slug"
	"github.com/wallpapersverse/wallpapers-api/platform/go/storage"
)

const (
	problemTypeValidation = "https://wallpapersverse.com/problems/validation-error"
	problemTypeNotFound   = "https://wallpapersverse.com/problems/not-found"
	problemTypeConflict   = "https://wallpapersverse.com/problems/conflict"
	problemTypePayload    = "https://wallpapersverse.com/problems/payload-too-large"
	problemTypeInternal   = "https://wallpapersverse.com/problems/internal-error"

	defaultPageSize = 12
	maxPageSize     = 100
)

type operation string

const (
	listOperation        operation = "listWallpapers"
	lookupOperation      operation = "lookupWallpaper"
	getOperation         operation = "getWallpaper"
	statsOperation       operation = "wallpaperStats"
	counterOperation     operation = "wallpaperCounter"
	createOperation      operation = "createWallpaper"
	updateOperation      operation = "updateWallpaper"
	updateSlugOperation  operation = "updateWallpaperSlug"
	deleteOperation      operation = "deleteWallpaper"
	uploadOperation      operation = "uploadWallpaper"
	bulkImportOperation  operation = "bulkImportWallpapers"
	migrateSlugOperation operation = "migrateSlugs"
	suggestOperation     operation = "slugSuggestions"
)

// EnsureCategory registers a category slug, creating the category when it
// does not exist yet. Bulk import uses it so imported rows never reference a
// section missing from the catalog.
type EnsureCategory func(ctx context.Context, categorySlug string) error

// Handler wires the wallpapers service to the HTTP router.
type Handler struct {
	svc            *service.Service
	objects        storage.ObjectStore
	ensureCategory EnsureCategory
	logger         *zap.Logger
}

// Option configures optional handler collaborators.
type Option func(*Handler)

// WithCategoryEnsurer enables category auto-creation during bulk import.
func WithCategoryEnsurer(ensure EnsureCategory) Option {
	return func(h *Handler) { h.ensureCategory = ensure }
}

// New constructs a Handler instance. The object store may be nil when image
// upload is disabled.
func New(svc *service.Service, objects storage.ObjectStore, logger *zap.Logger, opts ...Option) *Handler {
	if svc == nil {
		panic("wallpapers service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	h := &Handler{svc: svc, objects: objects, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/wallpapers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/popular", h.popular)
		r.Get("/recent", h.recent)
		r.Get("/stats", h.stats)
		r.Get("/lookup/{identifier}", h.lookup)
		r.Get("/slug/{slug}", h.getBySlug)
		r.Get("/{id}", h.get)
		r.Post("/{id}/download", h.addDownload)
		r.Post("/{id}/like", h.addLike)
		r.Delete("/{id}/like", h.removeLike)
	})
}

// RegisterAdmin mounts the catalog management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/wallpapers", func(r chi.Router) {
		r.Post("/", h.create)
		r.Post("/upload", h.upload)
		r.Post("/bulk-import", h.bulkImport)
		r.Post("/migrate-slugs", h.migrateSlugs)
		r.Get("/slug-suggestions", h.slugSuggestions)
		r.Get("/slug-check", h.slugCheck)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Put("/{id}/slug", h.updateSlug)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.ListOptions{
		Category:  strings.ToLower(query.Get("category")),
		Search:    query.Get("search"),
		ExcludeID: query.Get("exclude"),
		Page:      intParam(query.Get("page"), 1),
		PageSize:  intParam(query.Get("pageSize"), defaultPageSize),
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	result, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, r,err, listOperation)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"wallpapers": wallpaperList(result.Wallpapers),
		"pagination": map[string]any{
			"page":       result.Page,
			"pageSize":   result.PageSize,
			"totalItems": result.TotalItems,
			"totalPages": result.TotalPages,
			"hasNext":    result.HasNext,
			"hasPrev":    result.HasPrev,
		},
	})
}

func (h *Handler) popular(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Popular(r.Context(), intParam(r.URL.Query().Get("limit"), 10))
	if err != nil {
		h.writeError(w, r,err, listOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallpapers": wallpaperList(items)})
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Recent(r.Context(), intParam(r.URL.Query().Get("limit"), 10))
	if err != nil {
		h.writeError(w, r,err, listOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallpapers": wallpaperList(items)})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, r,err, statsOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

// lookup resolves an arbitrary public identifier (slug, id, legacy path
// segment, or historical slug) and reports the canonical location so callers
// can redirect stale URLs.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	wallpaper, err := h.svc.ResolveIdentifier(r.Context(), identifier)
	if err != nil {
		h.writeError(w, r,err, lookupOperation)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"wallpaper":     wallpaper,
		"canonicalPath": wallpaper.CanonicalPath(),
		"canonical":     identifier == wallpaper.Slug || (wallpaper.Slug == "" && identifier == wallpaper.ID),
		"keywords":      slug.Keywords(wallpaper.Slug),
	})
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	wallpaper, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r,err, getOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallpaper": wallpaper})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wallpaper, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r,err, getOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallpaper": wallpaper})
}

func (h *Handler) addDownload(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.svc.IncrementDownloads)
}

func (h *Handler) addLike(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.svc.IncrementLikes)
}

func (h *Handler) removeLike(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.svc.DecrementLikes)
}

func (h *Handler) counter(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) error) {
	if err := apply(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r,err, counterOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type createRequest struct {
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Resolution string   `json:"resolution"`
	DeviceType string   `json:"deviceType"`
	ImageURL   string   `json:"imageUrl"`
	CustomSlug string   `json:"customSlug"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.writeValidation(w, "request body unreadable")
		return
	}
	if err := contract.ValidateWallpaperPayload(body); err != nil {
		h.writeValidation(w, err.Error())
		return
	}

	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}

	wallpaper, err := h.svc.Create(r.Context(), service.CreateInput{
		Title:      req.Title,
		Category:   req.Category,
		Tags:       req.Tags,
		Resolution: req.Resolution,
		DeviceType: req.DeviceType,
		ImageURL:   req.ImageURL,
		CustomSlug: req.CustomSlug,
	})
	if err != nil {
		h.writeError(w, r,err, createOperation)
		return
	}

	w.Header().Set("Location", "/api/v1/wallpapers/"+wallpaper.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "wallpaper": wallpaper})
}

type updateRequest struct {
	Title      *string  `json:"title"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Resolution *string  `json:"resolution"`
	DeviceType *string  `json:"deviceType"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}

	wallpaper, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateInput{
		Title:      req.Title,
		Category:   req.Category,
		Tags:       req.Tags,
		Resolution: req.Resolution,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		h.writeError(w, r,err, updateOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallpaper": wallpaper})
}

type updateSlugRequest struct {
	Slug string `json:"slug"`
}

func (h *Handler) updateSlug(w http.ResponseWriter, r *http.Request) {
	var req updateSlugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		h.writeValidation(w, "slug is required")
		return
	}

	wallpaper, err := h.svc.UpdateSlug(r.Context(), chi.URLParam(r, "id"), req.Slug)
	if err != nil {
		h.writeError(w, r,err, updateSlugOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"wallpaper":     wallpaper,
		"canonicalPath": wallpaper.CanonicalPath(),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r,err, deleteOperation)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// upload accepts a multipart form with an image file plus the descriptive
// fields, stores the blob, and creates the catalog record pointing at it.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		problemdetails.Write(w, problemdetails.ProblemDetails{
			Type:   problemTypeValidation,
			Title:  "Upload disabled",
			Status: http.StatusNotImplemented,
			Detail: "no object store is configured",
		})
		return
	}

	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		h.writeValidation(w, "multipart form unreadable")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeValidation(w, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := storage.ValidateImage(contentType, header.Size); err != nil {
		problemdetails.Write(w, problemdetails.ProblemDetails{
			Type:   problemTypePayload,
			Title:  "Invalid image",
			Status: http.StatusRequestEntityTooLarge,
			Detail: err.Error(),
		})
		return
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		h.writeValidation(w, "title field is required")
		return
	}

	key := storage.WallpaperKey(title, storage.ExtensionFor(contentType))
	url, err := h.objects.Upload(r.Context(), key, contentType, file)
	if err != nil {
		h.writeError(w, r,fmt.Errorf("upload image: %w", err), uploadOperation)
		return
	}

	wallpaper, err := h.svc.Create(r.Context(), service.CreateInput{
		Title:      title,
		Category:   r.FormValue("category"),
		Tags:       splitTags(r.FormValue("tags")),
		Resolution: r.FormValue("resolution"),
		DeviceType: r.FormValue("deviceType"),
		CustomSlug: r.FormValue("customSlug"),
		ImageURL:   url,
		StorageKey: key,
		FileSize:   formatFileSize(header.Size),
	})
	if err != nil {
		// the record failed; do not leave the blob orphaned
		if cleanupErr := h.objects.Delete(r.Context(), key); cleanupErr != nil {
			platformlogging.FromRequest(r, h.logger).Warn("orphaned upload cleanup failed",
				zap.String("storage_key", key), zap.Error(cleanupErr))
		}
		h.writeError(w, r,err, uploadOperation)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "wallpaper": wallpaper})
}

func (h *Handler) migrateSlugs(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.BackfillMissingSlugs(r.Context())
	if err != nil {
		h.writeError(w, r,err, migrateSlugOperation)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updated": result.Updated,
		"errors":  result.Errors,
	})
}

func (h *Handler) slugSuggestions(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		h.writeValidation(w, "title query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": slug.Suggestions(title),
	})
}

// slugCheck reports availability plus lint findings for a candidate slug.
func (h *Handler) slugCheck(w http.ResponseWriter, r *http.Request) {
	candidate := r.URL.Query().Get("slug")
	if strings.TrimSpace(candidate) == "" {
		h.writeValidation(w, "slug query parameter is required")
		return
	}

	validation := slug.Validate(candidate)
	available, err := h.svc.SlugExists(r.Context(), validation.Slug, r.URL.Query().Get("excludeId"))
	if err != nil {
		h.writeError(w, r,err, suggestOperation)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"available":  !available,
		"validation": validation,
	})
}

func (h *Handler) writeValidation(w http.ResponseWriter, detail string) {
	problemdetails.Write(w, problemdetails.ProblemDetails{
		Type:   problemTypeValidation,
		Title:  "Validation failed",
		Status: http.StatusBadRequest,
		Detail: detail,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op operation) {
	status, title, detail, problemType := classifyError(err)

	logger := platformlogging.FromRequest(r, h.logger)
	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", status),
	}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("wallpapers operation failed", append(fields, zap.Error(err))...)
	case status == http.StatusNotFound:
		logger.Info("wallpaper not found", append(fields, zap.Error(err))...)
	default:
		logger.Warn("wallpapers request rejected", append(fields, zap.Error(err))...)
	}

	problemdetails.Write(w, problemdetails.ProblemDetails{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func classifyError(err error) (status int, title, detail, problemType string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "Validation failed", err.Error(), problemTypeValidation
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Wallpaper not found", "no wallpaper matches the given identifier", problemTypeNotFound
	case errors.Is(err, service.ErrConflictSlug):
		return http.StatusConflict, "Slug already exists", "the requested slug is held by another wallpaper", problemTypeConflict
	case errors.Is(err, service.ErrSlugExhausted):
		return http.StatusConflict, "Slug space exhausted", "could not find a free slug variant", problemTypeConflict
	default:
		return http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", problemTypeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// wallpaperList never serializes as null.
func wallpaperList(items []service.Wallpaper) []service.Wallpaper {
	if items == nil {
		return []service.Wallpaper{}
	}
	return items
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func formatFileSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
