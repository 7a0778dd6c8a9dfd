// Package handler exposes the categories service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wallpapersverse/wallpapers-api/domains/categories/be/service"
	platformlogging "github.com/wallpapersverse/wallpapers-api/platform/go/logging"
	"github.com/wallpapersverse/wallpapers-api/platform/go/problemdetails"
)

const (
	problemTypeValidation = "https://wallpapersverse.com/problems/validation-error"
	problemTypeNotFound   = "https://wallpapersverse.com/problems/not-found"
	problemTypeConflict   = "https://wallpapersverse.com/problems/conflict"
	problemTypeInternal   = "https://wallpapersverse.com/problems/internal-error"
)

// Handler wires the categories service to the HTTP router.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("categories service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public category routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/featured", h.featured)
		r.Get("/{slug}", h.get)
	})
}

// RegisterAdmin mounts the category management routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.create)
		r.Delete("/{slug}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "categories": categories})
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Featured(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "categories": categories})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	category, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "category": category})
}

type createRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Featured    bool   `json:"featured"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problemdetails.Write(w, problemdetails.ProblemDetails{
			Type:   problemTypeValidation,
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
			Detail: "request body is not valid JSON",
		})
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		problemdetails.Write(w, problemdetails.ProblemDetails{
			Type:   problemTypeValidation,
			Title:  "Validation failed",
			Status: http.StatusBadRequest,
			Detail: "slug is required",
		})
		return
	}

	category, err := h.svc.Create(r.Context(), service.CreateInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Featured:    req.Featured,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/categories/"+category.Slug)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "category": category})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status      int
		title       string
		problemType string
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, title, problemType = http.StatusNotFound, "Category not found", problemTypeNotFound
	case errors.Is(err, service.ErrExists):
		status, title, problemType = http.StatusConflict, "Category already exists", problemTypeConflict
	case errors.Is(err, service.ErrPredefined):
		status, title, problemType = http.StatusBadRequest, "Category is predefined", problemTypeValidation
	default:
		status, title, problemType = http.StatusInternalServerError, "Internal server error", problemTypeInternal
	}

	logger := platformlogging.FromRequest(r, h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("categories operation failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Info("categories request rejected", zap.Int("status", status), zap.Error(err))
	}

	detail := ""
	if status < http.StatusInternalServerError {
		detail = err.Error()
	}
	problemdetails.Write(w, problemdetails.ProblemDetails{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
