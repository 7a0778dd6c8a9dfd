// Package handler exposes the redirects service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wallpapersverse/wallpapers-api/domains/redirects/be/service"
	platformlogging "github.com/wallpapersverse/wallpapers-api/platform/go/logging"
	"github.com/wallpapersverse/wallpapers-api/platform/go/problemdetails"
)

const (
	problemTypeValidation = "https://wallpapersverse.com/problems/validation-error"
	problemTypeNotFound   = "https://wallpapersverse.com/problems/not-found"
	problemTypeInternal   = "https://wallpapersverse.com/problems/internal-error"
)

// Handler wires the redirects service to the HTTP router.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc *service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("redirects service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public resolve route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/redirects/resolve", h.resolve)
}

// RegisterAdmin mounts the rule management routes. Rule paths contain
// slashes, so mutations take the source path in the JSON body rather than
// the URL.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/redirects", func(r chi.Router) {
		r.Get("/", h.listRules)
		r.Post("/", h.addRule)
		r.Post("/remove", h.removeRule)
		r.Post("/toggle", h.toggleRule)
		r.Get("/legacy-map", h.legacyMap)
	})
}

// resolve answers whether the given path should redirect. Callers (the web
// frontend, an edge worker) use this to issue the actual 301.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if strings.TrimSpace(path) == "" {
		h.writeValidation(w, "path query parameter is required")
		return
	}

	redirect, ok, err := h.svc.Resolve(r.Context(), path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "shouldRedirect": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"shouldRedirect": true,
		"redirect":       redirect,
	})
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rules": h.svc.ActiveRules()})
}

type ruleRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Permanent *bool  `json:"permanent"`
}

func (h *Handler) addRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}

	permanent := true
	if req.Permanent != nil {
		permanent = *req.Permanent
	}

	rule, err := h.svc.AddRule(req.From, req.To, permanent)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "rule": rule})
}

func (h *Handler) removeRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}
	if err := h.svc.RemoveRule(req.From); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) toggleRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeValidation(w, "request body is not valid JSON")
		return
	}
	rule, err := h.svc.ToggleRule(req.From)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rule": rule})
}

func (h *Handler) legacyMap(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.LegacyMap(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "redirects": mappings})
}

func (h *Handler) writeValidation(w http.ResponseWriter, detail string) {
	problemdetails.Write(w, problemdetails.ProblemDetails{
		Type:   problemTypeValidation,
		Title:  "Validation failed",
		Status: http.StatusBadRequest,
		Detail: detail,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status      int
		title       string
		problemType string
		detail      string
	)
	switch {
	case errors.Is(err, service.ErrInvalidRule):
		status, title, problemType, detail = http.StatusBadRequest, "Validation failed", problemTypeValidation, err.Error()
	case errors.Is(err, service.ErrRuleNotFound):
		status, title, problemType, detail = http.StatusNotFound, "Redirect rule not found", problemTypeNotFound, err.Error()
	default:
		status, title, problemType = http.StatusInternalServerError, "Internal server error", problemTypeInternal
	}

	logger := platformlogging.FromRequest(r, h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("redirects operation failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Info("redirects request rejected", zap.Int("status", status), zap.Error(err))
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
