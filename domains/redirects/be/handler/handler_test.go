package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wallpapersverse/wallpapers-api/domains/redirects/be/service"
	wallpaperrepo "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/repo"
	wallpapers "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
)

func newTestRouter(t *testing.T) (chi.Router, *wallpapers.Service) {
	t.Helper()

	wallpaperSvc := wallpapers.New(wallpaperrepo.NewMemoryRepository())
	h := New(service.New(wallpaperSvc), zaptest.NewLogger(t))

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		h.Register(r)
		r.Route("/admin", h.RegisterAdmin)
	})
	return router, wallpaperSvc
}

func do(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRuleLifecycle(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/admin/redirects", map[string]any{"from": "/old", "to": "/new"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/admin/redirects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Rules []service.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Rules, 1)
	require.Equal(t, http.StatusMovedPermanently, listed.Rules[0].Status)

	rec = do(t, router, http.MethodGet, "/api/v1/redirects/resolve?path=/old", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved struct {
		ShouldRedirect bool             `json:"shouldRedirect"`
		Redirect       service.Redirect `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	require.True(t, resolved.ShouldRedirect)
	require.Equal(t, "/new", resolved.Redirect.To)

	rec = do(t, router, http.MethodPost, "/api/v1/admin/redirects/toggle", map[string]any{"from": "/old"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/redirects/resolve?path=/old", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	require.False(t, resolved.ShouldRedirect)

	rec = do(t, router, http.MethodPost, "/api/v1/admin/redirects/remove", map[string]any{"from": "/old"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/v1/admin/redirects/remove", map[string]any{"from": "/old"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveLegacyWallpaperPath(t *testing.T) {
	t.Parallel()

	router, wallpaperSvc := newTestRouter(t)

	created, err := wallpaperSvc.Create(context.Background(), wallpapers.CreateInput{Title: "Ocean Waves", Category: "nature"})
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/api/v1/redirects/resolve?path=/wallpaper/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved struct {
		ShouldRedirect bool             `json:"shouldRedirect"`
		Redirect       service.Redirect `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	require.True(t, resolved.ShouldRedirect)
	require.Equal(t, "/wallpaper/ocean-waves", resolved.Redirect.To)
}

func TestResolveRequiresPath(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/api/v1/redirects/resolve", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidRule(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/admin/redirects", map[string]any{"from": "no-slash", "to": "/x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLegacyMap(t *testing.T) {
	t.Parallel()

	router, wallpaperSvc := newTestRouter(t)
	_, err := wallpaperSvc.Create(context.Background(), wallpapers.CreateInput{Title: "Misty Forest", Category: "nature"})
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/api/v1/admin/redirects/legacy-map", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Redirects []service.LegacyMapping `json:"redirects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Redirects, 1)
	require.Equal(t, "/wallpaper/misty-forest", body.Redirects[0].To)
}
