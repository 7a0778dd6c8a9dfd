package logging

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	ctx := WithLogger(context.Background(), logger)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, logger, got)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	scoped := zaptest.NewLogger(t)
	fallback := zaptest.NewLogger(t)

	t.Run("request-scoped logger wins", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithLogger(req.Context(), scoped))
		require.Same(t, scoped, FromRequest(req, fallback))
	})

	t.Run("falls back when the context carries none", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/", nil)
		require.Same(t, fallback, FromRequest(req, fallback))
	})
}
