package contract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateWallpaperPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		payload     string
		expectError bool
	}{
		{
			name:    "minimal valid",
			payload: `{"title": "NEON CITY", "category": "abstract"}`,
		},
		{
			name: "full valid",
			payload: `{
				"title": "MOUNTAIN PEAK",
				"category": "nature",
				"tags": ["mountain", "snow"],
				"resolution": "1080x1920",
				"deviceType": "phone",
				"imageUrl": "https://cdn.example.com/mountain.jpg",
				"customSlug": "alpine-view"
			}`,
		},
		{
			name:        "missing title",
			payload:     `{"category": "nature"}`,
			expectError: true,
		},
		{
			name:        "category not slug shaped",
			payload:     `{"title": "X", "category": "Not A Slug"}`,
			expectError: true,
		},
		{
			name:        "bad resolution",
			payload:     `{"title": "X", "category": "nature", "resolution": "huge"}`,
			expectError: true,
		},
		{
			name:        "unknown device type",
			payload:     `{"title": "X", "category": "nature", "deviceType": "watch"}`,
			expectError: true,
		},
		{
			name:        "unknown fields rejected",
			payload:     `{"title": "X", "category": "nature", "downloads": 99}`,
			expectError: true,
		},
		{
			name:        "not json",
			payload:     `{"title":`,
			expectError: true,
		},
		{
			name:        "empty",
			payload:     ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateWallpaperPayload([]byte(tt.payload))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
