package slug

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		opts   Options
		expect string
	}{
		{
			name:   "simple title",
			input:  "Sunset Beach",
			expect: "sunset-beach",
		},
		{
			name:   "strips punctuation and removes stop words",
			input:  "Sunset Over The Mountains!!",
			expect: "sunset-over-mountains",
		},
		{
			name:   "collapses whitespace runs",
			input:  "neon   city    lights",
			expect: "neon-city-lights",
		},
		{
			name:   "collapses existing hyphen runs",
			input:  "already--slugged---title",
			expect: "already-slugged-title",
		},
		{
			name:   "trims leading and trailing separators",
			input:  "--edge case--",
			expect: "edge-case",
		},
		{
			name:   "unicode and symbols dropped",
			input:  "café & crème brûlée",
			expect: "caf-crme-brle",
		},
		{
			name:   "no retainable characters falls back",
			input:  "!!!",
			expect: Fallback,
		},
		{
			name:   "empty input falls back",
			input:  "",
			expect: Fallback,
		},
		{
			name:   "only stop words falls back",
			input:  "the and of",
			expect: Fallback,
		},
		{
			name:   "keep stop words",
			input:  "The Dark Side of the Moon",
			opts:   Options{KeepStopWords: true},
			expect: "the-dark-side-of-the-moon",
		},
		{
			name:   "preserve case keeps capitals and skips stop word match",
			input:  "The Big One",
			opts:   Options{PreserveCase: true},
			expect: "The-Big-One",
		},
		{
			name:   "custom separator",
			input:  "hello world again",
			opts:   Options{Separator: "_"},
			expect: "hello_world_again",
		},
		{
			name:   "truncation strips dangling separator",
			input:  "abcde fghij klmno",
			opts:   Options{MaxLength: 12},
			expect: "abcde-fghij",
		},
		{
			name:   "truncation at exact boundary",
			input:  "abcde fghij",
			opts:   Options{MaxLength: 11},
			expect: "abcde-fghij",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Generate(tt.input, tt.opts)
			require.Equal(t, tt.expect, got)

			// Deterministic for identical inputs.
			require.Equal(t, got, Generate(tt.input, tt.opts))
		})
	}
}

func TestGenerateOutputInvariants(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Sunset Over The Mountains!!",
		"  spaced   out  ",
		"ALL CAPS TITLE",
		"a-b-c-d-e-f-g-h-i-j-k-l-m-n-o-p-q-r-s-t-u-v-w-x-y-z 123456",
		"!!!@@@###",
		"日本語タイトル",
		strings.Repeat("long title words ", 20),
	}

	safe := regexp.MustCompile(`^[a-z0-9-]+$`)
	for _, in := range inputs {
		got := Generate(in, Options{})
		require.NotEmpty(t, got, "input %q", in)
		require.Regexp(t, safe, got, "input %q", in)
		require.False(t, strings.HasPrefix(got, "-"), "input %q -> %q", in, got)
		require.False(t, strings.HasSuffix(got, "-"), "input %q -> %q", in, got)
		require.LessOrEqual(t, len(got), DefaultMaxLength, "input %q -> %q", in, got)
	}
}

func TestGenerateLengthBound(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("wallpaper words ", 10)
	for _, max := range []int{5, 10, 25, 60, 200} {
		got := Generate(in, Options{MaxLength: max})
		require.LessOrEqual(t, len(got), max)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "keeps stop words", input: "the best of both", expect: "the-best-of-both"},
		{name: "cleans unsafe characters", input: "My Slug!?", expect: "my-slug"},
		{name: "allows longer slugs", input: strings.Repeat("abcdefghi ", 9), expect: strings.TrimSuffix(strings.Repeat("abcdefghi-", 9), "-")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expect, Normalize(tt.input))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		slug      string
		valid     bool
		wantErrs  int
		wantHints int
	}{
		{name: "clean slug", slug: "sunset-over-mountains", valid: true},
		{name: "too short", slug: "ab", valid: false, wantErrs: 1},
		{name: "uppercase rejected", slug: "Sunset-Beach", valid: false, wantErrs: 1},
		{name: "consecutive hyphens", slug: "bad--slug", valid: false, wantErrs: 1},
		{name: "leading hyphen", slug: "-bad-slug", valid: false, wantErrs: 1},
		{name: "wallpaper hint", slug: "nice-wallpaper-image", valid: true, wantHints: 1},
		{name: "too many words hint", slug: "one-two-three-four-five-six-seven", valid: true, wantHints: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Validate(tt.slug)
			require.Equal(t, tt.valid, v.Valid)
			require.Len(t, v.Errors, tt.wantErrs)
			require.Len(t, v.Suggestions, tt.wantHints)
		})
	}
}

func TestSuggestions(t *testing.T) {
	t.Parallel()

	got := Suggestions("The Quick Brown Fox Jumps Over The Lazy Dog Tonight")
	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), 5)

	seen := make(map[string]struct{})
	for _, s := range got {
		_, dup := seen[s]
		require.False(t, dup, "duplicate suggestion %q", s)
		seen[s] = struct{}{}
		require.NotEmpty(t, s)
	}
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"sunset", "over", "mountains"}, Keywords("sunset-over-the-mountains"))
	require.Empty(t, Keywords("a-an-of"))
}
