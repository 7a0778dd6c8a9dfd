package slug

import (
	"regexp"
	"strings"
)

var slugCharset = regexp.MustCompile(`^[a-z0-9-]+$`)

// Validation reports whether a slug meets SEO conventions, with the reasons it
// does not and optional improvement hints.
type Validation struct {
	Valid       bool     `json:"valid"`
	Slug        string   `json:"slug"`
	Errors      []string `json:"errors,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Validate lints an operator-supplied slug. It never rewrites the input; use
// Normalize for that.
func Validate(s string) Validation {
	var errs, hints []string

	if len(s) < 3 {
		errs = append(errs, "slug must be at least 3 characters long")
	}
	if len(s) > 100 {
		errs = append(errs, "slug should not exceed 100 characters")
	}
	if !slugCharset.MatchString(s) {
		errs = append(errs, "slug can only contain lowercase letters, numbers, and hyphens")
	}
	if strings.Contains(s, "--") {
		errs = append(errs, "slug should not contain consecutive hyphens")
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		errs = append(errs, "slug should not start or end with hyphens")
	}

	if strings.Contains(s, "wallpaper") {
		hints = append(hints, `consider removing "wallpaper" from slug for conciseness`)
	}
	if strings.Count(s, "-") >= 6 {
		hints = append(hints, "consider shortening slug for better readability")
	}

	return Validation{
		Valid:       len(errs) == 0,
		Slug:        s,
		Errors:      errs,
		Suggestions: hints,
	}
}

// Suggestions produces up to five distinct slug candidates for a title at
// varying lengths and stop-word treatments, most specific first.
func Suggestions(title string) []string {
	candidates := []string{
		Generate(title, Options{MaxLength: 50}),
		Generate(title, Options{MaxLength: 30}),
		Generate(title, Options{MaxLength: 50, KeepStopWords: true}),
		Generate(title, Options{MaxLength: 25}),
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// Keywords extracts the meaningful tokens of a slug for metadata generation,
// dropping stop words and tokens of two characters or fewer.
func Keywords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, "-") {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}
