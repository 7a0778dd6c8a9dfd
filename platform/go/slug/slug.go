// Package slug derives URL-safe tokens from free-text titles and lints
// operator-supplied slugs. All functions are pure and deterministic.
package slug

import (
	"regexp"
	"strings"
)

// Fallback is returned when normalization strips every retainable character.
const Fallback = "untitled"

const (
	// DefaultMaxLength bounds generated slugs unless overridden.
	DefaultMaxLength = 60
	// DefaultSeparator joins slug tokens unless overridden.
	DefaultSeparator = "-"

	// customSlugMaxLength applies to operator-supplied slugs, which are
	// allowed to be longer than auto-generated ones.
	customSlugMaxLength = 100
)

// stopWords are dropped from generated slugs for shorter, denser tokens.
// The list is closed; membership is checked against tokens as they appear
// after case folding, so PreserveCase disables removal of capitalized forms.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "this": {}, "that": {}, "these": {},
	"those": {},
}

var defaultRunPattern = regexp.MustCompile(`[\s-]+`)

// Options tunes Generate. The zero value selects the defaults: max length 60,
// separator "-", lowercase output, stop words removed.
type Options struct {
	MaxLength     int
	Separator     string
	PreserveCase  bool
	KeepStopWords bool
}

func (o Options) withDefaults() Options {
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	return o
}

// Generate turns arbitrary title text into a normalized, length-bounded,
// URL-safe slug. The result contains only alphanumerics and the separator,
// never starts or ends with the separator, and never exceeds MaxLength.
// Input with no retainable characters yields Fallback.
func Generate(text string, opts Options) string {
	opts = opts.withDefaults()

	s := text
	if !opts.PreserveCase {
		s = strings.ToLower(s)
	}

	if !opts.KeepStopWords {
		words := strings.Split(s, " ")
		kept := words[:0]
		for _, w := range words {
			if _, stop := stopWords[w]; !stop {
				kept = append(kept, w)
			}
		}
		s = strings.Join(kept, " ")
	}

	sep := opts.Separator
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case string(r) == sep:
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Collapse whitespace/separator runs into a single separator.
	runPattern := defaultRunPattern
	if sep != DefaultSeparator {
		runPattern = regexp.MustCompile(`[\s` + regexp.QuoteMeta(sep) + `]+`)
	}
	s = runPattern.ReplaceAllString(s, sep)
	s = strings.Trim(s, sep)

	if len(s) > opts.MaxLength {
		s = strings.TrimRight(s[:opts.MaxLength], sep)
	}

	if s == "" {
		return Fallback
	}
	return s
}

// Normalize cleans an operator-supplied slug without second-guessing intent:
// stop words are kept and a looser length bound applies.
func Normalize(userSlug string) string {
	return Generate(userSlug, Options{KeepStopWords: true, MaxLength: customSlugMaxLength})
}
