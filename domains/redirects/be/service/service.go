// Package service resolves incoming paths to redirect targets: operator
// rules first, then legacy wallpaper URLs whose identifier is no longer the
// canonical slug.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	wallpapers "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
)

var (
	ErrRuleNotFound = errors.New("redirect rule not found")
	ErrInvalidRule  = errors.New("invalid redirect rule")
)

// wallpaperPathPrefix is the public path namespace legacy redirects watch.
const wallpaperPathPrefix = "/wallpaper/"

// Rule is an operator-defined redirect.
type Rule struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    int       `json:"status"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Redirect is a resolved redirect decision.
type Redirect struct {
	To     string `json:"to"`
	Status int    `json:"status"`
}

// LegacyMapping documents one legacy URL and its canonical replacement.
type LegacyMapping struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Title string `json:"title"`
}

// WallpaperResolver is the slice of the wallpapers service the redirect
// logic needs.
type WallpaperResolver interface {
	ResolveIdentifier(ctx context.Context, identifier string) (wallpapers.Wallpaper, error)
	All(ctx context.Context) ([]wallpapers.Wallpaper, error)
}

// Service holds redirect rules in memory. Rules are operator configuration,
// not user data; they are rebuilt from config or the admin API on restart.
type Service struct {
	mu       sync.RWMutex
	rules    map[string]Rule
	resolver WallpaperResolver
}

// New constructs a Service. The resolver may be nil to disable legacy
// wallpaper redirects.
func New(resolver WallpaperResolver) *Service {
	return &Service{
		rules:    make(map[string]Rule),
		resolver: resolver,
	}
}

// AddRule registers a redirect from one path to another. Permanent rules
// answer 301, temporary ones 302. Re-adding a path replaces the rule.
func (s *Service) AddRule(from string, to string, permanent bool) (Rule, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if !strings.HasPrefix(from, "/") || !strings.HasPrefix(to, "/") {
		return Rule{}, fmt.Errorf("%w: paths must start with /", ErrInvalidRule)
	}
	if from == to {
		return Rule{}, fmt.Errorf("%w: redirect to itself", ErrInvalidRule)
	}

	status := http.StatusMovedPermanently
	if !permanent {
		status = http.StatusFound
	}
	rule := Rule{
		From:      from,
		To:        to,
		Status:    status,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.rules[from] = rule
	s.mu.Unlock()
	return rule, nil
}

// RemoveRule deletes a rule by its source path.
func (s *Service) RemoveRule(from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[from]; !ok {
		return ErrRuleNotFound
	}
	delete(s.rules, from)
	return nil
}

// ToggleRule flips a rule between active and inactive.
func (s *Service) ToggleRule(from string) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[from]
	if !ok {
		return Rule{}, ErrRuleNotFound
	}
	rule.Active = !rule.Active
	s.rules[from] = rule
	return rule, nil
}

// ActiveRules lists active rules sorted by source path.
func (s *Service) ActiveRules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		if rule.Active {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// Resolve decides whether a path should redirect. Custom rules win over
// legacy wallpaper URL handling. The boolean reports whether a redirect
// applies; no redirect is not an error.
func (s *Service) Resolve(ctx context.Context, path string) (Redirect, bool, error) {
	s.mu.RLock()
	rule, ok := s.rules[path]
	s.mu.RUnlock()
	if ok && rule.Active {
		return Redirect{To: rule.To, Status: rule.Status}, true, nil
	}

	identifier, ok := strings.CutPrefix(path, wallpaperPathPrefix)
	if !ok || identifier == "" || strings.Contains(identifier, "/") {
		return Redirect{}, false, nil
	}
	return s.resolveLegacy(ctx, identifier)
}

// resolveLegacy redirects a non-canonical wallpaper identifier to the
// canonical slug URL. Canonical identifiers pass through without a redirect.
func (s *Service) resolveLegacy(ctx context.Context, identifier string) (Redirect, bool, error) {
	if s.resolver == nil {
		return Redirect{}, false, nil
	}

	wallpaper, err := s.resolver.ResolveIdentifier(ctx, identifier)
	if errors.Is(err, wallpapers.ErrNotFound) {
		return Redirect{}, false, nil
	}
	if err != nil {
		return Redirect{}, false, fmt.Errorf("resolve wallpaper %q: %w", identifier, err)
	}

	if wallpaper.Slug == "" || identifier == wallpaper.Slug {
		return Redirect{}, false, nil
	}
	return Redirect{
		To:     wallpaper.CanonicalPath(),
		Status: http.StatusMovedPermanently,
	}, true, nil
}

// LegacyMap builds the full id-to-slug redirect table, one entry per slugged
// wallpaper plus an extra one for numeric ids still reachable through the
// old wallpaper-<n> pattern.
func (s *Service) LegacyMap(ctx context.Context) ([]LegacyMapping, error) {
	if s.resolver == nil {
		return []LegacyMapping{}, nil
	}

	all, err := s.resolver.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallpapers for legacy map: %w", err)
	}

	mappings := make([]LegacyMapping, 0, len(all))
	for _, w := range all {
		if w.Slug == "" {
			continue
		}
		mappings = append(mappings, LegacyMapping{
			From:  wallpaperPathPrefix + w.ID,
			To:    w.CanonicalPath(),
			Title: w.Title,
		})
		if isNumeric(w.ID) {
			mappings = append(mappings, LegacyMapping{
				From:  wallpaperPathPrefix + "wallpaper-" + w.ID,
				To:    w.CanonicalPath(),
				Title: w.Title,
			})
		}
	}
	return mappings, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
