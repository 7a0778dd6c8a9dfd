package persistence

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Wallpaper IDs are opaque store-assigned strings: UUIDs for records created
// here, short numeric or alphanumeric tokens for records imported from the
// legacy catalog.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

// NormalizeIdentifier trims input and ensures it matches the allowed pattern.
func NormalizeIdentifier(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("wallpaper id is required")
	}
	if !identifierPattern.MatchString(trimmed) {
		return "", fmt.Errorf("invalid wallpaper id %q", input)
	}
	return trimmed, nil
}
