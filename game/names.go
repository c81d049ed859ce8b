package game

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var namePolicy = bluemonday.StrictPolicy()

// SanitizeDisplayName strips any HTML and trims whitespace.
func SanitizeDisplayName(name string) string {
	return strings.TrimSpace(namePolicy.Sanitize(name))
}

// ValidateDisplayName sanitizes and length-checks a display name, returning
// the cleaned value to store.
func ValidateDisplayName(name string) (string, error) {
	cleaned := SanitizeDisplayName(name)
	if len(cleaned) < 2 || len(cleaned) > 20 {
		return "", ErrInvalidDisplayName
	}
	return cleaned, nil
}
