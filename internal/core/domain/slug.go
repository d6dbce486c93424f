package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Slug Policy
// =============================================================================

const (
	// SlugMinLength is the minimum length of a valid slug.
	SlugMinLength = 3

	// SlugMaxLength is the maximum length of a valid slug (DNS label limit).
	SlugMaxLength = 63

	// FallbackSlug is used when no site name is supplied.
	FallbackSlug = "site"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Slugify converts a site name to a URL-safe slug.
//
// The transformation rules are:
//   - Lowercase letters (a-z) and digits (0-9) are kept as-is
//   - Uppercase letters (A-Z) are converted to lowercase
//   - Every maximal run of other characters becomes a single hyphen
//   - Leading and trailing hyphens are stripped
//
// This is a pure function with no side effects.
//
// Example:
//
//	Slugify("Hello World")     // returns "hello-world"
//	Slugify("My App 2.0!")     // returns "my-app-2-0"
//	Slugify("  --Portfolio--") // returns "portfolio"
func Slugify(name string) string {
	var b strings.Builder
	hyphenPending := false
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r + 32) // convert to lowercase
		default:
			// Runs of non-slug characters collapse to a single hyphen,
			// emitted lazily so leading and trailing runs are dropped.
			hyphenPending = true
		}
	}
	return b.String()
}

// ValidateSlug checks that a slug satisfies the slug grammar:
// only [a-zA-Z0-9-], length between SlugMinLength and SlugMaxLength,
// and no leading or trailing hyphen.
func ValidateSlug(slug string) error {
	if len(slug) < SlugMinLength || len(slug) > SlugMaxLength {
		return fmt.Errorf("%w: length must be between %d and %d characters, got %d",
			ErrInvalidSlug, SlugMinLength, SlugMaxLength, len(slug))
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: only letters, digits and hyphens are allowed", ErrInvalidSlug)
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("%w: must not start or end with a hyphen", ErrInvalidSlug)
	}
	return nil
}

// NormalizeSiteName derives a validated slug from a human-supplied site name.
// An absent or empty name falls back to FallbackSlug. The result is guaranteed
// to satisfy ValidateSlug; otherwise ErrInvalidSlug is returned.
func NormalizeSiteName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return FallbackSlug, nil
	}
	slug := Slugify(name)
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}
