// Package domain contains the core types and pure functions of the Quickweb
// publication engine. This is part of the Functional Core - no I/O happens here.
package domain

import "errors"

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMissingContent is returned when a publish request carries no HTML.
	ErrMissingContent = errors.New("html content is required")

	// ErrInvalidSlug is returned when a name cannot be normalized into a valid slug.
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrSlugSpaceExhausted is returned when no free slug suffix is found within
	// the defensive attempt cap. Practically unreachable: the existing set is
	// bounded by the user's own site count.
	ErrSlugSpaceExhausted = errors.New("slug namespace exhausted")

	// ErrSubdomainSpaceExhausted is returned when no unique subdomain is found
	// within the registration retry budget.
	ErrSubdomainSpaceExhausted = errors.New("subdomain namespace exhausted")

	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSiteNotFound is returned when the requested site does not exist.
	ErrSiteNotFound = errors.New("site not found")
)
