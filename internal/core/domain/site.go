package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Site
// =============================================================================

// Site is one published static site. It belongs to exactly one user; the slug
// is unique within that user's site collection, not globally. The URL mapping
// carries exactly one entry per supported domain and is fully determined by
// (owner subdomain, slug) - it is never mutated independently. A Site is
// immutable after creation except for Visits and UpdatedAt.
type Site struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	PrimaryDomain string            `json:"primary_domain"`
	URLs          map[string]string `json:"urls"`
	Published     bool              `json:"published"`
	Visits        int64             `json:"visits"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewSite creates a published site record for an owner. The slug must already
// be resolved unique within the owner's collection, and urls must be the full
// per-domain mapping from BuildURLs.
func NewSite(userID uuid.UUID, name, slug, primaryDomain string, urls map[string]string) *Site {
	now := time.Now().UTC()
	return &Site{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Slug:          slug,
		PrimaryDomain: primaryDomain,
		URLs:          urls,
		Published:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PrimaryURL returns the URL for the site's primary domain.
func (s *Site) PrimaryURL() string {
	return s.URLs[s.PrimaryDomain]
}
