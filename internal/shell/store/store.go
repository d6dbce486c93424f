package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickweb-io/quickweb/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for Quickweb entities. It is a
// per-record user store: the read-then-write for a given user runs inside
// WithTx and is therefore atomic with respect to other writers.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	SubdomainTaken(ctx context.Context, subdomain string) (bool, error)

	// Site operations. The slug namespace is per-user; hostLabel
	// ("{subdomain}-{slug}") is globally unique and used by the host server.
	CreateSite(ctx context.Context, site *domain.Site, hostLabel string) error
	GetSite(ctx context.Context, id uuid.UUID) (*domain.Site, error)
	ListSitesByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]domain.Site, error)
	GetSiteByHostLabel(ctx context.Context, label string) (*SiteWithOwner, error)
	IncrementSiteVisits(ctx context.Context, id uuid.UUID) error

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
}

// SiteWithOwner is a site joined with the owner fields the host server needs.
type SiteWithOwner struct {
	Site           domain.Site
	OwnerSubdomain string
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
