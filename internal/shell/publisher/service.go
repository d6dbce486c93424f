// Package publisher implements the site publication engine: it turns an
// authenticated upload into a durable, uniquely-addressable published site.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quickweb-io/quickweb/internal/core/document"
	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/blob"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Service
// =============================================================================

// Service coordinates slug resolution, document composition, content storage
// and metadata persistence for publish operations.
type Service struct {
	store   store.Store
	blobs   blob.Store
	domains domain.DomainSet
	logger  *slog.Logger

	locks userLocks
}

// NewService creates a publisher service.
func NewService(s store.Store, b blob.Store, domains domain.DomainSet, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   s,
		blobs:   b,
		domains: domains,
		logger:  logger,
	}
}

// Domains returns the configured domain set.
func (s *Service) Domains() domain.DomainSet {
	return s.domains
}

// =============================================================================
// Publish
// =============================================================================

// PublishRequest carries one site upload. HTML is required; everything else
// is optional.
type PublishRequest struct {
	HTML            string
	CSS             string
	JS              string
	Favicon         string
	Name            string
	Slug            string
	PreferredDomain string
}

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	Site       *domain.Site
	PrimaryURL string
	URLs       map[string]string
}

// Publish performs one atomic publish operation for a user.
//
// Validation happens before any write. The content write happens before the
// metadata append, so a failed write leaves the user's site collection
// unchanged. Publishes for the same user are serialized; different users
// proceed in parallel.
func (s *Service) Publish(ctx context.Context, userID uuid.UUID, req PublishRequest) (*PublishResult, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, domain.ErrMissingContent
	}

	candidate, err := candidateSlug(req)
	if err != nil {
		return nil, err
	}

	// Compose before taking the lock: weaving is pure and does not depend on
	// the resolved slug.
	doc, err := document.Weave(req.HTML, document.Assets{
		Favicon: req.Favicon,
		CSS:     req.CSS,
		JS:      req.JS,
	})
	if err != nil {
		return nil, err
	}

	// Per-user critical section: the read of existing slugs and the append of
	// the new site must not interleave with another publish for this user.
	unlock := s.locks.lock(userID)
	defer unlock()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	slug, err := domain.ResolveUniqueSlug(candidate, user.ExistingSlugs())
	if err != nil {
		return nil, err
	}

	key := blob.SiteKey(user.Subdomain, slug)
	if err := s.blobs.Write(ctx, key, []byte(doc)); err != nil {
		return nil, fmt.Errorf("failed to store site content: %w", err)
	}

	urls := domain.BuildURLs(user.Subdomain, slug, s.domains)
	primary := s.domains.EffectivePrimary(req.PreferredDomain)

	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = slug
	}

	site := domain.NewSite(user.ID, name, slug, primary, urls)
	if err := s.store.CreateSite(ctx, site, domain.HostLabel(user.Subdomain, slug)); err != nil {
		return nil, fmt.Errorf("failed to record site: %w", err)
	}

	s.logger.Info("site published",
		"user_id", user.ID,
		"slug", slug,
		"primary_url", site.PrimaryURL(),
	)

	return &PublishResult{
		Site:       site,
		PrimaryURL: site.PrimaryURL(),
		URLs:       urls,
	}, nil
}

// candidateSlug determines the candidate slug for a request: the explicit
// slug when supplied, otherwise derived from the display name. Explicit slugs
// are folded to lowercase before validation: the slug is embedded in a
// hostname, and hostnames are case-insensitive.
func candidateSlug(req PublishRequest) (string, error) {
	if req.Slug != "" {
		slug := strings.ToLower(req.Slug)
		if err := domain.ValidateSlug(slug); err != nil {
			return "", err
		}
		return slug, nil
	}
	return domain.NormalizeSiteName(req.Name)
}

// =============================================================================
// Sites
// =============================================================================

// ListSites returns the user's sites in creation order.
func (s *Service) ListSites(ctx context.Context, userID uuid.UUID, opts store.ListOptions) ([]domain.Site, error) {
	return s.store.ListSitesByUser(ctx, userID, opts)
}

// GetSite returns a single site owned by the user.
func (s *Service) GetSite(ctx context.Context, userID, siteID uuid.UUID) (*domain.Site, error) {
	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	// Ownership check: a user only ever sees their own sites.
	if site.UserID != userID {
		return nil, domain.ErrSiteNotFound
	}
	return site, nil
}

// =============================================================================
// Per-User Locks
// =============================================================================

// userLocks serializes operations per user ID. Entries are never evicted;
// they are one mutex per active user, which is small and bounded by the user
// count of a single-node install.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// lock acquires the mutex for a user and returns its unlock function.
func (l *userLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
