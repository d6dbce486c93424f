// Package hostsite serves published site content. It is the second HTTP
// surface of quickweb: the API server manages accounts and publishes, this
// server answers for the wildcard site hostnames.
package hostsite

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/core/serve"
	"github.com/quickweb-io/quickweb/internal/shell/blob"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Server
// =============================================================================

// Server resolves site hostnames to stored content.
type Server struct {
	store   store.Store
	blobs   blob.Store
	domains domain.DomainSet
	logger  *slog.Logger
}

// NewServer creates a host server.
func NewServer(s store.Store, b blob.Store, domains domain.DomainSet, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: s, blobs: b, domains: domains, logger: logger}
}

// Handler returns the http.Handler serving published sites.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleSite)
	return mux
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// A request for /health on a site hostname is site traffic, not a
	// liveness check.
	if _, ok := serve.SplitHost(r.Host, s.domains.Domains); ok {
		s.handleSite(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	target, ok := serve.SplitHost(r.Host, s.domains.Domains)
	if !ok {
		s.writeNotFound(w, "This address is not serving a published site.")
		return
	}

	site, err := s.store.GetSiteByHostLabel(r.Context(), target.Label)
	if err != nil {
		if isNotFound(err) {
			s.writeNotFound(w, "No site is published at this address.")
			return
		}
		s.logger.Error("site lookup failed", "host", r.Host, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	key := blob.SiteKey(site.OwnerSubdomain, site.Site.Slug)
	content, err := s.blobs.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// Metadata exists but content is gone; treat as unpublished.
			s.logger.Warn("site content missing", "key", key)
			s.writeNotFound(w, "No site is published at this address.")
			return
		}
		s.logger.Error("site content read failed", "key", key, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Visit counting is best effort; serving wins over bookkeeping.
	if err := s.store.IncrementSiteVisits(context.WithoutCancel(r.Context()), site.Site.ID); err != nil {
		s.logger.Warn("visit count update failed", "site_id", site.Site.ID, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

// writeNotFound renders a minimal branded 404 page.
func (s *Server) writeNotFound(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Site Not Found</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em">
<h1>404</h1>
<p>` + message + `</p>
</body>
</html>
`))
}

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return errors.Is(err, store.ErrNotFound)
}
