// Package resources provides JSON:API resource implementations for the
// quickweb API.
package resources

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/manyminds/api2go"

	"github.com/quickweb-io/quickweb/internal/core/auth"
	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/publisher"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Site JSON:API Model
// =============================================================================

// Site wraps domain.Site to implement the JSON:API interfaces.
type Site struct {
	ID            string            `json:"-"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	PrimaryDomain string            `json:"primary_domain"`
	PrimaryURL    string            `json:"primary_url"`
	URLs          map[string]string `json:"urls"`
	Published     bool              `json:"published"`
	Visits        int64             `json:"visits"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// GetID returns the site ID for JSON:API.
func (s Site) GetID() string {
	return s.ID
}

// SetID sets the site ID for JSON:API.
func (s *Site) SetID(id string) error {
	s.ID = id
	return nil
}

// GetName returns the JSON:API resource type name.
func (s Site) GetName() string {
	return "sites"
}

// SiteFromDomain converts a domain.Site to a JSON:API Site.
func SiteFromDomain(s *domain.Site) Site {
	return Site{
		ID:            s.ID.String(),
		Name:          s.Name,
		Slug:          s.Slug,
		PrimaryDomain: s.PrimaryDomain,
		PrimaryURL:    s.PrimaryURL(),
		URLs:          s.URLs,
		Published:     s.Published,
		Visits:        s.Visits,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// =============================================================================
// SiteResource - Read Operations
// =============================================================================

// SiteResource implements the api2go resource interface for sites. Sites are
// created through the publish endpoint and are immutable afterwards, so the
// resource is read-only.
type SiteResource struct {
	Publisher *publisher.Service
}

// NewSiteResource creates a new site resource handler.
func NewSiteResource(p *publisher.Service) *SiteResource {
	return &SiteResource{Publisher: p}
}

// FindAll returns the authenticated user's sites in creation order.
// GET /api/v1/sites
func (r SiteResource) FindAll(req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	userID, ok := auth.RequireUser(ctx)
	if !ok {
		return &Response{Code: http.StatusUnauthorized}, api2go.NewHTTPError(
			fmt.Errorf("authentication required"),
			"Authentication required",
			http.StatusUnauthorized,
		)
	}

	opts := store.DefaultListOptions()
	if limit, ok := req.QueryParams["page[size]"]; ok && len(limit) > 0 {
		if l, err := strconv.Atoi(limit[0]); err == nil {
			opts.Limit = l
		}
	}
	if offset, ok := req.QueryParams["page[offset]"]; ok && len(offset) > 0 {
		if o, err := strconv.Atoi(offset[0]); err == nil {
			opts.Offset = o
		}
	}

	sites, err := r.Publisher.ListSites(ctx, userID, opts)
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}

	result := make([]Site, 0, len(sites))
	for i := range sites {
		result = append(result, SiteFromDomain(&sites[i]))
	}

	return &Response{
		Code: http.StatusOK,
		Res:  result,
		Meta: map[string]interface{}{
			"total":  len(result),
			"limit":  opts.Limit,
			"offset": opts.Offset,
		},
	}, nil
}

// FindOne returns a single site owned by the authenticated user.
// GET /api/v1/sites/{id}
func (r SiteResource) FindOne(id string, req api2go.Request) (api2go.Responder, error) {
	ctx := req.PlainRequest.Context()
	userID, ok := auth.RequireUser(ctx)
	if !ok {
		return &Response{Code: http.StatusUnauthorized}, api2go.NewHTTPError(
			fmt.Errorf("authentication required"),
			"Authentication required",
			http.StatusUnauthorized,
		)
	}

	siteID, err := uuid.Parse(id)
	if err != nil {
		return &Response{Code: http.StatusNotFound}, api2go.NewHTTPError(
			fmt.Errorf("site not found"),
			"Site not found",
			http.StatusNotFound,
		)
	}

	site, err := r.Publisher.GetSite(ctx, userID, siteID)
	if err != nil {
		if errors.Is(err, domain.ErrSiteNotFound) || isNotFound(err) {
			return &Response{Code: http.StatusNotFound}, api2go.NewHTTPError(
				fmt.Errorf("site not found"),
				"Site not found",
				http.StatusNotFound,
			)
		}
		return &Response{Code: http.StatusInternalServerError}, err
	}

	return &Response{
		Code: http.StatusOK,
		Res:  SiteFromDomain(site),
	}, nil
}

// =============================================================================
// Response Helper
// =============================================================================

// Response implements api2go.Responder for custom responses.
type Response struct {
	Code int
	Res  interface{}
	Meta map[string]interface{}
}

// Metadata returns additional metadata for the response.
func (r *Response) Metadata() map[string]interface{} {
	return r.Meta
}

// Result returns the response data.
func (r *Response) Result() interface{} {
	return r.Res
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.Code
}

// =============================================================================
// Helper Functions
// =============================================================================

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return errors.Is(err, store.ErrNotFound)
}
