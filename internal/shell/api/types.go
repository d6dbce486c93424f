package api

import "github.com/quickweb-io/quickweb/internal/shell/api/resources"

// =============================================================================
// Request Types
// =============================================================================

// RegisterRequest is the body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PublishRequest is the body for POST /api/v1/sites/publish. HTML is
// required; CSS, JS and favicon are woven into the document when present.
// Template selects a starter from the catalog and is mutually exclusive with
// HTML.
type PublishRequest struct {
	HTML            string `json:"html,omitempty"`
	CSS             string `json:"css,omitempty"`
	JS              string `json:"js,omitempty"`
	Favicon         string `json:"favicon,omitempty"`
	Name            string `json:"name,omitempty"`
	Slug            string `json:"slug,omitempty"`
	PreferredDomain string `json:"preferred_domain,omitempty"`
	Template        string `json:"template,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// AccountResponse is returned by register.
type AccountResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Subdomain string `json:"subdomain"`
}

// LoginResponse is returned by login.
type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// PublishResponse is returned by publish.
type PublishResponse struct {
	Site       resources.Site    `json:"site"`
	PrimaryURL string            `json:"primary_url"`
	URLs       map[string]string `json:"urls"`
}
