package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickweb-io/quickweb/internal/core/auth"
	"github.com/quickweb-io/quickweb/internal/core/catalog"
	"github.com/quickweb-io/quickweb/internal/core/document"
	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/api/middleware"
	"github.com/quickweb-io/quickweb/internal/shell/api/resources"
	shellauth "github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/publisher"
)

// =============================================================================
// Handlers
// =============================================================================

// Handlers holds the custom (non-JSON:API) endpoint handlers.
type Handlers struct {
	publisher *publisher.Service
	registrar *publisher.Registrar
	logger    *slog.Logger
}

// NewHandlers creates the custom endpoint handlers.
func NewHandlers(p *publisher.Service, r *publisher.Registrar, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{publisher: p, registrar: r, logger: logger}
}

// =============================================================================
// Auth Endpoints
// =============================================================================

// Register handles POST /api/v1/auth/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	user, err := h.registrar.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeRegistrationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Subdomain: user.Subdomain,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	user, token, err := h.registrar.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shellauth.ErrInvalidCredentials) {
			middleware.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid username or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		Account: AccountResponse{
			ID:        user.ID.String(),
			Username:  user.Username,
			Email:     user.Email,
			Subdomain: user.Subdomain,
		},
	})
}

// =============================================================================
// Publish Endpoint
// =============================================================================

// Publish handles POST /api/v1/sites/publish.
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(r.Context())
	if !ok {
		middleware.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	pubReq := publisher.PublishRequest{
		HTML:            req.HTML,
		CSS:             req.CSS,
		JS:              req.JS,
		Favicon:         req.Favicon,
		Name:            req.Name,
		Slug:            req.Slug,
		PreferredDomain: req.PreferredDomain,
	}

	// A template slug replaces the raw content with a catalog starter.
	if req.Template != "" {
		if req.HTML != "" {
			middleware.WriteJSONError(w, http.StatusBadRequest, "Bad Request", "Provide either html or template, not both")
			return
		}
		t, ok := catalog.BySlug(req.Template)
		if !ok {
			middleware.WriteJSONError(w, http.StatusNotFound, "Not Found", "Unknown template")
			return
		}
		pubReq.HTML = t.HTML
		if pubReq.CSS == "" {
			pubReq.CSS = t.CSS
		}
		if pubReq.Name == "" {
			pubReq.Name = t.Name
		}
	}

	result, err := h.publisher.Publish(r.Context(), userID, pubReq)
	if err != nil {
		h.writePublishError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PublishResponse{
		Site:       resources.SiteFromDomain(result.Site),
		PrimaryURL: result.PrimaryURL,
		URLs:       result.URLs,
	})
}

// =============================================================================
// Error Mapping
// =============================================================================

func (h *Handlers) writeRegistrationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, publisher.ErrInvalidUsername),
		errors.Is(err, publisher.ErrInvalidEmail),
		errors.Is(err, publisher.ErrWeakPassword):
		middleware.WriteJSONError(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, publisher.ErrUsernameTaken),
		errors.Is(err, publisher.ErrEmailTaken):
		middleware.WriteJSONError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrSubdomainSpaceExhausted):
		middleware.WriteJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Could not assign a subdomain, try again")
	default:
		h.logger.Error("registration failed", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Registration failed")
	}
}

func (h *Handlers) writePublishError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingContent):
		middleware.WriteJSONError(w, http.StatusUnprocessableEntity, "Validation Failed", "HTML content is required")
	case errors.Is(err, domain.ErrInvalidSlug):
		middleware.WriteJSONError(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, document.ErrMalformedDocument):
		middleware.WriteJSONError(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrSlugSpaceExhausted):
		middleware.WriteJSONError(w, http.StatusConflict, "Conflict", "No unique name available for this site")
	case errors.Is(err, domain.ErrUserNotFound):
		middleware.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "Unknown user")
	default:
		h.logger.Error("publish failed", "error", err)
		middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Publish failed")
	}
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
