// Package api provides HTTP handlers for the quickweb API.
package api

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/manyminds/api2go"

	"github.com/quickweb-io/quickweb/internal/shell/api/middleware"
	"github.com/quickweb-io/quickweb/internal/shell/api/openapi"
	"github.com/quickweb-io/quickweb/internal/shell/api/resources"
	"github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/publisher"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// API Setup
// =============================================================================

// APIConfig holds configuration for the API setup.
type APIConfig struct {
	Store         store.Store
	Publisher     *publisher.Service
	Registrar     *publisher.Registrar
	Authenticator *auth.Authenticator
	Logger        *slog.Logger
}

// SetupAPI creates the complete API router with JSON:API resources and the
// custom action endpoints. Returns an http.Handler that can be used as the
// server's main handler.
func SetupAPI(cfg APIConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(recoveryMiddleware(cfg.Logger))

	authMW := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Verifier: cfg.Authenticator,
		Users:    cfg.Store,
		Logger:   cfg.Logger,
	})
	router.Use(authMW.Handler)

	// Health endpoint (not JSON:API, just simple JSON)
	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Custom action endpoints. These must be registered before the /api
	// PathPrefix handler so they are not caught by api2go.
	handlers := NewHandlers(cfg.Publisher, cfg.Registrar, cfg.Logger)
	router.HandleFunc("/api/v1/auth/register", handlers.Register).Methods("POST")
	router.HandleFunc("/api/v1/auth/login", handlers.Login).Methods("POST")

	requireAuth := middleware.RequireAuth(cfg.Logger)
	router.Handle("/api/v1/sites/publish", requireAuth(http.HandlerFunc(handlers.Publish))).Methods("POST")

	// JSON:API resources
	jsonAPI := api2go.NewAPIWithResolver("v1", api2go.NewStaticResolver("/api"))
	jsonAPI.ContentType = "application/vnd.api+json"
	jsonAPI.AddResource(resources.Site{}, resources.NewSiteResource(cfg.Publisher))
	jsonAPI.AddResource(resources.Template{}, resources.NewTemplateResource())

	// OpenAPI endpoint
	router.HandleFunc("/openapi.json", openapiGenerator().Handler()).Methods("GET")

	// api2go expects paths without the /api prefix (e.g. /v1/sites, not
	// /api/v1/sites), so strip it before delegating.
	router.PathPrefix("/api").Handler(http.StripPrefix("/api", jsonAPI.Handler()))

	return router
}

// openapiGenerator builds the reflective OpenAPI generator for the API.
func openapiGenerator() *openapi.Generator {
	gen := openapi.NewGenerator(
		openapi.WithTitle("quickweb API"),
		openapi.WithVersion("1.0.0"),
		openapi.WithDescription("Static site publication platform API"),
		openapi.WithServer("/api/v1"),
	)

	gen.RegisterResource(openapi.ResourceInfo{
		Name:         "sites",
		Model:        resources.Site{},
		SupportsFind: true,
	})
	gen.RegisterResource(openapi.ResourceInfo{
		Name:         "templates",
		Model:        resources.Template{},
		SupportsFind: true,
	})

	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:  "POST",
		Path:    "/api/v1/auth/register",
		Summary: "Register a new account",
		Tag:     "Auth",
		Request: RegisterRequest{},
	})
	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:  "POST",
		Path:    "/api/v1/auth/login",
		Summary: "Log in and obtain a bearer token",
		Tag:     "Auth",
		Request: LoginRequest{},
	})
	gen.RegisterEndpoint(openapi.EndpointInfo{
		Method:      "POST",
		Path:        "/api/v1/sites/publish",
		Summary:     "Publish a site",
		Tag:         "Sites",
		Request:     PublishRequest{},
		RequireAuth: true,
	})

	return gen
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDMiddleware generates and adds a request ID to responses.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics and returns a 500 error.
func recoveryMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"errors": []map[string]interface{}{
							{
								"status": "500",
								"title":  "Internal Server Error",
								"detail": "An unexpected error occurred",
							},
						},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// Health Handler
// =============================================================================

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// =============================================================================
// Helpers
// =============================================================================

// generateRequestID generates a unique request ID.
func generateRequestID() string {
	return "req_" + randomString(12)
}

// randomString generates a cryptographically random string of the given length.
func randomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		b[i] = letters[idx.Int64()]
	}
	return string(b)
}
