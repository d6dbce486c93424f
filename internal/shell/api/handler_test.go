package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/blob"
	"github.com/quickweb-io/quickweb/internal/shell/publisher"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// setupTestAPI wires a complete API against an in-memory store.
func setupTestAPI(t *testing.T) http.Handler {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	blobs, err := blob.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator(auth.Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	domains, err := domain.NewDomainSet([]string{"quickweb.io", "qweb.site"}, "quickweb.io")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := publisher.NewService(s, blobs, domains, logger)
	registrar := publisher.NewRegistrar(s, authenticator, nil, logger)

	return SetupAPI(APIConfig{
		Store:         s,
		Publisher:     svc,
		Registrar:     registrar,
		Authenticator: authenticator,
		Logger:        logger,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user and returns a bearer token.
func registerAndLogin(t *testing.T, handler http.Handler, username string) string {
	t.Helper()

	rec := doJSON(t, handler, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, "POST", "/api/v1/auth/login", "", LoginRequest{
		Username: username,
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

const testHTML = "<html><head><title>t</title></head><body>hi</body></html>"

// =============================================================================
// Health and OpenAPI
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestOpenAPIEndpoint(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "GET", "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var spec map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, "3.0.3", spec["openapi"])

	paths, ok := spec["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/sites/publish")
	assert.Contains(t, paths, "/api/v1/auth/register")
}

// =============================================================================
// Auth Endpoints
// =============================================================================

func TestRegisterEndpoint(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Regexp(t, `^alice-[a-z]+[1-9][0-9]{0,3}$`, resp.Subdomain)
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Username: "ab",
		Email:    "a@b.co",
		Password: "s3cret-pass",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegisterEndpoint_DuplicateUsername(t *testing.T) {
	handler := setupTestAPI(t)
	registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	handler := setupTestAPI(t)
	registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/auth/login", "", LoginRequest{
		Username: "alice",
		Password: "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// Publish Endpoint
// =============================================================================

func TestPublishEndpoint(t *testing.T) {
	handler := setupTestAPI(t)
	token := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", token, PublishRequest{
		HTML: testHTML,
		Name: "My Portfolio",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PublishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "my-portfolio", resp.Site.Slug)
	assert.Contains(t, resp.PrimaryURL, "-my-portfolio.quickweb.io")
	assert.Len(t, resp.URLs, 2)
}

func TestPublishEndpoint_RequiresAuth(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", "", PublishRequest{HTML: testHTML})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishEndpoint_MissingContent(t *testing.T) {
	handler := setupTestAPI(t)
	token := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", token, PublishRequest{Name: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPublishEndpoint_InvalidSlug(t *testing.T) {
	handler := setupTestAPI(t)
	token := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", token, PublishRequest{
		HTML: testHTML,
		Slug: "Ab",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPublishEndpoint_FromTemplate(t *testing.T) {
	handler := setupTestAPI(t)
	token := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", token, PublishRequest{
		Template: "portfolio",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PublishResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Site.Slug)
}

func TestPublishEndpoint_UnknownTemplate(t *testing.T) {
	handler := setupTestAPI(t)
	token := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", token, PublishRequest{
		Template: "does-not-exist",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// JSON:API Resources
// =============================================================================

func TestSitesResource_ListScopedToOwner(t *testing.T) {
	handler := setupTestAPI(t)
	aliceToken := registerAndLogin(t, handler, "alice")
	bobToken := registerAndLogin(t, handler, "bob")

	rec := doJSON(t, handler, "POST", "/api/v1/sites/publish", aliceToken, PublishRequest{
		HTML: testHTML,
		Name: "alice site",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Alice sees her site.
	rec = doJSON(t, handler, "GET", "/api/v1/sites", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "alice-site")

	// Bob sees an empty list.
	rec = doJSON(t, handler, "GET", "/api/v1/sites", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "alice-site")
}

func TestTemplatesResource(t *testing.T) {
	handler := setupTestAPI(t)

	rec := doJSON(t, handler, "GET", "/api/v1/templates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "portfolio")

	rec = doJSON(t, handler, "GET", "/api/v1/templates/portfolio", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
