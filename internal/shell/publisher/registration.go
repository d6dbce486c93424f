package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/store"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidUsername indicates a username outside the accepted shape.
	ErrInvalidUsername = errors.New("username must be 3-32 lowercase letters or digits")

	// ErrInvalidEmail indicates a syntactically unusable email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword indicates a password below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// maxSubdomainAttempts bounds the verify-and-retry loop during registration.
const maxSubdomainAttempts = 100

// =============================================================================
// Registrar
// =============================================================================

// Registrar handles account creation and login. Each new account is assigned
// a unique subdomain at registration time, verified against the store before
// the account is created.
type Registrar struct {
	store      store.Store
	auth       *auth.Authenticator
	subdomains *domain.SubdomainGenerator
	logger     *slog.Logger
}

// NewRegistrar creates a registrar.
func NewRegistrar(s store.Store, a *auth.Authenticator, gen *domain.SubdomainGenerator, logger *slog.Logger) *Registrar {
	if gen == nil {
		gen = domain.NewSubdomainGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{
		store:      s,
		auth:       a,
		subdomains: gen,
		logger:     logger,
	}
}

// Register creates a new user account with a freshly assigned subdomain.
//
// The generated subdomain is checked for availability before the insert; a
// losing race on the unique constraint triggers another attempt with a new
// candidate. After maxSubdomainAttempts failures the operation gives up with
// ErrSubdomainSpaceExhausted.
func (r *Registrar) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := r.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	for attempt := 0; attempt < maxSubdomainAttempts; attempt++ {
		subdomain := r.subdomains.Generate(username)

		taken, err := r.store.SubdomainTaken(ctx, subdomain)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		user := domain.NewUser(username, email, hash, subdomain)
		err = r.store.CreateUser(ctx, user)
		switch {
		case err == nil:
			r.logger.Info("user registered", "username", username, "subdomain", subdomain)
			return user, nil
		case errors.Is(err, store.ErrDuplicateSubdomain):
			// Lost the race between the availability check and the insert.
			continue
		case errors.Is(err, store.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		default:
			return nil, err
		}
	}

	return nil, domain.ErrSubdomainSpaceExhausted
}

// Login verifies credentials and issues a signed session token.
func (r *Registrar) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := r.auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := r.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// =============================================================================
// Validation
// =============================================================================

// validUsername accepts 3-32 lowercase letters and digits. The username is
// embedded verbatim in hostnames, so the shape is deliberately strict.
func validUsername(username string) bool {
	if len(username) < 3 || len(username) > 32 {
		return false
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
