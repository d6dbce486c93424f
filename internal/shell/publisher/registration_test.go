package publisher

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickweb-io/quickweb/internal/core/domain"
	"github.com/quickweb-io/quickweb/internal/shell/auth"
	"github.com/quickweb-io/quickweb/internal/shell/store"

	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Test Setup
// =============================================================================

// seqRand replays a fixed sequence of values, then repeats the last one.
type seqRand struct {
	values []int
	pos    int
}

func (r *seqRand) Intn(n int) int {
	v := r.values[r.pos]
	if r.pos < len(r.values)-1 {
		r.pos++
	}
	return v % n
}

func setupRegistrar(t *testing.T, rand domain.RandSource) (*Registrar, store.Store) {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	a, err := auth.NewAuthenticator(auth.Config{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	gen := domain.NewSubdomainGeneratorWithRand(rand)
	logger := slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRegistrar(s, a, gen, logger), s
}

// =============================================================================
// Registration Tests
// =============================================================================

func TestRegister_Success(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41}})

	user, err := r.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice-quickweb42", user.Subdomain)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestRegister_NormalizesInput(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41}})

	user, err := r.Register(context.Background(), "  Alice ", "Alice@Example.COM", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "username too short", username: "ab", email: "a@b.co", password: "s3cret-pass", wantErr: ErrInvalidUsername},
		{name: "username with hyphen", username: "al-ice", email: "a@b.co", password: "s3cret-pass", wantErr: ErrInvalidUsername},
		{name: "username with dot", username: "al.ice", email: "a@b.co", password: "s3cret-pass", wantErr: ErrInvalidUsername},
		{name: "missing at sign", username: "alice", email: "nope", password: "s3cret-pass", wantErr: ErrInvalidEmail},
		{name: "empty local part", username: "alice", email: "@example.com", password: "s3cret-pass", wantErr: ErrInvalidEmail},
		{name: "short password", username: "alice", email: "a@b.co", password: "short", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setupRegistrar(t, &seqRand{values: []int{0}})
			_, err := r.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegister_RetriesOnTakenSubdomain(t *testing.T) {
	// First generated candidate collides with an existing user; the second
	// attempt must succeed with a fresh candidate.
	r, s := setupRegistrar(t, &seqRand{values: []int{0, 0, 41, 1, 1, 6}})

	existing := domain.NewUser("bob", "bob@example.com", "hash", "alice-quickweb42")
	require.NoError(t, s.CreateUser(context.Background(), existing))

	user, err := r.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice-brightpage7", user.Subdomain)
}

func TestRegister_ExhaustsRetries(t *testing.T) {
	// Every candidate collides: the generator is pinned to zero, producing
	// "alice-quickweb1" on each attempt.
	r, s := setupRegistrar(t, &seqRand{values: []int{0}})

	existing := domain.NewUser("bob", "bob@example.com", "hash", "alice-quickweb1")
	require.NoError(t, s.CreateUser(context.Background(), existing))

	_, err := r.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrSubdomainSpaceExhausted)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41, 1, 1, 6}})
	ctx := context.Background()

	_, err := r.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = r.Register(ctx, "alice", "other@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41, 1, 1, 6}})
	ctx := context.Background()

	_, err := r.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = r.Register(ctx, "bob", "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin_Success(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41}})
	ctx := context.Background()

	registered, err := r.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	user, token, err := r.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0, 0, 41}})
	ctx := context.Background()

	_, err := r.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = r.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	r, _ := setupRegistrar(t, &seqRand{values: []int{0}})

	_, _, err := r.Login(context.Background(), "ghost", "whatever12")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
