package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// User Aggregate
// =============================================================================

// User is a registered account. Username, email and subdomain are unique
// across all users; the subdomain is immutable once assigned. The user owns an
// ordered collection of Site records (insertion order = creation order); the
// core only ever appends to it.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Subdomain    string    `json:"subdomain"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Sites is ordered by creation time, oldest first.
	Sites []Site `json:"sites,omitempty"`
}

// NewUser creates a user with a fresh ID and timestamps. The subdomain must
// already be verified unique by the registration flow.
func NewUser(username, email, passwordHash, subdomain string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Subdomain:    subdomain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ExistingSlugs returns the membership set of slugs already used by the
// user's sites.
func (u *User) ExistingSlugs() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Sites))
	for _, s := range u.Sites {
		set[s.Slug] = struct{}{}
	}
	return set
}
