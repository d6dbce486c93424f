package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// =============================================================================
// Subdomain Generation
// =============================================================================

// Word lists for memorable subdomain generation. 10 adjectives x 10 nouns x
// 9999 numbers gives roughly one million combinations per username prefix.
var (
	subdomainAdjectives = []string{
		"quick", "bright", "calm", "bold", "swift",
		"vivid", "keen", "warm", "clever", "steady",
	}
	subdomainNouns = []string{
		"web", "page", "wave", "peak", "grove",
		"stone", "river", "cloud", "field", "spark",
	}
)

// RandSource supplies random indices for subdomain generation. The default
// implementation uses crypto/rand; tests inject a deterministic source.
type RandSource interface {
	// Intn returns a uniformly random integer in [0, n).
	Intn(n int) int
}

type cryptoRandSource struct{}

func (cryptoRandSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// SubdomainGenerator produces human-memorable subdomain identities.
// Values are NOT globally unique by construction; the registration flow must
// verify against existing identities and retry on collision.
type SubdomainGenerator struct {
	rand RandSource
}

// NewSubdomainGenerator creates a generator backed by crypto/rand.
func NewSubdomainGenerator() *SubdomainGenerator {
	return &SubdomainGenerator{rand: cryptoRandSource{}}
}

// NewSubdomainGeneratorWithRand creates a generator with an injected random
// source, used for deterministic tests.
func NewSubdomainGeneratorWithRand(r RandSource) *SubdomainGenerator {
	return &SubdomainGenerator{rand: r}
}

// Generate builds a subdomain identity of the form
// "{username}-{adjective}{noun}{number}" with number in [1, 9999].
//
// Example:
//
//	Generate("alice") // returns e.g. "alice-quickweb42"
func (g *SubdomainGenerator) Generate(username string) string {
	adjective := subdomainAdjectives[g.rand.Intn(len(subdomainAdjectives))]
	noun := subdomainNouns[g.rand.Intn(len(subdomainNouns))]
	number := g.rand.Intn(9999) + 1
	return fmt.Sprintf("%s-%s%s%d", username, adjective, noun, number)
}
