package domain

import (
	"fmt"
	"strings"
)

// =============================================================================
// Domain Set & URL Derivation
// =============================================================================

// DomainSet is the process-wide set of domains sites are published under.
// It is fixed at startup and never mutated afterwards.
type DomainSet struct {
	// Domains is the ordered list of supported domain names.
	Domains []string

	// Primary is the designated primary domain. Always a member of Domains.
	Primary string
}

// NewDomainSet builds a DomainSet, validating that the primary domain is one
// of the configured domains.
func NewDomainSet(domains []string, primary string) (DomainSet, error) {
	if len(domains) == 0 {
		return DomainSet{}, fmt.Errorf("domain set must contain at least one domain")
	}
	set := DomainSet{Domains: domains, Primary: primary}
	if !set.Contains(primary) {
		return DomainSet{}, fmt.Errorf("primary domain %q is not in the configured domain list", primary)
	}
	return set, nil
}

// Contains reports whether d is one of the configured domains.
func (s DomainSet) Contains(d string) bool {
	for _, candidate := range s.Domains {
		if candidate == d {
			return true
		}
	}
	return false
}

// EffectivePrimary returns the preferred domain if it is configured,
// otherwise the designated primary domain.
func (s DomainSet) EffectivePrimary(preferred string) string {
	if preferred != "" && s.Contains(preferred) {
		return preferred
	}
	return s.Primary
}

// HostLabel derives the leftmost hostname label for a published site.
// Pattern: {subdomain}-{slug}. Globally unique because the subdomain is
// globally unique and the slug is unique within its owner's collection.
// The label is lowercased: slugs may carry uppercase, but hostnames are
// case-insensitive and browsers send them folded.
func HostLabel(subdomain, slug string) string {
	return strings.ToLower(fmt.Sprintf("%s-%s", subdomain, slug))
}

// SiteHostname derives the hostname a published site is reachable under for a
// single domain. Pattern: {subdomain}-{slug}.{domain}
func SiteHostname(subdomain, slug, domain string) string {
	return fmt.Sprintf("%s.%s", HostLabel(subdomain, slug), domain)
}

// SiteURL derives the full URL for a single domain.
func SiteURL(subdomain, slug, domain string) string {
	return fmt.Sprintf("https://%s", SiteHostname(subdomain, slug, domain))
}

// BuildURLs derives the complete mapping of domain -> URL for a published
// site. The mapping has exactly one entry per configured domain and is fully
// determined by (subdomain, slug). Deterministic and pure.
//
// Example:
//
//	BuildURLs("alice-quickweb42", "my-page", set)
//	// {"example.com": "https://alice-quickweb42-my-page.example.com", ...}
func BuildURLs(subdomain, slug string, set DomainSet) map[string]string {
	urls := make(map[string]string, len(set.Domains))
	for _, d := range set.Domains {
		urls[d] = SiteURL(subdomain, slug, d)
	}
	return urls
}
