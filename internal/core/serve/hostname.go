// Package serve provides pure types and functions for routing published-site
// requests by hostname. This package has no I/O dependencies and is tested
// with values in/out.
package serve

import "strings"

// =============================================================================
// Hostname Splitting
// =============================================================================

// Target identifies the published site a hostname resolves to.
type Target struct {
	// Label is the leftmost hostname label, i.e. "{subdomain}-{slug}".
	Label string

	// Domain is the configured domain the hostname was served under.
	Domain string
}

// SplitHost splits an incoming Host header into the site label and the
// configured domain it belongs to. A port suffix is stripped first. Returns
// false when the host does not belong to any configured domain or carries no
// label. The host is folded to lowercase before matching: hostnames are
// case-insensitive and stored labels are always lowercase.
//
// Example:
//
//	SplitHost("alice-quickweb42-my-page.example.com:443", []string{"example.com"})
//	// Target{Label: "alice-quickweb42-my-page", Domain: "example.com"}, true
func SplitHost(host string, domains []string) (Target, bool) {
	host = strings.ToLower(StripPort(host))
	for _, d := range domains {
		suffix := "." + d
		if !strings.HasSuffix(host, suffix) {
			continue
		}
		label := strings.TrimSuffix(host, suffix)
		// Nested labels ("a.b.example.com") are not published sites.
		if label == "" || strings.Contains(label, ".") {
			return Target{}, false
		}
		return Target{Label: label, Domain: d}, true
	}
	return Target{}, false
}

// StripPort removes a trailing ":port" from a Host header value. Browsers
// include the port when it is non-standard.
func StripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
