package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// SplitHost Tests
// =============================================================================

func TestSplitHost_TableDriven(t *testing.T) {
	domains := []string{"example.com", "example.dev"}

	tests := []struct {
		name   string
		host   string
		target Target
		ok     bool
	}{
		{
			name:   "primary domain",
			host:   "alice-quickweb42-my-page.example.com",
			target: Target{Label: "alice-quickweb42-my-page", Domain: "example.com"},
			ok:     true,
		},
		{
			name:   "secondary domain",
			host:   "alice-quickweb42-my-page.example.dev",
			target: Target{Label: "alice-quickweb42-my-page", Domain: "example.dev"},
			ok:     true,
		},
		{
			name:   "port stripped",
			host:   "bob-calmstone7-site.example.com:8443",
			target: Target{Label: "bob-calmstone7-site", Domain: "example.com"},
			ok:     true,
		},
		{
			// Hostnames are case-insensitive; clients may send any casing.
			name:   "mixed-case host folded",
			host:   "Alice-QuickWeb42-MyPage.Example.COM",
			target: Target{Label: "alice-quickweb42-mypage", Domain: "example.com"},
			ok:     true,
		},
		{name: "unknown domain", host: "foo.other.org", ok: false},
		{name: "bare domain", host: "example.com", ok: false},
		{name: "nested label", host: "a.b.example.com", ok: false},
		{name: "empty", host: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := SplitHost(tt.host, domains)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.target, target)
			}
		})
	}
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "example.com", StripPort("example.com:443"))
	assert.Equal(t, "example.com", StripPort("example.com"))
}
