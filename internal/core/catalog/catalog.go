// Package catalog holds the built-in starter site templates. The catalog is
// static data embedded at build time; it carries no logic beyond load and
// lookup.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// =============================================================================
// Types
// =============================================================================

// Template is one starter site a user can publish as-is and then edit.
type Template struct {
	Name        string `yaml:"name" json:"name"`
	Slug        string `yaml:"slug" json:"slug"`
	Description string `yaml:"description" json:"description"`
	HTML        string `yaml:"html" json:"html"`
	CSS         string `yaml:"css,omitempty" json:"css,omitempty"`
}

// =============================================================================
// Loading
// =============================================================================

var (
	loadOnce  sync.Once
	templates []Template
	loadErr   error
)

// Templates returns the embedded starter templates in catalog order.
func Templates() ([]Template, error) {
	loadOnce.Do(func() {
		var doc struct {
			Templates []Template `yaml:"templates"`
		}
		if err := yaml.Unmarshal(templatesYAML, &doc); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded template catalog: %w", err)
			return
		}
		templates = doc.Templates
	})
	return templates, loadErr
}

// BySlug looks up a single template. Returns false when no template with the
// given slug exists.
func BySlug(slug string) (Template, bool) {
	all, err := Templates()
	if err != nil {
		return Template{}, false
	}
	for _, t := range all {
		if t.Slug == slug {
			return t, true
		}
	}
	return Template{}, false
}
