package resources

import (
	"fmt"
	"net/http"

	"github.com/manyminds/api2go"

	"github.com/quickweb-io/quickweb/internal/core/catalog"
)

// =============================================================================
// Template JSON:API Model
// =============================================================================

// Template exposes a starter template from the embedded catalog.
type Template struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HTML        string `json:"html"`
	CSS         string `json:"css,omitempty"`
}

// GetID returns the template slug for JSON:API.
func (t Template) GetID() string {
	return t.ID
}

// SetID sets the template slug for JSON:API.
func (t *Template) SetID(id string) error {
	t.ID = id
	return nil
}

// GetName returns the JSON:API resource type name.
func (t Template) GetName() string {
	return "templates"
}

// TemplateFromCatalog converts a catalog entry to a JSON:API Template.
func TemplateFromCatalog(t catalog.Template) Template {
	return Template{
		ID:          t.Slug,
		Name:        t.Name,
		Description: t.Description,
		HTML:        t.HTML,
		CSS:         t.CSS,
	}
}

// =============================================================================
// TemplateResource - Read Operations
// =============================================================================

// TemplateResource serves the embedded starter template catalog. The catalog
// is static, so only read operations exist.
type TemplateResource struct{}

// NewTemplateResource creates a new template resource handler.
func NewTemplateResource() *TemplateResource {
	return &TemplateResource{}
}

// FindAll returns the catalog in its defined order.
// GET /api/v1/templates
func (r TemplateResource) FindAll(req api2go.Request) (api2go.Responder, error) {
	all, err := catalog.Templates()
	if err != nil {
		return &Response{Code: http.StatusInternalServerError}, err
	}

	result := make([]Template, 0, len(all))
	for _, t := range all {
		result = append(result, TemplateFromCatalog(t))
	}

	return &Response{
		Code: http.StatusOK,
		Res:  result,
		Meta: map[string]interface{}{"total": len(result)},
	}, nil
}

// FindOne returns a single template by slug.
// GET /api/v1/templates/{id}
func (r TemplateResource) FindOne(id string, req api2go.Request) (api2go.Responder, error) {
	t, ok := catalog.BySlug(id)
	if !ok {
		return &Response{Code: http.StatusNotFound}, api2go.NewHTTPError(
			fmt.Errorf("template not found"),
			"Template not found",
			http.StatusNotFound,
		)
	}

	return &Response{
		Code: http.StatusOK,
		Res:  TemplateFromCatalog(t),
	}, nil
}
