// ABOUTME: Category entity configuration.
// ABOUTME: A plain entity with no hooks, viewable but not bulk-selectable.

package catalog

import "github.com/2389/adminkit/internal/schema"

// Categories returns the category configuration.
func Categories() *schema.EntityConfig {
	caps := schema.DefaultCapabilities()
	caps.CanView = true

	return &schema.EntityConfig{
		EntityName:   "Category",
		Slug:         "categories",
		APIEndpoint:  "/categories",
		Capabilities: &caps,
		Columns: []schema.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "slug", Label: "Slug", Sortable: true},
			{Key: "active", Label: "Active"},
		},
		FormFields: []schema.FieldSchema{
			{Name: "name", Label: "Name", Kind: schema.KindText, Required: true},
			{
				Name: "slug", Label: "Slug", Kind: schema.KindText, Required: true,
				Validation: schema.Validation{Pattern: `^[a-z0-9]+(-[a-z0-9]+)*$`, PatternMessage: "Use lowercase words separated by dashes"},
			},
			{Name: "description", Label: "Description", Kind: schema.KindTextarea, Rows: 3},
			{Name: "active", Label: "Visible in navigation", Kind: schema.KindCheckbox},
		},
	}
}
