// ABOUTME: Sample entity configurations served by the admin console.
// ABOUTME: Registers products and categories plus the demo backend collections behind them.

package catalog

import (
	"sync"

	"github.com/2389/adminkit/internal/backend"
	"github.com/2389/adminkit/internal/schema"
)

// ProductMediaExtension is the extension name YAML configs use to reuse the
// product image and variant hooks.
const ProductMediaExtension = "product-media"

var registerOnce sync.Once

// Register adds the sample configurations and named extensions to the schema
// registry. Calling it more than once is a no-op.
func Register() {
	registerOnce.Do(func() {
		schema.RegisterExtension(ProductMediaExtension, schema.Extension{
			Hooks:            productHooks(),
			TransformForForm: productForForm,
			TransformForAPI:  productForAPI,
			CustomFormRender: renderImagePicker,
			CellRenderers: map[string]schema.CellRenderer{
				"status": renderStatus,
				"price":  renderPrice,
			},
		})
		schema.Register(Products())
		schema.Register(Categories())
	})
}

// Collections are the demo backend resources behind the sample entities.
// Categories deliberately answer with a bare array and reject pagination so
// the console exercises its fallback path.
func Collections() []backend.Collection {
	return []backend.Collection{
		{Name: "products", Shape: backend.ShapeEnvelope, Paginated: true, IDs: backend.IDInt, Required: []string{"name"}},
		{Name: "categories", Shape: backend.ShapeArray, Paginated: false, IDs: backend.IDULID, Required: []string{"name"}},
	}
}
