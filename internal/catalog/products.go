// ABOUTME: Product entity configuration with image and variant handling.
// ABOUTME: Images travel as positioned objects on the wire and as a flat id list in the form.

package catalog

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/2389/adminkit/internal/schema"
)

var productStatuses = []schema.Option{
	{Value: "draft", Label: "Draft"},
	{Value: "active", Label: "Active"},
	{Value: "archived", Label: "Archived"},
}

// Products returns the product configuration.
func Products() *schema.EntityConfig {
	caps := schema.DefaultCapabilities()
	caps.CanView = true
	caps.Selectable = true

	return &schema.EntityConfig{
		EntityName:   "Product",
		Slug:         "products",
		APIEndpoint:  "/products",
		Capabilities: &caps,
		Columns: []schema.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "sku", Label: "SKU", Sortable: true},
			{Key: "price", Label: "Price", Sortable: true, Render: renderPrice},
			{Key: "stock", Label: "Stock", Sortable: true},
			{Key: "status", Label: "Status", Render: renderStatus},
			{Key: "hasVariants", Label: "Variants"},
		},
		FormFields: []schema.FieldSchema{
			{Name: "name", Label: "Name", Kind: schema.KindText, Required: true, Placeholder: "Classic Backpack"},
			{
				Name: "sku", Label: "SKU", Kind: schema.KindText,
				Description: "Uppercase letters, digits and dashes.",
				Validation:  schema.Validation{Pattern: `^[A-Z0-9-]+$`, PatternMessage: "Use uppercase letters, digits and dashes"},
			},
			{
				Name: "price", Label: "Price", Kind: schema.KindNumber, Required: true,
				Min: schema.Float(0), Step: schema.Float(0.01),
				Validation: schema.Validation{RequiredMessage: "Price is required", MinMessage: "Price cannot be negative"},
			},
			{Name: "stock", Label: "Stock", Kind: schema.KindNumber, Min: schema.Float(0), Step: schema.Float(1)},
			{Name: "status", Label: "Status", Kind: schema.KindSelect, Options: productStatuses},
			{Name: "featured", Label: "Featured on storefront", Kind: schema.KindCheckbox},
			{Name: "launchDate", Label: "Launch date", Kind: schema.KindDate},
			{Name: "supportEmail", Label: "Support email", Kind: schema.KindEmail},
			{Name: "description", Label: "Description", Kind: schema.KindTextarea, Rows: 4, Description: "Shown on the product page. <em>Basic HTML</em> is allowed."},
			{Name: "imageIds", Label: "Images", Kind: schema.KindFile, Multiple: true, Accept: "image/*"},
		},
		Hooks:            productHooks(),
		TransformForForm: productForForm,
		TransformForAPI:  productForAPI,
		CustomFormRender: renderImagePicker,
	}
}

func productHooks() schema.Hooks {
	return schema.Hooks{
		BeforeCreate: func(data schema.Record) schema.Record {
			return withVariantFlag(data)
		},
		BeforeUpdate: func(data, entity schema.Record) schema.Record {
			if _, ok := data["variants"]; !ok {
				data["variants"] = entity.Clone()["variants"]
			}
			return withVariantFlag(data)
		},
		// Active products must be archived before they can be removed.
		BeforeDelete: func(entity schema.Record) bool {
			return entity["status"] != "active"
		},
	}
}

// withVariantFlag sets hasVariants from the variants list. A missing list
// counts as empty.
func withVariantFlag(data schema.Record) schema.Record {
	variants, _ := data["variants"].([]any)
	if variants == nil {
		variants = []any{}
	}
	data["variants"] = variants
	data["hasVariants"] = len(variants) > 0
	return data
}

// productForForm flattens images [{imageId, position}] into imageIds ordered
// by position.
func productForForm(entity schema.Record) schema.Record {
	images, _ := entity["images"].([]any)
	type positioned struct {
		id  string
		pos float64
	}
	var list []positioned
	for i, img := range images {
		obj, ok := schema.AsRecord(img)
		if !ok {
			continue
		}
		id, ok := schema.FormatID(obj["imageId"])
		if !ok {
			continue
		}
		pos, ok := toFloat(obj["position"])
		if !ok {
			pos = float64(i)
		}
		list = append(list, positioned{id, pos})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].pos < list[j].pos })

	ids := make([]any, len(list))
	for i, p := range list {
		ids[i] = p.id
	}
	delete(entity, "images")
	entity["imageIds"] = ids
	return entity
}

// productForAPI expands imageIds back into positioned image objects.
func productForAPI(values schema.Record) schema.Record {
	ids, _ := values["imageIds"].([]any)
	images := make([]any, 0, len(ids))
	for _, raw := range ids {
		id, ok := schema.FormatID(raw)
		if !ok || strings.TrimSpace(id) == "" {
			continue
		}
		images = append(images, map[string]any{"imageId": id, "position": len(images)})
	}
	delete(values, "imageIds")
	values["images"] = images
	return values
}

// renderImagePicker replaces the file input for imageIds with checkboxes for
// the attached images and a box to attach another by id.
func renderImagePicker(ctx schema.FieldContext) (string, bool) {
	if ctx.Field.Name != "imageIds" {
		return "", false
	}
	ids, _ := ctx.Value.([]any)

	var sb strings.Builder
	sb.WriteString(`<fieldset class="image-picker">`)
	sb.WriteString(fmt.Sprintf(`<legend class="block text-sm font-medium text-gray-700">%s</legend>`, html.EscapeString(ctx.Field.DisplayLabel())))
	sb.WriteString(`<div class="mt-2 flex flex-wrap gap-2">`)
	for _, raw := range ids {
		id, ok := schema.FormatID(raw)
		if !ok {
			continue
		}
		esc := html.EscapeString(id)
		sb.WriteString(fmt.Sprintf(`<label class="flex items-center gap-1 rounded border px-2 py-1 text-xs"><input type="checkbox" name="imageIds" value="%s" checked>%s</label>`, esc, esc))
	}
	sb.WriteString(`</div>`)
	sb.WriteString(`<input type="text" name="imageIds" placeholder="Attach image id" class="mt-2 block w-full rounded-md border-gray-300 text-sm">`)
	if ctx.Error != "" {
		sb.WriteString(fmt.Sprintf(`<p class="mt-1 text-sm text-red-600">%s</p>`, html.EscapeString(ctx.Error)))
	}
	sb.WriteString(`</fieldset>`)
	return sb.String(), true
}

var statusClasses = map[string]string{
	"active":   "bg-green-100 text-green-800",
	"draft":    "bg-yellow-100 text-yellow-800",
	"archived": "bg-gray-100 text-gray-600",
}

func renderStatus(value any, row schema.Record) string {
	status := fmt.Sprint(value)
	if value == nil || status == "" {
		return ""
	}
	classes, ok := statusClasses[status]
	if !ok {
		classes = "bg-gray-100 text-gray-600"
	}
	label := status
	for _, o := range productStatuses {
		if o.Value == status {
			label = o.Label
		}
	}
	return fmt.Sprintf(`<span class="inline-flex rounded-full px-2 text-xs font-semibold %s">%s</span>`, classes, html.EscapeString(label))
}

func renderPrice(value any, row schema.Record) string {
	if value == nil || value == "" {
		return ""
	}
	f, ok := toFloat(value)
	if !ok {
		return html.EscapeString(fmt.Sprint(value))
	}
	return fmt.Sprintf("$%.2f", f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
