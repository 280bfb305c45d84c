// ABOUTME: HTML renderer for generated forms with Tailwind CSS.
// ABOUTME: Dispatches on field kind; a custom field renderer may replace any field's markup.

package form

import (
	"fmt"
	"html"
	"strings"

	"github.com/2389/adminkit/internal/htmlsafe"
	"github.com/2389/adminkit/internal/schema"
)

const inputClass = "mt-1 block w-full rounded border-gray-300 shadow-sm px-3 py-2 border"

// RenderOptions controls the form chrome around the fields.
type RenderOptions struct {
	// Action is the URL the form posts to.
	Action      string
	Target      string
	SubmitLabel string
	CancelURL   string
	Submitting  bool
}

// Render produces the form markup for the current state.
func (f *Form) Render(opts RenderOptions) string {
	var sb strings.Builder

	target := opts.Target
	if target == "" {
		target = "#modal"
	}
	sb.WriteString(fmt.Sprintf(`<form method="post" action="%s" hx-post="%s" hx-target="%s" hx-swap="innerHTML" class="space-y-4">`,
		html.EscapeString(opts.Action), html.EscapeString(opts.Action), html.EscapeString(target)))

	for _, field := range f.fields {
		sb.WriteString(f.RenderField(field))
	}

	sb.WriteString(`<div class="flex justify-end space-x-3 pt-4">`)
	if opts.CancelURL != "" {
		sb.WriteString(fmt.Sprintf(`<button type="button" hx-get="%s" hx-target="%s" class="px-4 py-2 rounded border border-gray-300 text-gray-700 hover:bg-gray-50">Cancel</button>`,
			html.EscapeString(opts.CancelURL), html.EscapeString(target)))
	}
	label := opts.SubmitLabel
	if label == "" {
		label = "Save"
	}
	disabled := ""
	if opts.Submitting {
		disabled = ` disabled aria-busy="true"`
		label = "Saving..."
	}
	sb.WriteString(fmt.Sprintf(`<button type="submit"%s class="px-4 py-2 rounded bg-blue-600 text-white hover:bg-blue-700 disabled:opacity-50">%s</button>`,
		disabled, html.EscapeString(label)))
	sb.WriteString(`</div></form>`)
	return sb.String()
}

// RenderField renders one field. A custom renderer that returns ok wins and
// its markup is used without the label, description or error wrapper.
func (f *Form) RenderField(field schema.FieldSchema) string {
	value := f.Value(field.Name)
	errMsg := f.errors[field.Name]

	if f.custom != nil {
		if out, ok := f.custom(schema.FieldContext{
			Field: field,
			Value: value,
			Error: errMsg,
			Data:  f.values.Clone(),
		}); ok {
			return out
		}
	}

	var sb strings.Builder
	sb.WriteString(`<div>`)
	if field.Kind == schema.KindCheckbox {
		sb.WriteString(`<label class="inline-flex items-center space-x-2 text-sm font-medium text-gray-700">`)
		sb.WriteString(control(field, value, errMsg != ""))
		sb.WriteString(fmt.Sprintf(`<span>%s</span></label>`, labelText(field)))
	} else {
		sb.WriteString(fmt.Sprintf(`<label for="%s" class="block text-sm font-medium text-gray-700">%s</label>`,
			html.EscapeString(fieldID(field.Name)), labelText(field)))
		sb.WriteString(control(field, value, errMsg != ""))
	}
	if field.Description != "" {
		sb.WriteString(fmt.Sprintf(`<p class="mt-1 text-xs text-gray-500">%s</p>`, htmlsafe.Sanitize(field.Description)))
	}
	if errMsg != "" {
		sb.WriteString(fmt.Sprintf(`<p class="mt-1 text-sm text-red-600">%s</p>`, html.EscapeString(errMsg)))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func labelText(field schema.FieldSchema) string {
	text := html.EscapeString(field.DisplayLabel())
	if field.Required {
		text += ` <span class="text-red-500">*</span>`
	}
	return text
}

func control(field schema.FieldSchema, value any, invalid bool) string {
	name := html.EscapeString(field.Name)
	id := html.EscapeString(fieldID(field.Name))
	common := fmt.Sprintf(`id="%s" name="%s"%s%s`, id, name, requiredAttr(field.Required), invalidAttr(invalid))
	placeholder := ""
	if field.Placeholder != "" {
		placeholder = fmt.Sprintf(` placeholder="%s"`, html.EscapeString(field.Placeholder))
	}

	switch field.Kind {
	case schema.KindText, "":
		return fmt.Sprintf(`<input type="text" %s value="%s"%s class="%s">`,
			common, html.EscapeString(formatValue(value)), placeholder, inputClass)

	case schema.KindEmail:
		return fmt.Sprintf(`<input type="email" %s value="%s"%s class="%s">`,
			common, html.EscapeString(formatValue(value)), placeholder, inputClass)

	case schema.KindNumber:
		var attrs strings.Builder
		if field.Min != nil {
			attrs.WriteString(fmt.Sprintf(` min="%s"`, formatValue(*field.Min)))
		}
		if field.Max != nil {
			attrs.WriteString(fmt.Sprintf(` max="%s"`, formatValue(*field.Max)))
		}
		if field.Step != nil {
			attrs.WriteString(fmt.Sprintf(` step="%s"`, formatValue(*field.Step)))
		}
		return fmt.Sprintf(`<input type="number" %s value="%s"%s%s class="%s">`,
			common, html.EscapeString(formatValue(value)), attrs.String(), placeholder, inputClass)

	case schema.KindTextarea:
		rows := field.Rows
		if rows <= 0 {
			rows = 3
		}
		return fmt.Sprintf(`<textarea %s rows="%d"%s class="%s">%s</textarea>`,
			common, rows, placeholder, inputClass, html.EscapeString(formatValue(value)))

	case schema.KindSelect:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(`<select %s class="%s">`, common, inputClass))
		prompt := field.Placeholder
		if prompt == "" {
			prompt = "Select..."
		}
		sb.WriteString(fmt.Sprintf(`<option value="">%s</option>`, html.EscapeString(prompt)))
		current := formatValue(value)
		for _, opt := range field.Options {
			optValue := formatValue(opt.Value)
			selected := ""
			if optValue == current && current != "" {
				selected = " selected"
			}
			sb.WriteString(fmt.Sprintf(`<option value="%s"%s>%s</option>`,
				html.EscapeString(optValue), selected, html.EscapeString(opt.Label)))
		}
		sb.WriteString(`</select>`)
		return sb.String()

	case schema.KindCheckbox:
		checked := ""
		if b, ok := value.(bool); ok && b {
			checked = " checked"
		}
		return fmt.Sprintf(`<input type="checkbox" id="%s" name="%s" value="true"%s class="rounded border-gray-300">`,
			id, name, checked)

	case schema.KindFile:
		var attrs strings.Builder
		if field.Multiple {
			attrs.WriteString(" multiple")
		}
		if field.Accept != "" {
			attrs.WriteString(fmt.Sprintf(` accept="%s"`, html.EscapeString(field.Accept)))
		}
		return fmt.Sprintf(`<input type="file" %s%s class="mt-1 block w-full text-sm">%s`,
			common, attrs.String(), currentFiles(value))

	case schema.KindDate:
		return fmt.Sprintf(`<input type="date" %s value="%s" class="%s">`,
			common, html.EscapeString(dateValue(value)), inputClass)

	default:
		return fmt.Sprintf(`<input type="text" %s value="%s" class="%s">`,
			common, html.EscapeString(formatValue(value)), inputClass)
	}
}

// currentFiles lists already stored file references so the user can see them.
func currentFiles(value any) string {
	var names []string
	switch t := value.(type) {
	case string:
		if t != "" {
			names = append(names, t)
		}
	case []any:
		for _, v := range t {
			if s := formatValue(v); s != "" {
				names = append(names, s)
			}
		}
	}
	if len(names) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<ul class="mt-1 text-xs text-gray-500">`)
	for _, n := range names {
		sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(n)))
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

// dateValue trims timestamps to the yyyy-mm-dd form date inputs accept.
func dateValue(value any) string {
	s := formatValue(value)
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}

func fieldID(name string) string {
	return "field-" + strings.ReplaceAll(name, ".", "-")
}

func requiredAttr(required bool) string {
	if required {
		return " required"
	}
	return ""
}

func invalidAttr(invalid bool) string {
	if invalid {
		return ` aria-invalid="true"`
	}
	return ""
}
