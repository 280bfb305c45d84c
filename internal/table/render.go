// ABOUTME: HTML renderer for entity tables with Tailwind CSS and htmx attributes.
// ABOUTME: Renders headers with sort requests, selectable rows, action clusters, pagination and detail lists.

package table

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/2389/adminkit/internal/htmlsafe"
	"github.com/2389/adminkit/internal/schema"
)

// View is everything the renderer needs for one table.
type View struct {
	Columns []schema.Column
	Rows    []schema.Record
	Actions []Action

	Loading   bool
	EmptyText string

	Sortable   bool
	Sort       Sort
	Selectable bool
	Selection  *Selection

	Page     int
	PageSize int
	Total    int

	// BaseURL prefixes the sort, select and page requests; Target is the
	// element htmx swaps with the response.
	BaseURL string
	Target  string
}

func (v View) target() string {
	if v.Target == "" {
		return "#entity-table"
	}
	return v.Target
}

// Render generates the table and its pagination bar.
func Render(v View) string {
	var sb strings.Builder

	sb.WriteString(`<div class="bg-white rounded-lg shadow overflow-x-auto">`)
	sb.WriteString(`<table class="min-w-full divide-y divide-gray-200">`)
	sb.WriteString(`<thead class="bg-gray-50"><tr>`)

	if v.Selectable {
		checked := ""
		if v.Selection != nil && v.Selection.AllSelected(RowIDs(v.Rows)) {
			checked = " checked"
		}
		sb.WriteString(fmt.Sprintf(`<th class="px-4 py-3 w-8"><input type="checkbox" aria-label="Select all"%s hx-post="%s" hx-target="%s" class="rounded border-gray-300"></th>`,
			checked, html.EscapeString(v.BaseURL+"/select-all"), v.target()))
	}

	for _, col := range v.Columns {
		sb.WriteString(renderHeader(v, col))
	}

	if len(v.Actions) > 0 {
		sb.WriteString(`<th class="px-6 py-3 text-right text-xs font-medium text-gray-500 uppercase">Actions</th>`)
	}

	sb.WriteString(`</tr></thead>`)
	sb.WriteString(`<tbody class="bg-white divide-y divide-gray-200">`)

	span := len(v.Columns)
	if v.Selectable {
		span++
	}
	if len(v.Actions) > 0 {
		span++
	}

	switch {
	case v.Loading:
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d" class="px-6 py-8 text-center text-sm text-gray-500" aria-busy="true">Loading...</td></tr>`, span))
	case len(v.Rows) == 0:
		empty := v.EmptyText
		if empty == "" {
			empty = "No records found"
		}
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d" class="px-6 py-8 text-center text-sm text-gray-500">%s</td></tr>`,
			span, html.EscapeString(empty)))
	default:
		for _, row := range v.Rows {
			sb.WriteString(renderRow(v, row))
		}
	}

	sb.WriteString(`</tbody></table></div>`)
	sb.WriteString(RenderPagination(v.Page, v.PageSize, v.Total, v.BaseURL, v.target()))
	return sb.String()
}

func renderHeader(v View, col schema.Column) string {
	label := html.EscapeString(col.Label)
	if !v.Sortable || !col.Sortable {
		return fmt.Sprintf(`<th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase">%s</th>`, label)
	}

	indicator := ""
	aria := "none"
	if v.Sort.Key == col.Key {
		switch v.Sort.Dir {
		case Asc:
			indicator = ` <span aria-hidden="true">&#9650;</span>`
			aria = "ascending"
		case Desc:
			indicator = ` <span aria-hidden="true">&#9660;</span>`
			aria = "descending"
		}
	}
	sortURL := v.BaseURL + "/sort?key=" + url.QueryEscape(col.Key)
	return fmt.Sprintf(`<th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase" aria-sort="%s"><button type="button" hx-post="%s" hx-target="%s" class="uppercase hover:text-gray-900">%s%s</button></th>`,
		aria, html.EscapeString(sortURL), v.target(), label, indicator)
}

func renderRow(v View, row schema.Record) string {
	var sb strings.Builder
	id, _ := row.ID()

	sb.WriteString(fmt.Sprintf(`<tr id="row-%s">`, html.EscapeString(id)))

	if v.Selectable {
		checked := ""
		if v.Selection != nil && v.Selection.Has(id) {
			checked = " checked"
		}
		selectURL := v.BaseURL + "/select?id=" + url.QueryEscape(id)
		sb.WriteString(fmt.Sprintf(`<td class="px-4 py-4"><input type="checkbox" aria-label="Select row"%s hx-post="%s" hx-target="%s" class="rounded border-gray-300"></td>`,
			checked, html.EscapeString(selectURL), v.target()))
	}

	for _, col := range v.Columns {
		sb.WriteString(fmt.Sprintf(`<td class="px-6 py-4 whitespace-nowrap text-sm text-gray-900">%s</td>`, RenderCell(col, row)))
	}

	if len(v.Actions) > 0 {
		sb.WriteString(`<td class="px-6 py-4 whitespace-nowrap text-right text-sm space-x-3">`)
		sb.WriteString(RenderActions(VisibleActions(v.Actions, row), id))
		sb.WriteString(`</td>`)
	}

	sb.WriteString(`</tr>`)
	return sb.String()
}

// RenderCell renders one cell. Custom renderer output is sanitized; plain
// values are escaped.
func RenderCell(col schema.Column, row schema.Record) string {
	value, _ := schema.Lookup(row, col.Key)
	if col.Render != nil {
		return htmlsafe.Sanitize(col.Render(value, row))
	}
	return html.EscapeString(FormatCell(value))
}

// RenderActions generates the action buttons for one row.
func RenderActions(actions []Action, rowID string) string {
	var sb strings.Builder

	for i, action := range actions {
		if i > 0 {
			sb.WriteString(" ")
		}

		endpoint := strings.ReplaceAll(action.Endpoint, "{id}", url.PathEscape(rowID))
		label := action.Label
		if label == "" {
			label = action.Name
		}

		cssClass := "text-blue-600 hover:text-blue-900"
		if action.Danger {
			cssClass = "text-red-600 hover:text-red-900"
		}

		if action.Method == "" || action.Method == "GET" {
			sb.WriteString(fmt.Sprintf(`<button type="button" hx-get="%s" hx-target="#modal" class="%s">%s</button>`,
				html.EscapeString(endpoint), cssClass, html.EscapeString(label)))
			continue
		}

		confirmAttr := ""
		if action.Confirm != "" {
			confirmAttr = fmt.Sprintf(` hx-confirm="%s"`, html.EscapeString(action.Confirm))
		}
		sb.WriteString(fmt.Sprintf(`<button type="button" %s="%s"%s hx-target="#entity-table" class="%s">%s</button>`,
			htmxAttribute(action.Method), html.EscapeString(endpoint), confirmAttr, cssClass, html.EscapeString(label)))
	}

	return sb.String()
}

// RenderPagination renders the pager. It renders nothing when every row
// fits on one page.
func RenderPagination(page, pageSize, total int, baseURL, target string) string {
	if pageSize <= 0 || total <= pageSize {
		return ""
	}
	pages := TotalPages(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	var sb strings.Builder
	sb.WriteString(`<nav class="flex items-center justify-between px-4 py-3" aria-label="Pagination">`)
	sb.WriteString(fmt.Sprintf(`<p class="text-sm text-gray-700">Page %d of %d (%d total)</p>`, page, pages, total))
	sb.WriteString(`<div class="space-x-2">`)
	sb.WriteString(pageButton("Previous", page-1, page <= 1, baseURL, target))
	sb.WriteString(pageButton("Next", page+1, page >= pages, baseURL, target))
	sb.WriteString(`</div></nav>`)
	return sb.String()
}

func pageButton(label string, page int, disabled bool, baseURL, target string) string {
	if disabled {
		return fmt.Sprintf(`<button type="button" disabled class="px-3 py-1 rounded border border-gray-300 text-gray-400">%s</button>`, label)
	}
	return fmt.Sprintf(`<button type="button" hx-post="%s" hx-target="%s" class="px-3 py-1 rounded border border-gray-300 text-gray-700 hover:bg-gray-50">%s</button>`,
		html.EscapeString(fmt.Sprintf("%s/page?n=%d", baseURL, page)), target, label)
}

// RenderDetail renders a read-only definition list of a row: columns first,
// then form fields not already shown.
func RenderDetail(columns []schema.Column, fields []schema.FieldSchema, row schema.Record) string {
	var sb strings.Builder

	sb.WriteString(`<div class="bg-white rounded-lg overflow-hidden">`)
	sb.WriteString(`<dl class="divide-y divide-gray-200">`)

	shown := map[string]bool{}
	for _, col := range columns {
		shown[col.Key] = true
		sb.WriteString(detailRow(col.Label, detailValue(col, row)))
	}
	for _, field := range fields {
		if shown[field.Name] {
			continue
		}
		value, _ := schema.Lookup(row, field.Name)
		sb.WriteString(detailRow(field.DisplayLabel(), plainDetail(value)))
	}

	sb.WriteString(`</dl></div>`)
	return sb.String()
}

func detailRow(label, value string) string {
	return fmt.Sprintf(`<div class="px-6 py-4 grid grid-cols-3 gap-4"><dt class="text-sm font-medium text-gray-500">%s</dt><dd class="text-sm text-gray-900 col-span-2">%s</dd></div>`,
		html.EscapeString(label), value)
}

func detailValue(col schema.Column, row schema.Record) string {
	if col.Render != nil {
		return RenderCell(col, row)
	}
	value, _ := schema.Lookup(row, col.Key)
	return plainDetail(value)
}

func plainDetail(value any) string {
	text := FormatCell(value)
	if text == "" {
		return `<span class="text-gray-400">No value</span>`
	}
	return html.EscapeString(text)
}

func htmxAttribute(method string) string {
	switch method {
	case "POST":
		return "hx-post"
	case "DELETE":
		return "hx-delete"
	case "PUT":
		return "hx-put"
	case "PATCH":
		return "hx-patch"
	default:
		return "hx-post"
	}
}
