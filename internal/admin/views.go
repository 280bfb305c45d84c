// ABOUTME: HTML fragments for htmx responses from the entity pages.
// ABOUTME: Builds the table partial, modal chrome, flash messages and row actions from an entity's capabilities.

package admin

import (
	"fmt"
	"html"
	"strings"

	"github.com/2389/adminkit/internal/form"
	"github.com/2389/adminkit/internal/manager"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
	"github.com/2389/adminkit/internal/table"
)

var pageSizes = []int{10, 25, 50, 100}

func basePath(cfg *schema.EntityConfig) string {
	return "/admin/" + cfg.Key()
}

// rowActions builds the per-row buttons allowed by the entity's capabilities.
func rowActions(cfg *schema.EntityConfig) []table.Action {
	caps := cfg.Caps()
	base := basePath(cfg)

	var actions []table.Action
	if caps.CanView {
		actions = append(actions, table.Action{Name: "view", Label: "View", Method: "GET", Endpoint: base + "/{id}"})
	}
	if caps.CanEdit {
		actions = append(actions, table.Action{Name: "edit", Label: "Edit", Method: "GET", Endpoint: base + "/{id}/edit"})
	}
	if caps.CanDelete {
		actions = append(actions, table.Action{
			Name:     "delete",
			Label:    "Delete",
			Method:   "DELETE",
			Endpoint: base + "/{id}",
			Confirm:  fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(cfg.EntityName)),
			Danger:   true,
		})
	}
	return actions
}

// tableHTML renders the manager's current rows as the #entity-table contents.
func tableHTML(m *manager.Manager) string {
	cfg := m.Config()
	caps := cfg.Caps()
	st := m.Snapshot()

	return table.Render(table.View{
		Columns:    cfg.Columns,
		Rows:       st.Rows,
		Actions:    rowActions(cfg),
		Loading:    st.Phase == manager.Loading,
		EmptyText:  fmt.Sprintf("No %s found", strings.ToLower(cfg.PluralName())),
		Sortable:   caps.Sortable,
		Sort:       st.Sort,
		Selectable: caps.Selectable,
		Selection:  st.Selection,
		Page:       st.Page,
		PageSize:   st.PageSize,
		Total:      st.Total,
		BaseURL:    basePath(cfg),
		Target:     "#entity-table",
	})
}

func formOptions(cfg *schema.EntityConfig, modal manager.Modal) form.RenderOptions {
	label := "Save"
	if modal == manager.ModalCreate {
		label = "Create"
	}
	return form.RenderOptions{
		Action:      basePath(cfg) + "/save",
		Target:      "#modal",
		SubmitLabel: label,
		CancelURL:   basePath(cfg) + "/cancel",
	}
}

func modalTitle(cfg *schema.EntityConfig, modal manager.Modal) string {
	switch modal {
	case manager.ModalCreate:
		return "New " + cfg.EntityName
	case manager.ModalEdit:
		return "Edit " + cfg.EntityName
	default:
		return cfg.EntityName + " Details"
	}
}

func modalHTML(title, body string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="fixed inset-0 bg-gray-900/50 flex items-start justify-center pt-16" role="dialog" aria-modal="true" aria-labelledby="modal-title">`)
	sb.WriteString(`<div class="bg-white rounded-lg shadow-xl w-full max-w-2xl p-6">`)
	sb.WriteString(fmt.Sprintf(`<h2 id="modal-title" class="text-lg font-semibold text-gray-900 mb-4">%s</h2>`, html.EscapeString(title)))
	sb.WriteString(body)
	sb.WriteString(`</div></div>`)
	return sb.String()
}

// detailHTML renders the read-only view of a row with a close button.
func detailHTML(cfg *schema.EntityConfig, row schema.Record) string {
	var sb strings.Builder
	sb.WriteString(table.RenderDetail(cfg.Columns, cfg.FormFields, row))
	sb.WriteString(fmt.Sprintf(`<div class="flex justify-end pt-4"><button type="button" hx-get="%s" hx-target="#modal" class="px-4 py-2 rounded border border-gray-300 text-gray-700 hover:bg-gray-50">Close</button></div>`,
		html.EscapeString(basePath(cfg)+"/cancel")))
	return sb.String()
}

func flashHTML(notes []notify.Notification) string {
	var sb strings.Builder
	for _, n := range notes {
		class, role := "bg-green-50 text-green-800 border-green-200", "status"
		if n.Level == notify.LevelError {
			class, role = "bg-red-50 text-red-800 border-red-200", "alert"
		}
		sb.WriteString(fmt.Sprintf(`<div id="flash-%s" role="%s" class="mb-2 px-4 py-3 rounded border %s">%s</div>`,
			html.EscapeString(n.ID), role, class, html.EscapeString(n.Message)))
	}
	return sb.String()
}

// oob wraps content for an htmx out-of-band swap into the element with id.
func oob(id, content string) string {
	return fmt.Sprintf(`<div id="%s" hx-swap-oob="innerHTML">%s</div>`, id, content)
}
