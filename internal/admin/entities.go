// ABOUTME: Generic entity pages driven by the entity manager.
// ABOUTME: Full page, table partials, create/edit/view dialogs and deletes for any registered entity.

package admin

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/2389/adminkit/internal/manager"
	"github.com/2389/adminkit/internal/schema"
	"github.com/go-chi/chi/v5"
)

// entity resolves the {entity} URL parameter to the session's manager.
// It writes a 404 and returns ok=false for unknown entities.
func (h *Handlers) entity(w http.ResponseWriter, r *http.Request) (*session, *manager.Manager, bool) {
	cfg, ok := schema.Get(chi.URLParam(r, "entity"))
	if !ok {
		http.Error(w, "Entity not found", http.StatusNotFound)
		return nil, nil, false
	}
	sess := h.sessions.get(w, r)
	m, _ := h.sessions.manager(r.Context(), sess, cfg)
	return sess, m, true
}

func writeHTML(w http.ResponseWriter, status int, parts ...string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, p := range parts {
		io.WriteString(w, p)
	}
}

// writeTable answers a table request: the table markup for #entity-table
// plus any pending flash messages.
func writeTable(w http.ResponseWriter, sess *session, m *manager.Manager) {
	writeHTML(w, http.StatusOK, tableHTML(m), oob("flash", flashHTML(sess.flash.Drain())))
}

// writeModal answers a dialog request: the dialog markup for #modal plus
// any pending flash messages.
func writeModal(w http.ResponseWriter, sess *session, m *manager.Manager) {
	cfg := m.Config()
	st := m.Snapshot()

	var body string
	switch st.Modal {
	case manager.ModalCreate, manager.ModalEdit:
		body = modalHTML(modalTitle(cfg, st.Modal), m.RenderForm(formOptions(cfg, st.Modal)))
	case manager.ModalView:
		body = modalHTML(modalTitle(cfg, st.Modal), detailHTML(cfg, st.Editing))
	}
	writeHTML(w, http.StatusOK, body, oob("flash", flashHTML(sess.flash.Drain())))
}

// writeOpenError maps errors from opening a dialog to a status code.
func writeOpenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, manager.ErrNotAllowed):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, manager.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) entityPage(w http.ResponseWriter, r *http.Request) {
	cfg, ok := schema.Get(chi.URLParam(r, "entity"))
	if !ok {
		http.Error(w, "Entity not found", http.StatusNotFound)
		return
	}
	sess := h.sessions.get(w, r)
	m, mounted := h.sessions.manager(r.Context(), sess, cfg)
	if !mounted {
		m.Refresh(r.Context())
	}
	m.Close()

	caps := cfg.Caps()
	st := m.Snapshot()
	h.render(w, "entity", pageData(cfg.PluralName(), cfg.Key(), sess.flash.Drain(), map[string]any{
		"Entity":    cfg.EntityName,
		"Plural":    cfg.PluralName(),
		"Base":      basePath(cfg),
		"Caps":      caps,
		"CanBulk":   caps.Selectable && caps.CanDelete,
		"Search":    st.Search,
		"PageSize":  st.PageSize,
		"PageSizes": pageSizes,
		"Table":     template.HTML(tableHTML(m)),
	}))
}

func (h *Handlers) entityTable(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	m.Refresh(r.Context())
	writeTable(w, sess, m)
}

func (h *Handlers) entitySearch(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if !m.Config().Caps().Searchable {
		http.Error(w, manager.ErrNotAllowed.Error(), http.StatusForbidden)
		return
	}
	m.SetSearch(r.Context(), r.FormValue("search"))
	writeTable(w, sess, m)
}

func (h *Handlers) entityPageChange(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.FormValue("n"))
	if err != nil || n < 1 {
		http.Error(w, "Invalid page number", http.StatusBadRequest)
		return
	}
	m.SetPage(r.Context(), n)
	writeTable(w, sess, m)
}

func (h *Handlers) entityPageSize(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.FormValue("pageSize"))
	if err != nil || n < 1 {
		http.Error(w, "Invalid page size", http.StatusBadRequest)
		return
	}
	m.SetPageSize(r.Context(), n)
	writeTable(w, sess, m)
}

func (h *Handlers) entitySort(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	m.ToggleSort(r.FormValue("key"))
	writeTable(w, sess, m)
}

func (h *Handlers) entitySelect(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	m.ToggleSelect(r.FormValue("id"))
	writeTable(w, sess, m)
}

func (h *Handlers) entitySelectAll(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	m.ToggleSelectAll()
	writeTable(w, sess, m)
}

func (h *Handlers) entityBulkDelete(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if _, err := m.DeleteSelected(r.Context()); errors.Is(err, manager.ErrNotAllowed) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	writeTable(w, sess, m)
}

func (h *Handlers) entityNew(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if err := m.OpenCreate(); err != nil {
		writeOpenError(w, err)
		return
	}
	writeModal(w, sess, m)
}

func (h *Handlers) entityEdit(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if err := m.OpenEdit(chi.URLParam(r, "id")); err != nil {
		writeOpenError(w, err)
		return
	}
	writeModal(w, sess, m)
}

func (h *Handlers) entityView(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if err := m.OpenView(chi.URLParam(r, "id")); err != nil {
		writeOpenError(w, err)
		return
	}
	writeModal(w, sess, m)
}

// entitySave submits the open form. On success the dialog closes and the
// table is swapped out of band; otherwise the form comes back with its
// errors for another attempt.
func (h *Handlers) entitySave(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	err := m.Submit(r.Context(), r.PostForm)
	switch {
	case err == nil:
		writeHTML(w, http.StatusOK, "", oob("entity-table", tableHTML(m)), oob("flash", flashHTML(sess.flash.Drain())))
	case errors.Is(err, manager.ErrNoForm):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		writeModal(w, sess, m)
	}
}

func (h *Handlers) entityCancel(w http.ResponseWriter, r *http.Request) {
	_, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	m.Close()
	writeHTML(w, http.StatusOK)
}

func (h *Handlers) entityDelete(w http.ResponseWriter, r *http.Request) {
	sess, m, ok := h.entity(w, r)
	if !ok {
		return
	}
	err := m.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, manager.ErrNotAllowed) || errors.Is(err, manager.ErrNotFound) {
		writeOpenError(w, err)
		return
	}
	writeTable(w, sess, m)
}
