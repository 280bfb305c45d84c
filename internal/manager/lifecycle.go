// ABOUTME: Create, edit, view and delete sequencing for the entity manager.
// ABOUTME: Runs transforms and before/after hooks around persistence calls and emits one notification per action.

package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/2389/adminkit/internal/form"
	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/schema"
)

// OpenCreate opens the create form with empty defaults.
func (m *Manager) OpenCreate() error {
	if !m.cfg.Caps().CanCreate {
		return ErrNotAllowed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openForm(ModalCreate, nil, schema.Record{})
	return nil
}

// OpenEdit opens the edit form for a loaded row, seeded through
// TransformForForm when configured.
func (m *Manager) OpenEdit(id string) error {
	if !m.cfg.Caps().CanEdit {
		return ErrNotAllowed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.findRow(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", m.cfg.EntityName, id, ErrNotFound)
	}
	entity := row.Clone()
	defaults := entity.Clone()
	if m.cfg.TransformForForm != nil {
		defaults = m.cfg.TransformForForm(defaults)
	}
	m.openForm(ModalEdit, entity, defaults)
	return nil
}

// OpenView opens the read-only detail dialog for a loaded row.
func (m *Manager) OpenView(id string) error {
	if !m.cfg.Caps().CanView {
		return ErrNotAllowed
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.findRow(id)
	if !ok {
		return fmt.Errorf("%s %s: %w", m.cfg.EntityName, id, ErrNotFound)
	}
	m.modal = ModalView
	m.editing = row.Clone()
	m.form = nil
	m.submitting = false
	return nil
}

// Close closes any open dialog.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeModal()
}

func (m *Manager) openForm(kind Modal, entity, defaults schema.Record) {
	var opts []form.Option
	if m.cfg.CustomFormRender != nil {
		opts = append(opts, form.WithCustomRenderer(m.cfg.CustomFormRender))
	}
	m.modal = kind
	m.editing = entity
	m.form = form.New(m.cfg.FormFields, defaults, opts...)
	m.submitting = false
}

func (m *Manager) closeModal() {
	m.modal = ModalClosed
	m.editing = nil
	m.form = nil
	m.submitting = false
}

// Submit binds posted form values into the open form and submits it.
func (m *Manager) Submit(ctx context.Context, posted url.Values) error {
	return m.submit(ctx, func(f *form.Form) { f.Bind(posted) })
}

// SubmitValues sets typed values on the open form and submits it.
func (m *Manager) SubmitValues(ctx context.Context, values schema.Record) error {
	return m.submit(ctx, func(f *form.Form) {
		for k, v := range values {
			f.Set(k, v)
		}
	})
}

// submit validates the open form and runs the create or update sequence:
// TransformForAPI, before-hook, POST or PUT, quiet refresh, after-hook,
// close, success toast. Failures leave the form open for a retry.
func (m *Manager) submit(ctx context.Context, apply func(*form.Form)) error {
	m.mu.Lock()
	if m.form == nil || (m.modal != ModalCreate && m.modal != ModalEdit) {
		m.mu.Unlock()
		return ErrNoForm
	}
	if m.submitting {
		m.mu.Unlock()
		return ErrBusy
	}
	f := m.form
	apply(f)
	out, ok := f.Submit()
	if !ok {
		m.mu.Unlock()
		return &ValidationError{Fields: f.Errors()}
	}
	kind := m.modal
	entity := m.editing.Clone()
	m.submitting = true
	m.mu.Unlock()

	payload := out
	if m.cfg.TransformForAPI != nil {
		payload = m.cfg.TransformForAPI(payload)
	}

	var (
		result any
		err    error
	)
	switch kind {
	case ModalCreate:
		if m.cfg.Hooks.BeforeCreate != nil {
			payload = m.cfg.Hooks.BeforeCreate(payload)
		}
		if payload == nil {
			m.endSubmit(f, false)
			return ErrVetoed
		}
		result, err = m.client.Post(ctx, m.cfg.APIEndpoint, payload)
	case ModalEdit:
		if m.cfg.Hooks.BeforeUpdate != nil {
			payload = m.cfg.Hooks.BeforeUpdate(payload, entity)
		}
		if payload == nil {
			m.endSubmit(f, false)
			return ErrVetoed
		}
		id, _ := entity.ID()
		result, err = m.client.Put(ctx, m.itemPath(id), payload)
	}

	if err != nil {
		log.Printf("%s: save failed: %v", m.cfg.EntityName, err)
		m.endSubmit(f, false)
		m.notifier.Error(failureMessage(err, fmt.Sprintf("Failed to save %s", strings.ToLower(m.cfg.EntityName))))
		return fmt.Errorf("save %s: %w", m.cfg.EntityName, err)
	}

	m.refresh(ctx, m.quiet)

	verb := "created"
	if kind == ModalCreate {
		if m.cfg.Hooks.AfterCreate != nil {
			m.cfg.Hooks.AfterCreate(payload, result)
		}
	} else {
		verb = "updated"
		if m.cfg.Hooks.AfterUpdate != nil {
			m.cfg.Hooks.AfterUpdate(payload, result)
		}
	}

	m.endSubmit(f, true)
	m.notifier.Success(fmt.Sprintf("%s %s successfully", m.cfg.EntityName, verb))
	return nil
}

// endSubmit clears the submitting flag and closes the dialog on success,
// unless the user already moved on to another form.
func (m *Manager) endSubmit(f *form.Form, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.form != f {
		return
	}
	if done {
		m.closeModal()
		return
	}
	m.submitting = false
}

// Delete confirms, consults BeforeDelete, then deletes the record and
// refreshes. A declined confirmation or a veto is silent.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.cfg.Caps().CanDelete {
		return ErrNotAllowed
	}
	entity, err := m.entityFor(ctx, id)
	if err != nil {
		return err
	}

	if !m.confirmer.Confirm(fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(m.cfg.EntityName))) {
		return ErrCancelled
	}
	if m.cfg.Hooks.BeforeDelete != nil && !m.cfg.Hooks.BeforeDelete(entity.Clone()) {
		log.Printf("%s %s: delete vetoed", m.cfg.EntityName, id)
		return ErrVetoed
	}

	if _, err := m.client.Delete(ctx, m.itemPath(id)); err != nil {
		log.Printf("%s %s: delete failed: %v", m.cfg.EntityName, id, err)
		m.notifier.Error(failureMessage(err, fmt.Sprintf("Failed to delete %s", strings.ToLower(m.cfg.EntityName))))
		return fmt.Errorf("delete %s %s: %w", m.cfg.EntityName, id, err)
	}

	m.refresh(ctx, m.quiet)
	if m.cfg.Hooks.AfterDelete != nil {
		m.cfg.Hooks.AfterDelete(entity)
	}
	m.notifier.Success(fmt.Sprintf("%s deleted successfully", m.cfg.EntityName))
	return nil
}

// DeleteSelected deletes every selected row after one confirmation. Rows
// vetoed by BeforeDelete are skipped silently. One refresh and one summary
// notification follow.
func (m *Manager) DeleteSelected(ctx context.Context) (int, error) {
	caps := m.cfg.Caps()
	if !caps.CanDelete || !caps.Selectable {
		return 0, ErrNotAllowed
	}
	m.mu.Lock()
	ids := m.selection.IDs()
	m.mu.Unlock()
	if len(ids) == 0 {
		return 0, nil
	}

	noun := strings.ToLower(m.cfg.EntityName)
	if len(ids) > 1 {
		noun = strings.ToLower(m.cfg.PluralName())
	}
	if !m.confirmer.Confirm(fmt.Sprintf("Are you sure you want to delete %d %s?", len(ids), noun)) {
		return 0, ErrCancelled
	}

	var (
		deleted  []schema.Record
		attempts int
		errs     []error
	)
	for _, id := range ids {
		entity, err := m.entityFor(ctx, id)
		if err != nil {
			attempts++
			errs = append(errs, err)
			continue
		}
		if m.cfg.Hooks.BeforeDelete != nil && !m.cfg.Hooks.BeforeDelete(entity.Clone()) {
			log.Printf("%s %s: delete vetoed", m.cfg.EntityName, id)
			continue
		}
		attempts++
		if _, err := m.client.Delete(ctx, m.itemPath(id)); err != nil {
			log.Printf("%s %s: delete failed: %v", m.cfg.EntityName, id, err)
			errs = append(errs, fmt.Errorf("delete %s %s: %w", m.cfg.EntityName, id, err))
			continue
		}
		deleted = append(deleted, entity)
	}
	if attempts == 0 {
		return 0, ErrVetoed
	}

	m.refresh(ctx, m.quiet)
	for _, entity := range deleted {
		if m.cfg.Hooks.AfterDelete != nil {
			m.cfg.Hooks.AfterDelete(entity)
		}
	}

	if len(errs) > 0 {
		m.notifier.Error(fmt.Sprintf("Failed to delete %d of %d %s", len(errs), attempts, strings.ToLower(m.cfg.PluralName())))
		return len(deleted), errors.Join(errs...)
	}
	m.notifier.Success(fmt.Sprintf("Deleted %d %s", len(deleted), pluralFor(m.cfg, len(deleted))))
	return len(deleted), nil
}

func pluralFor(cfg *schema.EntityConfig, n int) string {
	if n == 1 {
		return strings.ToLower(cfg.EntityName)
	}
	return strings.ToLower(cfg.PluralName())
}

// entityFor returns the loaded row for id. A row outside the current page
// is loaded from the API so delete hooks always see the real record.
func (m *Manager) entityFor(ctx context.Context, id string) (schema.Record, error) {
	m.mu.Lock()
	row, ok := m.findRow(id)
	m.mu.Unlock()
	if ok {
		return row.Clone(), nil
	}

	payload, err := m.client.Get(ctx, m.itemPath(id), nil)
	if err != nil {
		log.Printf("%s %s: load failed: %v", m.cfg.EntityName, id, err)
		return nil, fmt.Errorf("%s %s: %w: %v", m.cfg.EntityName, id, ErrNotFound, err)
	}
	entity, ok := schema.AsRecord(payload)
	if !ok {
		log.Printf("%s %s: unexpected record payload %T", m.cfg.EntityName, id, payload)
		return nil, fmt.Errorf("%s %s: %w", m.cfg.EntityName, id, ErrNotFound)
	}
	return entity, nil
}

func (m *Manager) itemPath(id string) string {
	return strings.TrimRight(m.cfg.APIEndpoint, "/") + "/" + url.PathEscape(id)
}

// failureMessage picks the most specific message: the server's, then the
// transport error text, then fallback.
func failureMessage(err error, fallback string) string {
	if msg := httpclient.MessageOf(err); msg != "" {
		return msg
	}
	if httpclient.StatusOf(err) == 0 && err != nil && !errors.Is(err, context.Canceled) {
		return err.Error()
	}
	return fallback
}
