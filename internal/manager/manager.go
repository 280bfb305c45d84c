// ABOUTME: Entity manager orchestrating list refresh, paging, search, sort and selection for one entity.
// ABOUTME: One Manager is mounted per session and entity; its state never outlives that session.

package manager

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/2389/adminkit/internal/fetch"
	"github.com/2389/adminkit/internal/form"
	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
	"github.com/2389/adminkit/internal/table"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Phase is the list loading state.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Modal is which dialog, if any, is open.
type Modal int

const (
	ModalClosed Modal = iota
	ModalCreate
	ModalEdit
	ModalView
)

func (m Modal) String() string {
	switch m {
	case ModalCreate:
		return "create"
	case ModalEdit:
		return "edit"
	case ModalView:
		return "view"
	default:
		return "closed"
	}
}

// Manager is the CRUD lifecycle orchestrator for one entity configuration.
// All methods are safe for concurrent use; network calls run without the
// lock held.
type Manager struct {
	cfg       *schema.EntityConfig
	client    httpclient.Client
	notifier  notify.Notifier
	confirmer notify.Confirmer

	// fetcher reports list failures to the user; quiet is used for the
	// refresh that follows a mutation, which already has its own toast.
	fetcher *fetch.Fetcher
	quiet   *fetch.Fetcher

	mu         sync.Mutex
	phase      Phase
	generation uint64
	page       int
	pageSize   int
	search     string
	rows       []schema.Record
	total      int
	sort       table.Sort
	selection  *table.Selection

	modal      Modal
	editing    schema.Record
	form       *form.Form
	submitting bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the notification collaborator.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithConfirmer sets the delete confirmation collaborator.
func WithConfirmer(c notify.Confirmer) Option {
	return func(m *Manager) { m.confirmer = c }
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// New creates an idle manager. Nothing is fetched until Refresh.
func New(cfg *schema.EntityConfig, client httpclient.Client, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		client:    client,
		notifier:  notify.Logger{},
		confirmer: notify.Always,
		page:      1,
		pageSize:  DefaultPageSize,
		selection: table.NewSelection(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.fetcher = fetch.New(client, m.notifier)
	m.quiet = fetch.New(client, nil)
	return m
}

// Mount creates a manager and loads its first page.
func Mount(ctx context.Context, cfg *schema.EntityConfig, client httpclient.Client, opts ...Option) *Manager {
	m := New(cfg, client, opts...)
	m.Refresh(ctx)
	return m
}

// Config returns the entity configuration the manager was mounted with.
func (m *Manager) Config() *schema.EntityConfig {
	return m.cfg
}

// Refresh reloads the current page.
func (m *Manager) Refresh(ctx context.Context) {
	m.refresh(ctx, m.fetcher)
}

func (m *Manager) label() string {
	return strings.ToLower(m.cfg.PluralName())
}

// refresh replaces the rows with the latest response. Responses from a
// superseded request are dropped. A failed fetch keeps the last good rows.
// A page beyond the end is clamped and fetched again before any rows are
// replaced.
func (m *Manager) refresh(ctx context.Context, f *fetch.Fetcher) {
	for attempt := 0; attempt < 2; attempt++ {
		m.mu.Lock()
		m.generation++
		gen := m.generation
		q := fetch.Query{Page: m.page, PageSize: m.pageSize, Search: m.search}
		m.phase = Loading
		m.mu.Unlock()

		result := f.Fetch(ctx, m.cfg.APIEndpoint, m.label(), q)

		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			log.Printf("%s: discarding stale list response (page %d, search %q)", m.cfg.EntityName, q.Page, q.Search)
			return
		}
		if result.Degraded {
			m.phase = Ready
			m.mu.Unlock()
			return
		}

		pages := table.TotalPages(result.TotalCount, m.pageSize)
		if m.page > pages && attempt == 0 {
			log.Printf("%s: page %d beyond last page %d, clamping", m.cfg.EntityName, m.page, pages)
			m.page = pages
			m.mu.Unlock()
			continue
		}

		m.rows = result.Items
		m.total = result.TotalCount
		table.SortRows(m.rows, m.sort)
		m.selection.Prune(table.RowIDs(m.rows))
		m.phase = Ready
		m.mu.Unlock()
		return
	}
}

// SetPage moves to page n, clamped to the known page range, and refreshes.
func (m *Manager) SetPage(ctx context.Context, n int) {
	m.mu.Lock()
	pages := table.TotalPages(m.total, m.pageSize)
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	m.page = n
	m.mu.Unlock()
	m.Refresh(ctx)
}

// SetSearch changes the search term, resets to page 1 and refreshes.
func (m *Manager) SetSearch(ctx context.Context, term string) {
	m.mu.Lock()
	if !m.cfg.Caps().Searchable {
		m.mu.Unlock()
		return
	}
	m.search = strings.TrimSpace(term)
	m.page = 1
	m.mu.Unlock()
	m.Refresh(ctx)
}

// SetPageSize changes the page size, resets to page 1 and refreshes.
func (m *Manager) SetPageSize(ctx context.Context, n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	m.mu.Lock()
	m.pageSize = n
	m.page = 1
	m.mu.Unlock()
	m.Refresh(ctx)
}

// ToggleSort advances the sort for column key and re-sorts the loaded rows.
// Columns not marked sortable are ignored.
func (m *Manager) ToggleSort(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cfg.Caps().Sortable || !m.sortableColumn(key) {
		return
	}
	m.sort = m.sort.Next(key)
	table.SortRows(m.rows, m.sort)
}

func (m *Manager) sortableColumn(key string) bool {
	for _, col := range m.cfg.Columns {
		if col.Key == key {
			return col.Sortable
		}
	}
	return false
}

// ToggleSelect flips selection of one row.
func (m *Manager) ToggleSelect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cfg.Caps().Selectable {
		return
	}
	m.selection.Toggle(id)
}

// ToggleSelectAll selects every visible row, or clears them when all are
// already selected.
func (m *Manager) ToggleSelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cfg.Caps().Selectable {
		return
	}
	m.selection.ToggleAll(table.RowIDs(m.rows))
}

// ClearSelection drops every selected id.
func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection.Clear()
}

// State is a point-in-time copy of the manager's runtime state.
type State struct {
	Phase      Phase
	Page       int
	PageSize   int
	Pages      int
	Total      int
	Search     string
	Rows       []schema.Record
	Sort       table.Sort
	Selection  *table.Selection
	Modal      Modal
	Editing    schema.Record
	Submitting bool
}

// Snapshot returns a copy of the current state safe to read without locks.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]schema.Record, len(m.rows))
	for i, r := range m.rows {
		rows[i] = r.Clone()
	}
	sel := table.NewSelection()
	for _, id := range m.selection.IDs() {
		sel.Toggle(id)
	}
	return State{
		Phase:      m.phase,
		Page:       m.page,
		PageSize:   m.pageSize,
		Pages:      table.TotalPages(m.total, m.pageSize),
		Total:      m.total,
		Search:     m.search,
		Rows:       rows,
		Sort:       m.sort,
		Selection:  sel,
		Modal:      m.modal,
		Editing:    m.editing.Clone(),
		Submitting: m.submitting,
	}
}

// RenderForm renders the open create or edit form, or "" when none is open.
func (m *Manager) RenderForm(opts form.RenderOptions) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.form == nil {
		return ""
	}
	opts.Submitting = m.submitting
	return m.form.Render(opts)
}

// FormErrors returns the open form's field errors.
func (m *Manager) FormErrors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.form == nil {
		return nil
	}
	return m.form.Errors()
}

func (m *Manager) findRow(id string) (schema.Record, bool) {
	for _, row := range m.rows {
		if rid, ok := row.ID(); ok && rid == id {
			return row, true
		}
	}
	return nil, false
}
