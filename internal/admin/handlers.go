// ABOUTME: HTTP handlers for admin UI pages.
// ABOUTME: Serves the dashboard, the request log page and registers the generic entity pages.

package admin

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/logging"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
	"github.com/2389/adminkit/internal/store"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	store    *store.Store
	sessions *Sessions
	now      func() time.Time
}

// NewHandlers creates the admin handlers. Entity pages call the REST API
// through client; s supplies the dashboard and log page data.
func NewHandlers(s *store.Store, client httpclient.Client, pageSize int) *Handlers {
	return &Handlers{
		store:    s,
		sessions: NewSessions(client, pageSize),
		now:      time.Now,
	}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", h.dashboard)
		r.Get("/logs", h.logsList)

		r.Route("/{entity}", func(r chi.Router) {
			r.Get("/", h.entityPage)
			r.Get("/table", h.entityTable)
			r.Post("/search", h.entitySearch)
			r.Post("/page", h.entityPageChange)
			r.Post("/page-size", h.entityPageSize)
			r.Post("/sort", h.entitySort)
			r.Post("/select", h.entitySelect)
			r.Post("/select-all", h.entitySelectAll)
			r.Post("/bulk-delete", h.entityBulkDelete)
			r.Get("/new", h.entityNew)
			r.Post("/save", h.entitySave)
			r.Get("/cancel", h.entityCancel)
			r.Get("/{id}", h.entityView)
			r.Get("/{id}/edit", h.entityEdit)
			r.Delete("/{id}", h.entityDelete)
		})
	})
}

// navItem is one entry of the sidebar.
type navItem struct {
	Label  string
	URL    string
	Active bool
}

func navItems(active string) []navItem {
	var items []navItem
	for _, cfg := range schema.All() {
		items = append(items, navItem{
			Label:  cfg.PluralName(),
			URL:    basePath(cfg),
			Active: cfg.Key() == active,
		})
	}
	return items
}

// pageData adds the layout fields every page needs.
func pageData(title, active string, flash []notify.Notification, data map[string]any) map[string]any {
	data["Title"] = title
	data["Nav"] = navItems(active)
	data["Flash"] = template.HTML(flashHTML(flash))
	return data
}

func (h *Handlers) render(w http.ResponseWriter, page string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(w, page, data); err != nil {
		log.Printf("render %s: %v", page, err)
	}
}

// EntityDashboardData represents one entity's card on the dashboard
type EntityDashboardData struct {
	Name           string
	URL            string
	Collection     string
	Records        int
	Counted        bool
	RequestCount   int
	ErrorRate      float64
	RecentRequests []*store.RequestLog
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetRequestLogStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess := h.sessions.get(w, r)
	h.render(w, "dashboard", pageData("Dashboard", "", sess.flash.Drain(), map[string]any{
		"Entities": h.entityDashboardData(),
		"Stats":    stats,
	}))
}

// entityDashboardData collects request metrics for the last 24 hours and,
// when the embedded backend is in use, record counts per collection.
func (h *Handlers) entityDashboardData() []EntityDashboardData {
	since := h.now().UTC().Add(-24 * time.Hour)

	counts := map[string]int{}
	if cc, err := h.store.CollectionCounts(); err != nil {
		log.Printf("dashboard: collection counts: %v", err)
	} else {
		for _, c := range cc {
			counts[c.Collection] = c.Count
		}
	}

	var out []EntityDashboardData
	for _, cfg := range schema.All() {
		collection := logging.EntityFromPath(cfg.APIEndpoint)

		requestCount, _ := h.store.GetEntityRequestCount(collection, since)
		errorRate, _ := h.store.GetEntityErrorRate(collection, since)
		recent, _ := h.store.GetRecentRequests(collection, 5)

		records, counted := counts[collection]
		out = append(out, EntityDashboardData{
			Name:           cfg.PluralName(),
			URL:            basePath(cfg),
			Collection:     collection,
			Records:        records,
			Counted:        counted,
			RequestCount:   requestCount,
			ErrorRate:      errorRate,
			RecentRequests: recent,
		})
	}
	return out
}

func (h *Handlers) logsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &store.RequestLogQuery{
		Limit:      100,
		Direction:  q.Get("direction"),
		Entity:     q.Get("entity"),
		Method:     q.Get("method"),
		PathPrefix: q.Get("path"),
	}
	if sc := q.Get("status"); sc != "" {
		fmt.Sscanf(sc, "%d", &query.StatusCode)
	}

	logs, err := h.store.GetRequestLogs(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, l := range logs {
		l.RequestBody = prettyJSON(l.RequestBody)
		l.ResponseBody = prettyJSON(l.ResponseBody)
	}

	stats, err := h.store.GetRequestLogStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	topEndpoints, err := h.store.GetTopEndpoints(10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var entities []string
	for _, cfg := range schema.All() {
		entities = append(entities, logging.EntityFromPath(cfg.APIEndpoint))
	}

	sess := h.sessions.get(w, r)
	h.render(w, "logs", pageData("Request Logs", "", sess.flash.Drain(), map[string]any{
		"Logs":         logs,
		"Stats":        stats,
		"TopEndpoints": topEndpoints,
		"Entities":     entities,
		"Filter":       query,
	}))
}

// prettyJSON formats JSON with indentation, or returns original string if not valid JSON
func prettyJSON(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	formatted, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(formatted)
}
