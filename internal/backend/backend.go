// ABOUTME: Demo REST backend serving JSON record collections from the sqlite store.
// ABOUTME: Collections answer lists as a paged envelope, a bare array or a single object.

package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	apierrors "github.com/2389/adminkit/internal/errors"
	"github.com/2389/adminkit/internal/store"
)

// Shape is how a collection answers list requests.
type Shape string

const (
	ShapeEnvelope Shape = "envelope"
	ShapeArray    Shape = "array"
	ShapeSingle   Shape = "single"
)

// IDKind selects how new record ids are assigned.
type IDKind string

const (
	IDInt  IDKind = "int"
	IDULID IDKind = "ulid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// Collection configures one REST resource.
type Collection struct {
	Name  string
	Shape Shape
	// Paginated=false rejects page and pageSize with 400.
	Paginated bool
	IDs       IDKind
	// Required lists fields that must be present and non-empty on write.
	Required []string
}

// Server serves collections under /{collection}.
type Server struct {
	store       *store.Store
	collections map[string]Collection
	fallback    *Collection
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithFallback serves unknown collection names with c's settings.
func WithFallback(c Collection) Option {
	return func(s *Server) { s.fallback = &c }
}

// New creates a backend over s.
func New(s *store.Store, collections []Collection, opts ...Option) *Server {
	srv := &Server{
		store:       s,
		collections: make(map[string]Collection, len(collections)),
		now:         time.Now,
	}
	for _, c := range collections {
		srv.collections[c.Name] = withDefaults(c)
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func withDefaults(c Collection) Collection {
	if c.Shape == "" {
		c.Shape = ShapeEnvelope
	}
	if c.IDs == "" {
		c.IDs = IDInt
	}
	return c
}

// Collection returns the settings serving name.
func (s *Server) Collection(name string) (Collection, bool) {
	if c, ok := s.collections[name]; ok {
		return c, true
	}
	if s.fallback != nil {
		c := withDefaults(*s.fallback)
		c.Name = name
		return c, true
	}
	return Collection{}, false
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.remove)
	})
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (Collection, bool) {
	name := chi.URLParam(r, "collection")
	c, ok := s.Collection(name)
	if !ok {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, fmt.Sprintf("unknown collection %q", name))
	}
	return c, ok
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	_, hasPage := q["page"]
	_, hasSize := q["pageSize"]
	paging := hasPage || hasSize
	if paging && !c.Paginated {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, c.Name+" does not support pagination")
		return
	}

	page, err := positiveParam(q.Get("page"), 1)
	if err != nil {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, err.Error(), "page")
		return
	}
	pageSize, err := positiveParam(q.Get("pageSize"), defaultPageSize)
	if err != nil {
		apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, err.Error(), "pageSize")
		return
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := store.RecordQuery{Search: strings.TrimSpace(q.Get("search"))}
	if paging {
		query.Limit = pageSize
		query.Offset = (page - 1) * pageSize
	}

	items, total, err := s.store.ListRecords(c.Name, query)
	if err != nil {
		log.Printf("backend: list %s: %v", c.Name, err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to list "+c.Name)
		return
	}

	switch c.Shape {
	case ShapeArray:
		writeJSON(w, http.StatusOK, items)
	case ShapeSingle:
		if len(items) == 0 {
			apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "no "+c.Name+" found")
			return
		}
		writeJSON(w, http.StatusOK, items[0])
	default:
		if !paging {
			pageSize = total
		}
		totalPages := 1
		if pageSize > 0 {
			totalPages = (total + pageSize - 1) / pageSize
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items":      items,
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": total,
			"totalPages": totalPages,
		})
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := s.store.GetRecord(c.Name, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, c, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	data, ok := decodeBody(w, r)
	if !ok || !checkRequired(w, c, data) {
		return
	}

	id, err := s.newID(c)
	if err != nil {
		log.Printf("backend: allocate %s id: %v", c.Name, err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, "failed to create record")
		return
	}

	now := s.now().UTC().Format(time.RFC3339)
	data["id"] = id
	data["createdAt"] = now
	data["updatedAt"] = now

	key, _ := idKey(id)
	if err := s.store.CreateRecord(c.Name, key, data); err != nil {
		s.writeStoreError(w, c, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "id")
	existing, err := s.store.GetRecord(c.Name, key)
	if err != nil {
		s.writeStoreError(w, c, "load", err)
		return
	}

	data, ok := decodeBody(w, r)
	if !ok || !checkRequired(w, c, data) {
		return
	}

	// The path decides identity; created timestamps are server-owned.
	data["id"] = existing["id"]
	if created, ok := existing["createdAt"]; ok {
		data["createdAt"] = created
	}
	data["updatedAt"] = s.now().UTC().Format(time.RFC3339)

	if err := s.store.UpdateRecord(c.Name, key, data); err != nil {
		s.writeStoreError(w, c, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteRecord(c.Name, chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, c, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) newID(c Collection) (any, error) {
	if c.IDs == IDULID {
		return ulid.Make().String(), nil
	}
	n, err := s.store.NextRecordID(c.Name)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// idKey is the storage key for an id value.
func idKey(id any) (string, bool) {
	switch v := id.(type) {
	case string:
		return v, v != ""
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

func (s *Server) writeStoreError(w http.ResponseWriter, c Collection, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "record not found")
		return
	}
	log.Printf("backend: %s %s: %v", op, c.Name, err)
	apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, fmt.Sprintf("failed to %s record", op))
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, "Invalid request body")
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, "Request body must be a JSON object")
		return nil, false
	}
	return data, true
}

func checkRequired(w http.ResponseWriter, c Collection, data map[string]any) bool {
	for _, field := range c.Required {
		v, ok := data[field]
		if s, isString := v.(string); !ok || v == nil || (isString && strings.TrimSpace(s) == "") {
			apierrors.WriteErrorWithField(w, http.StatusBadRequest, apierrors.ErrMissingField, field+" is required", field)
			return false
		}
	}
	return true
}

func positiveParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer, got %q", v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
