// ABOUTME: Entity configuration binding one data type to its endpoint, columns, fields and hooks.
// ABOUTME: Configurations are built once at startup and never mutated afterwards.

package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one entity as decoded from the API.
type Record map[string]any

// AsRecord converts a decoded JSON object into a Record.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	default:
		return nil, false
	}
}

// ID returns the record's id normalised to a string key. Numeric ids are
// formatted without a fractional part when they are whole numbers.
func (r Record) ID() (string, bool) {
	v, ok := r["id"]
	if !ok || v == nil {
		return "", false
	}
	return FormatID(v)
}

// FormatID normalises a number or string id into a string key.
func FormatID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	default:
		return "", false
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(Record)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Record, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Record:
		out := make(Record, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// CellRenderer produces the HTML for one table cell. Output is sanitized
// before it reaches the page.
type CellRenderer func(value any, row Record) string

// Column describes one table column.
type Column struct {
	Key      string       `yaml:"key" json:"key"`
	Label    string       `yaml:"label" json:"label"`
	Sortable bool         `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Render   CellRenderer `yaml:"-" json:"-"`
}

// FieldContext is what a custom field renderer receives.
type FieldContext struct {
	Field FieldSchema
	Value any
	Error string
	Data  Record
}

// FieldRenderer overrides rendering of a single field. Returning ok=false
// means "use the default control".
type FieldRenderer func(ctx FieldContext) (html string, ok bool)

// Capabilities are the per-entity feature switches.
type Capabilities struct {
	CanCreate  bool `yaml:"canCreate" json:"canCreate"`
	CanEdit    bool `yaml:"canEdit" json:"canEdit"`
	CanDelete  bool `yaml:"canDelete" json:"canDelete"`
	CanView    bool `yaml:"canView" json:"canView"`
	Searchable bool `yaml:"searchable" json:"searchable"`
	Sortable   bool `yaml:"sortable" json:"sortable"`
	Selectable bool `yaml:"selectable" json:"selectable"`
}

// DefaultCapabilities enables everything except view and selection.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		Searchable: true,
		Sortable:   true,
	}
}

// Hooks are optional lifecycle callbacks around persistence calls. They
// work on plain data and must not need side effects.
type Hooks struct {
	BeforeCreate func(data Record) Record
	AfterCreate  func(data Record, result any)
	BeforeUpdate func(data Record, entity Record) Record
	AfterUpdate  func(data Record, result any)
	// BeforeDelete vetoes the delete by returning false.
	BeforeDelete func(entity Record) bool
	AfterDelete  func(entity Record)
}

// EntityConfig is one entity's CRUD contract.
type EntityConfig struct {
	EntityName  string
	Slug        string
	APIEndpoint string
	Columns     []Column
	FormFields  []FieldSchema

	// Capabilities defaults to DefaultCapabilities when nil.
	Capabilities *Capabilities

	Hooks Hooks

	TransformForForm func(entity Record) Record
	TransformForAPI  func(values Record) Record

	CustomFormRender FieldRenderer
}

// Caps returns the effective capabilities.
func (c *EntityConfig) Caps() Capabilities {
	if c.Capabilities == nil {
		return DefaultCapabilities()
	}
	return *c.Capabilities
}

// Key returns the URL slug, derived from the plural entity name when unset.
func (c *EntityConfig) Key() string {
	if c.Slug != "" {
		return c.Slug
	}
	return strings.ToLower(strings.ReplaceAll(Plural(c.EntityName), " ", "-"))
}

// PluralName is the display plural of EntityName.
func (c *EntityConfig) PluralName() string {
	return Plural(c.EntityName)
}

// Field looks up a form field by name.
func (c *EntityConfig) Field(name string) (FieldSchema, bool) {
	for _, f := range c.FormFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// Validate checks the configuration invariants: an entity name and endpoint
// are present, every field is well formed and field names are unique.
func (c *EntityConfig) Validate() error {
	if strings.TrimSpace(c.EntityName) == "" {
		return fmt.Errorf("entity name is required")
	}
	if strings.TrimSpace(c.APIEndpoint) == "" {
		return fmt.Errorf("entity %q: api endpoint is required", c.EntityName)
	}
	seen := make(map[string]bool, len(c.FormFields))
	for _, f := range c.FormFields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("entity %q: %w", c.EntityName, err)
		}
		if seen[f.Name] {
			return fmt.Errorf("entity %q: duplicate field %q", c.EntityName, f.Name)
		}
		seen[f.Name] = true
	}
	for _, col := range c.Columns {
		if col.Key == "" {
			return fmt.Errorf("entity %q: column key is required", c.EntityName)
		}
	}
	return nil
}
