// ABOUTME: Editable form state generated from a field schema list.
// ABOUTME: Handles reset-to-defaults, value binding, client-side validation and submit coercion.

package form

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/2389/adminkit/internal/schema"
)

const (
	requiredMessage = "This field is required"
	numberMessage   = "Must be a number"
	emailMessage    = "Enter a valid email address"
	patternMessage  = "Invalid format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form holds the editable state of one generated form. It has no knowledge
// of network I/O; callers take the output of Submit.
type Form struct {
	fields   []schema.FieldSchema
	defaults schema.Record
	values   schema.Record
	errors   map[string]string
	custom   schema.FieldRenderer
}

// Option configures a Form.
type Option func(*Form)

// WithCustomRenderer installs a per-field override consulted before the
// default control.
func WithCustomRenderer(r schema.FieldRenderer) Option {
	return func(f *Form) { f.custom = r }
}

// New creates a form over fields seeded from defaults.
func New(fields []schema.FieldSchema, defaults schema.Record, opts ...Option) *Form {
	f := &Form{fields: fields}
	for _, opt := range opts {
		opt(f)
	}
	f.Reset(defaults)
	return f
}

// Reset replaces the editable state with a cleaned copy of defaults and
// clears errors.
func (f *Form) Reset(defaults schema.Record) {
	f.defaults = defaults.Clone()
	f.values = Clean(defaults)
	f.errors = map[string]string{}
}

// Clean copies defaults so that slices are never aliased and nil values
// become empty strings.
func Clean(defaults schema.Record) schema.Record {
	out := schema.Record{}
	for k, v := range defaults {
		out[k] = cleanValue(v)
	}
	return out
}

func cleanValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		return map[string]any(Clean(schema.Record(t)))
	case schema.Record:
		return Clean(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			if el == nil {
				continue
			}
			out[i] = cleanValue(el)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return v
}

// Fields returns the field list.
func (f *Form) Fields() []schema.FieldSchema {
	return f.fields
}

// Values returns a copy of the current editable state.
func (f *Form) Values() schema.Record {
	return f.values.Clone()
}

// Value returns the current value at a field path.
func (f *Form) Value(name string) any {
	v, _ := schema.Lookup(f.values, name)
	return v
}

// Errors returns a copy of the per-field error messages.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Set stores an already-typed value, e.g. from a custom field control.
func (f *Form) Set(name string, value any) {
	schema.Assign(f.values, name, value)
	delete(f.errors, name)
}

// SetRaw stores submitted text for a field, converting it by kind.
func (f *Form) SetRaw(field schema.FieldSchema, raw []string) {
	f.Set(field.Name, parseRaw(field, raw))
}

// Bind applies posted form values. Checkboxes absent from the post are
// unchecked; other absent fields keep their state.
func (f *Form) Bind(posted url.Values) {
	for _, field := range f.fields {
		raw, ok := posted[field.Name]
		if field.Kind == schema.KindCheckbox {
			f.SetRaw(field, raw)
			continue
		}
		if ok {
			f.SetRaw(field, raw)
		}
	}
}

func parseRaw(field schema.FieldSchema, raw []string) any {
	first := ""
	if len(raw) > 0 {
		first = raw[0]
	}
	switch field.Kind {
	case schema.KindNumber:
		return ParseNumber(first)
	case schema.KindCheckbox:
		switch strings.ToLower(strings.TrimSpace(first)) {
		case "on", "true", "1", "yes":
			return true
		}
		return false
	case schema.KindSelect:
		for _, opt := range field.Options {
			if formatValue(opt.Value) == first {
				return opt.Value
			}
		}
		return first
	case schema.KindFile:
		if field.Multiple {
			out := make([]any, 0, len(raw))
			for _, r := range raw {
				if strings.TrimSpace(r) != "" {
					out = append(out, r)
				}
			}
			return out
		}
		return first
	default:
		return first
	}
}

// ParseNumber parses non-empty text as a number. Unparseable text is kept
// as the raw string so validation can reject it.
func ParseNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return raw
	}
	return n
}

// Validate runs every field's rules and records the messages. It reports
// whether the form is valid.
func (f *Form) Validate() bool {
	f.errors = map[string]string{}
	for _, field := range f.fields {
		if msg := f.validateField(field); msg != "" {
			f.errors[field.Name] = msg
		}
	}
	return len(f.errors) == 0
}

func (f *Form) validateField(field schema.FieldSchema) string {
	v, _ := schema.Lookup(f.values, field.Name)
	rules := field.Validation

	if isEmpty(field, v) {
		if field.Required {
			return firstNonEmpty(rules.RequiredMessage, requiredMessage)
		}
		return ""
	}

	switch field.Kind {
	case schema.KindNumber:
		n, ok := toFloat(v)
		if !ok {
			return numberMessage
		}
		if min := firstBound(rules.Min, field.Min); min != nil && n < *min {
			return firstNonEmpty(rules.MinMessage, fmt.Sprintf("Must be at least %s", formatValue(*min)))
		}
		if max := firstBound(rules.Max, field.Max); max != nil && n > *max {
			return firstNonEmpty(rules.MaxMessage, fmt.Sprintf("Must be at most %s", formatValue(*max)))
		}
	case schema.KindEmail:
		if s, ok := v.(string); ok && !emailPattern.MatchString(s) {
			return emailMessage
		}
	}

	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			log.Printf("field %s: invalid pattern %q: %v", field.Name, rules.Pattern, err)
			return ""
		}
		if !re.MatchString(formatValue(v)) {
			return firstNonEmpty(rules.PatternMessage, patternMessage)
		}
	}
	return ""
}

// Submit validates and, when valid, returns the submit payload: the current
// values with empty strings coerced back to 0 wherever the default was a
// number.
func (f *Form) Submit() (schema.Record, bool) {
	if !f.Validate() {
		return nil, false
	}
	out := f.values.Clone()
	coerceEmptyNumbers(out, f.defaults)
	return out, true
}

func coerceEmptyNumbers(values, defaults map[string]any) {
	for k, v := range values {
		if def, ok := defaults[k]; ok {
			values[k] = coerceEmpty(v, def)
		}
	}
}

// coerceEmpty walks v alongside its default, through objects and lists.
func coerceEmpty(v, def any) any {
	if s, isStr := v.(string); isStr && s == "" && isNumber(def) {
		return 0
	}
	if child, ok := asMap(v); ok {
		if childDef, ok := asMap(def); ok {
			coerceEmptyNumbers(child, childDef)
		}
		return v
	}
	if list, ok := v.([]any); ok {
		defs := asList(def)
		for i := range list {
			if i < len(defs) {
				list[i] = coerceEmpty(list[i], defs[i])
			}
		}
	}
	return v
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case schema.Record:
		return t, true
	}
	return nil, false
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	case []schema.Record:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	}
	return nil
}

func isEmpty(field schema.FieldSchema, v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return field.Kind == schema.KindCheckbox && !t
	case []any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func firstBound(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// formatValue renders a value as control text.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
