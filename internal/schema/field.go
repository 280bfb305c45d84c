// ABOUTME: Field schema definitions for generated entity forms.
// ABOUTME: A closed set of field kinds plus validation rules and kind-specific attributes.

package schema

import "fmt"

// Kind is the closed set of input kinds a form field can take.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindNumber   Kind = "number"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
	KindDate     Kind = "date"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindText, KindEmail, KindNumber, KindTextarea, KindSelect, KindCheckbox, KindFile, KindDate}

// Valid reports whether k is one of the supported kinds. The empty kind is
// treated as text by the renderer but is not valid in a loaded config.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Option is one choice of a select field.
type Option struct {
	Value any    `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Validation holds the named rules evaluated by the form layer. Messages
// override the generic text for their rule.
type Validation struct {
	RequiredMessage string   `yaml:"requiredMessage,omitempty" json:"requiredMessage,omitempty"`
	Min             *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	MinMessage      string   `yaml:"minMessage,omitempty" json:"minMessage,omitempty"`
	Max             *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	MaxMessage      string   `yaml:"maxMessage,omitempty" json:"maxMessage,omitempty"`
	Pattern         string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	PatternMessage  string   `yaml:"patternMessage,omitempty" json:"patternMessage,omitempty"`
}

// FieldSchema describes one form input. Name is a dotted path into the
// entity data, e.g. "addresses.0.street".
type FieldSchema struct {
	Name        string     `yaml:"name" json:"name"`
	Label       string     `yaml:"label" json:"label"`
	Placeholder string     `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        Kind       `yaml:"kind" json:"kind"`
	Required    bool       `yaml:"required,omitempty" json:"required,omitempty"`
	Validation  Validation `yaml:"validation,omitempty" json:"validation,omitempty"`
	Options     []Option   `yaml:"options,omitempty" json:"options,omitempty"`

	// textarea
	Rows int `yaml:"rows,omitempty" json:"rows,omitempty"`
	// number
	Min  *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step *float64 `yaml:"step,omitempty" json:"step,omitempty"`
	// file
	Multiple bool   `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Accept   string `yaml:"accept,omitempty" json:"accept,omitempty"`
}

// Validate checks the field is well formed.
func (f FieldSchema) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if !f.Kind.Valid() {
		return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
	}
	if f.Kind == KindSelect && len(f.Options) == 0 {
		return fmt.Errorf("field %q: select requires options", f.Name)
	}
	return nil
}

// DisplayLabel returns Label, falling back to the field name.
func (f FieldSchema) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Float returns a pointer to v, for building Min/Max/Step literals.
func Float(v float64) *float64 {
	return &v
}
