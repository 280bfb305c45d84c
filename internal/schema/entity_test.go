// ABOUTME: Tests for entity configuration invariants, ids, paths and pluralization.
// ABOUTME: Covers nested dotted paths and capability defaults.

package schema

import (
	"encoding/json"
	"testing"
)

func TestEntityConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EntityConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg: EntityConfig{
				EntityName:  "Product",
				APIEndpoint: "/products",
				FormFields: []FieldSchema{
					{Name: "name", Kind: KindText},
					{Name: "price", Kind: KindNumber},
				},
			},
		},
		{
			name:    "missing endpoint",
			cfg:     EntityConfig{EntityName: "Product"},
			wantErr: true,
		},
		{
			name: "duplicate field",
			cfg: EntityConfig{
				EntityName:  "Product",
				APIEndpoint: "/products",
				FormFields: []FieldSchema{
					{Name: "name", Kind: KindText},
					{Name: "name", Kind: KindTextarea},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			cfg: EntityConfig{
				EntityName:  "Product",
				APIEndpoint: "/products",
				FormFields:  []FieldSchema{{Name: "name", Kind: "slider"}},
			},
			wantErr: true,
		},
		{
			name: "select without options",
			cfg: EntityConfig{
				EntityName:  "Product",
				APIEndpoint: "/products",
				FormFields:  []FieldSchema{{Name: "status", Kind: KindSelect}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntityConfig_CapsDefaults(t *testing.T) {
	cfg := EntityConfig{EntityName: "Category", APIEndpoint: "/categories"}
	caps := cfg.Caps()
	if !caps.CanCreate || !caps.CanEdit || !caps.CanDelete || !caps.Searchable || !caps.Sortable {
		t.Errorf("expected create/edit/delete/search/sort enabled by default, got %+v", caps)
	}
	if caps.CanView || caps.Selectable {
		t.Errorf("expected view and selection disabled by default, got %+v", caps)
	}
	if cfg.Key() != "categories" {
		t.Errorf("Key() = %q, want categories", cfg.Key())
	}
}

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
		ok   bool
	}{
		{"float id", Record{"id": float64(12)}, "12", true},
		{"json number id", Record{"id": json.Number("7")}, "7", true},
		{"string id", Record{"id": "01HZX"}, "01HZX", true},
		{"int id", Record{"id": 3}, "3", true},
		{"missing id", Record{"name": "x"}, "", false},
		{"empty string id", Record{"id": ""}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rec.ID()
			if got != tt.want || ok != tt.ok {
				t.Errorf("ID() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	orig := Record{"tags": []any{"a"}, "meta": map[string]any{"k": "v"}}
	clone := orig.Clone()

	clone["tags"].([]any)[0] = "b"
	clone["meta"].(Record)["k"] = "changed"

	if orig["tags"].([]any)[0] != "a" {
		t.Error("clone aliased the tags slice")
	}
	if orig["meta"].(map[string]any)["k"] != "v" {
		t.Error("clone aliased the nested map")
	}
}

func TestLookupAndAssign(t *testing.T) {
	data := Record{}
	Assign(data, "addresses.0.street", "Main St")
	Assign(data, "addresses.1.street", "Side St")
	Assign(data, "name", "Ada")

	got, ok := Lookup(data, "addresses.1.street")
	if !ok || got != "Side St" {
		t.Errorf("Lookup(addresses.1.street) = (%v, %v), want Side St", got, ok)
	}
	if _, ok := Lookup(data, "addresses.5.street"); ok {
		t.Error("expected out-of-range index to miss")
	}
	if got, _ := Lookup(data, "name"); got != "Ada" {
		t.Errorf("Lookup(name) = %v, want Ada", got)
	}
}

func TestPlural(t *testing.T) {
	tests := map[string]string{
		"Product":  "Products",
		"Category": "Categories",
		"Key":      "Keys",
		"Box":      "Boxes",
		"Status":   "Statuses",
		"Branch":   "Branches",
		"":         "",
	}
	for in, want := range tests {
		if got := Plural(in); got != want {
			t.Errorf("Plural(%q) = %q, want %q", in, got, want)
		}
	}
}
