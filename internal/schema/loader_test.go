// ABOUTME: Tests for the YAML entity configuration loader.
// ABOUTME: Verifies capability defaults, extension binding and directory loading.

package schema

import (
	"os"
	"path/filepath"
	"testing"
)

const productYAML = `
entityName: Gadget
apiEndpoint: /gadgets
extension: gadget-test
capabilities:
  canView: true
columns:
  - key: name
    label: Name
    sortable: true
  - key: price
    label: Price
formFields:
  - name: name
    label: Name
    kind: text
    required: true
    validation:
      requiredMessage: Name is required
  - name: price
    label: Price
    kind: number
    min: 0
  - name: status
    label: Status
    kind: select
    options:
      - value: draft
        label: Draft
      - value: live
        label: Live
`

func init() {
	RegisterExtension("gadget-test", Extension{
		Hooks: Hooks{
			BeforeDelete: func(entity Record) bool { return false },
		},
		CellRenderers: map[string]CellRenderer{
			"price": func(value any, row Record) string { return "$" },
		},
	})
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(productYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	caps := cfg.Caps()
	if !caps.CanView {
		t.Error("expected canView from file")
	}
	if !caps.CanCreate || !caps.Searchable {
		t.Error("expected unspecified capabilities to keep defaults")
	}
	if caps.Selectable {
		t.Error("expected selectable to default to false")
	}
	if len(cfg.FormFields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(cfg.FormFields))
	}
	if cfg.FormFields[0].Validation.RequiredMessage != "Name is required" {
		t.Errorf("requiredMessage = %q", cfg.FormFields[0].Validation.RequiredMessage)
	}
	if cfg.FormFields[1].Min == nil || *cfg.FormFields[1].Min != 0 {
		t.Error("expected min 0 on price")
	}
	if cfg.Hooks.BeforeDelete == nil {
		t.Error("expected extension hooks to be bound")
	}
	if cfg.Columns[1].Render == nil {
		t.Error("expected cell renderer bound to price column")
	}
}

func TestParse_UnknownExtension(t *testing.T) {
	_, err := Parse([]byte("entityName: X\napiEndpoint: /x\nextension: nope\n"))
	if err == nil {
		t.Fatal("expected error for unknown extension")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(productYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.yml"), []byte("entityName: Tag\napiEndpoint: /tags\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	configs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(configs))
	}
	if configs[0].EntityName != "Tag" || configs[1].EntityName != "Gadget" {
		t.Errorf("unexpected order: %s, %s", configs[0].EntityName, configs[1].EntityName)
	}
}
