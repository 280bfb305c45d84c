// ABOUTME: YAML loader for declarative entity configurations.
// ABOUTME: Columns, fields, flags and endpoint come from files; hooks bind through named extensions.

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	EntityName   string        `yaml:"entityName"`
	Slug         string        `yaml:"slug"`
	APIEndpoint  string        `yaml:"apiEndpoint"`
	Extension    string        `yaml:"extension"`
	Capabilities Capabilities  `yaml:"capabilities"`
	Columns      []Column      `yaml:"columns"`
	FormFields   []FieldSchema `yaml:"formFields"`
}

// Parse decodes one YAML entity configuration. Capability flags missing from
// the document keep their defaults.
func Parse(data []byte) (*EntityConfig, error) {
	fc := fileConfig{Capabilities: DefaultCapabilities()}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode entity config: %w", err)
	}

	caps := fc.Capabilities
	cfg := &EntityConfig{
		EntityName:   fc.EntityName,
		Slug:         fc.Slug,
		APIEndpoint:  fc.APIEndpoint,
		Columns:      fc.Columns,
		FormFields:   fc.FormFields,
		Capabilities: &caps,
	}

	if fc.Extension != "" {
		ext, ok := lookupExtension(fc.Extension)
		if !ok {
			return nil, fmt.Errorf("entity %q: unknown extension %q", fc.EntityName, fc.Extension)
		}
		cfg.Hooks = ext.Hooks
		cfg.TransformForForm = ext.TransformForForm
		cfg.TransformForAPI = ext.TransformForAPI
		cfg.CustomFormRender = ext.CustomFormRender
		for i := range cfg.Columns {
			if render, ok := ext.CellRenderers[cfg.Columns[i].Key]; ok {
				cfg.Columns[i].Render = render
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir parses every .yaml/.yml file in dir, ordered by file name.
func LoadDir(dir string) ([]*EntityConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read entity config dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	configs := make([]*EntityConfig, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
