// ABOUTME: Registry of entity configurations and named hook sets.
// ABOUTME: Configurations register at startup; lookups are safe for concurrent use.

package schema

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]*EntityConfig)
	mu       sync.RWMutex
)

// Register adds an entity configuration to the registry. It panics on an
// invalid configuration or a duplicate slug.
func Register(cfg *EntityConfig) {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid entity config: %v", err))
	}

	mu.Lock()
	defer mu.Unlock()

	key := cfg.Key()
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("entity %q already registered", key))
	}
	registry[key] = cfg
}

// Get retrieves a configuration by slug.
func Get(slug string) (*EntityConfig, bool) {
	mu.RLock()
	defer mu.RUnlock()
	cfg, ok := registry[slug]
	return cfg, ok
}

// All returns every registered configuration ordered by slug.
func All() []*EntityConfig {
	mu.RLock()
	defer mu.RUnlock()

	configs := make([]*EntityConfig, 0, len(registry))
	for _, cfg := range registry {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Key() < configs[j].Key() })
	return configs
}

// Slugs returns all registered slugs, sorted.
func Slugs() []string {
	mu.RLock()
	defer mu.RUnlock()

	slugs := make([]string, 0, len(registry))
	for slug := range registry {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Extension carries the code-only parts of a configuration that a YAML file
// refers to by name.
type Extension struct {
	Hooks            Hooks
	TransformForForm func(entity Record) Record
	TransformForAPI  func(values Record) Record
	CustomFormRender FieldRenderer
	CellRenderers    map[string]CellRenderer
}

var (
	extensions   = make(map[string]Extension)
	extensionsMu sync.RWMutex
)

// RegisterExtension binds a named extension for YAML configurations.
func RegisterExtension(name string, ext Extension) {
	extensionsMu.Lock()
	defer extensionsMu.Unlock()
	if _, exists := extensions[name]; exists {
		panic(fmt.Sprintf("extension %q already registered", name))
	}
	extensions[name] = ext
}

func lookupExtension(name string) (Extension, bool) {
	extensionsMu.RLock()
	defer extensionsMu.RUnlock()
	ext, ok := extensions[name]
	return ext, ok
}
