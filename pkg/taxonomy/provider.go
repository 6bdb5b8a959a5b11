package taxonomy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Provider exposes the static module and menu catalog. Implementations load
// the catalog once at startup; the returned data is read-only and callers
// must not mutate it.
type Provider interface {
	// Modules returns the module catalog in declaration order.
	Modules() []Module

	// Menus returns the menu tree for a module, or nil when the module is
	// unknown.
	Menus(moduleID string) []MenuNode

	// AllMenus returns every module's menu tree concatenated in module
	// declaration order, suitable for cross-module path lookups.
	AllMenus() []MenuNode
}

// StaticProvider serves a catalog held in memory.
type StaticProvider struct {
	modules []Module
	byID    map[string]int
}

// NewStaticProvider builds a provider over the given modules. Module and
// node IDs are validated for uniqueness within their scope.
func NewStaticProvider(modules []Module) (*StaticProvider, error) {
	byID := make(map[string]int, len(modules))
	for i, m := range modules {
		if m.ID == "" {
			return nil, fmt.Errorf("module at index %d has no id", i)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		if err := validateNodeIDs(m.ID, m.Menus); err != nil {
			return nil, err
		}
		byID[m.ID] = i
	}
	return &StaticProvider{modules: modules, byID: byID}, nil
}

// validateNodeIDs checks node id uniqueness within one module.
func validateNodeIDs(moduleID string, menus []MenuNode) error {
	seen := make(map[string]struct{})
	ok := Walk(menus, func(n *MenuNode) bool {
		if n.ID == "" {
			return false
		}
		if _, dup := seen[n.ID]; dup {
			return false
		}
		seen[n.ID] = struct{}{}
		return true
	})
	if !ok {
		return fmt.Errorf("module %q has a missing or duplicate menu node id", moduleID)
	}
	return nil
}

// Modules returns the module catalog.
func (sp *StaticProvider) Modules() []Module {
	return sp.modules
}

// Menus returns the menu tree for one module.
func (sp *StaticProvider) Menus(moduleID string) []MenuNode {
	i, ok := sp.byID[moduleID]
	if !ok {
		return nil
	}
	return sp.modules[i].Menus
}

// AllMenus returns every module's menu tree in declaration order.
func (sp *StaticProvider) AllMenus() []MenuNode {
	var all []MenuNode
	for _, m := range sp.modules {
		all = append(all, m.Menus...)
	}
	return all
}

// catalogFile is the on-disk YAML shape of the catalog.
type catalogFile struct {
	Modules []Module `yaml:"modules"`
}

// LoadFile reads a YAML catalog file and builds a provider from it.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a provider from YAML catalog bytes.
func Parse(data []byte) (*StaticProvider, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewStaticProvider(file.Modules)
}

// LoadDir reads every *.yaml catalog file in a directory, one module catalog
// per file, merged in lexical filename order.
func LoadDir(dir string) (*StaticProvider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := e.Name(); len(ext) > 5 && ext[len(ext)-5:] == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var modules []Module
	for _, name := range names {
		data, err := os.ReadFile(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		modules = append(modules, file.Modules...)
	}
	return NewStaticProvider(modules)
}
