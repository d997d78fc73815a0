// Package catalog holds the process-wide module-type catalog: for each
// module type, the config schema a module of that type accepts and the named
// inputs and outputs it exposes. The catalog is built once at startup and is
// read-only afterwards; it is never mutated per request.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Port declares one named input or output of a module type.
type Port struct {
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// ModuleType is one catalog entry. ConfigSchema is a JSON Schema document
// (as a generic map so it serializes to the API unchanged) compiled once
// when the catalog is built.
type ModuleType struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	ConfigSchema map[string]any  `json:"config_schema"`
	InputSchema  map[string]Port `json:"input_schema"`
	OutputSchema map[string]Port `json:"output_schema"`
}

// ConfigError reports a module config that does not satisfy its type's
// config schema.
type ConfigError struct {
	TypeID string
	Issues []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config for module type %q: %s", e.TypeID, strings.Join(e.Issues, "; "))
}

// Catalog is an immutable set of module types with compiled config schemas.
type Catalog struct {
	types    map[string]ModuleType
	schemas  map[string]*gojsonschema.Schema
	ordering []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog, building it on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(builtinTypes())
		if err != nil {
			// Builtin schemas are static; failing to compile them is a
			// programming error, not a runtime condition.
			panic(fmt.Sprintf("catalog: compile builtin schemas: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// New builds a catalog from the given types, compiling each config schema.
func New(types []ModuleType) (*Catalog, error) {
	c := &Catalog{
		types:   make(map[string]ModuleType, len(types)),
		schemas: make(map[string]*gojsonschema.Schema, len(types)),
	}
	for _, mt := range types {
		if _, exists := c.types[mt.ID]; exists {
			return nil, fmt.Errorf("duplicate module type %q", mt.ID)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(mt.ConfigSchema))
		if err != nil {
			return nil, fmt.Errorf("compile config schema for %q: %w", mt.ID, err)
		}
		c.types[mt.ID] = mt
		c.schemas[mt.ID] = schema
		c.ordering = append(c.ordering, mt.ID)
	}
	return c, nil
}

// Get returns the module type with the given id.
func (c *Catalog) Get(id string) (ModuleType, bool) {
	mt, ok := c.types[id]
	return mt, ok
}

// List returns all module types in registration order.
func (c *Catalog) List() []ModuleType {
	out := make([]ModuleType, 0, len(c.ordering))
	for _, id := range c.ordering {
		out = append(out, c.types[id])
	}
	return out
}

// ValidateConfig checks cfg against the type's config schema. A nil cfg is
// treated as empty. Returns a *ConfigError on violation.
func (c *Catalog) ValidateConfig(typeID string, cfg map[string]any) error {
	schema, ok := c.schemas[typeID]
	if !ok {
		return &ConfigError{TypeID: typeID, Issues: []string{"unknown module type"}}
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return &ConfigError{TypeID: typeID, Issues: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		issues = append(issues, re.String())
	}
	sort.Strings(issues)
	return &ConfigError{TypeID: typeID, Issues: issues}
}

// ApplyDefaults returns cfg with schema defaults filled in for absent keys.
// The input map is not modified.
func (c *Catalog) ApplyDefaults(typeID string, cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	mt, ok := c.types[typeID]
	if !ok {
		return out
	}
	props, _ := mt.ConfigSchema["properties"].(map[string]any)
	for key, raw := range props {
		prop, _ := raw.(map[string]any)
		if prop == nil {
			continue
		}
		if def, has := prop["default"]; has {
			if _, set := out[key]; !set {
				out[key] = def
			}
		}
	}
	return out
}

// RequiredInputs returns the names of a type's required inputs, sorted.
func (c *Catalog) RequiredInputs(typeID string) []string {
	mt, ok := c.types[typeID]
	if !ok {
		return nil
	}
	var names []string
	for name, port := range mt.InputSchema {
		if port.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
