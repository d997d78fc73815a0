// Package modules implements one executor per catalog module type. Handlers
// are pure with respect to engine state: they read resolved inputs and the
// module config, and return named outputs or an error.
package modules

import (
	"context"
	"fmt"

	"github.com/hyeon/floe/internal/provider"
)

// Handler executes modules of one catalog type.
type Handler interface {
	Type() string
	Execute(ctx context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error)
}

// Registry maps module type ids to handlers. The table is built once at
// process start; lookups afterwards are read-only.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under its type id, replacing any previous one.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Type()] = h
}

// Handler returns the handler for a type id.
func (r *Registry) Handler(typeID string) (Handler, bool) {
	h, ok := r.handlers[typeID]
	return h, ok
}

// DefaultRegistry builds the full handler table for the builtin catalog:
// input, AI-model, output, and logic variants. providers supplies the AI
// collaborator clients; fileDir is the directory file-input paths resolve
// against.
func DefaultRegistry(providers *provider.Registry, fileDir string) *Registry {
	r := NewRegistry()
	r.Register(&TextInputHandler{})
	r.Register(&FileInputHandler{BaseDir: fileDir})
	r.Register(&OpenAITextHandler{Providers: providers})
	r.Register(&AnthropicHandler{Providers: providers})
	r.Register(&OpenAIImageHandler{Providers: providers})
	r.Register(&TextOutputHandler{})
	r.Register(&ImageOutputHandler{})
	r.Register(&ConditionalHandler{})
	r.Register(&TransformHandler{})
	return r
}

func cfgString(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}

func cfgFloat(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func cfgInt(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func inputString(inputs map[string]any, key string) string {
	switch v := inputs[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
