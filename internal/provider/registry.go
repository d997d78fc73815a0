package provider

import "sync"

// Registry maps provider names to their clients. Built once during startup
// wiring; reads afterwards are concurrent with no writers.
type Registry struct {
	mu     sync.RWMutex
	texts  map[string]TextGenerator
	images map[string]ImageGenerator
}

func NewRegistry() *Registry {
	return &Registry{
		texts:  make(map[string]TextGenerator),
		images: make(map[string]ImageGenerator),
	}
}

// RegisterText registers a text-generation client under its name.
func (r *Registry) RegisterText(p TextGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts[p.Name()] = p
}

// RegisterImage registers an image-generation client under its name.
func (r *Registry) RegisterImage(p ImageGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[p.Name()] = p
}

// Text returns the text client registered under name.
func (r *Registry) Text(name string) (TextGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.texts[name]
	return p, ok
}

// Image returns the image client registered under name.
func (r *Registry) Image(name string) (ImageGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.images[name]
	return p, ok
}
