package binding

import (
	"fmt"
	"sync"
)

// Registry enforces single-writer discipline: one engine per configuration.
type Registry struct {
	mu     sync.Mutex
	owners map[string]*Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]*Engine)}
}

func (r *Registry) acquire(assetPath string, e *Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.owners[assetPath]; ok && owner != e {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, assetPath)
	}
	r.owners[assetPath] = e
	return nil
}

func (r *Registry) release(assetPath string, e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[assetPath] == e {
		delete(r.owners, assetPath)
	}
}

// Held reports whether some engine currently has assetPath loaded.
func (r *Registry) Held(assetPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.owners[assetPath]
	return ok
}
