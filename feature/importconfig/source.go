package importconfig

import (
	"context"
	"sync"

	"asset-binder/core/binding"
)

// Source opens import configurations by asset path.
type Source interface {
	// Name returns the backend name (e.g. "database", "storage").
	Name() string
	// Open returns the configuration of assetPath. Repeated calls return the same
	// instance until Put replaces it, so an engine and the undo journal share state.
	Open(ctx context.Context, assetPath string) (binding.ImportConfiguration, error)
	// List returns the asset paths of all stored configurations, sorted.
	List(ctx context.Context) ([]string, error)
	// Put creates or replaces a configuration.
	Put(ctx context.Context, def Definition) error
	// Remove deletes a configuration.
	Remove(ctx context.Context, assetPath string) error
	// OnDrop registers fn to run whenever Put or Remove retires the opened instance of
	// an asset. Holders of that instance should let go of it.
	OnDrop(fn func(assetPath string))
}

// Revisioned is implemented by configurations that count reimports.
type Revisioned interface {
	Revision(ctx context.Context) (int, error)
}

// Definition is the full content of an import configuration.
type Definition struct {
	AssetPath  string
	ImportMode binding.ImportMode
	Location   binding.Location
	Slots      []binding.BindingKey
	Bindings   []binding.ExternalBinding
}

// table is the in-memory state shared by every backend.
type table struct {
	mu      sync.Mutex
	path    string
	mode    binding.ImportMode
	loc     binding.Location
	slots   []binding.BindingKey
	entries []binding.ExternalBinding
}

func newTable(def Definition) *table {
	t := &table{
		path:  def.AssetPath,
		mode:  def.ImportMode,
		loc:   def.Location,
		slots: append([]binding.BindingKey(nil), def.Slots...),
	}
	for _, e := range def.Bindings {
		if !e.Ref.IsNone() {
			t.entries = append(t.entries, e)
		}
	}
	return t
}

func (t *table) AssetPath() string { return t.path }

func (t *table) ImportMode() binding.ImportMode { return t.mode }

func (t *table) Location() binding.Location { return t.loc }

func (t *table) Slots() ([]binding.BindingKey, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]binding.BindingKey(nil), t.slots...), nil
}

func (t *table) ExternalBindings() ([]binding.ExternalBinding, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]binding.ExternalBinding(nil), t.entries...), nil
}

func (t *table) PutBinding(key binding.BindingKey, ref binding.AssetRef) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].Key == key {
			t.entries[i].Ref = ref
			return
		}
	}
	t.entries = append(t.entries, binding.ExternalBinding{Key: key, Ref: ref})
}

func (t *table) RemoveBinding(key binding.BindingKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].Key == key {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// snapshot returns a copy of the entries for persisting.
func (t *table) snapshot() []binding.ExternalBinding {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]binding.ExternalBinding(nil), t.entries...)
}

// definition returns the full content of t.
func (t *table) definition() Definition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Definition{
		AssetPath:  t.path,
		ImportMode: t.mode,
		Location:   t.loc,
		Slots:      append([]binding.BindingKey(nil), t.slots...),
		Bindings:   append([]binding.ExternalBinding(nil), t.entries...),
	}
}

// openCache keeps opened configurations per asset path.
type openCache[T any] struct {
	mu        sync.Mutex
	open      map[string]T
	listeners []func(assetPath string)
}

func (c *openCache[T]) get(assetPath string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.open[assetPath]
	return v, ok
}

func (c *openCache[T]) put(assetPath string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		c.open = make(map[string]T)
	}
	c.open[assetPath] = v
}

func (c *openCache[T]) onDrop(fn func(assetPath string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// drop retires the opened instance and notifies listeners outside the lock.
func (c *openCache[T]) drop(assetPath string) {
	c.mu.Lock()
	delete(c.open, assetPath)
	listeners := append(([]func(string))(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(assetPath)
	}
}
