// Package bindingtest provides an in-memory ImportConfiguration for tests.
package bindingtest

import (
	"context"
	"errors"
	"sync"

	"asset-binder/core/binding"
)

// ErrRejected is the default error returned by injected save failures.
var ErrRejected = errors.New("save rejected")

// Config is an in-memory import configuration. The saved table is kept separately from
// the live table so tests can tell what actually reached the store.
type Config struct {
	mu sync.Mutex

	Path  string
	Mode  binding.ImportMode
	Loc   binding.Location
	slots []binding.BindingKey
	table []binding.ExternalBinding
	saved []binding.ExternalBinding

	// SaveErr is returned by every Save while set.
	SaveErr error
	// FailSaveAfter makes Save fail once this many saves succeeded. Zero disables it.
	FailSaveAfter int
	// ReimportErr is returned by every Reimport while set.
	ReimportErr error
	// SlotsErr is returned by Slots while set.
	SlotsErr error

	Saves     int
	Reimports int
}

// NewConfig creates a persistable configuration with the given slots and initial bindings.
func NewConfig(path string, slots []binding.BindingKey, initial map[binding.BindingKey]binding.AssetRef) *Config {
	c := &Config{
		Path:  path,
		Mode:  binding.ImportModeStandard,
		Loc:   binding.LocationInStore,
		slots: append([]binding.BindingKey(nil), slots...),
	}
	for _, s := range slots {
		if ref, ok := initial[s]; ok && !ref.IsNone() {
			c.table = append(c.table, binding.ExternalBinding{Key: s, Ref: ref})
		}
	}
	c.saved = append([]binding.ExternalBinding(nil), c.table...)
	return c
}

// Material returns a slot key with the usual material type tags.
func Material(name string) binding.BindingKey {
	return binding.BindingKey{Name: name, Type: "Material", Assembly: "Engine.CoreModule"}
}

func (c *Config) AssetPath() string { return c.Path }

func (c *Config) Slots() ([]binding.BindingKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SlotsErr != nil {
		return nil, c.SlotsErr
	}
	return append([]binding.BindingKey(nil), c.slots...), nil
}

// SetSlots replaces the slot descriptors, as a reimport of a changed model would.
func (c *Config) SetSlots(slots ...binding.BindingKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = append([]binding.BindingKey(nil), slots...)
}

func (c *Config) ExternalBindings() ([]binding.ExternalBinding, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]binding.ExternalBinding(nil), c.table...), nil
}

func (c *Config) PutBinding(key binding.BindingKey, ref binding.AssetRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.table {
		if c.table[i].Key == key {
			c.table[i].Ref = ref
			return
		}
	}
	c.table = append(c.table, binding.ExternalBinding{Key: key, Ref: ref})
}

func (c *Config) RemoveBinding(key binding.BindingKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.table {
		if c.table[i].Key == key {
			c.table = append(c.table[:i], c.table[i+1:]...)
			return
		}
	}
}

func (c *Config) ImportMode() binding.ImportMode { return c.Mode }

func (c *Config) Location() binding.Location { return c.Loc }

func (c *Config) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SaveErr != nil {
		return c.SaveErr
	}
	if c.FailSaveAfter > 0 && c.Saves >= c.FailSaveAfter {
		return ErrRejected
	}
	c.Saves++
	c.saved = append([]binding.ExternalBinding(nil), c.table...)
	return nil
}

func (c *Config) Reimport(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReimportErr != nil {
		return c.ReimportErr
	}
	c.Reimports++
	return nil
}

// Stored returns the persisted binding of key, as of the last successful save.
func (c *Config) Stored(key binding.BindingKey) binding.AssetRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.saved {
		if e.Key == key {
			return e.Ref
		}
	}
	return binding.NoAsset
}

// Live returns the in-memory binding of key.
func (c *Config) Live(key binding.BindingKey) binding.AssetRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.table {
		if e.Key == key {
			return e.Ref
		}
	}
	return binding.NoAsset
}

// Entries returns the number of table entries.
func (c *Config) Entries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}

// Channel is a synchronous undo/redo channel for tests.
type Channel struct {
	subs   map[binding.SubscriptionID]func()
	nextID binding.SubscriptionID
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{subs: make(map[binding.SubscriptionID]func())}
}

func (ch *Channel) Subscribe(fn func()) binding.SubscriptionID {
	ch.nextID++
	ch.subs[ch.nextID] = fn
	return ch.nextID
}

func (ch *Channel) Unsubscribe(id binding.SubscriptionID) {
	delete(ch.subs, id)
}

// Subscribers returns the number of live subscriptions.
func (ch *Channel) Subscribers() int {
	return len(ch.subs)
}

// Fire notifies every subscriber, as the host does after an undo or redo step.
func (ch *Channel) Fire() {
	for _, fn := range ch.subs {
		fn()
	}
}
