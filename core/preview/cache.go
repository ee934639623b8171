package preview

import (
	"context"
	"sync"
	"time"

	"asset-binder/core/binding"

	"golang.org/x/sync/singleflight"
)

// Slot is one row of a binding preview.
type Slot struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Assembly string `json:"assembly"`
	Ref      string `json:"ref"`
	Bound    bool   `json:"bound"`
}

// Preview is a read-only rendering of the bindings of one configuration.
type Preview struct {
	AssetPath  string    `json:"asset_path"`
	ImportMode string    `json:"import_mode"`
	Location   string    `json:"location"`
	Editable   bool      `json:"editable"`
	Slots      []Slot    `json:"slots"`
	Built      time.Time `json:"built"`
}

// Build reads cfg through adapter and renders its preview in slot order.
func Build(ctx context.Context, adapter *binding.StoreAdapter, cfg binding.ImportConfiguration) (*Preview, error) {
	bindings, err := adapter.ReadAll(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slots, err := cfg.Slots()
	if err != nil {
		return nil, &binding.NotFoundError{AssetPath: cfg.AssetPath(), Err: err}
	}

	p := &Preview{
		AssetPath:  cfg.AssetPath(),
		ImportMode: cfg.ImportMode().String(),
		Location:   cfg.Location().String(),
		Editable:   binding.Persistable(cfg.ImportMode(), cfg.Location()),
		Slots:      make([]Slot, 0, len(slots)),
		Built:      time.Now(),
	}
	for _, key := range slots {
		ref := bindings[key]
		p.Slots = append(p.Slots, Slot{
			Name:     key.Name,
			Type:     key.Type,
			Assembly: key.Assembly,
			Ref:      string(ref),
			Bound:    !ref.IsNone(),
		})
	}
	return p, nil
}

// BuildFunc produces a fresh preview of an asset.
type BuildFunc func(ctx context.Context) (*Preview, error)

type cached struct {
	preview *Preview
	built   time.Time
}

// Cache holds previews per asset for a TTL. Concurrent misses on the same asset share
// one build.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cached
	sf      singleflight.Group
	ttl     time.Duration
}

// NewCache creates a cache. A zero ttl disables caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cached),
		ttl:     ttl,
	}
}

func (c *Cache) fresh(e cached) bool {
	if c.ttl == 0 {
		return false
	}
	return time.Since(e.built) <= c.ttl
}

// GetOrBuild returns the cached preview of assetPath, or builds and stores a new one.
func (c *Cache) GetOrBuild(ctx context.Context, assetPath string, build BuildFunc) (*Preview, error) {
	c.mu.RLock()
	e, ok := c.entries[assetPath]
	c.mu.RUnlock()
	if ok && c.fresh(e) {
		return e.preview, nil
	}

	result, err, _ := c.sf.Do(assetPath, func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[assetPath]
		c.mu.RUnlock()
		if ok && c.fresh(e) {
			return e.preview, nil
		}

		p, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[assetPath] = cached{preview: p, built: time.Now()}
			c.mu.Unlock()
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Preview), nil
}

// Invalidate drops the cached preview of assetPath.
func (c *Cache) Invalidate(assetPath string) {
	c.mu.Lock()
	delete(c.entries, assetPath)
	c.mu.Unlock()
	c.sf.Forget(assetPath)
}

// Len returns the number of cached previews.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
