package binding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Engine owns the committed baseline and the working copy of one loaded configuration.
//
// Edits are written through to the store before they land in the working copy, so the
// working copy always equals the last read of the store. Commit only advances the
// baseline; Revert writes the baseline back key by key.
//
// An Engine is not safe for concurrent use. Callers serialize access the way a host
// control thread would.
type Engine struct {
	adapter  *StoreAdapter
	detector *Detector
	registry *Registry
	logger   *zap.Logger

	config   ImportConfiguration
	order    []BindingKey
	original Bindings
	working  Bindings
	failed   error
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry makes the engine take a single-writer lease on every configuration it loads.
func WithRegistry(r *Registry) EngineOption {
	return func(e *Engine) { e.registry = r }
}

// WithDetector sets the change detector. Without one the engine uses a detector with
// no undo channel.
func WithDetector(d *Detector) EngineOption {
	return func(e *Engine) { e.detector = d }
}

// NewEngine creates an unloaded engine.
func NewEngine(adapter *StoreAdapter, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{adapter: adapter, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.detector == nil {
		e.detector = NewDetector(nil, logger)
	}
	return e
}

// Load reads cfg and makes its bindings both the baseline and the working copy.
// Any previously loaded configuration is unloaded first. On error the engine is
// left unloaded.
func (e *Engine) Load(ctx context.Context, cfg ImportConfiguration) error {
	e.Unload()
	if cfg == nil {
		return &NotFoundError{}
	}

	if e.registry != nil {
		if err := e.registry.acquire(cfg.AssetPath(), e); err != nil {
			return err
		}
	}

	snapshot, err := e.adapter.ReadAll(ctx, cfg)
	if err != nil {
		if e.registry != nil {
			e.registry.release(cfg.AssetPath(), e)
		}
		e.logger.Warn("Failed to load bindings", zap.String("asset", cfg.AssetPath()), zap.Error(err))
		return err
	}
	slots, err := cfg.Slots()
	if err != nil {
		if e.registry != nil {
			e.registry.release(cfg.AssetPath(), e)
		}
		return &NotFoundError{AssetPath: cfg.AssetPath(), Err: err}
	}

	e.config = cfg
	e.order = slots
	e.original = snapshot
	e.working = snapshot.Clone()
	e.failed = nil
	e.detector.attach(e)
	e.detector.observe(false)

	e.logger.Info("Bindings loaded",
		zap.String("asset", cfg.AssetPath()),
		zap.Int("slots", len(slots)),
		zap.Stringer("import_mode", cfg.ImportMode()),
		zap.Stringer("location", cfg.Location()),
	)
	return nil
}

// Unload discards the loaded context. Pending edits stay in the store; use a Guard to
// resolve them first.
func (e *Engine) Unload() {
	if e.config == nil {
		return
	}
	e.detector.detach()
	if e.registry != nil {
		e.registry.release(e.config.AssetPath(), e)
	}
	e.logger.Debug("Bindings unloaded", zap.String("asset", e.config.AssetPath()))
	e.config = nil
	e.order = nil
	e.original = nil
	e.working = nil
	e.failed = nil
	e.detector.observe(false)
}

// Loaded reports whether a configuration is loaded.
func (e *Engine) Loaded() bool {
	return e.config != nil
}

// Config returns the loaded configuration, or nil.
func (e *Engine) Config() ImportConfiguration {
	return e.config
}

// AssetPath returns the asset of the loaded configuration, or "".
func (e *Engine) AssetPath() string {
	if e.config == nil {
		return ""
	}
	return e.config.AssetPath()
}

// Detector returns the engine's change detector.
func (e *Engine) Detector() *Detector {
	return e.detector
}

// Err returns the failure that requires a reload, or nil.
func (e *Engine) Err() error {
	return e.failed
}

// Slots returns the slot keys in declaration order as of the last load.
func (e *Engine) Slots() []BindingKey {
	out := make([]BindingKey, len(e.order))
	copy(out, e.order)
	return out
}

// Working returns a copy of the working bindings.
func (e *Engine) Working() Bindings {
	return e.working.Clone()
}

// Original returns a copy of the committed baseline.
func (e *Engine) Original() Bindings {
	return e.original.Clone()
}

// StageEdit binds key to ref. The write reaches the store before the working copy
// changes; a rejected write leaves both untouched.
func (e *Engine) StageEdit(ctx context.Context, key BindingKey, ref AssetRef) error {
	if err := e.usable(); err != nil {
		return err
	}
	if _, ok := e.working[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, key)
	}

	if err := e.adapter.WriteOne(ctx, e.config, key, ref); err != nil {
		return err
	}
	e.working[key] = ref
	e.detector.observe(e.IsDirty())
	return nil
}

// IsDirty reports whether the working copy diverges from the baseline.
// Preview-only modes are never dirty.
func (e *Engine) IsDirty() bool {
	if e.config == nil {
		return false
	}
	return e.detector.Dirty(e.config.ImportMode(), e.config.Location(), e.working, e.original)
}

// Commit makes the working copy the new baseline. The store already holds it.
func (e *Engine) Commit() error {
	if err := e.usable(); err != nil {
		return err
	}
	e.original = e.working.Clone()
	e.detector.observe(false)
	e.logger.Info("Bindings committed", zap.String("asset", e.config.AssetPath()))
	return nil
}

// Revert writes every baseline binding back to the store.
//
// A baseline slot missing from the configuration fails with a DesyncError before
// anything is written. A rejected write leaves the working copy with what was actually
// written. Either way the engine is marked failed and must be loaded again.
func (e *Engine) Revert(ctx context.Context) error {
	if err := e.usable(); err != nil {
		return err
	}

	slots, err := e.config.Slots()
	if err != nil {
		e.failed = &NotFoundError{AssetPath: e.config.AssetPath(), Err: err}
		return e.failed
	}
	declared := make(map[BindingKey]struct{}, len(slots))
	for _, s := range slots {
		declared[s] = struct{}{}
	}
	for key := range e.original {
		if _, ok := declared[key]; !ok {
			e.failed = &DesyncError{AssetPath: e.config.AssetPath(), Key: key}
			return e.failed
		}
	}

	for _, key := range e.revertOrder() {
		ref := e.original[key]
		if err := e.adapter.WriteOne(ctx, e.config, key, ref); err != nil {
			e.failed = err
			e.detector.observe(e.IsDirty())
			e.logger.Error("Revert stopped, context needs reload",
				zap.String("asset", e.config.AssetPath()),
				zap.Stringer("slot", key),
				zap.Error(err),
			)
			return err
		}
		e.working[key] = ref
	}

	e.working = e.original.Clone()
	e.detector.observe(false)
	e.logger.Info("Bindings reverted", zap.String("asset", e.config.AssetPath()))
	return nil
}

// Resync re-reads the store into the working copy and returns the new dirtiness.
// It is how changes made behind the engine's back, such as an undo, become visible.
func (e *Engine) Resync(ctx context.Context) (bool, error) {
	if e.config == nil {
		return false, ErrNotLoaded
	}
	current, err := e.adapter.ReadAll(ctx, e.config)
	if err != nil {
		return e.IsDirty(), err
	}
	e.working = current
	dirty := e.IsDirty()
	e.detector.observe(dirty)
	return dirty, nil
}

// revertOrder lists baseline keys in slot declaration order.
func (e *Engine) revertOrder() []BindingKey {
	keys := make([]BindingKey, 0, len(e.original))
	seen := make(map[BindingKey]struct{}, len(e.original))
	for _, key := range e.order {
		if _, ok := e.original[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	for key := range e.original {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (e *Engine) usable() error {
	if e.config == nil {
		return ErrNotLoaded
	}
	if e.failed != nil {
		return fmt.Errorf("%w: %v", ErrReloadRequired, e.failed)
	}
	return nil
}
