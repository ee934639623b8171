package binding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StoreAdapter reads and writes the external binding table of an import configuration.
// It keeps no memory of past state; every call goes to the configuration.
type StoreAdapter struct {
	recorder Recorder
	previews PreviewInvalidator
	logger   *zap.Logger
}

// AdapterOption configures a StoreAdapter.
type AdapterOption func(*StoreAdapter)

// WithRecorder sets the undo recorder notified after every successful write.
func WithRecorder(r Recorder) AdapterOption {
	return func(a *StoreAdapter) { a.recorder = r }
}

// WithPreviews sets the preview cache invalidated after every successful write.
func WithPreviews(p PreviewInvalidator) AdapterOption {
	return func(a *StoreAdapter) { a.previews = p }
}

// NewStoreAdapter creates a new adapter.
func NewStoreAdapter(logger *zap.Logger, opts ...AdapterOption) *StoreAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &StoreAdapter{logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ReadAll returns the binding of every declared slot of cfg.
// Slots without a table entry map to NoAsset.
func (a *StoreAdapter) ReadAll(ctx context.Context, cfg ImportConfiguration) (Bindings, error) {
	if cfg == nil {
		return nil, &NotFoundError{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slots, err := cfg.Slots()
	if err != nil {
		return nil, &NotFoundError{AssetPath: cfg.AssetPath(), Err: err}
	}
	table, err := cfg.ExternalBindings()
	if err != nil {
		return nil, &NotFoundError{AssetPath: cfg.AssetPath(), Err: err}
	}

	out := make(Bindings, len(slots))
	for _, slot := range slots {
		ref := NoAsset
		for _, entry := range table {
			if entry.Key == slot {
				ref = entry.Ref
				break
			}
		}
		out[slot] = ref
	}
	return out, nil
}

// WriteOne sets the binding of key to ref, or removes it when ref is NoAsset,
// then saves and reimports cfg. A rejected save leaves the table as it was.
func (a *StoreAdapter) WriteOne(ctx context.Context, cfg ImportConfiguration, key BindingKey, ref AssetRef) error {
	if cfg == nil {
		return &NotFoundError{}
	}

	before, err := cfg.ExternalBindings()
	if err != nil {
		return &NotFoundError{AssetPath: cfg.AssetPath(), Err: err}
	}
	prev, hadPrev := lookup(before, key)

	rollback := func() {
		if hadPrev {
			cfg.PutBinding(key, prev)
		} else {
			cfg.RemoveBinding(key)
		}
	}

	if ref.IsNone() {
		cfg.RemoveBinding(key)
	} else {
		cfg.PutBinding(key, ref)
	}

	if err := ctx.Err(); err != nil {
		rollback()
		return &StoreWriteError{AssetPath: cfg.AssetPath(), Key: key, Err: err}
	}
	if err := cfg.Save(ctx); err != nil {
		rollback()
		return a.rejected(cfg, key, fmt.Errorf("save: %w", err))
	}
	if err := cfg.Reimport(ctx); err != nil {
		// The save already reached the store; put the previous table back.
		rollback()
		err = fmt.Errorf("reimport: %w", err)
		if serr := cfg.Save(ctx); serr != nil {
			err = errors.Join(err, fmt.Errorf("restore: %w", serr))
		}
		return a.rejected(cfg, key, err)
	}

	if a.recorder != nil {
		a.recorder.Record(cfg, fmt.Sprintf("bind %s", key), before)
	}
	if a.previews != nil {
		a.previews.Invalidate(cfg.AssetPath())
	}

	a.logger.Debug("Binding written",
		zap.String("asset", cfg.AssetPath()),
		zap.Stringer("slot", key),
		zap.String("ref", string(ref)),
	)
	return nil
}

// rejected also drops the cached preview of cfg.
func (a *StoreAdapter) rejected(cfg ImportConfiguration, key BindingKey, err error) error {
	if a.previews != nil {
		a.previews.Invalidate(cfg.AssetPath())
	}
	a.logger.Warn("Binding write rejected",
		zap.String("asset", cfg.AssetPath()),
		zap.Stringer("slot", key),
		zap.Error(err),
	)
	return &StoreWriteError{AssetPath: cfg.AssetPath(), Key: key, Err: err}
}

func lookup(table []ExternalBinding, key BindingKey) (AssetRef, bool) {
	for _, entry := range table {
		if entry.Key == key {
			return entry.Ref, true
		}
	}
	return NoAsset, false
}
