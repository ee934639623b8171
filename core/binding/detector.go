package binding

import (
	"context"

	"go.uber.org/zap"
)

// DirtyFunc is called with the new value whenever dirtiness changes.
type DirtyFunc func(dirty bool)

// resyncer is implemented by Engine; the detector asks it to re-read the store.
type resyncer interface {
	Resync(ctx context.Context) (bool, error)
	AssetPath() string
}

// Detector computes dirtiness and keeps it correct across external undo/redo.
//
// After an undo/redo notification the working copy is stale: the host may have changed
// the stored table without going through StageEdit. The detector therefore always
// re-reads the store before comparing.
type Detector struct {
	undo   UndoChannel
	logger *zap.Logger

	target   resyncer
	sub      SubscriptionID
	attached bool

	dirty     bool
	lastErr   error
	listeners map[int]DirtyFunc
	nextID    int
}

// NewDetector creates a detector listening on undo. undo may be nil when the host has
// no undo facility.
func NewDetector(undo UndoChannel, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		undo:      undo,
		logger:    logger,
		listeners: make(map[int]DirtyFunc),
	}
}

// Dirty reports whether working diverges from original under the mode gating of
// mode and loc. It stops at the first differing key.
func (d *Detector) Dirty(mode ImportMode, loc Location, working, original Bindings) bool {
	if !Persistable(mode, loc) {
		return false
	}
	for key, ref := range original {
		if working[key] != ref {
			return true
		}
	}
	for key, ref := range working {
		if _, ok := original[key]; !ok && !ref.IsNone() {
			return true
		}
	}
	return false
}

// OnDirtyChanged registers fn and returns a function removing it.
func (d *Detector) OnDirtyChanged(fn DirtyFunc) (cancel func()) {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

// LastError returns the error of the most recent undo-triggered resync, if any.
func (d *Detector) LastError() error {
	return d.lastErr
}

// observe records the current dirtiness and notifies listeners when it flipped.
func (d *Detector) observe(dirty bool) {
	if dirty == d.dirty {
		return
	}
	d.dirty = dirty
	for _, fn := range d.listeners {
		fn(dirty)
	}
}

func (d *Detector) attach(target resyncer) {
	d.detach()
	d.target = target
	d.lastErr = nil
	if d.undo == nil {
		return
	}
	d.sub = d.undo.Subscribe(d.handleUndo)
	d.attached = true
}

func (d *Detector) detach() {
	if d.attached {
		d.undo.Unsubscribe(d.sub)
		d.attached = false
	}
	d.target = nil
}

func (d *Detector) handleUndo() {
	if d.target == nil {
		return
	}
	dirty, err := d.target.Resync(context.Background())
	if err != nil {
		d.lastErr = err
		d.logger.Error("Resync after undo failed",
			zap.String("asset", d.target.AssetPath()),
			zap.Error(err),
		)
		return
	}
	d.lastErr = nil
	d.logger.Debug("Resynced after undo",
		zap.String("asset", d.target.AssetPath()),
		zap.Bool("dirty", dirty),
	)
}
