package binding

import (
	"context"

	"go.uber.org/zap"
)

// State is the guard's view of the binding context.
type State int

const (
	StateUnloaded State = iota
	StateClean
	StateDirty
	// StateFailed means a revert stopped halfway; the context must be loaded again.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is how pending edits are settled before a teardown.
type Resolution int

const (
	// ResolutionNone means nothing had to be settled.
	ResolutionNone Resolution = iota
	ResolutionCommit
	ResolutionRevert
)

func (r Resolution) String() string {
	switch r {
	case ResolutionCommit:
		return "commit"
	case ResolutionRevert:
		return "revert"
	default:
		return "none"
	}
}

// Decision is a confirmer's answer.
type Decision struct {
	Resolution Resolution
	// Aborted is set when the host cancelled the operation that asked for the teardown.
	// The resolution is still applied in full.
	Aborted bool
}

// Confirmer asks the user what to do with pending edits. The call blocks until there
// is an answer. An error means no answer was obtained.
type Confirmer interface {
	ConfirmPendingChanges(ctx context.Context, cfg ImportConfiguration) (Decision, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, cfg ImportConfiguration) (Decision, error)

// ConfirmPendingChanges calls f.
func (f ConfirmFunc) ConfirmPendingChanges(ctx context.Context, cfg ImportConfiguration) (Decision, error) {
	return f(ctx, cfg)
}

// Outcome describes a completed teardown.
type Outcome struct {
	// AssetPath is the configuration that was torn down.
	AssetPath  string
	Resolution Resolution
	// Aborted tells the host to stop the flow that triggered the teardown.
	Aborted bool
}

// Guard makes sure a dirty context is never discarded without a commit or revert.
type Guard struct {
	engine     *Engine
	confirmer  Confirmer
	logger     *zap.Logger
	confirming bool
}

// NewGuard wraps engine. confirmer is consulted whenever the engine is dirty at teardown.
func NewGuard(engine *Engine, confirmer Confirmer, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{engine: engine, confirmer: confirmer, logger: logger}
}

// Engine returns the guarded engine.
func (g *Guard) Engine() *Engine {
	return g.engine
}

// State returns the current state of the context.
func (g *Guard) State() State {
	switch {
	case !g.engine.Loaded():
		return StateUnloaded
	case g.engine.Err() != nil:
		return StateFailed
	case g.engine.IsDirty():
		return StateDirty
	default:
		return StateClean
	}
}

// Teardown settles pending edits and unloads the engine.
// reason is only used for logging.
func (g *Guard) Teardown(ctx context.Context, reason string) (Outcome, error) {
	return g.teardown(ctx, reason, g.confirmer)
}

// TeardownWith is Teardown with a confirmer for this call only.
func (g *Guard) TeardownWith(ctx context.Context, reason string, confirmer Confirmer) (Outcome, error) {
	return g.teardown(ctx, reason, confirmer)
}

// Close tears down the context when the tool shuts down.
func (g *Guard) Close(ctx context.Context) (Outcome, error) {
	return g.teardown(ctx, "close", g.confirmer)
}

// Replace tears down the current context and loads cfg. When the confirmation was
// aborted the teardown still happens but cfg is not loaded.
func (g *Guard) Replace(ctx context.Context, cfg ImportConfiguration, confirmer Confirmer) (Outcome, error) {
	if confirmer == nil {
		confirmer = g.confirmer
	}
	out, err := g.teardown(ctx, "replace", confirmer)
	if err != nil {
		return out, err
	}
	if out.Aborted {
		return out, nil
	}
	if err := g.engine.Load(ctx, cfg); err != nil {
		return out, err
	}
	return out, nil
}

func (g *Guard) teardown(ctx context.Context, reason string, confirmer Confirmer) (Outcome, error) {
	if g.confirming {
		return Outcome{}, ErrConfirmationPending
	}
	if !g.engine.Loaded() {
		return Outcome{}, nil
	}

	out := Outcome{AssetPath: g.engine.AssetPath()}
	l := g.logger.With(zap.String("asset", out.AssetPath), zap.String("reason", reason))

	if failure := g.engine.Err(); failure != nil {
		l.Warn("Discarding failed binding context", zap.Error(failure))
		g.engine.Unload()
		return out, nil
	}

	if g.engine.IsDirty() {
		decision, err := g.confirm(ctx, confirmer)
		if err != nil {
			l.Info("Teardown blocked, pending changes unresolved", zap.Error(err))
			return Outcome{}, err
		}
		if err := g.apply(ctx, decision.Resolution); err != nil {
			l.Error("Resolving pending changes failed", zap.Error(err))
			return Outcome{}, err
		}
		out.Resolution = decision.Resolution
		out.Aborted = decision.Aborted
		l.Info("Pending changes resolved",
			zap.Stringer("resolution", decision.Resolution),
			zap.Bool("aborted", decision.Aborted),
		)
	}

	g.engine.Unload()
	return out, nil
}

func (g *Guard) confirm(ctx context.Context, confirmer Confirmer) (Decision, error) {
	if confirmer == nil {
		return Decision{}, ErrConfirmationRequired
	}
	g.confirming = true
	defer func() { g.confirming = false }()

	decision, err := confirmer.ConfirmPendingChanges(ctx, g.engine.Config())
	if err != nil {
		return Decision{}, err
	}
	switch decision.Resolution {
	case ResolutionCommit, ResolutionRevert:
		return decision, nil
	default:
		return Decision{}, ErrConfirmationRequired
	}
}

// apply runs the resolution to completion. Cancellation of ctx is not observed here:
// an in-flight resolution is never stopped halfway.
func (g *Guard) apply(ctx context.Context, resolution Resolution) error {
	switch resolution {
	case ResolutionCommit:
		return g.engine.Commit()
	case ResolutionRevert:
		if err := g.engine.Revert(context.WithoutCancel(ctx)); err != nil {
			return &FatalError{AssetPath: g.engine.AssetPath(), Err: err}
		}
		return nil
	default:
		return ErrConfirmationRequired
	}
}
