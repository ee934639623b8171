// Package binding reconciles material-slot assignments of a model asset with the
// external binding table persisted in its import configuration.
//
// # Architecture
//
// The package consists of four components, leaves first:
//
// 1. StoreAdapter: reads every slot's binding from an ImportConfiguration and writes
// single bindings through to it (save + reimport). It remembers nothing.
//
// 2. Detector: decides whether a working copy diverges from its baseline, with mode
// gating, and re-reads the store after every external undo/redo before comparing.
//
// 3. Engine: owns the committed baseline (original) and the working copy for one loaded
// configuration. Edits are write-through; Commit advances the baseline, Revert writes the
// baseline back.
//
// 4. Guard: wraps every teardown of an engine context (asset switch, tab switch, close)
// and refuses to discard a dirty context until a Confirmer chose commit or revert.
//
// # Mode gating
//
// Bindings under ImportModeNone or LocationExternal are preview-only and never make a
// context dirty.
//
// # Errors
//
// NotFoundError, StoreWriteError and DesyncError travel unchanged from the adapter through
// the engine to the guard. Nothing is retried: after a failed revert the engine reports
// ErrReloadRequired until it is loaded again.
//
// # Usage
//
//	adapter := binding.NewStoreAdapter(logger, binding.WithRecorder(journal))
//	detector := binding.NewDetector(journal, logger)
//	engine := binding.NewEngine(adapter, logger, binding.WithDetector(detector))
//	guard := binding.NewGuard(engine, confirmer, logger)
//
//	if _, err := guard.Replace(ctx, cfg, nil); err != nil {
//	    return err
//	}
//	err := engine.StageEdit(ctx, binding.BindingKey{Name: "Body", Type: "Material"}, "Materials/Skin.mat")
package binding
