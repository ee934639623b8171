// Package undo provides the undo/redo history for binding tables.
//
// A Journal records the table of a configuration before each successful write made by a
// binding.StoreAdapter. Undo and Redo restore those tables straight into the configuration,
// the way an editor's undo system would, and then notify every subscriber. Engines subscribe
// through their binding.Detector and re-read the store on each notification.
//
// # Usage
//
//	journal := undo.NewJournal(cfg.Binding.UndoDepth, logger)
//	adapter := binding.NewStoreAdapter(logger, binding.WithRecorder(journal))
//	detector := binding.NewDetector(journal, logger)
//
//	label, err := journal.Undo(ctx)
package undo
