package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"asset-binder/core/binding"

	"go.uber.org/zap"
)

var (
	// ErrNothingToUndo is returned by Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultDepth is the history length used when none is configured.
const DefaultDepth = 100

type entry struct {
	cfg   binding.ImportConfiguration
	label string
	table []binding.ExternalBinding
}

// Journal is the host's undo/redo facility for binding tables.
//
// It implements binding.Recorder, so every successful adapter write becomes an undo step,
// and binding.UndoChannel, so engines learn about every undo and redo after it happened.
// Undo and Redo write the configuration directly; they never go through an engine.
type Journal struct {
	mu     sync.Mutex
	depth  int
	undo   []entry
	redo   []entry
	subs   map[binding.SubscriptionID]func()
	nextID binding.SubscriptionID

	previews binding.PreviewInvalidator
	logger   *zap.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithPreviews sets the preview cache invalidated after every undo and redo.
func WithPreviews(p binding.PreviewInvalidator) Option {
	return func(j *Journal) { j.previews = p }
}

// NewJournal creates a journal keeping at most depth steps.
func NewJournal(depth int, logger *zap.Logger, opts ...Option) *Journal {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &Journal{
		depth:  depth,
		subs:   make(map[binding.SubscriptionID]func()),
		logger: logger,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record pushes an undo step restoring before. Recording clears the redo stack.
func (j *Journal) Record(cfg binding.ImportConfiguration, label string, before []binding.ExternalBinding) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.undo = append(j.undo, entry{cfg: cfg, label: label, table: copyTable(before)})
	if len(j.undo) > j.depth {
		j.undo = j.undo[len(j.undo)-j.depth:]
	}
	j.redo = nil
}

// Undo restores the most recent step and notifies subscribers.
// It returns the label of the undone step.
func (j *Journal) Undo(ctx context.Context) (string, error) {
	return j.step(ctx, &j.undo, &j.redo, ErrNothingToUndo, "undo")
}

// Redo re-applies the most recently undone step and notifies subscribers.
func (j *Journal) Redo(ctx context.Context) (string, error) {
	return j.step(ctx, &j.redo, &j.undo, ErrNothingToRedo, "redo")
}

func (j *Journal) step(ctx context.Context, from, to *[]entry, empty error, op string) (string, error) {
	j.mu.Lock()
	if len(*from) == 0 {
		j.mu.Unlock()
		return "", empty
	}
	e := (*from)[len(*from)-1]

	current, err := e.cfg.ExternalBindings()
	if err != nil {
		j.mu.Unlock()
		return "", fmt.Errorf("%s %q: read %s: %w", op, e.label, e.cfg.AssetPath(), err)
	}
	if err := apply(ctx, e.cfg, e.table, current); err != nil {
		j.mu.Unlock()
		return "", fmt.Errorf("%s %q: %w", op, e.label, err)
	}

	*from = (*from)[:len(*from)-1]
	*to = append(*to, entry{cfg: e.cfg, label: e.label, table: current})

	subs := make([]func(), 0, len(j.subs))
	for _, fn := range j.subs {
		subs = append(subs, fn)
	}
	j.mu.Unlock()

	if j.previews != nil {
		j.previews.Invalidate(e.cfg.AssetPath())
	}
	j.logger.Info("Binding history step",
		zap.String("op", op),
		zap.String("label", e.label),
		zap.String("asset", e.cfg.AssetPath()),
	)
	for _, fn := range subs {
		fn()
	}
	return e.label, nil
}

// CanUndo reports whether there is a step to undo.
func (j *Journal) CanUndo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undo) > 0
}

// CanRedo reports whether there is a step to redo.
func (j *Journal) CanRedo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.redo) > 0
}

// Forget drops every step recorded for assetPath.
func (j *Journal) Forget(assetPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = without(j.undo, assetPath)
	j.redo = without(j.redo, assetPath)
}

// Subscribe registers fn to run after every undo or redo.
func (j *Journal) Subscribe(fn func()) binding.SubscriptionID {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID++
	j.subs[j.nextID] = fn
	return j.nextID
}

// Unsubscribe removes a subscription.
func (j *Journal) Unsubscribe(id binding.SubscriptionID) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.subs, id)
}

// apply writes table into cfg, then saves and reimports it. On failure cfg is put back
// to previous, in memory and, when the save already went through, in the store.
func apply(ctx context.Context, cfg binding.ImportConfiguration, table, previous []binding.ExternalBinding) error {
	replace(cfg, table)
	if err := cfg.Save(ctx); err != nil {
		replace(cfg, previous)
		return fmt.Errorf("save %s: %w", cfg.AssetPath(), err)
	}
	if err := cfg.Reimport(ctx); err != nil {
		replace(cfg, previous)
		err = fmt.Errorf("reimport %s: %w", cfg.AssetPath(), err)
		if serr := cfg.Save(ctx); serr != nil {
			err = errors.Join(err, fmt.Errorf("restore: %w", serr))
		}
		return err
	}
	return nil
}

// replace makes the in-memory table of cfg equal to table.
func replace(cfg binding.ImportConfiguration, table []binding.ExternalBinding) {
	current, err := cfg.ExternalBindings()
	if err == nil {
		keep := make(map[binding.BindingKey]struct{}, len(table))
		for _, e := range table {
			keep[e.Key] = struct{}{}
		}
		for _, e := range current {
			if _, ok := keep[e.Key]; !ok {
				cfg.RemoveBinding(e.Key)
			}
		}
	}
	for _, e := range table {
		cfg.PutBinding(e.Key, e.Ref)
	}
}

func without(entries []entry, assetPath string) []entry {
	out := entries[:0]
	for _, e := range entries {
		if e.cfg.AssetPath() != assetPath {
			out = append(out, e)
		}
	}
	return out
}

func copyTable(table []binding.ExternalBinding) []binding.ExternalBinding {
	return append([]binding.ExternalBinding(nil), table...)
}
