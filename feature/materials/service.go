package materials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"asset-binder/core/binding"
	"asset-binder/core/preview"
	"asset-binder/core/undo"
	"asset-binder/feature/importconfig"

	"go.uber.org/zap"
)

// Service runs the binding session of the HTTP API.
//
// Every call takes the service mutex, which plays the role of the host control thread:
// the engine, detector and guard never see concurrent calls, and undo notifications are
// delivered while the mutex is held.
type Service struct {
	mu sync.Mutex

	source   importconfig.Source
	adapter  *binding.StoreAdapter
	engine   *binding.Engine
	guard    *binding.Guard
	journal  *undo.Journal
	previews *preview.Cache
	logger   *zap.Logger
}

// NewService wires an engine, detector and guard around source.
// registry may be shared with other services so an asset has a single writer.
func NewService(source importconfig.Source, journal *undo.Journal, previews *preview.Cache, registry *binding.Registry, logger *zap.Logger) *Service {
	adapter := binding.NewStoreAdapter(logger,
		binding.WithRecorder(journal),
		binding.WithPreviews(previews),
	)
	detector := binding.NewDetector(journal, logger)
	engine := binding.NewEngine(adapter, logger,
		binding.WithRegistry(registry),
		binding.WithDetector(detector),
	)

	s := &Service{
		source:   source,
		adapter:  adapter,
		engine:   engine,
		guard:    binding.NewGuard(engine, nil, logger),
		journal:  journal,
		previews: previews,
		logger:   logger,
	}
	// A replaced or removed configuration invalidates history recorded against it.
	source.OnDrop(func(assetPath string) {
		journal.Forget(assetPath)
		previews.Invalidate(assetPath)
	})
	detector.OnDirtyChanged(func(dirty bool) {
		logger.Info("Session dirty state changed",
			zap.String("asset", engine.AssetPath()),
			zap.Bool("dirty", dirty),
		)
	})
	return s
}

// ListImports returns the asset paths of every stored import configuration.
func (s *Service) ListImports(ctx context.Context) ([]string, error) {
	return s.source.List(ctx)
}

// Preview returns the cached read-only binding preview of assetPath. It waits for any
// write in progress.
func (s *Service) Preview(ctx context.Context, assetPath string) (*preview.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previews.GetOrBuild(ctx, assetPath, func(ctx context.Context) (*preview.Preview, error) {
		cfg, err := s.source.Open(ctx, assetPath)
		if err != nil {
			return nil, err
		}
		return preview.Build(ctx, s.adapter, cfg)
	})
}

// Session returns the current session.
func (s *Service) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session()
}

// Open replaces the session with assetPath. Pending edits of the current session are
// settled by confirmer first; an aborted confirmation leaves no session open.
func (s *Service) Open(ctx context.Context, assetPath string, confirmer binding.Confirmer) (binding.Outcome, Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.source.Open(ctx, assetPath)
	if err != nil {
		return binding.Outcome{}, s.session(), err
	}
	out, err := s.guard.Replace(ctx, cfg, confirmer)
	return out, s.session(), err
}

// Edit binds the slot to ref. An empty ref clears it.
func (s *Service) Edit(ctx context.Context, slot SlotRef, ref binding.AssetRef) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolve(slot)
	if err != nil {
		return s.session(), err
	}
	err = s.engine.StageEdit(ctx, key, ref)
	return s.session(), err
}

// Commit keeps the session's edits.
func (s *Service) Commit() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.engine.Commit()
	return s.session(), err
}

// Revert discards the session's edits. A failure leaves the session failed until it is
// opened again.
func (s *Service) Revert(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.engine.Revert(ctx)
	return s.session(), err
}

// Close ends the session, settling pending edits with confirmer.
func (s *Service) Close(ctx context.Context, confirmer binding.Confirmer) (binding.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.TeardownWith(ctx, "close", confirmer)
}

// Undo reverts the most recent binding write, from this or any other session.
func (s *Service) Undo(ctx context.Context) (string, Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, err := s.journal.Undo(ctx)
	return label, s.session(), err
}

// Redo re-applies the most recently undone binding write.
func (s *Service) Redo(ctx context.Context) (string, Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, err := s.journal.Redo(ctx)
	return label, s.session(), err
}

// Shutdown ends the session when the server stops, settling pending edits with confirmer.
func (s *Service) Shutdown(ctx context.Context, confirmer binding.Confirmer) (binding.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guard.TeardownWith(ctx, "shutdown", confirmer)
}

// resolve finds the slot key matching ref among the loaded slots.
func (s *Service) resolve(ref SlotRef) (binding.BindingKey, error) {
	if !s.engine.Loaded() {
		return binding.BindingKey{}, binding.ErrNotLoaded
	}
	var match []binding.BindingKey
	for _, key := range s.engine.Slots() {
		if key.Name != ref.Name {
			continue
		}
		if ref.Type != "" && key.Type != ref.Type {
			continue
		}
		if ref.Assembly != "" && key.Assembly != ref.Assembly {
			continue
		}
		match = append(match, key)
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return binding.BindingKey{}, fmt.Errorf("%w: %s", binding.ErrUnknownSlot, ref)
	default:
		return binding.BindingKey{}, fmt.Errorf("%w: %s is ambiguous, give type and assembly", binding.ErrUnknownSlot, ref)
	}
}

func (s *Service) session() Session {
	view := Session{
		State:   s.guard.State().String(),
		CanUndo: s.journal.CanUndo(),
		CanRedo: s.journal.CanRedo(),
	}
	if !s.engine.Loaded() {
		return view
	}

	cfg := s.engine.Config()
	view.AssetPath = cfg.AssetPath()
	view.ImportMode = cfg.ImportMode().String()
	view.Location = cfg.Location().String()
	view.Editable = binding.Persistable(cfg.ImportMode(), cfg.Location())
	view.Dirty = s.engine.IsDirty()
	if err := s.engine.Err(); err != nil {
		view.Error = err.Error()
	} else if err := s.engine.Detector().LastError(); err != nil {
		// Dirty may be stale until the next successful resync.
		view.Error = fmt.Sprintf("resync after undo failed: %v", err)
	}

	original, working := s.engine.Original(), s.engine.Working()
	for _, key := range s.engine.Slots() {
		view.Slots = append(view.Slots, SlotState{
			Name:     key.Name,
			Type:     key.Type,
			Assembly: key.Assembly,
			Original: string(original[key]),
			Working:  string(working[key]),
			Changed:  original[key] != working[key],
		})
	}
	return view
}

// SlotRef names a slot in a request. Type and Assembly are only needed when two
// slots share a name.
type SlotRef struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Assembly string `json:"assembly,omitempty"`
}

func (r SlotRef) String() string {
	parts := []string{r.Name}
	if r.Type != "" || r.Assembly != "" {
		parts = append(parts, r.Type, r.Assembly)
	}
	return strings.Join(parts, ":")
}

// SlotState is one slot of a session.
type SlotState struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Assembly string `json:"assembly"`
	Original string `json:"original"`
	Working  string `json:"working"`
	Changed  bool   `json:"changed"`
}

// Session is the state of the binding session.
type Session struct {
	AssetPath  string      `json:"asset_path,omitempty"`
	State      string      `json:"state"`
	ImportMode string      `json:"import_mode,omitempty"`
	Location   string      `json:"location,omitempty"`
	Editable   bool        `json:"editable"`
	Dirty      bool        `json:"dirty"`
	Slots      []SlotState `json:"slots,omitempty"`
	CanUndo    bool        `json:"can_undo"`
	CanRedo    bool        `json:"can_redo"`
	Error      string      `json:"error,omitempty"`
}
