package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"asset-binder/core/binding"
	"asset-binder/core/preview"
	"asset-binder/core/undo"
	"asset-binder/feature/materials"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	keepEdits    bool
	discardEdits bool
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Inspect and edit material bindings",
	Long: `Shows and edits the material bindings of one imported model.
Edits are written through to the store one slot at a time. When the
session ends with changes you are asked whether to keep or discard them.`,
}

var bindingsShowCmd = &cobra.Command{
	Use:   "show <asset>",
	Short: "Show the bindings of an asset",
	Args:  cobra.ExactArgs(1),
	RunE:  runBindingsShow,
}

var bindingsSetCmd = &cobra.Command{
	Use:   "set <asset> <slot>=<ref>...",
	Short: "Bind slots of an asset",
	Long: `Binds each slot to the given asset reference.
A slot is its name, or name:type:assembly when two slots share a name.

Examples:
  asset-binder bindings set Models/hero.fbx Body=Materials/Skin.mat
  asset-binder bindings set Models/hero.fbx Eyes:Material:Engine.CoreModule=Materials/EyeRed.mat --keep`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBindingsSet,
}

var bindingsClearCmd = &cobra.Command{
	Use:   "clear <asset> <slot>...",
	Short: "Clear slots of an asset",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runBindingsClear,
}

func init() {
	RootCmd.AddCommand(bindingsCmd)
	bindingsCmd.AddCommand(bindingsShowCmd, bindingsSetCmd, bindingsClearCmd)

	for _, c := range []*cobra.Command{bindingsSetCmd, bindingsClearCmd} {
		c.Flags().BoolVar(&keepEdits, "keep", false, "Keep the changes without asking")
		c.Flags().BoolVar(&discardEdits, "discard", false, "Discard the changes without asking")
		c.MarkFlagsMutuallyExclusive("keep", "discard")
	}
}

// slotEdit is one requested slot change.
type slotEdit struct {
	slot materials.SlotRef
	ref  binding.AssetRef
}

func runBindingsShow(cmd *cobra.Command, args []string) error {
	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	ctx := context.Background()
	source, err := openSource(ctx, cfg, l)
	if err != nil {
		return err
	}

	ic, err := source.Open(ctx, args[0])
	if err != nil {
		return err
	}
	p, err := preview.Build(ctx, binding.NewStoreAdapter(l), ic)
	if err != nil {
		return err
	}
	printPreview(l, p)
	return nil
}

func runBindingsSet(cmd *cobra.Command, args []string) error {
	edits := make([]slotEdit, 0, len(args)-1)
	for _, arg := range args[1:] {
		slot, ref, ok := strings.Cut(arg, "=")
		if !ok || slot == "" {
			return fmt.Errorf("invalid binding %q, want <slot>=<ref>", arg)
		}
		edits = append(edits, slotEdit{slot: parseSlotRef(slot), ref: binding.AssetRef(ref)})
	}
	return runSession(args[0], edits)
}

func runBindingsClear(cmd *cobra.Command, args []string) error {
	edits := make([]slotEdit, 0, len(args)-1)
	for _, slot := range args[1:] {
		edits = append(edits, slotEdit{slot: parseSlotRef(slot), ref: binding.NoAsset})
	}
	return runSession(args[0], edits)
}

// runSession opens assetPath, applies edits in order and closes the session. The
// session is always closed, so a failed edit still asks about the ones before it.
func runSession(assetPath string, edits []slotEdit) error {
	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	ctx := context.Background()
	source, err := openSource(ctx, cfg, l)
	if err != nil {
		return err
	}

	journal := undo.NewJournal(cfg.Binding.UndoDepth, l)
	service := materials.NewService(source, journal, preview.NewCache(0), binding.NewRegistry(), l)

	if _, _, err := service.Open(ctx, assetPath, nil); err != nil {
		return err
	}

	var editErr error
	for _, e := range edits {
		if _, err := service.Edit(ctx, e.slot, e.ref); err != nil {
			editErr = fmt.Errorf("failed to edit %s: %w", e.slot, err)
			break
		}
		l.Info("Slot updated", zap.Stringer("slot", e.slot), zap.String("ref", string(e.ref)))
	}

	session := service.Session()
	if session.Dirty {
		printSession(l, session)
	}

	out, err := service.Close(ctx, sessionConfirmer(os.Stdin, os.Stdout))
	if err != nil && !errors.As(err, new(*binding.FatalError)) {
		// Without an answer the session cannot stay open past the process.
		l.Warn("No decision on pending changes, discarding them", zap.Error(err))
		discard, _ := materials.Policy(materials.OnDirtyRevert, false)
		out, err = service.Close(ctx, discard)
	}
	if err != nil {
		return errors.Join(editErr, err)
	}
	if session.Dirty {
		l.Info("Session closed", zap.String("asset", out.AssetPath), zap.Stringer("resolution", out.Resolution))
	}
	return editErr
}

// sessionConfirmer answers from --keep or --discard, or asks on in.
func sessionConfirmer(in io.Reader, out io.Writer) binding.Confirmer {
	switch {
	case keepEdits:
		c, _ := materials.Policy(materials.OnDirtyCommit, false)
		return c
	case discardEdits:
		c, _ := materials.Policy(materials.OnDirtyRevert, false)
		return c
	default:
		return promptConfirmer(in, out)
	}
}

// promptConfirmer asks until the answer is keep or discard.
func promptConfirmer(in io.Reader, out io.Writer) binding.Confirmer {
	reader := bufio.NewReader(in)
	return binding.ConfirmFunc(func(ctx context.Context, cfg binding.ImportConfiguration) (binding.Decision, error) {
		for {
			fmt.Fprintf(out, "\n%s has unsaved binding changes. Type 'keep' or 'discard': ", cfg.AssetPath())
			response, err := reader.ReadString('\n')

			switch strings.ToLower(strings.TrimSpace(response)) {
			case "keep", "k":
				return binding.Decision{Resolution: binding.ResolutionCommit}, nil
			case "discard", "d":
				return binding.Decision{Resolution: binding.ResolutionRevert}, nil
			}
			if err != nil {
				return binding.Decision{}, fmt.Errorf("no answer: %w", err)
			}
		}
	})
}

// parseSlotRef reads name or name:type:assembly.
func parseSlotRef(s string) materials.SlotRef {
	parts := strings.SplitN(s, ":", 3)
	ref := materials.SlotRef{Name: parts[0]}
	if len(parts) > 1 {
		ref.Type = parts[1]
	}
	if len(parts) > 2 {
		ref.Assembly = parts[2]
	}
	return ref
}

func printPreview(l *zap.Logger, p *preview.Preview) {
	l.Info("Bindings",
		zap.String("asset", p.AssetPath),
		zap.String("import_mode", p.ImportMode),
		zap.String("location", p.Location),
		zap.Bool("editable", p.Editable),
	)
	for _, s := range p.Slots {
		ref := s.Ref
		if !s.Bound {
			ref = "(none)"
		}
		l.Info("  Slot", zap.String("name", s.Name), zap.String("type", s.Type), zap.String("ref", ref))
	}
}

func printSession(l *zap.Logger, s materials.Session) {
	for _, slot := range s.Slots {
		if !slot.Changed {
			continue
		}
		l.Info("  Changed",
			zap.String("slot", slot.Name),
			zap.String("from", slot.Original),
			zap.String("to", slot.Working),
		)
	}
}
