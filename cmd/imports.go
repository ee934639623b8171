package cmd

import (
	"context"
	"fmt"
	"strings"

	"asset-binder/core/binding"
	"asset-binder/feature/importconfig"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importMode     string
	importLocation string
	importSlots    []string
	importBinds    []string
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Manage stored import configurations",
}

var importsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored import configurations",
	Args:  cobra.NoArgs,
	RunE:  runImportsList,
}

var importsAddCmd = &cobra.Command{
	Use:   "add <asset>",
	Short: "Create or replace an import configuration",
	Long: `Creates or replaces the import configuration of an asset.

Example:
  asset-binder imports add Models/hero.fbx --mode via_description \
    --slot Body:Material:Engine.CoreModule --slot Eyes:Material:Engine.CoreModule \
    --bind Eyes=Materials/EyeBlue.mat`,
	Args: cobra.ExactArgs(1),
	RunE: runImportsAdd,
}

var importsRemoveCmd = &cobra.Command{
	Use:   "remove <asset>",
	Short: "Delete an import configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportsRemove,
}

func init() {
	RootCmd.AddCommand(importsCmd)
	importsCmd.AddCommand(importsListCmd, importsAddCmd, importsRemoveCmd)

	importsAddCmd.Flags().StringVar(&importMode, "mode", "standard", "Material import mode (none, standard, via_description)")
	importsAddCmd.Flags().StringVar(&importLocation, "location", "in_store", "Material location (in_store, external)")
	importsAddCmd.Flags().StringArrayVar(&importSlots, "slot", nil, "Slot as name:type:assembly (repeatable)")
	importsAddCmd.Flags().StringArrayVar(&importBinds, "bind", nil, "Binding as <slot name>=<ref> (repeatable)")
}

func runImportsList(cmd *cobra.Command, args []string) error {
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

	paths, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list imports: %w", err)
	}
	l.Info("Import configurations", zap.Int("count", len(paths)))
	for _, p := range paths {
		l.Info("  " + p)
	}
	return nil
}

func runImportsAdd(cmd *cobra.Command, args []string) error {
	def, err := buildDefinition(args[0], importMode, importLocation, importSlots, importBinds)
	if err != nil {
		return err
	}

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
	if err := source.Put(ctx, def); err != nil {
		return fmt.Errorf("failed to store import: %w", err)
	}
	l.Info("Import stored",
		zap.String("asset", def.AssetPath),
		zap.Int("slots", len(def.Slots)),
		zap.Int("bindings", len(def.Bindings)),
	)
	return nil
}

func runImportsRemove(cmd *cobra.Command, args []string) error {
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
	if err := source.Remove(ctx, args[0]); err != nil {
		return err
	}
	l.Info("Import removed", zap.String("asset", args[0]))
	return nil
}

// buildDefinition assembles a definition from the add flags. Bindings name a declared
// slot by its name, which must be unique.
func buildDefinition(assetPath, mode, location string, slots, binds []string) (importconfig.Definition, error) {
	def := importconfig.Definition{AssetPath: assetPath}

	var err error
	if def.ImportMode, err = binding.ParseImportMode(mode); err != nil {
		return def, err
	}
	if def.Location, err = binding.ParseLocation(location); err != nil {
		return def, err
	}

	byName := make(map[string][]binding.BindingKey)
	for _, s := range slots {
		parts := strings.Split(s, ":")
		if len(parts) != 3 || parts[0] == "" {
			return def, fmt.Errorf("invalid slot %q, want name:type:assembly", s)
		}
		key := binding.BindingKey{Name: parts[0], Type: parts[1], Assembly: parts[2]}
		def.Slots = append(def.Slots, key)
		byName[key.Name] = append(byName[key.Name], key)
	}

	for _, b := range binds {
		name, ref, ok := strings.Cut(b, "=")
		if !ok || ref == "" {
			return def, fmt.Errorf("invalid binding %q, want <slot name>=<ref>", b)
		}
		keys := byName[name]
		if len(keys) != 1 {
			return def, fmt.Errorf("binding %q must name exactly one declared slot", b)
		}
		def.Bindings = append(def.Bindings, binding.ExternalBinding{Key: keys[0], Ref: binding.AssetRef(ref)})
	}
	return def, nil
}
