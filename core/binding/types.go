package binding

import (
	"context"
	"fmt"
)

// BindingKey identifies one material slot of an imported model.
// The triple matches how importers key their external object table.
type BindingKey struct {
	// Name is the slot (material) name as found in the source model.
	Name string `json:"name" yaml:"name"`
	// Type is the type tag of the bound object (e.g. "Material").
	Type string `json:"type" yaml:"type"`
	// Assembly is the assembly tag that qualifies Type.
	Assembly string `json:"assembly" yaml:"assembly"`
}

// String renders the key as name:type:assembly.
func (k BindingKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Name, k.Type, k.Assembly)
}

// AssetRef references the asset bound to a slot.
// NoAsset is the null reference.
type AssetRef string

// NoAsset is the empty binding. It is never persisted as an explicit entry.
const NoAsset AssetRef = ""

// IsNone reports whether the reference is null.
func (r AssetRef) IsNone() bool {
	return r == NoAsset
}

// Bindings maps slot keys to their bound asset.
type Bindings map[BindingKey]AssetRef

// Clone returns an independent copy of b.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ExternalBinding is one entry of an import configuration's external object table.
type ExternalBinding struct {
	Key BindingKey
	Ref AssetRef
}

// ImportMode controls how materials are produced on import.
type ImportMode int

const (
	// ImportModeNone imports no materials; bindings are preview-only.
	ImportModeNone ImportMode = iota
	// ImportModeStandard imports materials the legacy way.
	ImportModeStandard
	// ImportModeViaDescription imports materials from the model's material description.
	ImportModeViaDescription
)

func (m ImportMode) String() string {
	switch m {
	case ImportModeNone:
		return "none"
	case ImportModeStandard:
		return "standard"
	case ImportModeViaDescription:
		return "via_description"
	default:
		return fmt.Sprintf("import_mode(%d)", int(m))
	}
}

// ParseImportMode parses the String form of an ImportMode.
func ParseImportMode(s string) (ImportMode, error) {
	switch s {
	case "none":
		return ImportModeNone, nil
	case "standard", "":
		return ImportModeStandard, nil
	case "via_description":
		return ImportModeViaDescription, nil
	default:
		return ImportModeNone, fmt.Errorf("unknown import mode %q", s)
	}
}

// Location says where imported materials live.
type Location int

const (
	// LocationExternal extracts materials next to the model; bindings are preview-only.
	LocationExternal Location = iota
	// LocationInStore keeps materials inside the model's import configuration.
	LocationInStore
)

func (l Location) String() string {
	switch l {
	case LocationExternal:
		return "external"
	case LocationInStore:
		return "in_store"
	default:
		return fmt.Sprintf("location(%d)", int(l))
	}
}

// ParseLocation parses the String form of a Location.
func ParseLocation(s string) (Location, error) {
	switch s {
	case "external":
		return LocationExternal, nil
	case "in_store", "":
		return LocationInStore, nil
	default:
		return LocationExternal, fmt.Errorf("unknown location %q", s)
	}
}

// Persistable reports whether bindings made under mode and location can diverge from the
// committed baseline. In the other combinations edits are preview-only.
func Persistable(mode ImportMode, loc Location) bool {
	return mode != ImportModeNone && loc != LocationExternal
}

// ImportConfiguration is the import settings object of one model asset.
// It owns the slot descriptors and the persisted external binding table.
type ImportConfiguration interface {
	// AssetPath identifies the owning asset.
	AssetPath() string
	// Slots returns the declared slot descriptors in declaration order.
	Slots() ([]BindingKey, error)
	// ExternalBindings returns the current entries of the binding table.
	ExternalBindings() ([]ExternalBinding, error)
	// PutBinding overwrites the entry for key, or appends one.
	PutBinding(key BindingKey, ref AssetRef)
	// RemoveBinding deletes the entry for key if present.
	RemoveBinding(key BindingKey)
	ImportMode() ImportMode
	Location() Location
	// Save persists the binding table.
	Save(ctx context.Context) error
	// Reimport re-runs the asset import after a save.
	Reimport(ctx context.Context) error
}

// SubscriptionID identifies an undo/redo subscription.
type SubscriptionID uint64

// UndoChannel delivers a notification after every external undo or redo step.
type UndoChannel interface {
	Subscribe(fn func()) SubscriptionID
	Unsubscribe(id SubscriptionID)
}

// Recorder receives the binding table of cfg as it was before a successful write.
type Recorder interface {
	Record(cfg ImportConfiguration, label string, before []ExternalBinding)
}

// PreviewInvalidator drops cached previews of an asset.
type PreviewInvalidator interface {
	Invalidate(assetPath string)
}
