package importconfig

import (
	"time"

	"asset-binder/core/binding"
)

// ModelImport is one import configuration row.
type ModelImport struct {
	ID         uint   `gorm:"primaryKey"`
	AssetPath  string `gorm:"column:asset_path;size:512;uniqueIndex;not null"`
	ImportMode string `gorm:"column:import_mode;size:32;not null"`
	Location   string `gorm:"column:location;size:32;not null"`
	Revision   int    `gorm:"column:revision;not null;default:0"`
	UpdatedAt  time.Time

	Slots           []SlotDescriptor `gorm:"foreignKey:ImportID;constraint:OnDelete:CASCADE"`
	ExternalObjects []ExternalObject `gorm:"foreignKey:ImportID;constraint:OnDelete:CASCADE"`
}

func (ModelImport) TableName() string { return "model_imports" }

// SlotDescriptor is a material slot declared by the source model.
type SlotDescriptor struct {
	ID       uint   `gorm:"primaryKey"`
	ImportID uint   `gorm:"column:import_id;index;not null"`
	Position int    `gorm:"column:position;not null"`
	Name     string `gorm:"column:name;size:255;not null"`
	Type     string `gorm:"column:type;size:255;not null"`
	Assembly string `gorm:"column:assembly;size:255;not null"`
}

func (SlotDescriptor) TableName() string { return "slot_descriptors" }

func (s SlotDescriptor) Key() binding.BindingKey {
	return binding.BindingKey{Name: s.Name, Type: s.Type, Assembly: s.Assembly}
}

// ExternalObject is one persisted binding.
type ExternalObject struct {
	ID       uint   `gorm:"primaryKey"`
	ImportID uint   `gorm:"column:import_id;index;not null"`
	Name     string `gorm:"column:name;size:255;not null"`
	Type     string `gorm:"column:type;size:255;not null"`
	Assembly string `gorm:"column:assembly;size:255;not null"`
	Ref      string `gorm:"column:ref;size:512;not null"`
}

func (ExternalObject) TableName() string { return "external_objects" }

func (o ExternalObject) Binding() binding.ExternalBinding {
	return binding.ExternalBinding{
		Key: binding.BindingKey{Name: o.Name, Type: o.Type, Assembly: o.Assembly},
		Ref: binding.AssetRef(o.Ref),
	}
}

// expectedColumns lists the columns each table must have.
var expectedColumns = map[string][]string{
	"model_imports":    {"id", "asset_path", "import_mode", "location", "revision", "updated_at"},
	"slot_descriptors": {"id", "import_id", "position", "name", "type", "assembly"},
	"external_objects": {"id", "import_id", "name", "type", "assembly", "ref"},
}
