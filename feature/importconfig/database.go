package importconfig

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"asset-binder/core/binding"
	"asset-binder/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the import configuration tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ModelImport{}, &SlotDescriptor{}, &ExternalObject{}); err != nil {
		return fmt.Errorf("failed to migrate import tables: %w", err)
	}
	return nil
}

// CheckSchema verifies every import table has the columns the backend reads and writes.
func CheckSchema(db *gorm.DB) error {
	tables := make([]string, 0, len(expectedColumns))
	for table := range expectedColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var problems []string
	for _, table := range tables {
		missing, err := database.MissingColumns(db, table, expectedColumns[table])
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s missing %s", table, strings.Join(missing, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("incompatible import schema: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DBSource serves import configurations stored in SQL tables.
type DBSource struct {
	db     *gorm.DB
	logger *zap.Logger
	opened openCache[*DBConfig]
}

// NewDBSource creates a database backed source.
func NewDBSource(db *gorm.DB, logger *zap.Logger) *DBSource {
	return &DBSource{db: db, logger: logger}
}

func (s *DBSource) Name() string { return binding.BackendDatabase }

// Open loads the configuration of assetPath with its slots and bindings.
func (s *DBSource) Open(ctx context.Context, assetPath string) (binding.ImportConfiguration, error) {
	if cfg, ok := s.opened.get(assetPath); ok {
		return cfg, nil
	}

	var row ModelImport
	err := s.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("ExternalObjects", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("asset_path = ?", assetPath).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &binding.NotFoundError{AssetPath: assetPath}
	}
	if err != nil {
		return nil, &binding.NotFoundError{AssetPath: assetPath, Err: err}
	}

	def, err := rowDefinition(row)
	if err != nil {
		return nil, &binding.NotFoundError{AssetPath: assetPath, Err: err}
	}
	cfg := &DBConfig{table: newTable(def), db: s.db, id: row.ID, logger: s.logger}
	s.opened.put(assetPath, cfg)
	return cfg, nil
}

// List returns every stored asset path, sorted.
func (s *DBSource) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.WithContext(ctx).Model(&ModelImport{}).Order("asset_path").Pluck("asset_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list import configurations: %w", err)
	}
	return paths, nil
}

// Put creates or replaces the configuration described by def.
func (s *DBSource) Put(ctx context.Context, def Definition) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ModelImport
		err := tx.Where("asset_path = ?", def.AssetPath).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = ModelImport{AssetPath: def.AssetPath}
		case err != nil:
			return err
		}
		row.ImportMode = def.ImportMode.String()
		row.Location = def.Location.String()
		if err := tx.Omit("Slots", "ExternalObjects").Save(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("import_id = ?", row.ID).Delete(&SlotDescriptor{}).Error; err != nil {
			return err
		}
		if len(def.Slots) > 0 {
			slots := make([]SlotDescriptor, len(def.Slots))
			for i, key := range def.Slots {
				slots[i] = SlotDescriptor{ImportID: row.ID, Position: i, Name: key.Name, Type: key.Type, Assembly: key.Assembly}
			}
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return replaceObjects(tx, row.ID, def.Bindings)
	})
	if err != nil {
		return fmt.Errorf("failed to store import configuration %s: %w", def.AssetPath, err)
	}
	s.opened.drop(def.AssetPath)
	return nil
}

// OnDrop registers fn to run when Put or Remove retires an opened configuration.
func (s *DBSource) OnDrop(fn func(assetPath string)) {
	s.opened.onDrop(fn)
}

// Remove deletes the configuration of assetPath with its slots and bindings.
func (s *DBSource) Remove(ctx context.Context, assetPath string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ModelImport
		if err := tx.Where("asset_path = ?", assetPath).First(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("import_id = ?", row.ID).Delete(&ExternalObject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("import_id = ?", row.ID).Delete(&SlotDescriptor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &binding.NotFoundError{AssetPath: assetPath}
	}
	if err != nil {
		return fmt.Errorf("failed to remove import configuration %s: %w", assetPath, err)
	}
	s.opened.drop(assetPath)
	return nil
}

// DBConfig is an import configuration whose bindings live in external_objects.
type DBConfig struct {
	*table
	db     *gorm.DB
	id     uint
	logger *zap.Logger
}

// Save replaces the stored bindings with the in-memory table in one transaction.
func (c *DBConfig) Save(ctx context.Context) error {
	entries := c.snapshot()
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceObjects(tx, c.id, entries)
	})
}

// Reimport bumps the revision so consumers pick up the new bindings.
func (c *DBConfig) Reimport(ctx context.Context) error {
	res := c.db.WithContext(ctx).Model(&ModelImport{}).
		Where("id = ?", c.id).
		UpdateColumn("revision", gorm.Expr("revision + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("import configuration %s no longer exists", c.path)
	}
	c.logger.Debug("Reimported configuration", zap.String("asset", c.path))
	return nil
}

// Revision returns the stored revision counter.
func (c *DBConfig) Revision(ctx context.Context) (int, error) {
	var row ModelImport
	if err := c.db.WithContext(ctx).Select("revision").Where("id = ?", c.id).First(&row).Error; err != nil {
		return 0, err
	}
	return row.Revision, nil
}

func replaceObjects(tx *gorm.DB, importID uint, entries []binding.ExternalBinding) error {
	if err := tx.Where("import_id = ?", importID).Delete(&ExternalObject{}).Error; err != nil {
		return err
	}
	objects := make([]ExternalObject, 0, len(entries))
	for _, e := range entries {
		if e.Ref.IsNone() {
			continue
		}
		objects = append(objects, ExternalObject{
			ImportID: importID,
			Name:     e.Key.Name,
			Type:     e.Key.Type,
			Assembly: e.Key.Assembly,
			Ref:      string(e.Ref),
		})
	}
	if len(objects) == 0 {
		return nil
	}
	return tx.Create(&objects).Error
}

func rowDefinition(row ModelImport) (Definition, error) {
	mode, err := binding.ParseImportMode(row.ImportMode)
	if err != nil {
		return Definition{}, err
	}
	loc, err := binding.ParseLocation(row.Location)
	if err != nil {
		return Definition{}, err
	}
	def := Definition{AssetPath: row.AssetPath, ImportMode: mode, Location: loc}
	for _, s := range row.Slots {
		def.Slots = append(def.Slots, s.Key())
	}
	for _, o := range row.ExternalObjects {
		def.Bindings = append(def.Bindings, o.Binding())
	}
	return def, nil
}
