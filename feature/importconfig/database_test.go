package importconfig

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"asset-binder/core/binding"
	"asset-binder/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	body = binding.BindingKey{Name: "Body", Type: "Material", Assembly: "Engine.CoreModule"}
	eyes = binding.BindingKey{Name: "Eyes", Type: "Material", Assembly: "Engine.CoreModule"}
	hair = binding.BindingKey{Name: "Hair", Type: "Material", Assembly: "Engine.CoreModule"}
)

func heroDefinition() Definition {
	return Definition{
		AssetPath:  "Models/hero.fbx",
		ImportMode: binding.ImportModeStandard,
		Location:   binding.LocationInStore,
		Slots:      []binding.BindingKey{body, eyes, hair},
		Bindings:   []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}},
	}
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func setupMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestDBSource_PutAndOpen(t *testing.T) {
	ctx := context.Background()
	src := NewDBSource(setupSQLite(t), zap.NewNop())
	require.NoError(t, src.Put(ctx, heroDefinition()))

	cfg, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)
	assert.Equal(t, "Models/hero.fbx", cfg.AssetPath())
	assert.Equal(t, binding.ImportModeStandard, cfg.ImportMode())
	assert.Equal(t, binding.LocationInStore, cfg.Location())

	slots, err := cfg.Slots()
	require.NoError(t, err)
	assert.Equal(t, []binding.BindingKey{body, eyes, hair}, slots)

	table, err := cfg.ExternalBindings()
	require.NoError(t, err)
	assert.Equal(t, []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}}, table)

	again, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)
	assert.Same(t, cfg, again)
}

func TestDBSource_OpenMissing(t *testing.T) {
	src := NewDBSource(setupSQLite(t), zap.NewNop())

	_, err := src.Open(context.Background(), "Models/ghost.fbx")
	assert.ErrorIs(t, err, binding.ErrNotFound)

	var nf *binding.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Models/ghost.fbx", nf.AssetPath)
}

func TestDBSource_ListAndRemove(t *testing.T) {
	ctx := context.Background()
	src := NewDBSource(setupSQLite(t), zap.NewNop())

	for _, p := range []string{"Models/b.fbx", "Models/a.fbx", "Props/crate.fbx"} {
		def := heroDefinition()
		def.AssetPath = p
		require.NoError(t, src.Put(ctx, def))
	}

	paths, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Models/a.fbx", "Models/b.fbx", "Props/crate.fbx"}, paths)

	require.NoError(t, src.Remove(ctx, "Models/b.fbx"))
	paths, err = src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Models/a.fbx", "Props/crate.fbx"}, paths)

	assert.ErrorIs(t, src.Remove(ctx, "Models/b.fbx"), binding.ErrNotFound)
}

func TestDBSource_OnDrop(t *testing.T) {
	ctx := context.Background()
	src := NewDBSource(setupSQLite(t), zap.NewNop())
	var dropped []string
	src.OnDrop(func(assetPath string) { dropped = append(dropped, assetPath) })

	require.NoError(t, src.Put(ctx, heroDefinition()))
	require.NoError(t, src.Remove(ctx, "Models/hero.fbx"))
	assert.Equal(t, []string{"Models/hero.fbx", "Models/hero.fbx"}, dropped)

	assert.Error(t, src.Remove(ctx, "Models/hero.fbx"))
	assert.Len(t, dropped, 2)
}

func TestDBSource_PutReplaces(t *testing.T) {
	ctx := context.Background()
	src := NewDBSource(setupSQLite(t), zap.NewNop())
	require.NoError(t, src.Put(ctx, heroDefinition()))
	first, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)

	def := heroDefinition()
	def.ImportMode = binding.ImportModeNone
	def.Slots = []binding.BindingKey{hair}
	def.Bindings = nil
	require.NoError(t, src.Put(ctx, def))

	cfg, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)
	assert.NotSame(t, first, cfg)
	assert.Equal(t, binding.ImportModeNone, cfg.ImportMode())
	slots, _ := cfg.Slots()
	assert.Equal(t, []binding.BindingKey{hair}, slots)
	table, _ := cfg.ExternalBindings()
	assert.Empty(t, table)
}

func TestDBConfig_WriteThroughAdapter(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	src := NewDBSource(db, zap.NewNop())
	require.NoError(t, src.Put(ctx, heroDefinition()))

	cfg, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)

	adapter := binding.NewStoreAdapter(zap.NewNop())
	require.NoError(t, adapter.WriteOne(ctx, cfg, body, "Materials/Skin.mat"))
	require.NoError(t, adapter.WriteOne(ctx, cfg, eyes, binding.NoAsset))

	rev, err := cfg.(Revisioned).Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rev)

	// A fresh source reads what reached the tables.
	fresh, err := NewDBSource(db, zap.NewNop()).Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)
	got, err := adapter.ReadAll(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, binding.Bindings{body: "Materials/Skin.mat", eyes: binding.NoAsset, hair: binding.NoAsset}, got)
}

func TestDBConfig_SaveRejected(t *testing.T) {
	db, mock := setupMock(t)
	cfg := &DBConfig{table: newTable(heroDefinition()), db: db, id: 7, logger: zap.NewNop()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `external_objects` WHERE import_id = ?")).
		WithArgs(7).
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	err := binding.NewStoreAdapter(zap.NewNop()).WriteOne(context.Background(), cfg, body, "Materials/Skin.mat")
	assert.ErrorIs(t, err, binding.ErrStoreWrite)

	table, _ := cfg.ExternalBindings()
	assert.Equal(t, []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}}, table)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBConfig_ReimportRejected(t *testing.T) {
	db, mock := setupMock(t)
	def := heroDefinition()
	def.Bindings = nil
	cfg := &DBConfig{table: newTable(def), db: db, id: 7, logger: zap.NewNop()}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `external_objects` WHERE import_id = ?")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `external_objects`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `model_imports` SET `revision`=revision + ? WHERE id = ?")).
		WithArgs(1, 7).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	// The restore save writes the empty table back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `external_objects` WHERE import_id = ?")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := binding.NewStoreAdapter(zap.NewNop()).WriteOne(context.Background(), cfg, body, "Materials/Skin.mat")
	assert.ErrorIs(t, err, binding.ErrStoreWrite)
	assert.ErrorContains(t, err, "reimport")

	table, _ := cfg.ExternalBindings()
	assert.Empty(t, table)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSchema(t *testing.T) {
	t.Run("Migrated", func(t *testing.T) {
		assert.NoError(t, CheckSchema(setupSQLite(t)))
	})

	t.Run("Missing Columns", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, Migrate(db))
		require.NoError(t, db.Exec("ALTER TABLE external_objects DROP COLUMN ref").Error)

		err = CheckSchema(db)
		assert.ErrorContains(t, err, "external_objects missing ref")
	})

	t.Run("Empty Database", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)

		err = CheckSchema(db)
		assert.ErrorContains(t, err, "incompatible import schema")
		assert.ErrorContains(t, err, "model_imports missing")
	})
}
