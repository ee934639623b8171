package binding_test

import (
	"context"
	"errors"
	"testing"

	"asset-binder/core/binding"
	"asset-binder/core/binding/bindingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	body = bindingtest.Material("Body")
	eyes = bindingtest.Material("Eyes")
	hair = bindingtest.Material("Hair")
)

type recorded struct {
	asset  string
	label  string
	before []binding.ExternalBinding
}

type fakeRecorder struct {
	entries []recorded
}

func (r *fakeRecorder) Record(cfg binding.ImportConfiguration, label string, before []binding.ExternalBinding) {
	r.entries = append(r.entries, recorded{asset: cfg.AssetPath(), label: label, before: before})
}

type fakePreviews struct {
	invalidated []string
}

func (p *fakePreviews) Invalidate(assetPath string) {
	p.invalidated = append(p.invalidated, assetPath)
}

func TestReadAll(t *testing.T) {
	adapter := binding.NewStoreAdapter(zap.NewNop())

	t.Run("UnmatchedSlotsAreNull", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body, eyes, hair},
			map[binding.BindingKey]binding.AssetRef{body: "MatA", eyes: "MatB"})

		got, err := adapter.ReadAll(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, binding.Bindings{body: "MatA", eyes: "MatB", hair: binding.NoAsset}, got)
	})

	t.Run("MatchesWholeTriple", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body}, nil)
		other := binding.BindingKey{Name: "Body", Type: "Material", Assembly: "Other.Assembly"}
		cfg.PutBinding(other, "MatX")

		got, err := adapter.ReadAll(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, binding.NoAsset, got[body])
		assert.NotContains(t, got, other)
	})

	t.Run("NilConfig", func(t *testing.T) {
		_, err := adapter.ReadAll(context.Background(), nil)
		assert.ErrorIs(t, err, binding.ErrNotFound)
	})

	t.Run("UnreadableConfig", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/broken.fbx", []binding.BindingKey{body}, nil)
		cfg.SlotsErr = errors.New("corrupt")

		_, err := adapter.ReadAll(context.Background(), cfg)
		var nf *binding.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Models/broken.fbx", nf.AssetPath)
	})
}

func TestWriteOne(t *testing.T) {
	t.Run("OverwritesExistingEntry", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body},
			map[binding.BindingKey]binding.AssetRef{body: "MatA"})
		adapter := binding.NewStoreAdapter(zap.NewNop())

		require.NoError(t, adapter.WriteOne(context.Background(), cfg, body, "MatC"))
		assert.Equal(t, binding.AssetRef("MatC"), cfg.Stored(body))
		assert.Equal(t, 1, cfg.Entries())
		assert.Equal(t, 1, cfg.Saves)
		assert.Equal(t, 1, cfg.Reimports)
	})

	t.Run("AppendsMissingEntry", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body, eyes}, nil)
		adapter := binding.NewStoreAdapter(zap.NewNop())

		require.NoError(t, adapter.WriteOne(context.Background(), cfg, eyes, "MatB"))
		assert.Equal(t, binding.AssetRef("MatB"), cfg.Stored(eyes))
		assert.Equal(t, 1, cfg.Entries())
	})

	t.Run("NullRemovesEntry", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body},
			map[binding.BindingKey]binding.AssetRef{body: "MatA"})
		adapter := binding.NewStoreAdapter(zap.NewNop())

		require.NoError(t, adapter.WriteOne(context.Background(), cfg, body, binding.NoAsset))
		assert.Equal(t, 0, cfg.Entries())
		assert.Equal(t, binding.NoAsset, cfg.Stored(body))
	})

	t.Run("RejectedSaveRollsBack", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body},
			map[binding.BindingKey]binding.AssetRef{body: "MatA"})
		cfg.SaveErr = bindingtest.ErrRejected
		rec := &fakeRecorder{}
		previews := &fakePreviews{}
		adapter := binding.NewStoreAdapter(zap.NewNop(), binding.WithRecorder(rec), binding.WithPreviews(previews))

		err := adapter.WriteOne(context.Background(), cfg, body, "MatC")
		var swe *binding.StoreWriteError
		require.ErrorAs(t, err, &swe)
		assert.Equal(t, body, swe.Key)
		assert.ErrorIs(t, err, bindingtest.ErrRejected)
		assert.Equal(t, binding.AssetRef("MatA"), cfg.Live(body))
		assert.Empty(t, rec.entries)
		assert.Equal(t, []string{"Models/hero.fbx"}, previews.invalidated)
	})

	t.Run("RejectedAppendRollsBack", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body}, nil)
		cfg.SaveErr = bindingtest.ErrRejected
		adapter := binding.NewStoreAdapter(zap.NewNop())

		err := adapter.WriteOne(context.Background(), cfg, body, "MatC")
		assert.ErrorIs(t, err, binding.ErrStoreWrite)
		assert.Equal(t, 0, cfg.Entries())
	})

	t.Run("FailedReimportRestoresStore", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body},
			map[binding.BindingKey]binding.AssetRef{body: "MatA"})
		cfg.ReimportErr = errors.New("importer crashed")
		previews := &fakePreviews{}
		adapter := binding.NewStoreAdapter(zap.NewNop(), binding.WithPreviews(previews))

		err := adapter.WriteOne(context.Background(), cfg, body, "MatC")
		assert.ErrorIs(t, err, binding.ErrStoreWrite)
		assert.Equal(t, binding.AssetRef("MatA"), cfg.Live(body))
		assert.Equal(t, binding.AssetRef("MatA"), cfg.Stored(body))
		assert.Equal(t, []string{"Models/hero.fbx"}, previews.invalidated)
	})

	t.Run("NotifiesRecorderAndPreviews", func(t *testing.T) {
		cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body},
			map[binding.BindingKey]binding.AssetRef{body: "MatA"})
		rec := &fakeRecorder{}
		previews := &fakePreviews{}
		adapter := binding.NewStoreAdapter(zap.NewNop(), binding.WithRecorder(rec), binding.WithPreviews(previews))

		require.NoError(t, adapter.WriteOne(context.Background(), cfg, body, "MatC"))
		require.Len(t, rec.entries, 1)
		assert.Equal(t, "Models/hero.fbx", rec.entries[0].asset)
		assert.Equal(t, []binding.ExternalBinding{{Key: body, Ref: "MatA"}}, rec.entries[0].before)
		assert.Equal(t, []string{"Models/hero.fbx"}, previews.invalidated)
	})

	t.Run("NilConfig", func(t *testing.T) {
		adapter := binding.NewStoreAdapter(zap.NewNop())
		err := adapter.WriteOne(context.Background(), nil, body, "MatC")
		assert.ErrorIs(t, err, binding.ErrNotFound)
	})
}
