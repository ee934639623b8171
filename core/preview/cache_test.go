package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"asset-binder/core/binding"
	"asset-binder/core/binding/bindingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild(t *testing.T) {
	body := bindingtest.Material("Body")
	eyes := bindingtest.Material("Eyes")
	cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body, eyes},
		map[binding.BindingKey]binding.AssetRef{eyes: "MatB"})
	cfg.Loc = binding.LocationExternal

	p, err := Build(context.Background(), binding.NewStoreAdapter(zap.NewNop()), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Models/hero.fbx", p.AssetPath)
	assert.Equal(t, "external", p.Location)
	assert.False(t, p.Editable)
	require.Len(t, p.Slots, 2)
	assert.Equal(t, "Body", p.Slots[0].Name)
	assert.False(t, p.Slots[0].Bound)
	assert.Equal(t, "MatB", p.Slots[1].Ref)
	assert.True(t, p.Slots[1].Bound)
}

func TestCache_Hit(t *testing.T) {
	builds := 0
	build := func(ctx context.Context) (*Preview, error) {
		builds++
		return &Preview{AssetPath: "a"}, nil
	}
	c := NewCache(5 * time.Minute)

	_, err := c.GetOrBuild(context.Background(), "a", build)
	require.NoError(t, err)
	_, err = c.GetOrBuild(context.Background(), "a", build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Invalidate(t *testing.T) {
	builds := 0
	build := func(ctx context.Context) (*Preview, error) {
		builds++
		return &Preview{}, nil
	}
	c := NewCache(5 * time.Minute)

	_, _ = c.GetOrBuild(context.Background(), "a", build)
	c.Invalidate("a")
	_, _ = c.GetOrBuild(context.Background(), "a", build)
	assert.Equal(t, 2, builds)
}

func TestCache_Expiration(t *testing.T) {
	builds := 0
	build := func(ctx context.Context) (*Preview, error) {
		builds++
		return &Preview{}, nil
	}
	c := NewCache(10 * time.Millisecond)

	_, _ = c.GetOrBuild(context.Background(), "a", build)
	time.Sleep(20 * time.Millisecond)
	_, _ = c.GetOrBuild(context.Background(), "a", build)
	assert.Equal(t, 2, builds)
}

func TestCache_Disabled(t *testing.T) {
	builds := 0
	build := func(ctx context.Context) (*Preview, error) {
		builds++
		return &Preview{}, nil
	}
	c := NewCache(0)

	_, _ = c.GetOrBuild(context.Background(), "a", build)
	_, _ = c.GetOrBuild(context.Background(), "a", build)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 0, c.Len())
}

func TestCache_BuildErrorNotCached(t *testing.T) {
	c := NewCache(time.Minute)
	_, err := c.GetOrBuild(context.Background(), "a", func(ctx context.Context) (*Preview, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCache_AdapterWriteInvalidates(t *testing.T) {
	body := bindingtest.Material("Body")
	cfg := bindingtest.NewConfig("Models/hero.fbx", []binding.BindingKey{body}, nil)
	c := NewCache(time.Minute)
	adapter := binding.NewStoreAdapter(zap.NewNop(), binding.WithPreviews(c))
	build := func(ctx context.Context) (*Preview, error) { return Build(ctx, adapter, cfg) }

	p, err := c.GetOrBuild(context.Background(), cfg.AssetPath(), build)
	require.NoError(t, err)
	assert.False(t, p.Slots[0].Bound)

	require.NoError(t, adapter.WriteOne(context.Background(), cfg, body, "MatA"))
	p, err = c.GetOrBuild(context.Background(), cfg.AssetPath(), build)
	require.NoError(t, err)
	assert.Equal(t, "MatA", p.Slots[0].Ref)
}
