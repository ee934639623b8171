package importconfig

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"asset-binder/core/binding"
	"asset-binder/core/storage/mocks"

	"github.com/goccy/go-yaml"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const heroDocument = `assetPath: Models/hero.fbx
importMode: via_description
location: in_store
revision: 4
slots:
  - name: Body
    type: Material
    assembly: Engine.CoreModule
  - name: Eyes
    type: Material
    assembly: Engine.CoreModule
externalObjects:
  - name: Eyes
    type: Material
    assembly: Engine.CoreModule
    ref: Materials/EyeBlue.mat
`

const heroObject = "imports/Models/hero.fbx.import.yaml"

func objectReader(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

// capturePut records the decoded documents uploaded through client.
func capturePut(client *mocks.Client, err error) *[]document {
	var docs []document
	client.On("PutObject", mock.Anything, "assets", heroObject, mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: "application/yaml"}).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			var doc document
			if yaml.Unmarshal(data, &doc) == nil {
				docs = append(docs, doc)
			}
		}).
		Return(minio.UploadInfo{}, err)
	return &docs
}

func TestObjectSource_Open(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "assets", heroObject, minio.GetObjectOptions{}).
		Return(objectReader(heroDocument), nil).Once()

	src := NewObjectSource(client, "assets", "/imports/", zap.NewNop())
	cfg, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)

	assert.Equal(t, binding.ImportModeViaDescription, cfg.ImportMode())
	assert.Equal(t, binding.LocationInStore, cfg.Location())
	slots, _ := cfg.Slots()
	assert.Equal(t, []binding.BindingKey{body, eyes}, slots)
	table, _ := cfg.ExternalBindings()
	assert.Equal(t, []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}}, table)

	rev, err := cfg.(Revisioned).Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, rev)

	again, err := src.Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)
	assert.Same(t, cfg, again)
	client.AssertExpectations(t)
}

func TestObjectSource_OpenMissing(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "assets", heroObject, minio.GetObjectOptions{}).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).Open(ctx, "Models/hero.fbx")
	assert.ErrorIs(t, err, binding.ErrNotFound)
}

func TestObjectSource_OpenInvalid(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "assets", heroObject, minio.GetObjectOptions{}).
		Return(objectReader("importMode: bogus\n"), nil)

	_, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).Open(ctx, "Models/hero.fbx")
	assert.ErrorIs(t, err, binding.ErrNotFound)
}

func TestObjectConfig_WriteThroughAdapter(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "assets", heroObject, minio.GetObjectOptions{}).
		Return(objectReader(heroDocument), nil)
	docs := capturePut(client, nil)

	cfg, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)

	require.NoError(t, binding.NewStoreAdapter(zap.NewNop()).WriteOne(ctx, cfg, body, "Materials/Skin.mat"))

	// One save, one reimport.
	require.Len(t, *docs, 2)
	saved, reimported := (*docs)[0], (*docs)[1]
	assert.Equal(t, 4, saved.Revision)
	assert.Equal(t, 5, reimported.Revision)
	assert.Equal(t, []externalObject{
		{Name: "Eyes", Type: "Material", Assembly: "Engine.CoreModule", Ref: "Materials/EyeBlue.mat"},
		{Name: "Body", Type: "Material", Assembly: "Engine.CoreModule", Ref: "Materials/Skin.mat"},
	}, reimported.ExternalObjects)
	assert.Equal(t, "via_description", reimported.ImportMode)
}

func TestObjectConfig_SaveRejected(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("GetObject", ctx, "assets", heroObject, minio.GetObjectOptions{}).
		Return(objectReader(heroDocument), nil)
	capturePut(client, errors.New("access denied"))

	cfg, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).Open(ctx, "Models/hero.fbx")
	require.NoError(t, err)

	err = binding.NewStoreAdapter(zap.NewNop()).WriteOne(ctx, cfg, eyes, binding.NoAsset)
	assert.ErrorIs(t, err, binding.ErrStoreWrite)

	table, _ := cfg.ExternalBindings()
	assert.Equal(t, []binding.ExternalBinding{{Key: eyes, Ref: "Materials/EyeBlue.mat"}}, table)
	rev, _ := cfg.(Revisioned).Revision(ctx)
	assert.Equal(t, 4, rev)
}

func TestObjectSource_List(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 4)
	ch <- minio.ObjectInfo{Key: "imports/Props/crate.fbx.import.yaml"}
	ch <- minio.ObjectInfo{Key: "imports/Models/hero.fbx.import.yaml"}
	ch <- minio.ObjectInfo{Key: "imports/readme.txt"}
	close(ch)
	client.On("ListObjects", ctx, "assets", minio.ListObjectsOptions{Prefix: "imports/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	paths, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Models/hero.fbx", "Props/crate.fbx"}, paths)
}

func TestObjectSource_ListError(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("bucket gone")}
	close(ch)
	client.On("ListObjects", ctx, "assets", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := NewObjectSource(client, "assets", "imports", zap.NewNop()).List(ctx)
	assert.ErrorContains(t, err, "bucket gone")
}

func TestObjectSource_PutAndRemove(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	docs := capturePut(client, nil)
	client.On("RemoveObject", ctx, "assets", heroObject, minio.RemoveObjectOptions{}).Return(nil)

	src := NewObjectSource(client, "assets", "imports", zap.NewNop())
	var dropped []string
	src.OnDrop(func(assetPath string) { dropped = append(dropped, assetPath) })
	require.NoError(t, src.Put(ctx, heroDefinition()))
	require.Len(t, *docs, 1)
	assert.Equal(t, "Models/hero.fbx", (*docs)[0].AssetPath)
	assert.Equal(t, "standard", (*docs)[0].ImportMode)
	assert.Len(t, (*docs)[0].Slots, 3)

	require.NoError(t, src.Remove(ctx, "Models/hero.fbx"))
	assert.Equal(t, []string{"Models/hero.fbx", "Models/hero.fbx"}, dropped)
	client.AssertExpectations(t)
}
