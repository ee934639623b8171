package importconfig

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"asset-binder/core/binding"
	"asset-binder/core/storage"

	"github.com/goccy/go-yaml"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const documentSuffix = ".import.yaml"

// document is the YAML form of an import configuration.
type document struct {
	AssetPath       string               `yaml:"assetPath"`
	ImportMode      string               `yaml:"importMode"`
	Location        string               `yaml:"location"`
	Revision        int                  `yaml:"revision"`
	Slots           []binding.BindingKey `yaml:"slots"`
	ExternalObjects []externalObject     `yaml:"externalObjects,omitempty"`
}

type externalObject struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Assembly string `yaml:"assembly"`
	Ref      string `yaml:"ref"`
}

func newDocument(def Definition, revision int) document {
	doc := document{
		AssetPath:  def.AssetPath,
		ImportMode: def.ImportMode.String(),
		Location:   def.Location.String(),
		Revision:   revision,
		Slots:      def.Slots,
	}
	for _, e := range def.Bindings {
		if e.Ref.IsNone() {
			continue
		}
		doc.ExternalObjects = append(doc.ExternalObjects, externalObject{
			Name: e.Key.Name, Type: e.Key.Type, Assembly: e.Key.Assembly, Ref: string(e.Ref),
		})
	}
	return doc
}

func (d document) definition() (Definition, error) {
	mode, err := binding.ParseImportMode(d.ImportMode)
	if err != nil {
		return Definition{}, err
	}
	loc, err := binding.ParseLocation(d.Location)
	if err != nil {
		return Definition{}, err
	}
	def := Definition{AssetPath: d.AssetPath, ImportMode: mode, Location: loc, Slots: d.Slots}
	for _, o := range d.ExternalObjects {
		def.Bindings = append(def.Bindings, binding.ExternalBinding{
			Key: binding.BindingKey{Name: o.Name, Type: o.Type, Assembly: o.Assembly},
			Ref: binding.AssetRef(o.Ref),
		})
	}
	return def, nil
}

// ObjectSource serves import configurations stored as YAML documents in a bucket.
type ObjectSource struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
	opened openCache[*ObjectConfig]
}

// NewObjectSource creates a source reading <prefix>/<asset>.import.yaml from bucket.
func NewObjectSource(client storage.Client, bucket, prefix string, logger *zap.Logger) *ObjectSource {
	return &ObjectSource{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

func (s *ObjectSource) Name() string { return binding.BackendStorage }

func (s *ObjectSource) objectName(assetPath string) string {
	return path.Join(s.prefix, assetPath) + documentSuffix
}

// Open fetches and decodes the document of assetPath.
func (s *ObjectSource) Open(ctx context.Context, assetPath string) (binding.ImportConfiguration, error) {
	if cfg, ok := s.opened.get(assetPath); ok {
		return cfg, nil
	}

	doc, err := s.fetch(ctx, assetPath)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, &binding.NotFoundError{AssetPath: assetPath}
		}
		return nil, &binding.NotFoundError{AssetPath: assetPath, Err: err}
	}
	def, err := doc.definition()
	if err != nil {
		return nil, &binding.NotFoundError{AssetPath: assetPath, Err: err}
	}
	def.AssetPath = assetPath

	cfg := &ObjectConfig{table: newTable(def), source: s, revision: doc.Revision}
	s.opened.put(assetPath, cfg)
	return cfg, nil
}

func (s *ObjectSource) fetch(ctx context.Context, assetPath string) (document, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(assetPath), minio.GetObjectOptions{})
	if err != nil {
		return document{}, err
	}
	defer obj.Close()

	// MinIO reports a missing key on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return document{}, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode %s: %w", s.objectName(assetPath), err)
	}
	return doc, nil
}

func (s *ObjectSource) store(ctx context.Context, doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc.AssetPath, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.objectName(doc.AssetPath), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/yaml"})
	return err
}

// List returns the asset paths of every document under the prefix, sorted.
func (s *ObjectSource) List(ctx context.Context) ([]string, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	var paths []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list import documents: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, documentSuffix) {
			continue
		}
		paths = append(paths, strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), documentSuffix))
	}
	sort.Strings(paths)
	return paths, nil
}

// Put writes the document of def with revision zero.
func (s *ObjectSource) Put(ctx context.Context, def Definition) error {
	if err := s.store(ctx, newDocument(def, 0)); err != nil {
		return fmt.Errorf("failed to store import configuration %s: %w", def.AssetPath, err)
	}
	s.opened.drop(def.AssetPath)
	return nil
}

// OnDrop registers fn to run when Put or Remove retires an opened configuration.
func (s *ObjectSource) OnDrop(fn func(assetPath string)) {
	s.opened.onDrop(fn)
}

// Remove deletes the document of assetPath.
func (s *ObjectSource) Remove(ctx context.Context, assetPath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(assetPath), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove import configuration %s: %w", assetPath, err)
	}
	s.opened.drop(assetPath)
	return nil
}

// ObjectConfig is an import configuration backed by one YAML document.
type ObjectConfig struct {
	*table
	source *ObjectSource

	mu       sync.Mutex
	revision int
}

// Save uploads the document with the in-memory bindings.
func (c *ObjectConfig) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source.store(ctx, newDocument(c.definition(), c.revision))
}

// Reimport uploads the document again with a bumped revision.
func (c *ObjectConfig) Reimport(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.source.store(ctx, newDocument(c.definition(), c.revision+1)); err != nil {
		return err
	}
	c.revision++
	c.source.logger.Debug("Reimported configuration", zap.String("asset", c.path), zap.Int("revision", c.revision))
	return nil
}

// Revision returns the revision of the last uploaded document.
func (c *ObjectConfig) Revision(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision, nil
}
