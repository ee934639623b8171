// Package storage wraps the MinIO client behind a small interface.
//
// The object backend of import configurations keeps one YAML document per asset in a
// bucket; this package provides the client it talks to, bucket bootstrap, and
// not-found detection. The Client interface is mocked in core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
