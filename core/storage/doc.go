// Package storage provides the staging store for cover images.
//
// It wraps the MinIO Go client behind the Client interface so the staging
// bucket can be mocked in tests (see core/storage/mocks). Images are staged
// with Stage, listed with ListStaged and read back with ReadObject before
// they are uploaded to the cover server. Both AWS S3 and self-hosted MinIO
// work as backends.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket)
package storage
