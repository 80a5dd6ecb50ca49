package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// StagedObject describes a cover image waiting in the staging bucket.
type StagedObject struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// ReadObject downloads at most limit+1 bytes of an object, so callers can
// tell an object larger than limit from one that fits.
func ReadObject(ctx context.Context, client Client, bucket, key string, limit int64) ([]byte, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Stage stores data under key and returns the key actually used.
func Stage(ctx context.Context, client Client, bucket, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}

	_, err := client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", key, err)
	}
	return key, nil
}

// ListStaged lists the objects under prefix.
func ListStaged(ctx context.Context, client Client, bucket, prefix string) ([]StagedObject, error) {
	var objects []StagedObject
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", bucket, obj.Err)
		}
		objects = append(objects, StagedObject{Key: obj.Key, Size: obj.Size, ContentType: obj.ContentType})
	}
	return objects, nil
}
