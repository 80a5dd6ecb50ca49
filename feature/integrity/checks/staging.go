package checks

import (
	"context"
	"fmt"

	"cover-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// InvalidObject is a staged object that can never be uploaded.
type InvalidObject struct {
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	Reason string `json:"reason"`
}

// StagingReport is the result of a staging bucket check.
type StagingReport struct {
	Bucket  string          `json:"bucket"`
	Objects int             `json:"objects"`
	Invalid []InvalidObject `json:"invalid"`
}

// CheckStaging lists the staging bucket and reports objects that are empty
// or not smaller than maxSize.
func CheckStaging(ctx context.Context, client storage.Client, bucket string, maxSize int64) (*StagingReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	objects, err := storage.ListStaged(ctx, client, bucket, "")
	if err != nil {
		return nil, err
	}

	report := &StagingReport{Bucket: bucket, Objects: len(objects), Invalid: []InvalidObject{}}
	for _, obj := range objects {
		switch {
		case obj.Size == 0:
			report.Invalid = append(report.Invalid, InvalidObject{Key: obj.Key, Size: obj.Size, Reason: "empty"})
		case obj.Size >= maxSize:
			report.Invalid = append(report.Invalid, InvalidObject{Key: obj.Key, Size: obj.Size, Reason: "too large"})
		}
	}
	return report, nil
}

// FixStaging removes the invalid objects from the bucket.
func FixStaging(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, invalid []InvalidObject) error {
	for _, obj := range invalid {
		if err := client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			logger.Error("Failed to remove staged object", zap.String("key", obj.Key), zap.Error(err))
			return err
		}
		logger.Info("Removed invalid staged object", zap.String("key", obj.Key), zap.String("reason", obj.Reason))
	}
	return nil
}
