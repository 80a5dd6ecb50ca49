package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cover-manager/core/storage"
	"cover-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "staging").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(context.Background(), client, "staging"))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "staging").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "staging", mock.Anything).Return(nil)

		require.NoError(t, storage.EnsureBucket(context.Background(), client, "staging"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "staging").Return(false, errors.New("denied"))

		assert.Error(t, storage.EnsureBucket(context.Background(), client, "staging"))
	})
}

func TestReadObject(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "staging", "big.png", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(bytes.Repeat([]byte("x"), 100))), nil)
	client.On("GetObject", mock.Anything, "staging", "missing.png", mock.Anything).
		Return(nil, errors.New("not found"))

	data, err := storage.ReadObject(context.Background(), client, "staging", "big.png", 10)
	require.NoError(t, err)
	assert.Len(t, data, 11)

	_, err = storage.ReadObject(context.Background(), client, "staging", "missing.png", 10)
	assert.Error(t, err)
}

func TestStage(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "staging", "covers/a.png", mock.Anything, int64(3), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
		return opts.ContentType == "image/png"
	})).Return(minio.UploadInfo{}, nil)

	key, err := storage.Stage(context.Background(), client, "staging", "../covers/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "covers/a.png", key)
	client.AssertExpectations(t)

	_, err = storage.Stage(context.Background(), client, "staging", "/", []byte("png"), "image/png")
	assert.Error(t, err)
}

func TestListStaged(t *testing.T) {
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "a.png", Size: 10, ContentType: "image/png"}
	ch <- minio.ObjectInfo{Key: "b.jpg", Size: 20}
	close(ch)
	client.On("ListObjects", mock.Anything, "staging", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	objects, err := storage.ListStaged(context.Background(), client, "staging", "")
	require.NoError(t, err)
	assert.Equal(t, []storage.StagedObject{
		{Key: "a.png", Size: 10, ContentType: "image/png"},
		{Key: "b.jpg", Size: 20},
	}, objects)
}
