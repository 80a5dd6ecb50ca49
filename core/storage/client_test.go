package storage_test

import (
	"testing"

	"cover-manager/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"bare host", "localhost:9000", false, "localhost:9000", false},
		{"bare host with ssl", "s3.example.org", true, "s3.example.org", true},
		{"http scheme", "http://localhost:9000/", false, "localhost:9000", false},
		{"https forces tls", "https://s3.example.org", false, "s3.example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, secure := storage.Endpoint(tt.raw, tt.useSSL)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{})
		assert.ErrorIs(t, err, storage.ErrDisabled)
		assert.Nil(t, client)
	})

	t.Run("ValidConfig", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "cover-staging",
			Region:    "us-east-1",
		})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}
