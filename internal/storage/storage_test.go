package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbridge/internal/config"
)

func TestNewMinIO(t *testing.T) {
	ctx := context.Background()
	valid := config.MinIOConfig{
		Endpoint:  "storage.example.net",
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "ru-central1",
		Bucket:    "docs",
		UseSSL:    true,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.MinIOConfig)
		wantErr string
	}{
		{name: "valid without bucket check", mutate: func(c *config.MinIOConfig) {}},
		{
			name:    "missing endpoint",
			mutate:  func(c *config.MinIOConfig) { c.Endpoint = "" },
			wantErr: "minio endpoint is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *config.MinIOConfig) { c.SecretKey = "" },
			wantErr: "minio credentials are required",
		},
		{
			name:    "missing bucket",
			mutate:  func(c *config.MinIOConfig) { c.Bucket = "" },
			wantErr: "minio bucket is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			store, err := NewMinIO(ctx, cfg)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, store)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, store)
		})
	}
}

func TestNewGCSWithClient(t *testing.T) {
	store, err := NewGCSWithClient(nil, "docs")
	assert.Error(t, err)
	assert.Nil(t, store)

	_, err = NewGCS(context.Background(), config.GCSConfig{})
	assert.EqualError(t, err, "gcs bucket is required")
}
