package objstore

import (
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

func TestNewDefaults(t *testing.T) {
	client, err := New()
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", client.region)
	assert.Equal(t, defaultConcurrency, client.concurrency)
	assert.Zero(t, client.partSize, "part size defaults to automatic planning")
	assert.NotNil(t, client.api)
	assert.NotNil(t, client.uploader)
	assert.NotNil(t, client.fs)
}

func TestNewWithOptions(t *testing.T) {
	client, err := New(
		WithRegion("eu-west-1"),
		WithEndpoint("https://storage.example.com"),
		WithStaticCredentials("AKID", "SECRET", ""),
		WithConcurrency(8),
		WithPartSize(16*humanize.MiByte),
		WithForcePathStyle(true),
	)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", client.region)
	assert.Equal(t, 8, client.concurrency)
	assert.Equal(t, int64(16*humanize.MiByte), client.partSize)
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"missing scheme", "storage.example.com"},
		{"unsupported scheme", "ftp://storage.example.com"},
		{"unparseable", "http://bad url with spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithEndpoint(tt.endpoint))
			assert.Error(t, err)
		})
	}
}

func TestSetFilesystem(t *testing.T) {
	client, err := New()
	require.NoError(t, err)

	memfs := billy.NewInMemoryFS()
	client.SetFilesystem(memfs)
	assert.Equal(t, memfs, client.filesystem())
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, validateTarget("op", "bucket", "key"))

	err := validateTarget("op", "", "key")
	assert.ErrorIs(t, err, objerrors.ErrInvalidInput)

	err = validateTarget("op", "bucket", "")
	assert.ErrorIs(t, err, objerrors.ErrInvalidInput)

	err = validateTarget("op", "bucket", "../escape")
	assert.ErrorIs(t, err, objerrors.ErrInvalidInput)
}
