// Package testutil provides the in-memory service, data builders, and
// trackers shared by the package tests.
package testutil

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/require"
)

// FakeServer is an in-memory S3-compatible service backed by gofakes3.
// It accepts any credentials, so tests can use static placeholders.
type FakeServer struct {
	// URL is the http endpoint tests should point their client at.
	URL string

	backend *s3mem.Backend
}

// NewFakeServer starts an in-memory service, creates the named buckets,
// and shuts everything down when the test ends.
func NewFakeServer(t *testing.T, buckets ...string) *FakeServer {
	t.Helper()

	backend := s3mem.New()
	server := httptest.NewServer(gofakes3.New(backend).Server())
	t.Cleanup(server.Close)

	fake := &FakeServer{
		URL:     server.URL,
		backend: backend,
	}
	for _, bucket := range buckets {
		fake.CreateBucket(t, bucket)
	}
	return fake
}

// CreateBucket creates a bucket directly in the backend.
func (f *FakeServer) CreateBucket(t *testing.T, bucket string) {
	t.Helper()
	require.NoError(t, f.backend.CreateBucket(bucket))
}

// SeedObject stores an object directly in the backend, bypassing the
// client under test.
func (f *FakeServer) SeedObject(t *testing.T, bucket, key string, body []byte) {
	t.Helper()
	_, err := f.backend.PutObject(bucket, key, nil, bytes.NewReader(body), int64(len(body)), nil)
	require.NoError(t, err)
}

// ObjectBytes reads an object's content directly from the backend.
func (f *FakeServer) ObjectBytes(t *testing.T, bucket, key string) []byte {
	t.Helper()
	obj, err := f.backend.GetObject(bucket, key, nil)
	require.NoError(t, err)
	defer obj.Contents.Close()

	data, err := io.ReadAll(obj.Contents)
	require.NoError(t, err)
	return data
}

// ObjectExists reports whether the backend holds the object.
func (f *FakeServer) ObjectExists(t *testing.T, bucket, key string) bool {
	t.Helper()
	obj, err := f.backend.HeadObject(bucket, key)
	if err != nil {
		return false
	}
	return obj != nil
}
