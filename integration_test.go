//go:build integration
// +build integration

package objstore_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objstore"
	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/testutil"
)

// TestIntegrationLocalStack exercises the client against LocalStack,
// which validates SigV4 signatures for real. Run with -tags integration.
func TestIntegrationLocalStack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	stack := testutil.StartLocalStack(ctx, t)

	client, err := objstore.New(
		objstore.WithEndpoint(stack.Endpoint),
		objstore.WithRegion(stack.Region),
		objstore.WithStaticCredentials(stack.AccessKeyID, stack.SecretAccessKey, ""),
		objstore.WithForcePathStyle(true),
	)
	require.NoError(t, err)

	bucket := fmt.Sprintf("integration-%d", time.Now().UnixNano())
	require.NoError(t, client.CreateBucket(ctx, bucket))

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, bucket, "hello.txt", []byte("hello, localstack")))

		data, err := client.Get(ctx, bucket, "hello.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello, localstack"), data)
	})

	t.Run("multipart upload", func(t *testing.T) {
		payload := testutil.Payload(12 * humanize.MiByte)

		result, err := client.Upload(ctx, bucket, "large.bin",
			bytes.NewReader(payload), int64(len(payload)),
			objstore.WithUploadPartSize(5*humanize.MiByte),
		)
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), result.Size)

		data, err := client.Get(ctx, bucket, "large.bin")
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("ranged download", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, bucket, "digits.txt", []byte("0123456789")))

		var buf bytes.Buffer
		_, err := client.Download(ctx, bucket, "digits.txt", &buf,
			objstore.WithRange(2, 5))
		require.NoError(t, err)
		assert.Equal(t, "23456", buf.String())
	})

	t.Run("metadata round trip", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, bucket, "tagged.txt", []byte("v"),
			objstore.WithContentType("text/plain"),
			objstore.WithMetadata(map[string]string{"owner": "integration"}),
		))

		meta, err := client.GetMetadata(ctx, bucket, "tagged.txt")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", meta.ContentType)
		assert.Equal(t, "integration", meta.UserMetadata["Owner"])
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := client.Get(ctx, bucket, "never-written.txt")
		assert.ErrorIs(t, err, objerrors.ErrObjectNotFound)
	})

	t.Run("list with prefix", func(t *testing.T) {
		for i := range 3 {
			require.NoError(t, client.Put(ctx, bucket, fmt.Sprintf("listed/%d.txt", i), []byte("v")))
		}

		result, err := client.List(ctx, bucket, objstore.WithPrefix("listed/"))
		require.NoError(t, err)
		assert.Len(t, result.Objects, 3)
	})

	t.Run("presigned get", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, bucket, "signed.txt", []byte("presigned")))

		u, err := client.PresignGet(ctx, bucket, "signed.txt", time.Minute)
		require.NoError(t, err)

		resp, err := httpGet(ctx, u.String())
		require.NoError(t, err)
		assert.Equal(t, []byte("presigned"), resp)
	})
}

// httpGet fetches a URL without the client, the way a presigned URL is
// actually consumed.
func httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
