package objstore_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/objstore"
	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

const testBucket = "test-bucket"

// newTestClient points a client at an in-memory service.
func newTestClient(t *testing.T, fake *testutil.FakeServer, opts ...objtypes.Option) *objstore.Client {
	t.Helper()
	opts = append([]objtypes.Option{
		objstore.WithEndpoint(fake.URL),
		objstore.WithRegion("us-east-1"),
		objstore.WithStaticCredentials("TESTKEY", "TESTSECRET", ""),
	}, opts...)

	client, err := objstore.New(opts...)
	require.NoError(t, err)
	return client
}

func TestPutGetRoundtrip(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, client.Put(ctx, testBucket, "greeting.txt", []byte("hello world")))

	data, err := client.Get(ctx, testBucket, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)
}

func TestGetMissingObject(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)

	_, err := client.Get(context.Background(), testBucket, "does/not/exist.txt")
	assert.ErrorIs(t, err, objerrors.ErrObjectNotFound)
}

func TestGetMissingBucket(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	client := newTestClient(t, fake)

	_, err := client.Get(context.Background(), "no-such-bucket", "key.txt")
	assert.ErrorIs(t, err, objerrors.ErrBucketNotFound)
}

func TestUploadMultipart(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)
	payload := testutil.Payload(12 * humanize.MiByte)

	result, err := client.Upload(context.Background(), testBucket, "large.bin",
		bytes.NewReader(payload), int64(len(payload)),
		objstore.WithUploadPartSize(5*humanize.MiByte),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), result.Size)
	assert.NotEmpty(t, result.ETag)
	assert.Equal(t, payload, fake.ObjectBytes(t, testBucket, "large.bin"))
}

func TestUploadUnknownLength(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)
	payload := testutil.Payload(64 * 1024)

	result, err := client.Upload(context.Background(), testBucket, "stream.bin",
		bytes.NewBuffer(payload), -1)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), result.Size)
	assert.Equal(t, payload, fake.ObjectBytes(t, testBucket, "stream.bin"))
}

func TestExists(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	fake.SeedObject(t, testBucket, "present.txt", []byte("here"))
	client := newTestClient(t, fake)
	ctx := context.Background()

	exists, err := client.Exists(ctx, testBucket, "present.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.Exists(ctx, testBucket, "absent.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetMetadata(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, client.Put(ctx, testBucket, "doc.txt", []byte("the content"),
		objstore.WithContentType("text/plain"),
		objstore.WithMetadata(map[string]string{"owner": "platform"}),
	))

	meta, err := client.GetMetadata(ctx, testBucket, "doc.txt")
	require.NoError(t, err)

	assert.Equal(t, "doc.txt", meta.Key)
	assert.Equal(t, int64(len("the content")), meta.Size)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.NotEmpty(t, meta.ETag)
	assert.Equal(t, "platform", meta.UserMetadata["Owner"])

	_, err = client.GetMetadata(ctx, testBucket, "absent.txt")
	assert.ErrorIs(t, err, objerrors.ErrObjectNotFound)
}

func TestList(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	for _, key := range []string{"logs/a.log", "logs/b.log", "data/c.bin"} {
		fake.SeedObject(t, testBucket, key, []byte(key))
	}
	client := newTestClient(t, fake)
	ctx := context.Background()

	t.Run("prefix", func(t *testing.T) {
		result, err := client.List(ctx, testBucket, objstore.WithPrefix("logs/"))
		require.NoError(t, err)

		require.Len(t, result.Objects, 2)
		assert.Equal(t, "logs/a.log", result.Objects[0].Key)
		assert.Equal(t, "logs/b.log", result.Objects[1].Key)
		assert.Equal(t, int64(len("logs/a.log")), result.Objects[0].Size)
		assert.False(t, result.IsTruncated)
	})

	t.Run("delimiter collapses prefixes", func(t *testing.T) {
		result, err := client.List(ctx, testBucket, objstore.WithDelimiter("/"))
		require.NoError(t, err)

		assert.Empty(t, result.Objects)
		assert.ElementsMatch(t, []string{"logs/", "data/"}, result.CommonPrefixes)
	})

	t.Run("pagination", func(t *testing.T) {
		first, err := client.List(ctx, testBucket, objstore.WithMaxKeys(2))
		require.NoError(t, err)
		require.Len(t, first.Objects, 2)
		require.True(t, first.IsTruncated)

		second, err := client.List(ctx, testBucket,
			objstore.WithMaxKeys(2),
			objstore.WithContinuationToken(first.NextContinuationToken),
		)
		require.NoError(t, err)
		assert.Len(t, second.Objects, 1)
		assert.False(t, second.IsTruncated)
	})
}

func TestListAll(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	for _, key := range []string{"x/1", "x/2", "y/3"} {
		fake.SeedObject(t, testBucket, key, []byte("v"))
	}
	client := newTestClient(t, fake)

	objects, errc := client.ListAll(context.Background(), testBucket, "x/")

	var keys []string
	for obj := range objects {
		keys = append(keys, obj.Key)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"x/1", "x/2"}, keys)
}

func TestListBuckets(t *testing.T) {
	fake := testutil.NewFakeServer(t, "alpha", "beta")
	client := newTestClient(t, fake)

	buckets, err := client.ListBuckets(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestDelete(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	fake.SeedObject(t, testBucket, "victim.txt", []byte("bye"))
	client := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, client.Delete(ctx, testBucket, "victim.txt"))
	assert.False(t, fake.ObjectExists(t, testBucket, "victim.txt"))

	assert.NoError(t, client.Delete(ctx, testBucket, "already-gone.txt"),
		"deleting a missing key is a no-op")
}

func TestDeleteMany(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	keys := []string{"batch/1", "batch/2", "batch/3"}
	for _, key := range keys {
		fake.SeedObject(t, testBucket, key, []byte("v"))
	}
	client := newTestClient(t, fake)

	result, err := client.DeleteMany(context.Background(), testBucket, keys)
	require.NoError(t, err)

	assert.ElementsMatch(t, keys, result.Deleted)
	assert.Empty(t, result.Errors)
	for _, key := range keys {
		assert.False(t, fake.ObjectExists(t, testBucket, key))
	}
}

func TestDeleteManyValidation(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)
	ctx := context.Background()

	_, err := client.DeleteMany(ctx, testBucket, nil)
	assert.ErrorIs(t, err, objerrors.ErrInvalidInput)

	_, err = client.DeleteMany(ctx, testBucket, []string{"ok", "../bad"})
	assert.ErrorIs(t, err, objerrors.ErrInvalidInput)
}

func TestCopy(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	fake.SeedObject(t, testBucket, "src.txt", []byte("copy me"))
	client := newTestClient(t, fake)

	require.NoError(t, client.Copy(context.Background(), testBucket, "src.txt", testBucket, "dst.txt"))

	assert.Equal(t, []byte("copy me"), fake.ObjectBytes(t, testBucket, "dst.txt"))
	assert.True(t, fake.ObjectExists(t, testBucket, "src.txt"), "copy leaves the source in place")
}

func TestMove(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	fake.SeedObject(t, testBucket, "src.txt", []byte("move me"))
	client := newTestClient(t, fake)

	require.NoError(t, client.Move(context.Background(), testBucket, "src.txt", testBucket, "dst.txt"))

	assert.Equal(t, []byte("move me"), fake.ObjectBytes(t, testBucket, "dst.txt"))
	assert.False(t, fake.ObjectExists(t, testBucket, "src.txt"))
}

func TestBucketLifecycle(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	client := newTestClient(t, fake)
	ctx := context.Background()

	exists, err := client.BucketExists(ctx, "fresh-bucket")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.CreateBucket(ctx, "fresh-bucket"))

	exists, err = client.BucketExists(ctx, "fresh-bucket")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, client.DeleteBucket(ctx, "fresh-bucket"))

	exists, err = client.BucketExists(ctx, "fresh-bucket")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownload(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	fake.SeedObject(t, testBucket, "digits.txt", []byte("0123456789"))
	client := newTestClient(t, fake)
	ctx := context.Background()

	t.Run("full object", func(t *testing.T) {
		var buf bytes.Buffer
		result, err := client.Download(ctx, testBucket, "digits.txt", &buf)
		require.NoError(t, err)

		assert.Equal(t, "0123456789", buf.String())
		assert.Equal(t, int64(10), result.Size)
	})

	t.Run("byte range", func(t *testing.T) {
		var buf bytes.Buffer
		result, err := client.Download(ctx, testBucket, "digits.txt", &buf,
			objstore.WithRange(2, 5))
		require.NoError(t, err)

		assert.Equal(t, "23456", buf.String())
		assert.Equal(t, int64(5), result.Size)
	})

	t.Run("open ended range", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := client.Download(ctx, testBucket, "digits.txt", &buf,
			objstore.WithRange(7, -1))
		require.NoError(t, err)

		assert.Equal(t, "789", buf.String())
	})
}

func TestUploadFileAndDownloadFile(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	memfs := billy.NewInMemoryFS()
	client := newTestClient(t, fake, objstore.WithFilesystem(memfs))
	ctx := context.Background()

	content := testutil.Payload(256 * 1024)
	require.NoError(t, memfs.MkdirAll("/data", 0o755))
	require.NoError(t, memfs.WriteFile("/data/report.bin", content, 0o644))

	result, err := client.UploadFile(ctx, testBucket, "reports/report.bin", "/data/report.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, content, fake.ObjectBytes(t, testBucket, "reports/report.bin"))

	_, err = client.DownloadFile(ctx, testBucket, "reports/report.bin", "/restore/report.bin")
	require.NoError(t, err)

	restored, err := memfs.ReadFile("/restore/report.bin")
	require.NoError(t, err)
	assert.Equal(t, content, restored)
}

func TestPresignGet(t *testing.T) {
	fake := testutil.NewFakeServer(t, testBucket)
	client := newTestClient(t, fake)

	u, err := client.PresignGet(context.Background(), testBucket, "doc.pdf", time.Hour)
	require.NoError(t, err)

	query := u.Query()
	assert.Equal(t, "AWS4-HMAC-SHA256", query.Get("X-Amz-Algorithm"))
	assert.Equal(t, "3600", query.Get("X-Amz-Expires"))
	assert.NotEmpty(t, query.Get("X-Amz-Signature"))
	assert.NotEmpty(t, query.Get("X-Amz-Credential"))
	assert.Contains(t, u.Path, "doc.pdf")
}
