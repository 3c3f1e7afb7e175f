package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// Download reads an object and streams it to an io.Writer. The body is
// copied through a fixed-size buffer, so memory use does not grow with
// object size.
//
// Returns:
//   - *DownloadResult: size, content type, ETag, and timing of the read
//   - error: Returns an error if the download fails
//
// Errors:
//   - ErrInvalidInput: If bucket is empty, key is invalid, or writer is nil
//   - ErrObjectNotFound: If the object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to read
//
// Example:
//
//	var buf bytes.Buffer
//	result, err := client.Download(ctx, "my-bucket", "data.bin", &buf,
//	    objstore.WithRange(0, 1024),
//	)
func (c *Client) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	opts ...objtypes.DownloadOption,
) (*objtypes.DownloadResult, error) {
	return c.download(ctx, "download", bucket, key, writer, opts)
}

// DownloadFile streams an object into a file on the configured
// filesystem. The object is written to a temporary sibling first and
// moved into place once the download completes, so readers never observe
// a partially written file. Parent directories are created as needed.
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, filePath string,
	opts ...objtypes.DownloadOption,
) (*objtypes.DownloadResult, error) {
	const op = "downloadFile"
	if err := validateTarget(op, bucket, key); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("path cannot be empty")
	}

	filesystem := c.filesystem()
	if dir := filepath.Dir(filePath); dir != "." && dir != "" {
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
		}
	}

	tmpPath := fmt.Sprintf("%s.%d.partial", filePath, time.Now().UnixNano())
	file, err := filesystem.Create(tmpPath)
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}

	result, err := c.download(ctx, op, bucket, key, file, opts)
	if err != nil {
		file.Close()
		_ = filesystem.Remove(tmpPath)
		return nil, err
	}
	if err := file.Close(); err != nil {
		_ = filesystem.Remove(tmpPath)
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	if err := renameFile(filesystem, tmpPath, filePath); err != nil {
		_ = filesystem.Remove(tmpPath)
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return result, nil
}

// Get reads an entire object into memory and returns it as a byte slice.
// Only use it for objects known to be small; large objects should go
// through Download or DownloadFile.
//
// Example:
//
//	data, err := client.Get(ctx, "my-bucket", "config.json")
//	if err != nil {
//	    return err
//	}
//	err = json.Unmarshal(data, &config)
func (c *Client) Get(ctx context.Context, bucket, key string, opts ...objtypes.DownloadOption) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.download(ctx, "get", bucket, key, &buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// download runs the shared validate-fetch-copy path under the given
// operation name.
func (c *Client) download(
	ctx context.Context,
	op, bucket, key string,
	writer io.Writer,
	opts []objtypes.DownloadOption,
) (*objtypes.DownloadResult, error) {
	if err := validateTarget(op, bucket, key); err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	config := &objtypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	byteRange, err := formatRange(config.Range)
	if err != nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	start := time.Now()
	c.logger.Trace("objstore.download.begin", "bucket", bucket, "key", key, "range", byteRange)

	resp, err := c.api.GetObject(ctx, bucket, key, byteRange)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	defer rest.DrainClose(resp.Body)

	var src io.Reader = resp.Body
	if config.ProgressTracker != nil {
		src = &progressReader{
			reader:  resp.Body,
			tracker: config.ProgressTracker,
			total:   rest.ParseContentLength(resp.Header),
		}
	}

	buf := pool.GetCopy()
	written, err := io.CopyBuffer(writer, src, *buf)
	pool.PutCopy(buf)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(written, written)
		config.ProgressTracker.Complete()
	}

	elapsed := time.Since(start)
	c.logger.Debug("objstore.download.success",
		"bucket", bucket, "key", key, "size", written, "elapsed", elapsed)

	return &objtypes.DownloadResult{
		Bucket:       bucket,
		Key:          key,
		Size:         written,
		ContentType:  resp.Header.Get("Content-Type"),
		ETag:         rest.TrimETag(resp.Header.Get("ETag")),
		LastModified: rest.ParseLastModified(resp.Header),
		Duration:     elapsed,
	}, nil
}

// formatRange renders a RangeSpec as an HTTP Range header value.
func formatRange(spec *objtypes.RangeSpec) (string, error) {
	if spec == nil {
		return "", nil
	}
	if spec.Offset < 0 {
		return "", fmt.Errorf("range offset cannot be negative")
	}
	switch {
	case spec.Length == -1:
		return fmt.Sprintf("bytes=%d-", spec.Offset), nil
	case spec.Length > 0:
		return fmt.Sprintf("bytes=%d-%d", spec.Offset, spec.Offset+spec.Length-1), nil
	default:
		return "", fmt.Errorf("range length must be -1 or positive")
	}
}

// renameFile moves a finished download into place. Filesystems backed by
// go-billy rename natively; anything else gets a streamed copy through
// the abstraction.
func renameFile(filesystem fs.Filesystem, from, to string) error {
	if raw, ok := filesystem.(interface{ Raw() billy.Filesystem }); ok {
		return raw.Raw().Rename(from, to)
	}

	src, err := filesystem.Open(from)
	if err != nil {
		return err
	}
	dst, err := filesystem.Create(to)
	if err != nil {
		src.Close()
		return err
	}
	buf := pool.GetCopy()
	_, err = io.CopyBuffer(dst, src, *buf)
	pool.PutCopy(buf)
	src.Close()
	if err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return filesystem.Remove(from)
}

// progressReader reports read progress to a tracker as bytes flow through.
type progressReader struct {
	reader  io.Reader
	tracker objtypes.ProgressTracker
	total   int64
	read    int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		pr.tracker.Update(pr.read, pr.total)
	}
	return n, err
}
