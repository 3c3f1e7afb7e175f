package objstore

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/transfer/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// sniffLen is how many leading bytes content detection may inspect.
const sniffLen = 512

// Upload stores data from an io.Reader as an object. Content longer than
// one part is uploaded in concurrent parts; pass size -1 when the length
// is unknown and the content will be streamed with bounded buffering.
//
// Returns:
//   - *UploadResult: ETag, size, and timing of the stored object
//   - error: Returns an error if the upload fails
//
// Errors:
//   - ErrInvalidInput: If bucket is empty, key is invalid, or reader is nil
//   - ErrBucketNotFound: If the bucket doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to write
//   - PartialUploadFailure: If a multipart upload failed mid-flight
//
// Example:
//
//	file, err := os.Open("data.bin")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	info, _ := file.Stat()
//	result, err := client.Upload(ctx, "my-bucket", "data.bin", file, info.Size(),
//	    objstore.WithContentType("application/octet-stream"),
//	    objstore.WithStorageClass(objtypes.StorageClassStandardIA),
//	)
func (c *Client) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	opts ...objtypes.UploadOption,
) (*objtypes.UploadResult, error) {
	return c.upload(ctx, "upload", bucket, key, reader, size, opts)
}

// UploadFile uploads a file from the configured filesystem. The file is
// read with positioned reads, so large files never pass through a shared
// cursor and no part is buffered in memory.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty, key is invalid, or path is
//     empty or a directory
//   - Filesystem errors if the file cannot be read
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, key, filePath string,
	opts ...objtypes.UploadOption,
) (*objtypes.UploadResult, error) {
	const op = "uploadFile"
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
	info, err := filesystem.Stat(filePath)
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("path points to a directory, not a file")
	}

	file, err := filesystem.Open(filePath)
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	return c.upload(ctx, op, bucket, key, file, info.Size(), opts)
}

// Put stores a byte slice as an object. Convenience wrapper for small
// payloads that already live in memory.
//
// Example:
//
//	data := []byte(`{"config": "value"}`)
//	err := client.Put(ctx, "my-bucket", "config.json", data,
//	    objstore.WithContentType("application/json"),
//	)
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte, opts ...objtypes.UploadOption) error {
	_, err := c.upload(ctx, "put", bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	return err
}

// AbortUpload discards an in-progress multipart upload by its ID. Use it
// to clean up sessions left behind by a crashed process when the bucket
// has no lifecycle rule for incomplete uploads.
func (c *Client) AbortUpload(ctx context.Context, bucket, key, uploadID string) error {
	const op = "abortUpload"
	if err := validateTarget(op, bucket, key); err != nil {
		return err
	}
	if uploadID == "" {
		return objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("upload ID cannot be empty")
	}

	if err := c.api.AbortMultipartUpload(ctx, bucket, key, uploadID); err != nil {
		return objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return nil
}

// upload runs the shared validate-configure-transfer path under the given
// operation name.
func (c *Client) upload(
	ctx context.Context,
	op, bucket, key string,
	reader io.Reader,
	size int64,
	opts []objtypes.UploadOption,
) (*objtypes.UploadResult, error) {
	if err := validateTarget(op, bucket, key); err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("reader cannot be nil")
	}
	if size < -1 {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("size must be -1 for unknown or non-negative")
	}

	config := &objtypes.UploadOptionConfig{
		PartSize:    c.partSize,
		Concurrency: c.concurrency,
	}
	for _, opt := range opts {
		opt(config)
	}
	if err := validation.ValidateMetadata(config.Metadata); err != nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if config.ContentType == "" {
		config.ContentType = detectContentType(reader, key)
	}

	start := time.Now()
	c.logger.Trace("objstore.upload.begin",
		"bucket", bucket, "key", key, "size", size, "content_type", config.ContentType)

	result, err := c.uploader.Upload(ctx, &multipart.Input{
		Bucket:       bucket,
		Key:          key,
		Body:         reader,
		Size:         size,
		PartSize:     config.PartSize,
		Concurrency:  config.Concurrency,
		ContentType:  config.ContentType,
		Metadata:     config.Metadata,
		StorageClass: string(config.StorageClass),
		Progress:     config.ProgressTracker,
	})
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}

	elapsed := time.Since(start)
	c.logger.Debug("objstore.upload.success",
		"bucket", bucket, "key", key, "size", result.Size, "parts", result.Parts, "elapsed", elapsed)

	return &objtypes.UploadResult{
		Bucket:    bucket,
		Key:       key,
		ETag:      rest.TrimETag(result.ETag),
		VersionID: result.VersionID,
		Size:      result.Size,
		Duration:  elapsed,
	}, nil
}

// detectContentType sniffs the content when the source allows lookahead
// and falls back to the key's extension.
func detectContentType(reader io.Reader, key string) string {
	if ct := sniffContentType(reader); ct != "" && ct != DefaultContentType {
		return ct
	}
	return contentTypeFromExtension(key)
}

// sniffContentType inspects the leading bytes of sources that can be read
// without consuming them. It returns "" for plain readers.
func sniffContentType(reader io.Reader) string {
	buf := make([]byte, sniffLen)
	var n int
	switch src := reader.(type) {
	case io.ReaderAt:
		n, _ = src.ReadAt(buf, 0)
	case io.ReadSeeker:
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return ""
		}
		n, _ = io.ReadFull(src, buf)
		if _, err := src.Seek(pos, io.SeekStart); err != nil {
			return ""
		}
	default:
		return ""
	}
	if n == 0 {
		return ""
	}
	return mimetype.Detect(buf[:n]).String()
}

func contentTypeFromExtension(key string) string {
	ext := path.Ext(key)
	if ext == "" {
		return DefaultContentType
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return DefaultContentType
}
