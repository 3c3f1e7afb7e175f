package objstore

import (
	"context"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// CreateBucket creates a bucket. The bucket is placed in the client's
// region unless WithBucketRegion overrides it.
//
// Errors:
//   - ErrInvalidInput: If the bucket name is not a valid bucket name
//   - ErrBucketAlreadyExists: If the name is taken
//   - ErrAccessDenied: If the credentials lack permission to create buckets
func (c *Client) CreateBucket(ctx context.Context, bucket string, opts ...objtypes.BucketOption) error {
	const op = "createBucket"
	if err := validation.ValidateBucketName(bucket); err != nil {
		return objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	config := &objtypes.BucketOptionConfig{
		Region: c.region,
	}
	for _, opt := range opts {
		opt(config)
	}

	if err := c.api.CreateBucket(ctx, bucket, config.Region); err != nil {
		return objerrors.NewError(op, err).WithBucket(bucket)
	}
	return nil
}

// DeleteBucket removes an empty bucket.
//
// Errors:
//   - ErrBucketNotFound: If the bucket doesn't exist
//   - ErrBucketNotEmpty: If the bucket still contains objects
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	const op = "deleteBucket"
	if bucket == "" {
		return objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	if err := c.api.DeleteBucket(ctx, bucket); err != nil {
		return objerrors.NewError(op, err).WithBucket(bucket)
	}
	return nil
}

// BucketExists reports whether a bucket is present and accessible. A
// missing bucket is (false, nil); any other failure is returned as an
// error.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	const op = "bucketExists"
	if bucket == "" {
		return false, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	if err := c.api.HeadBucket(ctx, bucket); err != nil {
		if objerrors.IsBucketNotFound(err) || objerrors.IsObjectNotFound(err) {
			return false, nil
		}
		return false, objerrors.NewError(op, err).WithBucket(bucket)
	}
	return true, nil
}
