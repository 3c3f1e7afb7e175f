package objstore

import (
	"context"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
)

// Copy duplicates an object server side. No data flows through the
// client; the service copies the bytes between keys directly.
//
// Errors:
//   - ErrInvalidInput: If either bucket is empty or either key is invalid
//   - ErrObjectNotFound: If the source object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission on either side
func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	const op = "copy"
	if err := validateTarget(op, srcBucket, srcKey); err != nil {
		return err
	}
	if err := validateTarget(op, dstBucket, dstKey); err != nil {
		return err
	}

	if _, err := c.api.CopyObject(ctx, &rest.CopyObjectInput{
		SourceBucket: srcBucket,
		SourceKey:    srcKey,
		Bucket:       dstBucket,
		Key:          dstKey,
	}); err != nil {
		return objerrors.NewError(op, err).WithBucket(dstBucket).WithKey(dstKey)
	}
	return nil
}

// Move copies an object server side and then deletes the source. The two
// steps are not atomic: if the delete fails the copy is left in place and
// the error says so, so callers can retry the cleanup.
func (c *Client) Move(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	const op = "move"
	if err := validateTarget(op, srcBucket, srcKey); err != nil {
		return err
	}
	if err := validateTarget(op, dstBucket, dstKey); err != nil {
		return err
	}

	if _, err := c.api.CopyObject(ctx, &rest.CopyObjectInput{
		SourceBucket: srcBucket,
		SourceKey:    srcKey,
		Bucket:       dstBucket,
		Key:          dstKey,
	}); err != nil {
		return objerrors.NewError(op, err).WithBucket(dstBucket).WithKey(dstKey)
	}

	if err := c.api.DeleteObject(ctx, srcBucket, srcKey); err != nil {
		return objerrors.NewError(op, err).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage("copy succeeded but the source could not be removed")
	}
	return nil
}
