package objstore

import (
	"context"
	"time"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// maxKeysPerBatch is the service-side limit on keys per delete request.
const maxKeysPerBatch = 1000

// Delete removes a single object. Deleting a key that does not exist is
// not an error; the service treats it as a successful no-op.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	const op = "delete"
	if err := validateTarget(op, bucket, key); err != nil {
		return err
	}

	if err := c.api.DeleteObject(ctx, bucket, key); err != nil {
		return objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return nil
}

// DeleteMany removes a set of objects in batches. Per-key failures do not
// stop the batch: every key that could not be removed is reported in
// DeleteResult.Errors while the successes appear in DeleteResult.Deleted.
//
// A request-level failure (network, auth) aborts the remaining batches;
// the returned result still holds the outcomes of the batches that ran.
//
// Returns:
//   - *DeleteResult: deleted keys and per-key failures
//   - error: Returns an error if a whole request fails
//
// Errors:
//   - ErrInvalidInput: If bucket is empty, keys is empty, or any key is
//     invalid
//   - ErrBucketNotFound: If the bucket doesn't exist
//
// Example:
//
//	result, err := client.DeleteMany(ctx, "my-bucket", keys)
//	if err != nil {
//	    return err
//	}
//	for _, failure := range result.Errors {
//	    log.Printf("could not delete %s: %s", failure.Key, failure.Message)
//	}
func (c *Client) DeleteMany(ctx context.Context, bucket string, keys []string) (*objtypes.DeleteResult, error) {
	const op = "deleteMany"
	if bucket == "" {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}
	if len(keys) == 0 {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("keys cannot be empty")
	}
	for _, key := range keys {
		if err := validation.ValidateObjectKey(key); err != nil {
			return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
				WithBucket(bucket).
				WithKey(key).
				WithMessage(err.Error())
		}
	}

	start := time.Now()
	result := &objtypes.DeleteResult{}
	for offset := 0; offset < len(keys); offset += maxKeysPerBatch {
		end := min(offset+maxKeysPerBatch, len(keys))
		out, err := c.api.DeleteObjects(ctx, bucket, keys[offset:end])
		if err != nil {
			result.Duration = time.Since(start)
			return result, objerrors.NewError(op, err).WithBucket(bucket)
		}
		for _, deleted := range out.Deleted {
			result.Deleted = append(result.Deleted, deleted.Key)
		}
		for _, failure := range out.Errors {
			result.Errors = append(result.Errors, objtypes.DeleteError{
				Key:     failure.Key,
				Code:    failure.Code,
				Message: failure.Message,
			})
		}
	}
	result.Duration = time.Since(start)

	c.logger.Debug("objstore.deleteMany.done",
		"bucket", bucket, "deleted", len(result.Deleted), "failed", len(result.Errors))
	return result, nil
}
