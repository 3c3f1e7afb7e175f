package objstore

import (
	"context"
	"time"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// defaultMaxKeys is the page size used when no WithMaxKeys option is given.
// It matches the service-side maximum.
const defaultMaxKeys = 1000

// listAllBuffer is how many objects a ListAll stream holds before the
// producer blocks on the consumer.
const listAllBuffer = 100

// List returns a single page of objects.
//
// Returns:
//   - *ListResult: objects, collapsed prefixes, and the continuation token
//     for the next page when IsTruncated is true
//   - error: Returns an error if the list fails
//
// Errors:
//   - ErrInvalidInput: If bucket is empty
//   - ErrBucketNotFound: If the bucket doesn't exist
//
// Example:
//
//	result, err := client.List(ctx, "my-bucket",
//	    objstore.WithPrefix("logs/2026/"),
//	    objstore.WithDelimiter("/"),
//	)
//	for _, obj := range result.Objects {
//	    fmt.Println(obj.Key, obj.Size)
//	}
func (c *Client) List(ctx context.Context, bucket string, opts ...objtypes.ListOption) (*objtypes.ListResult, error) {
	const op = "list"
	if bucket == "" {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	config := &objtypes.ListOptionConfig{
		MaxKeys: defaultMaxKeys,
	}
	for _, opt := range opts {
		opt(config)
	}

	start := time.Now()
	out, err := c.api.ListObjectsV2(ctx, &rest.ListObjectsV2Input{
		Bucket:            bucket,
		Prefix:            config.Prefix,
		Delimiter:         config.Delimiter,
		MaxKeys:           config.MaxKeys,
		StartAfter:        config.StartAfter,
		ContinuationToken: config.ContinuationToken,
	})
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket)
	}

	result := &objtypes.ListResult{
		Objects:               make([]objtypes.Object, 0, len(out.Contents)),
		IsTruncated:           out.IsTruncated,
		NextContinuationToken: out.NextContinuationToken,
		Duration:              time.Since(start),
	}
	for _, entry := range out.Contents {
		result.Objects = append(result.Objects, objectFromEntry(entry))
	}
	for _, prefix := range out.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, prefix.Prefix)
	}
	return result, nil
}

// ListAll streams every object under a prefix, following continuation
// tokens until the listing is exhausted. The object channel closes on
// completion, cancellation, or error; the error channel is buffered and
// delivers at most one terminal error.
//
// Example:
//
//	objects, errc := client.ListAll(ctx, "my-bucket", "logs/")
//	for obj := range objects {
//	    fmt.Println(obj.Key)
//	}
//	if err := <-errc; err != nil {
//	    return err
//	}
func (c *Client) ListAll(ctx context.Context, bucket, prefix string) (<-chan objtypes.Object, <-chan error) {
	const op = "listAll"
	objects := make(chan objtypes.Object, listAllBuffer)
	errc := make(chan error, 1)

	if bucket == "" {
		errc <- objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
		close(objects)
		close(errc)
		return objects, errc
	}

	go func() {
		defer close(objects)
		defer close(errc)

		token := ""
		for {
			out, err := c.api.ListObjectsV2(ctx, &rest.ListObjectsV2Input{
				Bucket:            bucket,
				Prefix:            prefix,
				MaxKeys:           defaultMaxKeys,
				ContinuationToken: token,
			})
			if err != nil {
				errc <- objerrors.NewError(op, err).WithBucket(bucket)
				return
			}
			for _, entry := range out.Contents {
				select {
				case objects <- objectFromEntry(entry):
				case <-ctx.Done():
					errc <- objerrors.NewError(op, ctx.Err()).WithBucket(bucket)
					return
				}
			}
			if !out.IsTruncated || out.NextContinuationToken == "" {
				return
			}
			token = out.NextContinuationToken
		}
	}()

	return objects, errc
}

// ListBuckets returns every bucket the credentials can see.
func (c *Client) ListBuckets(ctx context.Context) ([]objtypes.BucketInfo, error) {
	entries, err := c.api.ListBuckets(ctx)
	if err != nil {
		return nil, objerrors.NewError("listBuckets", err)
	}

	buckets := make([]objtypes.BucketInfo, 0, len(entries))
	for _, entry := range entries {
		buckets = append(buckets, objtypes.BucketInfo{
			Name:      entry.Name,
			CreatedAt: entry.CreationDate,
		})
	}
	return buckets, nil
}

// objectFromEntry converts a wire listing entry to the public type.
func objectFromEntry(entry rest.ObjectEntry) objtypes.Object {
	storageClass := objtypes.StorageClass(entry.StorageClass)
	if storageClass == "" {
		storageClass = objtypes.StorageClassStandard
	}
	return objtypes.Object{
		Key:          entry.Key,
		Size:         entry.Size,
		LastModified: entry.LastModified,
		ETag:         rest.TrimETag(entry.ETag),
		StorageClass: storageClass,
	}
}
