package objstore

import (
	"context"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// GetMetadata returns an object's metadata without downloading its body.
// User-defined metadata is returned with the wire prefix stripped.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or key is invalid
//   - ErrObjectNotFound: If the object doesn't exist
//   - ErrAccessDenied: If the credentials lack permission to stat
//
// Example:
//
//	meta, err := client.GetMetadata(ctx, "my-bucket", "docs/report.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s is %d bytes (%s)\n", meta.Key, meta.Size, meta.ContentType)
func (c *Client) GetMetadata(ctx context.Context, bucket, key string) (*objtypes.ObjectMetadata, error) {
	const op = "getMetadata"
	if err := validateTarget(op, bucket, key); err != nil {
		return nil, err
	}

	header, err := c.api.HeadObject(ctx, bucket, key)
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}

	storageClass := objtypes.StorageClass(header.Get("X-Amz-Storage-Class"))
	if storageClass == "" {
		// The service omits the header for the default tier.
		storageClass = objtypes.StorageClassStandard
	}

	return &objtypes.ObjectMetadata{
		Key:          key,
		Size:         rest.ParseContentLength(header),
		ContentType:  header.Get("Content-Type"),
		ETag:         rest.TrimETag(header.Get("ETag")),
		LastModified: rest.ParseLastModified(header),
		VersionID:    header.Get("X-Amz-Version-Id"),
		StorageClass: storageClass,
		UserMetadata: rest.UserMetadataFromHeader(header),
	}, nil
}

// Exists reports whether an object is present. A missing object is
// (false, nil); any other failure is returned as an error.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	const op = "exists"
	if err := validateTarget(op, bucket, key); err != nil {
		return false, err
	}

	if _, err := c.api.HeadObject(ctx, bucket, key); err != nil {
		if objerrors.IsObjectNotFound(err) || objerrors.IsBucketNotFound(err) {
			return false, nil
		}
		return false, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return true, nil
}
