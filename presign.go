package objstore

import (
	"context"
	"net/http"
	"net/url"
	"time"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

// PresignGet returns a URL that lets anyone holding it download the
// object until expires elapses. Expiry must be between one second and
// seven days.
//
// Example:
//
//	u, err := client.PresignGet(ctx, "my-bucket", "report.pdf", 15*time.Minute)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("share this:", u)
func (c *Client) PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (*url.URL, error) {
	return c.presign(ctx, "presignGet", http.MethodGet, bucket, key, expires)
}

// PresignPut returns a URL that lets anyone holding it upload to the key
// until expires elapses. The upload must be a plain single PUT.
func (c *Client) PresignPut(ctx context.Context, bucket, key string, expires time.Duration) (*url.URL, error) {
	return c.presign(ctx, "presignPut", http.MethodPut, bucket, key, expires)
}

func (c *Client) presign(
	ctx context.Context,
	op, method, bucket, key string,
	expires time.Duration,
) (*url.URL, error) {
	if err := validateTarget(op, bucket, key); err != nil {
		return nil, err
	}

	signed, err := c.api.PresignURL(ctx, method, bucket, key, expires)
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return signed, nil
}
