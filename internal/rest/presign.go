package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/signer"
)

// PresignURL returns a URL that authorizes one method on one object until
// expires elapses. The signature is computed over a snapshot of the
// current credentials, so a later rotation does not invalidate URLs
// already handed out.
func (c *Client) PresignURL(ctx context.Context, method, bucket, key string, expires time.Duration) (*url.URL, error) {
	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve credentials: %w", err)
	}

	target := c.targetURL(bucket, key, nil)
	req := &http.Request{
		Method: method,
		URL:    target,
		Host:   target.Host,
	}
	return signer.Presign(req, creds, c.region, expires, time.Now())
}
