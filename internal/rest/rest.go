// Package rest speaks the S3 REST protocol over net/http. Every call the
// client makes flows through Execute, so signing, integrity headers,
// retries, logging, and error decoding happen in exactly one place.
package rest

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/retry"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/signer"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config assembles a Client.
type Config struct {
	// Endpoint is the service URL including scheme
	Endpoint string

	// Region is the signing region
	Region string

	// PathStyle forces path-style addressing
	PathStyle bool

	// Credentials supplies credential snapshots
	Credentials credentials.Provider

	// HTTPClient executes requests
	HTTPClient Doer

	// Retry bounds attempts per request
	Retry retry.Policy

	// UserAgent is sent with every request
	UserAgent string

	// Logger receives structured events
	Logger pslog.Logger
}

// Client executes signed S3 REST requests with retries.
type Client struct {
	endpoint  *url.URL
	region    string
	pathStyle bool
	secure    bool
	creds     credentials.Provider
	httpc     Doer
	policy    retry.Policy
	userAgent string
	logger    pslog.Logger
}

// New creates a Client from cfg. The endpoint must carry an http or https
// scheme; the scheme decides how request payloads are protected.
func New(cfg Config) (*Client, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme must be http or https, got %q", endpoint.Scheme)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", cfg.Endpoint)
	}
	if cfg.Credentials == nil {
		cfg.Credentials = credentials.NewAnonymous()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Transport: DefaultTransport(),
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Client{
		endpoint:  endpoint,
		region:    cfg.Region,
		pathStyle: cfg.PathStyle,
		secure:    endpoint.Scheme == "https",
		creds:     cfg.Credentials,
		httpc:     cfg.HTTPClient,
		policy:    cfg.Retry,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

// Region returns the signing region.
func (c *Client) Region() string {
	return c.region
}

// Secure reports whether the endpoint uses TLS.
func (c *Client) Secure() bool {
	return c.secure
}

// Request describes one S3 REST call before signing. Bodies must be
// seekable so every retry can rewind and re-sign from a clean state.
type Request struct {
	// Method is the HTTP method
	Method string

	// Bucket is empty for service-level calls
	Bucket string

	// Key is empty for bucket- and service-level calls
	Key string

	// Query holds the sub-resource and pagination parameters
	Query url.Values

	// Header holds extra headers to send and sign
	Header http.Header

	// Body is the request payload, nil when there is none
	Body io.ReadSeeker

	// ContentLength is the body length in bytes
	ContentLength int64

	// PayloadHash overrides the computed content hash when set
	PayloadHash string

	// ContentMD5 overrides the computed Content-MD5 when set
	ContentMD5 string
}

// Execute sends the request, retrying transient failures under the
// client's policy. Every attempt rebuilds and re-signs the request with a
// fresh timestamp and a rewound body. On success the caller owns the
// response body; error responses are fully consumed and decoded.
func (c *Client) Execute(ctx context.Context, r *Request) (*http.Response, error) {
	if err := c.prepareIntegrity(r); err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Trace("rest.execute.begin",
		"method", r.Method, "bucket", r.Bucket, "key", r.Key)

	op := func() (*http.Response, error) {
		req, err := c.buildHTTPRequest(ctx, r)
		if err != nil {
			return nil, retry.Permanent(err)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			if retry.IsTransient(err) {
				c.logger.Debug("rest.execute.transient",
					"method", r.Method, "bucket", r.Bucket, "key", r.Key, "error", err)
				return nil, errors.NewTransientError(err)
			}
			return nil, retry.Permanent(err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		svcErr := c.decodeErrorResponse(r, resp)
		if svcErr.Retryable() {
			c.logger.Debug("rest.execute.retryable_status",
				"method", r.Method, "bucket", r.Bucket, "key", r.Key,
				"status", resp.StatusCode, "code", svcErr.Code)
			return nil, svcErr
		}
		return nil, retry.Permanent(svcErr)
	}

	resp, err := retry.Do(ctx, c.policy, op)
	if err != nil {
		c.logger.Debug("rest.execute.error",
			"method", r.Method, "bucket", r.Bucket, "key", r.Key, "error", err)
		return nil, err
	}

	c.logger.Trace("rest.execute.success",
		"method", r.Method, "bucket", r.Bucket, "key", r.Key,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

// prepareIntegrity resolves the payload hash and Content-MD5 once per
// logical request. Over TLS the payload stays unsigned and a Content-MD5
// protects it; over plain HTTP the signature covers the body's SHA-256.
func (c *Client) prepareIntegrity(r *Request) error {
	if r.PayloadHash != "" {
		return nil
	}
	if r.Body == nil {
		r.PayloadHash = signer.EmptyPayloadHash
		return nil
	}
	if c.secure {
		r.PayloadHash = signer.UnsignedPayload
		if r.ContentMD5 == "" {
			sum, err := md5Base64(r.Body)
			if err != nil {
				return fmt.Errorf("hash request body: %w", err)
			}
			r.ContentMD5 = sum
		}
		return nil
	}
	sum, err := sha256Hex(r.Body)
	if err != nil {
		return fmt.Errorf("hash request body: %w", err)
	}
	r.PayloadHash = sum
	return nil
}

func (c *Client) buildHTTPRequest(ctx context.Context, r *Request) (*http.Request, error) {
	target := c.targetURL(r.Bucket, r.Key, r.Query)

	var body io.Reader
	if r.Body != nil {
		if _, err := r.Body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		body = r.Body
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if r.Body != nil {
		req.ContentLength = r.ContentLength
	}

	for name, values := range r.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if r.ContentMD5 != "" {
		req.Header.Set("Content-MD5", r.ContentMD5)
	}

	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve credentials: %w", err)
	}
	if err := signer.Sign(req, creds, c.region, r.PayloadHash, time.Now()); err != nil {
		return nil, err
	}
	return req, nil
}

// targetURL builds the request URL. Buckets get virtual-host addressing on
// AWS endpoints when their names are DNS-safe; everything else, and any
// client with path style forced, uses path-style addressing. The path and
// query are placed on the wire in exactly the canonical encoding the
// signature was computed over.
func (c *Client) targetURL(bucket, key string, query url.Values) *url.URL {
	target := *c.endpoint

	path := "/"
	if bucket != "" {
		if c.virtualHostable(bucket) {
			target.Host = bucket + "." + c.endpoint.Host
			if key != "" {
				path = "/" + key
			}
		} else {
			path = "/" + bucket
			if key != "" {
				path += "/" + key
			}
		}
	}

	target.Path = path
	target.RawPath = signer.URIEncode(path, false)
	target.RawQuery = signer.CanonicalQuery(query)
	return &target
}

func (c *Client) virtualHostable(bucket string) bool {
	if c.pathStyle {
		return false
	}
	if !strings.HasSuffix(c.endpoint.Hostname(), ".amazonaws.com") {
		return false
	}
	// Dotted bucket names break TLS wildcard certificates.
	return !strings.Contains(bucket, ".")
}

func md5Base64(body io.ReadSeeker) (string, error) {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hasher := md5.New()
	if _, err := io.Copy(hasher, body); err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}

func sha256Hex(body io.ReadSeeker) (string, error) {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hasher := sha256.New()
	if _, err := io.Copy(hasher, body); err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
