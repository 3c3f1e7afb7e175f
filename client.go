package objstore

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/retry"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/transfer/multipart"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// Version identifies this client in the User-Agent header.
const Version = "0.1.0"

const (
	defaultRegion      = "us-east-1"
	defaultConcurrency = 4
)

// Client is an S3-compatible object storage client. It is safe for
// concurrent use.
type Client struct {
	// api executes signed REST calls
	api *rest.Client

	// uploader runs single and multipart uploads
	uploader *multipart.Uploader

	region      string
	concurrency int
	partSize    int64
	logger      pslog.Logger

	// mu protects fs
	mu sync.RWMutex

	// fs backs file-based operations and the sync scanner
	fs fs.Filesystem
}

// New creates a Client with the provided options.
//
// Example:
//
//	client, err := objstore.New(
//	    objstore.WithRegion("us-west-2"),
//	    objstore.WithStaticCredentials(accessKey, secretKey, ""),
//	)
func New(opts ...objtypes.Option) (*Client, error) {
	cfg := &objtypes.ClientConfig{
		Concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}

	creds := cfg.Credentials
	if creds == nil {
		creds = credentials.NewChain(credentials.NewFromEnv())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}

	policy := retry.DefaultPolicy()
	switch {
	case cfg.RetryPolicy != nil:
		policy = retry.Policy{
			MaxAttempts:     cfg.RetryPolicy.MaxAttempts,
			InitialInterval: cfg.RetryPolicy.InitialInterval,
			MaxInterval:     cfg.RetryPolicy.MaxInterval,
			MaxElapsed:      cfg.RetryPolicy.MaxElapsed,
		}
	case cfg.MaxRetries > 0:
		policy.MaxAttempts = cfg.MaxRetries
	}

	var doer rest.Doer
	if cfg.HTTPClient != nil {
		doer = cfg.HTTPClient
	} else if cfg.Transport != nil || cfg.Timeout > 0 {
		transport := cfg.Transport
		if transport == nil {
			transport = rest.DefaultTransport()
		}
		doer = &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	api, err := rest.New(rest.Config{
		Endpoint:    endpoint,
		Region:      cfg.Region,
		PathStyle:   cfg.ForcePathStyle,
		Credentials: creds,
		HTTPClient:  doer,
		Retry:       policy,
		UserAgent:   fmt.Sprintf("objstore/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH),
		Logger:      logger,
	})
	if err != nil {
		return nil, objerrors.NewError("new", err)
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		api:         api,
		uploader:    multipart.New(api, cfg.Concurrency, logger),
		region:      cfg.Region,
		concurrency: cfg.Concurrency,
		partSize:    cfg.PartSize,
		logger:      logger,
		fs:          filesystem,
	}, nil
}

// SetFilesystem replaces the filesystem used for file-based operations.
// Useful for tests that run against an in-memory filesystem.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

func (c *Client) filesystem() fs.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

// validateTarget checks the bucket and key arguments shared by every
// object operation.
func validateTarget(op, bucket, key string) error {
	if bucket == "" {
		return objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	return nil
}
