// Package objstore provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package objstore

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// WithRegion sets the signing region. Default is us-east-1.
func WithRegion(region string) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom service endpoint URL including the scheme.
// Use this for S3-compatible services or local testing. The default is
// the regional AWS endpoint over HTTPS.
func WithEndpoint(endpoint string) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithCredentials sets the credential provider. The default reads the
// standard AWS environment variables.
func WithCredentials(provider credentials.Provider) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Credentials = provider
	}
}

// WithStaticCredentials sets a fixed credential pair. sessionToken may be
// empty for long-lived credentials.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Credentials = credentials.NewStatic(accessKeyID, secretAccessKey, sessionToken)
	}
}

// WithAnonymousCredentials disables request signing for access to public
// resources.
func WithAnonymousCredentials() objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Credentials = credentials.NewAnonymous()
	}
}

// WithMaxRetries sets the total number of attempts per request, including
// the first. Default is 5. Values below one keep the default; use 1 to
// disable retries.
func WithMaxRetries(maxRetries int) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithRetryPolicy sets the full retry policy, overriding WithMaxRetries
// and the default backoff timing.
func WithRetryPolicy(policy objtypes.RetryPolicy) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.RetryPolicy = &policy
	}
}

// WithTimeout bounds each HTTP round trip including the body transfer.
// Default is no timeout. Prefer context deadlines for per-call limits.
func WithTimeout(timeout time.Duration) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default worker count for multipart transfers.
// Default is 4 concurrent part uploads.
func WithConcurrency(concurrency int) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartSize sets the default multipart part size in bytes. Must be
// between 5 MiB and 5 GiB. Default is automatic planning from the object
// size.
func WithPartSize(partSize int64) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted
// style. Required for S3-compatible services that do not support
// virtual hosting. Default is false.
func WithForcePathStyle(forcePathStyle bool) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithHTTPClient provides a custom HTTP client. This gives full control
// over transport behavior including proxies and TLS configuration. Note
// that a client following redirects will break region-mismatch reporting.
func WithHTTPClient(client *http.Client) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithTransport replaces the transport of the internally constructed HTTP
// client. Ignored when WithHTTPClient is also set.
func WithTransport(transport http.RoundTripper) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Transport = transport
	}
}

// WithLogger installs a structured logger. Default is a no-op logger.
func WithLogger(logger pslog.Logger) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets the filesystem used by UploadFile, DownloadFile and
// Sync. This allows in-memory filesystems for testing. Default is the OS
// filesystem.
func WithFilesystem(filesystem fs.Filesystem) objtypes.Option {
	return func(c *objtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithContentType sets the content type for an upload. When omitted the
// type is sniffed from the content, then guessed from the key extension.
func WithContentType(contentType string) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata attaches user-defined metadata to an upload.
func WithMetadata(metadata map[string]string) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string, len(metadata))
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithStorageClass sets the storage class for an upload.
func WithStorageClass(storageClass objtypes.StorageClass) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithProgress sets a progress tracker for an upload.
func WithProgress(tracker objtypes.ProgressTracker) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithUploadPartSize overrides the client's part size for one upload.
func WithUploadPartSize(partSize int64) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithUploadConcurrency overrides the client's worker count for one upload.
func WithUploadConcurrency(concurrency int) objtypes.UploadOption {
	return func(c *objtypes.UploadOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithRange requests a byte range of the object. length -1 reads from
// offset to the end.
func WithRange(offset, length int64) objtypes.DownloadOption {
	return func(c *objtypes.DownloadOptionConfig) {
		c.Range = &objtypes.RangeSpec{Offset: offset, Length: length}
	}
}

// WithDownloadProgress sets a progress tracker for a download.
func WithDownloadProgress(tracker objtypes.ProgressTracker) objtypes.DownloadOption {
	return func(c *objtypes.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithPrefix limits a listing to keys beginning with prefix.
func WithPrefix(prefix string) objtypes.ListOption {
	return func(c *objtypes.ListOptionConfig) {
		c.Prefix = prefix
	}
}

// WithDelimiter groups keys by the given delimiter, typically "/".
// Grouped keys are returned as common prefixes rather than objects.
func WithDelimiter(delimiter string) objtypes.ListOption {
	return func(c *objtypes.ListOptionConfig) {
		c.Delimiter = delimiter
	}
}

// WithMaxKeys caps the number of keys per page. The service enforces its
// own ceiling of 1000.
func WithMaxKeys(maxKeys int32) objtypes.ListOption {
	return func(c *objtypes.ListOptionConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithStartAfter starts the listing strictly after the given key.
func WithStartAfter(key string) objtypes.ListOption {
	return func(c *objtypes.ListOptionConfig) {
		c.StartAfter = key
	}
}

// WithContinuationToken resumes a listing from a previous page's token.
func WithContinuationToken(token string) objtypes.ListOption {
	return func(c *objtypes.ListOptionConfig) {
		c.ContinuationToken = token
	}
}

// WithBucketRegion places a new bucket in the given region instead of the
// client's region.
func WithBucketRegion(region string) objtypes.BucketOption {
	return func(c *objtypes.BucketOptionConfig) {
		c.Region = region
	}
}

// WithSyncInclude limits a sync to paths matching at least one pattern.
// Patterns support ** for crossing directory levels.
func WithSyncInclude(patterns ...string) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithSyncExclude skips paths matching any of the patterns.
func WithSyncExclude(patterns ...string) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}

// WithSyncDelete removes remote objects that have no local counterpart.
// Default is false.
func WithSyncDelete(deleteExtra bool) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.DeleteExtra = deleteExtra
	}
}

// WithSyncDryRun plans the sync without transferring or deleting anything.
func WithSyncDryRun(dryRun bool) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithSyncParallelism sets the number of concurrent sync transfers.
// Default is 5.
func WithSyncParallelism(parallelism int) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		if parallelism > 0 {
			c.Parallelism = parallelism
		}
	}
}

// WithSyncProgress sets a progress tracker for sync transfers.
func WithSyncProgress(tracker objtypes.ProgressTracker) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithSyncComparator selects how local files are compared against remote
// objects: "size", "mtime", "etag", or "full". Default is "full", which
// checks size first and falls back to checksum, then modification time.
func WithSyncComparator(comparator string) objtypes.SyncOption {
	return func(c *objtypes.SyncOptionConfig) {
		c.Comparator = comparator
	}
}
