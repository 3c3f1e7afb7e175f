// Package objtypes defines the shared types used by the objstore client.
// Keeping them in a dedicated package lets the root package and the internal
// packages exchange values without import cycles.
package objtypes

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
)

// StorageClass represents the storage tier for uploaded objects.
type StorageClass string

const (
	// StorageClassStandard is the default storage class.
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides lower redundancy at reduced cost.
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA is for infrequently accessed data.
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA stores data in a single availability zone.
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering automatically moves data between tiers.
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier is for long-term archival.
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive is the lowest-cost archival tier.
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"
)

// Object represents a stored object as reported by list operations.
type Object struct {
	// Key is the object's full key within its bucket
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last written
	LastModified time.Time

	// ETag is the entity tag without surrounding quotes
	ETag string

	// StorageClass is the object's storage tier
	StorageClass StorageClass
}

// BucketInfo describes a bucket returned by ListBuckets.
type BucketInfo struct {
	// Name is the bucket name
	Name string

	// CreatedAt is when the bucket was created
	CreatedAt time.Time
}

// ObjectMetadata holds the metadata of an object as returned by a stat call.
type ObjectMetadata struct {
	// Key is the object key
	Key string

	// Size is the object size in bytes
	Size int64

	// ContentType is the object's MIME type
	ContentType string

	// ETag is the entity tag without surrounding quotes
	ETag string

	// LastModified is when the object was last written
	LastModified time.Time

	// VersionID is set when the bucket has versioning enabled
	VersionID string

	// StorageClass is the object's storage tier
	StorageClass StorageClass

	// UserMetadata holds user-defined metadata with the wire prefix stripped
	UserMetadata map[string]string
}

// UploadResult contains the outcome of a completed write.
type UploadResult struct {
	// Bucket is the destination bucket
	Bucket string

	// Key is the destination object key
	Key string

	// ETag is the entity tag of the stored object, without quotes
	ETag string

	// VersionID is set when the bucket has versioning enabled
	VersionID string

	// Size is the number of bytes written
	Size int64

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadResult contains the outcome of a completed read.
type DownloadResult struct {
	// Bucket is the source bucket
	Bucket string

	// Key is the source object key
	Key string

	// Size is the number of bytes read
	Size int64

	// ContentType is the object's MIME type as reported by the server
	ContentType string

	// ETag is the entity tag without quotes
	ETag string

	// LastModified is when the object was last written
	LastModified time.Time

	// Duration is how long the download took
	Duration time.Duration
}

// DeleteResult contains the outcome of a batch delete.
type DeleteResult struct {
	// Deleted lists the keys that were removed
	Deleted []string

	// Errors lists per-key failures; a partially failed batch still
	// reports its successes in Deleted
	Errors []DeleteError

	// Duration is how long the delete took
	Duration time.Duration
}

// DeleteError describes a single failed deletion within a batch.
type DeleteError struct {
	// Key is the object key that failed to delete
	Key string

	// Code is the service error code
	Code string

	// Message is the service error message
	Message string
}

// ListResult contains one page of a list operation.
type ListResult struct {
	// Objects are the objects on this page
	Objects []Object

	// CommonPrefixes are the collapsed prefixes when a delimiter was set
	CommonPrefixes []string

	// IsTruncated reports whether more pages follow
	IsTruncated bool

	// NextContinuationToken requests the next page when IsTruncated is true
	NextContinuationToken string

	// Duration is how long the list call took
	Duration time.Duration
}

// LocalFile represents a file on the local filesystem during sync.
type LocalFile struct {
	// Path is the absolute local path
	Path string

	// Size is the file size in bytes
	Size int64

	// ModTime is the file's modification time
	ModTime time.Time

	// Checksum is the file's checksum, computed lazily
	Checksum string
}

// RemoteFile represents a stored object during sync comparison.
type RemoteFile struct {
	// Key is the object key
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last written
	LastModified time.Time

	// ETag is the entity tag without quotes
	ETag string
}

// SyncResult contains the results of a sync operation.
type SyncResult struct {
	// FilesUploaded is the number of files uploaded
	FilesUploaded int

	// FilesSkipped is the number of files skipped as unchanged
	FilesSkipped int

	// FilesDeleted is the number of remote objects deleted
	FilesDeleted int

	// BytesUploaded is the total bytes uploaded
	BytesUploaded int64

	// Errors contains any errors that occurred during sync
	Errors []SyncError

	// Duration is how long the sync took
	Duration time.Duration
}

// SyncError describes a failure for one path during sync.
type SyncError struct {
	// Path is the local path or remote key that failed
	Path string

	// Code categorizes the failure
	Code string

	// Message is the failure detail
	Message string
}

// ProgressTracker receives transfer progress callbacks. Implementations
// must be safe for concurrent use; uploads report from multiple workers.
type ProgressTracker interface {
	// Update is called as bytes are transferred. totalBytes is -1 when
	// the total is unknown.
	Update(bytesTransferred, totalBytes int64)

	// Complete is called once when the transfer finishes successfully.
	Complete()

	// Error is called once if the transfer fails.
	Error(err error)
}

// RangeSpec selects a byte range for a download. Length -1 reads from
// Offset to the end of the object.
type RangeSpec struct {
	Offset int64
	Length int64
}

// RetryPolicy tunes how failed requests are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per request
	MaxAttempts int

	// InitialInterval is the first backoff delay
	InitialInterval time.Duration

	// MaxInterval caps the delay between attempts
	MaxInterval time.Duration

	// MaxElapsed caps the total time spent on one request; zero means
	// no cap
	MaxElapsed time.Duration
}

// ClientConfig holds the client configuration assembled by options.
type ClientConfig struct {
	// Region is the signing region
	Region string

	// Endpoint is the service URL including scheme; empty selects the
	// regional AWS endpoint
	Endpoint string

	// Credentials supplies credential snapshots per operation
	Credentials credentials.Provider

	// MaxRetries caps attempts per request (total attempts, not re-tries)
	MaxRetries int

	// RetryPolicy overrides MaxRetries and the default backoff timing
	RetryPolicy *RetryPolicy

	// Timeout bounds a single HTTP round trip; zero means no timeout
	Timeout time.Duration

	// Concurrency is the default worker count for multipart uploads
	Concurrency int

	// PartSize is the default multipart part size in bytes
	PartSize int64

	// ForcePathStyle forces path-style addressing even on AWS endpoints
	ForcePathStyle bool

	// HTTPClient overrides the internally constructed client
	HTTPClient *http.Client

	// Transport overrides the transport of the internally constructed client
	Transport http.RoundTripper

	// Logger receives structured events; nil means no logging
	Logger pslog.Logger

	// Filesystem backs file-based operations and the sync scanner
	Filesystem fs.Filesystem
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType     string
	Metadata        map[string]string
	StorageClass    StorageClass
	PartSize        int64
	Concurrency     int
	ProgressTracker ProgressTracker
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	Range           *RangeSpec
	ProgressTracker ProgressTracker
}

// ListOptionConfig holds configuration for list operations via functional options.
type ListOptionConfig struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int32
	StartAfter        string
	ContinuationToken string
}

// BucketOptionConfig holds configuration for bucket operations via functional options.
type BucketOptionConfig struct {
	Region string
}

// SyncOptionConfig holds configuration for sync operations via functional options.
type SyncOptionConfig struct {
	IncludePatterns []string
	ExcludePatterns []string
	DeleteExtra     bool
	DryRun          bool
	ProgressTracker ProgressTracker
	Parallelism     int
	Comparator      string
}

type (
	// Option configures the client during construction.
	Option func(*ClientConfig)

	// UploadOption configures a single upload operation.
	UploadOption func(*UploadOptionConfig)

	// DownloadOption configures a single download operation.
	DownloadOption func(*DownloadOptionConfig)

	// ListOption configures a single list operation.
	ListOption func(*ListOptionConfig)

	// BucketOption configures a bucket operation.
	BucketOption func(*BucketOptionConfig)

	// SyncOption configures a sync operation.
	SyncOption func(*SyncOptionConfig)
)
