package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
)

// ServiceError is a decoded error response from the storage service.
type ServiceError struct {
	// Code is the service error code (e.g., "NoSuchKey")
	Code string

	// Message is the human-readable detail from the service
	Message string

	// StatusCode is the HTTP status of the response
	StatusCode int

	// RequestID identifies the request on the service side
	RequestID string

	// HostID is the extended request identifier
	HostID string

	// Resource is the resource the error refers to
	Resource string

	// BucketRegion carries the x-amz-bucket-region hint on redirects
	BucketRegion string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("objstore: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("objstore: service error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient on the service side.
func (e *ServiceError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}
	switch e.Code {
	case "InternalError", "SlowDown", "RequestTimeout", "Throttling", "ThrottlingException":
		return true
	}
	return false
}

// Is maps well-known service codes onto the package sentinels so that
// errors.Is works across the wire boundary.
func (e *ServiceError) Is(target error) bool {
	s := e.sentinel()
	return s != nil && target == s
}

func (e *ServiceError) sentinel() error {
	switch e.Code {
	case "NoSuchKey":
		return ErrObjectNotFound
	case "NoSuchBucket":
		return ErrBucketNotFound
	case "AccessDenied":
		return ErrAccessDenied
	case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
		return ErrBucketAlreadyExists
	case "BucketNotEmpty":
		return ErrBucketNotEmpty
	case "SlowDown", "TooManyRequests":
		return ErrTooManyRequests
	case "InvalidRange":
		return ErrInvalidRange
	case "PreconditionFailed":
		return ErrPreconditionFailed
	case "MethodNotAllowed":
		return ErrMethodNotAllowed
	case "RequestTimeout":
		return ErrTimeout
	}
	if e.BucketRegion != "" {
		return ErrRegionMismatch
	}
	return nil
}

// AsServiceError extracts a ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	ok := errors.As(err, &se)
	return se, ok
}

// SigningError reports a request that could not be signed.
type SigningError struct {
	Reason string
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	return "objstore: signing: " + e.Reason
}

// NewSigningError creates a SigningError with the given reason.
func NewSigningError(reason string) *SigningError {
	return &SigningError{Reason: reason}
}

// InvalidSizeError reports a size that cannot be uploaded within the
// service limits, or an upload option that contradicts them.
type InvalidSizeError struct {
	// Size is the offending size in bytes, or -1 when not applicable
	Size int64

	// Reason explains which limit was violated
	Reason string
}

// Error implements the error interface.
func (e *InvalidSizeError) Error() string {
	if e.Size >= 0 {
		return fmt.Sprintf("objstore: invalid size %s: %s", humanize.IBytes(uint64(e.Size)), e.Reason)
	}
	return "objstore: invalid size: " + e.Reason
}

// NewInvalidSizeError creates an InvalidSizeError for the given size.
func NewInvalidSizeError(size int64, reason string) *InvalidSizeError {
	return &InvalidSizeError{Size: size, Reason: reason}
}

// IsInvalidSize reports whether the error chain contains an InvalidSizeError.
func IsInvalidSize(err error) bool {
	var ise *InvalidSizeError
	return errors.As(err, &ise)
}

// TransientError marks a transport failure that is safe to retry.
type TransientError struct {
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return "objstore: transient: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient reports whether the error chain contains a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// PartialUploadFailure reports a multipart upload that could not complete.
// Err is the failure that stopped the upload. AbortErr records a failed
// cleanup attempt; it is informational and never replaces Err.
type PartialUploadFailure struct {
	Bucket   string
	Key      string
	UploadID string
	Err      error
	AbortErr error
}

// Error implements the error interface.
func (e *PartialUploadFailure) Error() string {
	msg := fmt.Sprintf("objstore: multipart upload of %s/%s failed: %v", e.Bucket, e.Key, e.Err)
	if e.AbortErr != nil {
		msg += fmt.Sprintf("; abort of upload %s also failed: %v", e.UploadID, e.AbortErr)
	}
	return msg
}

// Unwrap returns the error that stopped the upload, never the abort error.
func (e *PartialUploadFailure) Unwrap() error {
	return e.Err
}
