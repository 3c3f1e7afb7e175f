package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"bucket and key",
			NewObjectError("upload", "media", "photos/cat.jpg", cause),
			"objstore.upload media/photos/cat.jpg: connection refused",
		},
		{
			"bucket only",
			NewBucketError("createBucket", "media", cause),
			"objstore.createBucket bucket media: connection refused",
		},
		{
			"key only",
			NewError("download", cause).WithKey("photos/cat.jpg"),
			"objstore.download object photos/cat.jpg: connection refused",
		},
		{
			"operation only",
			NewError("listBuckets", cause),
			"objstore.listBuckets: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestErrorWithMessage(t *testing.T) {
	err := NewError("upload", ErrInvalidInput).WithMessage("part size too small")

	assert.Contains(t, err.Error(), "part size too small")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceErrorSentinels(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{"NoSuchKey", ErrObjectNotFound},
		{"NoSuchBucket", ErrBucketNotFound},
		{"AccessDenied", ErrAccessDenied},
		{"BucketAlreadyExists", ErrBucketAlreadyExists},
		{"BucketAlreadyOwnedByYou", ErrBucketAlreadyExists},
		{"BucketNotEmpty", ErrBucketNotEmpty},
		{"SlowDown", ErrTooManyRequests},
		{"InvalidRange", ErrInvalidRange},
		{"PreconditionFailed", ErrPreconditionFailed},
		{"MethodNotAllowed", ErrMethodNotAllowed},
		{"RequestTimeout", ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &ServiceError{Code: tt.code, StatusCode: 400}
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}

	t.Run("unknown code maps to nothing", func(t *testing.T) {
		err := &ServiceError{Code: "SomethingNew", StatusCode: 400}
		assert.NotErrorIs(t, err, ErrObjectNotFound)
		assert.NotErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("bucket region hint means region mismatch", func(t *testing.T) {
		err := &ServiceError{Code: "PermanentRedirect", StatusCode: 301, BucketRegion: "eu-west-1"}
		assert.ErrorIs(t, err, ErrRegionMismatch)
	})

	t.Run("wrapped through operation error", func(t *testing.T) {
		inner := &ServiceError{Code: "NoSuchKey", StatusCode: 404}
		err := NewObjectError("download", "media", "missing.txt", inner)

		assert.ErrorIs(t, err, ErrObjectNotFound)
		assert.True(t, IsObjectNotFound(err))

		se, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "NoSuchKey", se.Code)
	})
}

func TestServiceErrorRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		want bool
	}{
		{"internal error status", &ServiceError{StatusCode: 500}, true},
		{"bad gateway", &ServiceError{StatusCode: 502}, true},
		{"service unavailable", &ServiceError{StatusCode: 503}, true},
		{"gateway timeout", &ServiceError{StatusCode: 504}, true},
		{"too many requests", &ServiceError{StatusCode: 429}, true},
		{"request timeout", &ServiceError{StatusCode: 408}, true},
		{"slow down code", &ServiceError{Code: "SlowDown", StatusCode: 400}, true},
		{"throttling code", &ServiceError{Code: "Throttling", StatusCode: 400}, true},
		{"access denied", &ServiceError{Code: "AccessDenied", StatusCode: 403}, false},
		{"not found", &ServiceError{Code: "NoSuchKey", StatusCode: 404}, false},
		{"bad request", &ServiceError{StatusCode: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Retryable())
		})
	}
}

func TestInvalidSizeError(t *testing.T) {
	t.Run("humanized size", func(t *testing.T) {
		err := NewInvalidSizeError(6*1024*1024*1024, "part exceeds the 5 GiB maximum")
		assert.Equal(t, "objstore: invalid size 6.0 GiB: part exceeds the 5 GiB maximum", err.Error())
	})

	t.Run("size not applicable", func(t *testing.T) {
		err := NewInvalidSizeError(-1, "stream exceeds the part count limit")
		assert.Equal(t, "objstore: invalid size: stream exceeds the part count limit", err.Error())
	})

	t.Run("detected through a chain", func(t *testing.T) {
		err := fmt.Errorf("plan: %w", NewInvalidSizeError(0, "reason"))
		assert.True(t, IsInvalidSize(err))
		assert.False(t, IsInvalidSize(errors.New("other")))
	})
}

func TestTransientError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := NewTransientError(cause)

	assert.True(t, IsTransient(err))
	assert.True(t, IsTransient(fmt.Errorf("request: %w", err)))
	assert.False(t, IsTransient(cause))
	assert.ErrorIs(t, err, cause)
}

func TestPartialUploadFailure(t *testing.T) {
	cause := &ServiceError{Code: "InternalError", Message: "we broke", StatusCode: 500}

	t.Run("abort succeeded", func(t *testing.T) {
		err := &PartialUploadFailure{
			Bucket:   "media",
			Key:      "big.bin",
			UploadID: "upload-1",
			Err:      cause,
		}

		assert.ErrorIs(t, err, cause, "unwraps to the cause")
		assert.NotContains(t, err.Error(), "abort")
	})

	t.Run("abort failed too", func(t *testing.T) {
		err := &PartialUploadFailure{
			Bucket:   "media",
			Key:      "big.bin",
			UploadID: "upload-1",
			Err:      cause,
			AbortErr: errors.New("abort timed out"),
		}

		assert.ErrorIs(t, err, cause, "the abort failure never masks the cause")
		assert.NotErrorIs(t, err, err.AbortErr)
		assert.Contains(t, err.Error(), "upload-1")
		assert.Contains(t, err.Error(), "abort timed out")
	})
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("key cannot be empty")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "key cannot be empty")
}
