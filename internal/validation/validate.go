// Package validation centralizes input validation. Bucket names, object
// keys, metadata, and content types are checked before any request is
// built, so malformed input never reaches the wire.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

const (
	maxObjectKeyLength    = 1024
	maxMetadataKeyLength  = 128
	maxMetadataValueBytes = 2048
)

var (
	// Bucket names are DNS labels: 3 to 63 characters, lowercase letters,
	// digits, dots and hyphens, starting and ending with a letter or digit.
	bucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

	ipAddressRe = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

	mimeTypeRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.+-]*/[a-zA-Z0-9][a-zA-Z0-9.+-]*(\s*;.*)?$`)
)

// ValidateBucketName checks that a bucket name is usable with every
// S3-compatible service. Returns ErrInvalidBucketName when it is not.
func ValidateBucketName(bucket string) error {
	reason := bucketNameProblem(bucket)
	if reason == "" {
		return nil
	}
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(reason)
}

func bucketNameProblem(bucket string) string {
	switch {
	case strings.TrimSpace(bucket) == "":
		return "bucket name cannot be empty"
	case len(bucket) < 3 || len(bucket) > 63:
		return "bucket name must be between 3 and 63 characters long"
	case !bucketNameRe.MatchString(bucket):
		return "bucket name can only contain lowercase letters, digits, dots, and hyphens, and must start and end with a letter or digit"
	case strings.Contains(bucket, ".."), strings.Contains(bucket, ".-"), strings.Contains(bucket, "-."):
		return "bucket name cannot contain adjacent dots or dot-hyphen sequences"
	case ipAddressRe.MatchString(bucket):
		return "bucket name cannot be formatted as an IP address"
	case strings.HasPrefix(bucket, "xn--"), strings.HasPrefix(bucket, "sthree-"):
		return "bucket name cannot start with a reserved prefix"
	case strings.HasSuffix(bucket, "-s3alias"), strings.HasSuffix(bucket, "--ol-s3"):
		return "bucket name cannot end with a reserved suffix"
	}
	return ""
}

// ValidateObjectKey checks that an object key is non-empty, within the
// 1024-byte limit, valid UTF-8, and free of control characters and path
// traversal sequences.
func ValidateObjectKey(key string) error {
	reason := objectKeyProblem(key)
	if reason == "" {
		return nil
	}
	return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
		WithKey(key).
		WithMessage(reason)
}

func objectKeyProblem(key string) string {
	switch {
	case key == "":
		return "object key cannot be empty"
	case len(key) > maxObjectKeyLength:
		return fmt.Sprintf("object key cannot exceed %d bytes", maxObjectKeyLength)
	case !utf8.ValidString(key):
		return "object key must be valid UTF-8"
	case strings.HasPrefix(key, "/"):
		return "object key cannot start with a slash"
	case hasTraversalSegment(key):
		return "object key cannot contain path traversal sequences"
	case hasControlCharacters(key):
		return "object key cannot contain control characters"
	}
	return ""
}

// hasTraversalSegment reports whether any slash-separated segment of the
// key is "..". Dots inside names ("file..txt") are fine.
func hasTraversalSegment(key string) bool {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

func hasControlCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// ValidateMetadata checks user metadata keys and values. Keys must be
// printable ASCII, at most 128 characters, and not use reserved prefixes;
// values must be printable and at most 2048 bytes.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if reason := metadataKeyProblem(key); reason != "" {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).WithMessage(reason)
		}
		if reason := metadataValueProblem(value); reason != "" {
			return errors.NewError("validateMetadata", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("metadata %q: %s", key, reason))
		}
	}
	return nil
}

func metadataKeyProblem(key string) string {
	if key == "" {
		return "metadata key cannot be empty"
	}
	if len(key) > maxMetadataKeyLength {
		return fmt.Sprintf("metadata key cannot exceed %d characters", maxMetadataKeyLength)
	}
	lower := strings.ToLower(key)
	for _, prefix := range []string{"aws:", "x-amz-", "x-amz:"} {
		if strings.HasPrefix(lower, prefix) {
			return fmt.Sprintf("metadata key cannot start with reserved prefix %q", prefix)
		}
	}
	for _, r := range key {
		if r <= ' ' || r > '~' {
			return "metadata key can only contain printable ASCII characters without spaces"
		}
	}
	return ""
}

func metadataValueProblem(value string) string {
	if len(value) > maxMetadataValueBytes {
		return fmt.Sprintf("metadata value cannot exceed %d bytes", maxMetadataValueBytes)
	}
	for _, r := range value {
		if unicode.IsControl(r) && r != '\t' {
			return "metadata value cannot contain control characters"
		}
	}
	return ""
}

// ValidateContentType checks that a content type looks like a MIME type.
// An empty content type is allowed; the client picks a default.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return nil
	}
	if !mimeTypeRe.MatchString(contentType) {
		return errors.NewError("validateContentType", errors.ErrInvalidInput).
			WithMessage("content type must be a valid MIME type")
	}
	return nil
}
