package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{"simple", "my-bucket", false},
		{"with digits", "my-bucket123", false},
		{"with dots", "my.bucket", false},
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("a", 63), false},
		{"all digits is not an IP", "123456", false},

		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 64), true},
		{"uppercase", "MyBucket", true},
		{"underscore", "my_bucket", true},
		{"leading hyphen", "-bucket", true},
		{"trailing hyphen", "bucket-", true},
		{"leading dot", ".bucket", true},
		{"trailing dot", "bucket.", true},
		{"adjacent dots", "my..bucket", true},
		{"dot hyphen", "my.-bucket", true},
		{"hyphen dot", "my-.bucket", true},
		{"ip address", "192.168.1.1", true},
		{"xn prefix", "xn--bucket", true},
		{"sthree prefix", "sthree-bucket", true},
		{"s3alias suffix", "bucket-s3alias", true},
		{"ol-s3 suffix", "bucket--ol-s3", true},
		{"space", "my bucket", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"simple", "file.txt", false},
		{"nested", "path/to/file.txt", false},
		{"unicode", "docs/résumé.pdf", false},
		{"dots in name", "archive..tar.gz", false},
		{"trailing slash", "dir/", false},
		{"maximum length", strings.Repeat("k", 1024), false},

		{"empty", "", true},
		{"too long", strings.Repeat("k", 1025), true},
		{"leading slash", "/file.txt", true},
		{"traversal segment", "a/../b", true},
		{"leading traversal", "../file.txt", true},
		{"newline", "file\n.txt", true},
		{"null byte", "file\x00.txt", true},
		{"invalid utf8", "file\xff.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		wantErr  bool
	}{
		{"nil", nil, false},
		{"simple", map[string]string{"owner": "platform-team"}, false},
		{"tab in value", map[string]string{"note": "a\tb"}, false},
		{"long value at limit", map[string]string{"k": strings.Repeat("v", 2048)}, false},

		{"empty key", map[string]string{"": "value"}, true},
		{"key too long", map[string]string{strings.Repeat("k", 129): "value"}, true},
		{"aws prefix", map[string]string{"aws:anything": "value"}, true},
		{"amz prefix", map[string]string{"x-amz-meta": "value"}, true},
		{"amz prefix uppercase", map[string]string{"X-Amz-Meta": "value"}, true},
		{"key with space", map[string]string{"my key": "value"}, true},
		{"key with non-ascii", map[string]string{"clé": "value"}, true},
		{"value too long", map[string]string{"k": strings.Repeat("v", 2049)}, true},
		{"value with newline", map[string]string{"k": "a\nb"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.metadata)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"empty is allowed", "", false},
		{"plain", "text/plain", false},
		{"with parameter", "text/plain; charset=utf-8", false},
		{"vendor tree", "application/vnd.api+json", false},
		{"octet stream", "application/octet-stream", false},

		{"no slash", "textplain", true},
		{"leading slash", "/plain", true},
		{"trailing slash", "text/", true},
		{"spaces", "text / plain", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentType(tt.contentType)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
