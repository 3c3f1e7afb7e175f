package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const userMetadataPrefix = "X-Amz-Meta-"

// standardHeaders pass through without the user-metadata prefix.
var standardHeaders = map[string]bool{
	"cache-control":       true,
	"content-disposition": true,
	"content-encoding":    true,
	"content-language":    true,
	"content-type":        true,
	"expires":             true,
}

// ApplyUserMetadata writes user metadata onto request headers. Standard
// content headers and x-amz- headers pass through as-is; everything else
// gets the user-metadata prefix.
func ApplyUserMetadata(header http.Header, metadata map[string]string) {
	for key, value := range metadata {
		lower := strings.ToLower(key)
		switch {
		case standardHeaders[lower]:
			header.Set(key, value)
		case strings.HasPrefix(lower, "x-amz-"):
			header.Set(key, value)
		default:
			header.Set(userMetadataPrefix+key, value)
		}
	}
}

// UserMetadataFromHeader extracts user metadata from response headers,
// stripping the prefix. Returns nil when the object carries none.
func UserMetadataFromHeader(header http.Header) map[string]string {
	var metadata map[string]string
	for name, values := range header {
		if len(values) == 0 || !strings.HasPrefix(name, userMetadataPrefix) {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[name[len(userMetadataPrefix):]] = values[0]
	}
	return metadata
}

// TrimETag removes the quotes the wire format puts around entity tags.
func TrimETag(etag string) string {
	return strings.Trim(etag, `"`)
}

// ParseContentLength reads the Content-Length header, returning -1 when
// absent or malformed.
func ParseContentLength(header http.Header) int64 {
	raw := header.Get("Content-Length")
	if raw == "" {
		return -1
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return size
}

// ParseLastModified reads the Last-Modified header, returning the zero
// time when absent or malformed.
func ParseLastModified(header http.Header) time.Time {
	raw := header.Get("Last-Modified")
	if raw == "" {
		return time.Time{}
	}
	modified, err := http.ParseTime(raw)
	if err != nil {
		return time.Time{}
	}
	return modified
}
