// Package signer implements AWS Signature Version 4 for S3 requests.
//
// Signing is a pure function of the request, the credential snapshot, and
// the supplied time. Nothing in this package reads the clock or any other
// ambient state, so identical inputs always produce identical signatures.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

const (
	algorithm = "AWS4-HMAC-SHA256"
	service   = "s3"
	terminal  = "aws4_request"

	iso8601DateTime = "20060102T150405Z"
	iso8601Date     = "20060102"
)

const (
	// UnsignedPayload is the content hash value for bodies not covered by
	// the signature.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// EmptyPayloadHash is the hex SHA-256 of an empty body.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// Scope identifies the signing context of a request. The service and
// terminal components are fixed for S3.
type Scope struct {
	Date   string
	Region string
}

// String formats the scope as it appears in credentials and signatures.
func (s Scope) String() string {
	return strings.Join([]string{s.Date, s.Region, service, terminal}, "/")
}

// Sign authorizes req in place using header-based signing. payloadHash is
// the hex SHA-256 of the body, EmptyPayloadHash for an empty body, or
// UnsignedPayload when the body is not covered. Anonymous credentials leave
// the request untouched.
func Sign(req *http.Request, creds credentials.Value, region, payloadHash string, t time.Time) error {
	if creds.IsAnonymous() {
		return nil
	}
	if err := checkSignable(creds, region); err != nil {
		return err
	}
	if payloadHash == "" {
		payloadHash = UnsignedPayload
	}

	scope := Scope{Date: t.UTC().Format(iso8601Date), Region: region}
	datetime := t.UTC().Format(iso8601DateTime)

	req.Header.Set("X-Amz-Date", datetime)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)
	if creds.SessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", creds.SessionToken)
	}

	canonical, signedHeaders := CanonicalRequest(req, payloadHash)
	stringToSign := StringToSign(datetime, scope, canonical)
	signature := SignatureHex(SigningKey(creds.SecretAccessKey, scope), stringToSign)

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, creds.AccessKeyID, scope, signedHeaders, signature))
	return nil
}

// CanonicalRequest builds the canonical request for req and returns it
// together with the semicolon-joined signed header list. The signed set is
// host, content-type and content-md5 when present, and every x-amz-*
// header.
func CanonicalRequest(req *http.Request, payloadHash string) (canonical, signedHeaders string) {
	headers := canonicalHeaders(req)

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var block strings.Builder
	for _, name := range names {
		block.WriteString(name)
		block.WriteByte(':')
		block.WriteString(headers[name])
		block.WriteByte('\n')
	}
	signedHeaders = strings.Join(names, ";")

	canonical = strings.Join([]string{
		req.Method,
		canonicalURI(req.URL),
		CanonicalQuery(req.URL.Query()),
		block.String(),
		signedHeaders,
		payloadHash,
	}, "\n")
	return canonical, signedHeaders
}

// StringToSign combines the timestamp, the scope, and the hashed canonical
// request.
func StringToSign(datetime string, scope Scope, canonicalRequest string) string {
	return strings.Join([]string{
		algorithm,
		datetime,
		scope.String(),
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")
}

// SigningKey derives the signing key for the scope from the secret key.
func SigningKey(secretKey string, scope Scope) []byte {
	key := hmacSHA256([]byte("AWS4"+secretKey), scope.Date)
	key = hmacSHA256(key, scope.Region)
	key = hmacSHA256(key, service)
	return hmacSHA256(key, terminal)
}

// SignatureHex computes the final signature over stringToSign.
func SignatureHex(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, stringToSign))
}

// CanonicalQuery encodes query values sorted by key with RFC 3986
// percent-escaping, the encoding the signature is computed over. Callers
// building URLs must place exactly this string on the wire.
func CanonicalQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(query))
	for _, key := range keys {
		values := append([]string(nil), query[key]...)
		sort.Strings(values)
		for _, value := range values {
			pairs = append(pairs, URIEncode(key, true)+"="+URIEncode(value, true))
		}
	}
	return strings.Join(pairs, "&")
}

// URIEncode percent-escapes s the way the signature algorithm expects:
// unreserved characters stay bare, everything else becomes %XX, and the
// slash survives only when encodeSlash is false (for paths).
func URIEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func canonicalURI(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return URIEncode(u.Path, false)
}

func canonicalHeaders(req *http.Request) map[string]string {
	headers := make(map[string]string)

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	headers["host"] = host

	for name, values := range req.Header {
		lower := strings.ToLower(name)
		if lower != "content-type" && lower != "content-md5" && !strings.HasPrefix(lower, "x-amz-") {
			continue
		}
		trimmed := make([]string, len(values))
		for i, v := range values {
			trimmed[i] = collapseSpaces(v)
		}
		headers[lower] = strings.Join(trimmed, ",")
	}
	return headers
}

// collapseSpaces trims the value and folds runs of spaces into one, as the
// canonicalization rules require.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func checkSignable(creds credentials.Value, region string) error {
	if region == "" {
		return errors.NewSigningError("region is required")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return errors.NewSigningError("credentials are incomplete")
	}
	return nil
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PayloadHash returns the hex SHA-256 of data for use as a payload hash.
func PayloadHash(data []byte) string {
	return sha256Hex(data)
}
