package signer

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

const (
	presignMinExpires = time.Second
	presignMaxExpires = 7 * 24 * time.Hour
)

// Presign returns a copy of req.URL that authorizes the request through
// query parameters until expires elapses. Only the host header is signed,
// so the URL works from any client. Anonymous credentials yield the URL
// unsigned.
func Presign(req *http.Request, creds credentials.Value, region string, expires time.Duration, t time.Time) (*url.URL, error) {
	if expires < presignMinExpires || expires > presignMaxExpires {
		return nil, errors.NewSigningError("presign expiry must be between 1 second and 7 days")
	}

	signed := *req.URL
	if creds.IsAnonymous() {
		return &signed, nil
	}
	if err := checkSignable(creds, region); err != nil {
		return nil, err
	}

	scope := Scope{Date: t.UTC().Format(iso8601Date), Region: region}
	datetime := t.UTC().Format(iso8601DateTime)

	query := signed.Query()
	query.Set("X-Amz-Algorithm", algorithm)
	query.Set("X-Amz-Credential", creds.AccessKeyID+"/"+scope.String())
	query.Set("X-Amz-Date", datetime)
	query.Set("X-Amz-Expires", strconv.FormatInt(int64(expires/time.Second), 10))
	if creds.SessionToken != "" {
		query.Set("X-Amz-Security-Token", creds.SessionToken)
	}
	query.Set("X-Amz-SignedHeaders", "host")

	host := req.Host
	if host == "" {
		host = signed.Host
	}

	canonical := strings.Join([]string{
		req.Method,
		canonicalURI(&signed),
		CanonicalQuery(query),
		"host:" + host + "\n",
		"host",
		UnsignedPayload,
	}, "\n")

	stringToSign := StringToSign(datetime, scope, canonical)
	signature := SignatureHex(SigningKey(creds.SecretAccessKey, scope), stringToSign)

	query.Set("X-Amz-Signature", signature)
	signed.RawQuery = CanonicalQuery(query)
	return &signed, nil
}
