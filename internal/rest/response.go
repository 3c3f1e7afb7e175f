package rest

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

// maxErrorBody caps how much of an error document we read. Service error
// responses are tiny; anything larger is not worth buffering.
const maxErrorBody = 1 << 20

// errorDocument mirrors the XML error body the service returns.
type errorDocument struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
	HostID    string   `xml:"HostId"`
	Region    string   `xml:"Region"`
}

// decodeErrorResponse turns a non-2xx response into a ServiceError. The
// body is consumed and closed. Responses without a decodable error
// document, such as HEAD replies, fall back to inference from the status
// line and the shape of the request.
func (c *Client) decodeErrorResponse(r *Request, resp *http.Response) *errors.ServiceError {
	svcErr := &errors.ServiceError{
		StatusCode:   resp.StatusCode,
		RequestID:    resp.Header.Get("X-Amz-Request-Id"),
		HostID:       resp.Header.Get("X-Amz-Id-2"),
		BucketRegion: resp.Header.Get("X-Amz-Bucket-Region"),
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	DrainClose(resp.Body)

	var doc errorDocument
	if err := xml.Unmarshal(body, &doc); err == nil && doc.Code != "" {
		svcErr.Code = doc.Code
		svcErr.Message = doc.Message
		svcErr.Resource = doc.Resource
		if svcErr.RequestID == "" {
			svcErr.RequestID = doc.RequestID
		}
		if svcErr.HostID == "" {
			svcErr.HostID = doc.HostID
		}
		if svcErr.BucketRegion == "" {
			svcErr.BucketRegion = doc.Region
		}
		return svcErr
	}

	svcErr.Code, svcErr.Message = inferFromStatus(resp.StatusCode, r)
	return svcErr
}

// inferFromStatus assigns an error code when the response carried no
// error document.
func inferFromStatus(status int, r *Request) (code, message string) {
	switch status {
	case http.StatusMovedPermanently, http.StatusTemporaryRedirect:
		return "PermanentRedirect", "the bucket is served by a different endpoint"
	case http.StatusBadRequest:
		return "BadRequest", "the request is malformed"
	case http.StatusForbidden:
		return "AccessDenied", "access denied"
	case http.StatusNotFound:
		switch {
		case r.Key != "":
			return "NoSuchKey", "the specified key does not exist"
		case r.Bucket != "":
			return "NoSuchBucket", "the specified bucket does not exist"
		default:
			return "ResourceNotFound", "the requested resource does not exist"
		}
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return "MethodNotAllowed", "the method is not allowed against this resource"
	case http.StatusConflict:
		return "Conflict", "the request conflicts with the current state of the resource"
	case http.StatusPreconditionFailed:
		return "PreconditionFailed", "at least one of the preconditions did not hold"
	case http.StatusRequestedRangeNotSatisfiable:
		return "InvalidRange", "the requested range cannot be satisfied"
	case http.StatusTooManyRequests:
		return "TooManyRequests", "request rate exceeded"
	case http.StatusServiceUnavailable:
		return "SlowDown", "the service is unavailable, reduce the request rate"
	default:
		return "UnknownError", http.StatusText(status)
	}
}

// DrainClose consumes what remains of a response body and closes it so
// the underlying connection can be reused.
func DrainClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	_ = body.Close()
}
