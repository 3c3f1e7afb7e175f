package rest

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/signer"
)

// PutObjectInput describes a single-request object write.
type PutObjectInput struct {
	Bucket       string
	Key          string
	Body         io.ReadSeeker
	Size         int64
	ContentType  string
	Metadata     map[string]string
	StorageClass string
}

// PutObjectOutput carries the identifying headers of a stored object.
type PutObjectOutput struct {
	ETag      string
	VersionID string
}

// PutObject stores an object in a single request.
func (c *Client) PutObject(ctx context.Context, in *PutObjectInput) (*PutObjectOutput, error) {
	header := make(http.Header)
	ApplyUserMetadata(header, in.Metadata)
	if in.ContentType != "" {
		header.Set("Content-Type", in.ContentType)
	}
	if in.StorageClass != "" {
		header.Set("X-Amz-Storage-Class", in.StorageClass)
	}

	resp, err := c.Execute(ctx, &Request{
		Method:        http.MethodPut,
		Bucket:        in.Bucket,
		Key:           in.Key,
		Header:        header,
		Body:          in.Body,
		ContentLength: in.Size,
	})
	if err != nil {
		return nil, err
	}
	DrainClose(resp.Body)

	return &PutObjectOutput{
		ETag:      resp.Header.Get("ETag"),
		VersionID: resp.Header.Get("X-Amz-Version-Id"),
	}, nil
}

// CreateMultipartInput describes a multipart upload to initiate.
type CreateMultipartInput struct {
	Bucket       string
	Key          string
	ContentType  string
	Metadata     map[string]string
	StorageClass string
}

// CreateMultipartUpload initiates a multipart upload and returns its
// upload ID.
func (c *Client) CreateMultipartUpload(ctx context.Context, in *CreateMultipartInput) (string, error) {
	header := make(http.Header)
	ApplyUserMetadata(header, in.Metadata)
	if in.ContentType != "" {
		header.Set("Content-Type", in.ContentType)
	}
	if in.StorageClass != "" {
		header.Set("X-Amz-Storage-Class", in.StorageClass)
	}

	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodPost,
		Bucket: in.Bucket,
		Key:    in.Key,
		Query:  url.Values{"uploads": {""}},
		Header: header,
	})
	if err != nil {
		return "", err
	}

	var result InitiateMultipartUploadResult
	if err := decodeXML(resp, &result); err != nil {
		return "", err
	}
	if result.UploadID == "" {
		return "", fmt.Errorf("initiate response carried no upload ID")
	}
	return result.UploadID, nil
}

// UploadPartInput describes one part of a multipart upload.
type UploadPartInput struct {
	Bucket     string
	Key        string
	UploadID   string
	PartNumber int
	Body       io.ReadSeeker
	Size       int64
}

// UploadPart uploads one part and returns its entity tag. The tag keeps
// its wire quoting so a complete request can echo it back verbatim.
func (c *Client) UploadPart(ctx context.Context, in *UploadPartInput) (string, error) {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodPut,
		Bucket: in.Bucket,
		Key:    in.Key,
		Query: url.Values{
			"partNumber": {strconv.Itoa(in.PartNumber)},
			"uploadId":   {in.UploadID},
		},
		Body:          in.Body,
		ContentLength: in.Size,
	})
	if err != nil {
		return "", err
	}
	DrainClose(resp.Body)

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", fmt.Errorf("part %d response carried no entity tag", in.PartNumber)
	}
	return etag, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the final
// object. Parts must be in ascending part-number order.
func (c *Client) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletedPart) (*CompleteMultipartUploadResult, error) {
	doc, err := xml.Marshal(completeMultipartUpload{Parts: parts})
	if err != nil {
		return nil, fmt.Errorf("encode complete request: %w", err)
	}

	resp, err := c.Execute(ctx, &Request{
		Method:        http.MethodPost,
		Bucket:        bucket,
		Key:           key,
		Query:         url.Values{"uploadId": {uploadID}},
		Body:          bytes.NewReader(doc),
		ContentLength: int64(len(doc)),
	})
	if err != nil {
		return nil, err
	}

	versionID := resp.Header.Get("X-Amz-Version-Id")
	var result CompleteMultipartUploadResult
	if err := decodeXML(resp, &result); err != nil {
		return nil, err
	}
	result.VersionID = versionID
	return &result, nil
}

// AbortMultipartUpload discards an in-progress multipart upload and any
// parts stored for it.
func (c *Client) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodDelete,
		Bucket: bucket,
		Key:    key,
		Query:  url.Values{"uploadId": {uploadID}},
	})
	if err != nil {
		return err
	}
	DrainClose(resp.Body)
	return nil
}

// GetObject retrieves an object. The caller owns the response body. A
// non-empty byteRange is sent as the Range header.
func (c *Client) GetObject(ctx context.Context, bucket, key, byteRange string) (*http.Response, error) {
	var header http.Header
	if byteRange != "" {
		header = http.Header{"Range": {byteRange}}
	}
	return c.Execute(ctx, &Request{
		Method: http.MethodGet,
		Bucket: bucket,
		Key:    key,
		Header: header,
	})
}

// HeadObject retrieves an object's headers without its content.
func (c *Client) HeadObject(ctx context.Context, bucket, key string) (http.Header, error) {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodHead,
		Bucket: bucket,
		Key:    key,
	})
	if err != nil {
		return nil, err
	}
	DrainClose(resp.Body)
	return resp.Header, nil
}

// ListObjectsV2Input describes one page of an object listing.
type ListObjectsV2Input struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	StartAfter        string
	ContinuationToken string
	MaxKeys           int32
}

// ListObjectsV2 fetches one page of a version 2 object listing.
func (c *Client) ListObjectsV2(ctx context.Context, in *ListObjectsV2Input) (*ListBucketResult, error) {
	query := url.Values{"list-type": {"2"}}
	if in.Prefix != "" {
		query.Set("prefix", in.Prefix)
	}
	if in.Delimiter != "" {
		query.Set("delimiter", in.Delimiter)
	}
	if in.StartAfter != "" {
		query.Set("start-after", in.StartAfter)
	}
	if in.ContinuationToken != "" {
		query.Set("continuation-token", in.ContinuationToken)
	}
	if in.MaxKeys > 0 {
		query.Set("max-keys", strconv.FormatInt(int64(in.MaxKeys), 10))
	}

	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodGet,
		Bucket: in.Bucket,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	var result ListBucketResult
	if err := decodeXML(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteObject removes a single object. Removing a key that does not
// exist succeeds.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodDelete,
		Bucket: bucket,
		Key:    key,
	})
	if err != nil {
		return err
	}
	DrainClose(resp.Body)
	return nil
}

// DeleteObjects removes up to 1000 objects in one request and reports
// per-key outcomes.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeleteObjectsResult, error) {
	objects := make([]deleteObjectEntry, len(keys))
	for i, key := range keys {
		objects[i] = deleteObjectEntry{Key: key}
	}
	doc, err := xml.Marshal(deleteDocument{Objects: objects})
	if err != nil {
		return nil, fmt.Errorf("encode delete request: %w", err)
	}

	body := bytes.NewReader(doc)
	md5sum, err := md5Base64(body)
	if err != nil {
		return nil, fmt.Errorf("hash delete request: %w", err)
	}

	resp, err := c.Execute(ctx, &Request{
		Method:        http.MethodPost,
		Bucket:        bucket,
		Query:         url.Values{"delete": {""}},
		Body:          body,
		ContentLength: int64(len(doc)),
		ContentMD5:    md5sum,
	})
	if err != nil {
		return nil, err
	}

	var result DeleteObjectsResult
	if err := decodeXML(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CopyObjectInput describes a server-side copy.
type CopyObjectInput struct {
	SourceBucket string
	SourceKey    string
	Bucket       string
	Key          string

	// Metadata, when non-nil, replaces the source metadata on the copy
	Metadata map[string]string

	ContentType  string
	StorageClass string
}

// CopyObject copies an object server-side. The service can report a
// failure inside a 200 response, so the body is inspected either way.
func (c *Client) CopyObject(ctx context.Context, in *CopyObjectInput) (*CopyObjectResult, error) {
	source := "/" + in.SourceBucket + "/" + in.SourceKey
	header := http.Header{"X-Amz-Copy-Source": {signer.URIEncode(source, false)}}
	if in.Metadata != nil {
		header.Set("X-Amz-Metadata-Directive", "REPLACE")
		ApplyUserMetadata(header, in.Metadata)
		if in.ContentType != "" {
			header.Set("Content-Type", in.ContentType)
		}
	}
	if in.StorageClass != "" {
		header.Set("X-Amz-Storage-Class", in.StorageClass)
	}

	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodPut,
		Bucket: in.Bucket,
		Key:    in.Key,
		Header: header,
	})
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	DrainClose(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read copy response: %w", err)
	}

	var result CopyObjectResult
	if xml.Unmarshal(body, &result) == nil && result.ETag != "" {
		return &result, nil
	}

	var doc errorDocument
	if xml.Unmarshal(body, &doc) == nil && doc.Code != "" {
		return nil, &errors.ServiceError{
			Code:       doc.Code,
			Message:    doc.Message,
			StatusCode: resp.StatusCode,
			RequestID:  doc.RequestID,
			HostID:     doc.HostID,
		}
	}
	return &result, nil
}

// ListBuckets lists all buckets owned by the caller.
func (c *Client) ListBuckets(ctx context.Context) ([]BucketEntry, error) {
	resp, err := c.Execute(ctx, &Request{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	var result ListAllMyBucketsResult
	if err := decodeXML(resp, &result); err != nil {
		return nil, err
	}
	return result.Buckets, nil
}

// CreateBucket creates a bucket. Regions other than us-east-1 require a
// location constraint document.
func (c *Client) CreateBucket(ctx context.Context, bucket, region string) error {
	var body io.ReadSeeker
	var size int64
	if region != "" && region != "us-east-1" {
		doc, err := xml.Marshal(createBucketConfiguration{LocationConstraint: region})
		if err != nil {
			return fmt.Errorf("encode bucket configuration: %w", err)
		}
		body = bytes.NewReader(doc)
		size = int64(len(doc))
	}

	resp, err := c.Execute(ctx, &Request{
		Method:        http.MethodPut,
		Bucket:        bucket,
		Body:          body,
		ContentLength: size,
	})
	if err != nil {
		return err
	}
	DrainClose(resp.Body)
	return nil
}

// DeleteBucket removes an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodDelete,
		Bucket: bucket,
	})
	if err != nil {
		return err
	}
	DrainClose(resp.Body)
	return nil
}

// HeadBucket checks whether a bucket exists and is accessible.
func (c *Client) HeadBucket(ctx context.Context, bucket string) error {
	resp, err := c.Execute(ctx, &Request{
		Method: http.MethodHead,
		Bucket: bucket,
	})
	if err != nil {
		return err
	}
	DrainClose(resp.Body)
	return nil
}

// decodeXML unmarshals a success response body and closes it.
func decodeXML(resp *http.Response, out any) error {
	defer DrainClose(resp.Body)
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
