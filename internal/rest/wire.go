package rest

import (
	"encoding/xml"
	"time"
)

// InitiateMultipartUploadResult is the response to a multipart initiate.
type InitiateMultipartUploadResult struct {
	XMLName  xml.Name `xml:"InitiateMultipartUploadResult"`
	Bucket   string   `xml:"Bucket"`
	Key      string   `xml:"Key"`
	UploadID string   `xml:"UploadId"`
}

// CompletedPart names one uploaded part in a complete request. Parts must
// be listed in ascending part-number order.
type CompletedPart struct {
	PartNumber int    `xml:"PartNumber"`
	ETag       string `xml:"ETag"`
}

// completeMultipartUpload is the request document for completing an upload.
type completeMultipartUpload struct {
	XMLName xml.Name        `xml:"CompleteMultipartUpload"`
	Parts   []CompletedPart `xml:"Part"`
}

// CompleteMultipartUploadResult is the response to a multipart complete.
// VersionID comes from the response headers, not the document.
type CompleteMultipartUploadResult struct {
	XMLName   xml.Name `xml:"CompleteMultipartUploadResult"`
	Location  string   `xml:"Location"`
	Bucket    string   `xml:"Bucket"`
	Key       string   `xml:"Key"`
	ETag      string   `xml:"ETag"`
	VersionID string   `xml:"-"`
}

// ObjectEntry is one object in a list response.
type ObjectEntry struct {
	Key          string    `xml:"Key"`
	LastModified time.Time `xml:"LastModified"`
	ETag         string    `xml:"ETag"`
	Size         int64     `xml:"Size"`
	StorageClass string    `xml:"StorageClass"`
}

// CommonPrefix is one rolled-up prefix in a delimited list response.
type CommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

// ListBucketResult is the response to a version 2 object listing.
type ListBucketResult struct {
	XMLName               xml.Name       `xml:"ListBucketResult"`
	Name                  string         `xml:"Name"`
	Prefix                string         `xml:"Prefix"`
	Delimiter             string         `xml:"Delimiter"`
	KeyCount              int32          `xml:"KeyCount"`
	MaxKeys               int32          `xml:"MaxKeys"`
	IsTruncated           bool           `xml:"IsTruncated"`
	ContinuationToken     string         `xml:"ContinuationToken"`
	NextContinuationToken string         `xml:"NextContinuationToken"`
	StartAfter            string         `xml:"StartAfter"`
	Contents              []ObjectEntry  `xml:"Contents"`
	CommonPrefixes        []CommonPrefix `xml:"CommonPrefixes"`
}

// BucketEntry is one bucket in a service listing.
type BucketEntry struct {
	Name         string    `xml:"Name"`
	CreationDate time.Time `xml:"CreationDate"`
}

// ListAllMyBucketsResult is the response to a service-level bucket listing.
type ListAllMyBucketsResult struct {
	XMLName xml.Name      `xml:"ListAllMyBucketsResult"`
	Buckets []BucketEntry `xml:"Buckets>Bucket"`
}

// deleteObjectEntry names one key in a batch delete request.
type deleteObjectEntry struct {
	Key string `xml:"Key"`
}

// deleteDocument is the request document for a batch delete.
type deleteDocument struct {
	XMLName xml.Name            `xml:"Delete"`
	Quiet   bool                `xml:"Quiet"`
	Objects []deleteObjectEntry `xml:"Object"`
}

// DeletedEntry is one successfully deleted key in a batch delete response.
type DeletedEntry struct {
	Key string `xml:"Key"`
}

// DeleteErrorEntry is one per-key failure in a batch delete response.
type DeleteErrorEntry struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// DeleteObjectsResult is the response to a batch delete.
type DeleteObjectsResult struct {
	XMLName xml.Name           `xml:"DeleteResult"`
	Deleted []DeletedEntry     `xml:"Deleted"`
	Errors  []DeleteErrorEntry `xml:"Error"`
}

// CopyObjectResult is the response to a server-side copy.
type CopyObjectResult struct {
	XMLName      xml.Name  `xml:"CopyObjectResult"`
	ETag         string    `xml:"ETag"`
	LastModified time.Time `xml:"LastModified"`
}

// createBucketConfiguration is the request document for creating a bucket
// outside the default region.
type createBucketConfiguration struct {
	XMLName            xml.Name `xml:"CreateBucketConfiguration"`
	LocationConstraint string   `xml:"LocationConstraint"`
}
