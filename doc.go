// Package objstore is a client for S3-compatible object storage. It
// speaks the S3 REST protocol directly over net/http, with request
// signing, retries, multipart transfers, and directory sync built in,
// and works against AWS S3, MinIO, Ceph RGW, and other compatible
// services.
//
// Key features:
//   - Zero-configuration start with the environment credential chain
//   - Progressive tuning through functional options
//   - Automatic multipart upload for large and unknown-length streams
//   - Streaming downloads with range support and atomic file writes
//   - Presigned URLs for browser-direct transfers
//   - Directory sync with change detection and include/exclude patterns
//
// Example usage:
//
//	client, err := objstore.New(
//	    objstore.WithRegion("us-west-2"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.UploadFile(ctx, "my-bucket", "path/file.txt", "/local/file.txt")
//	if err != nil {
//	    return err
//	}
package objstore
