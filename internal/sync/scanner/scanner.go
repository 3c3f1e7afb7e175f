// Package scanner builds the local and remote inventories a sync run
// compares. Local files come from walking the configured filesystem,
// remote objects from paging the bucket listing.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// pageSize is the listing page size, matching the service maximum.
const pageSize = 1000

// PageLister retrieves one page of a bucket listing. *rest.Client
// implements it.
type PageLister interface {
	ListObjectsV2(ctx context.Context, in *rest.ListObjectsV2Input) (*rest.ListBucketResult, error)
}

// Scanner discovers files on both sides of a sync.
type Scanner struct {
	remote     PageLister
	filesystem fs.Filesystem
}

// New creates a Scanner over the given listing client and filesystem.
func New(remote PageLister, filesystem fs.Filesystem) *Scanner {
	return &Scanner{
		remote:     remote,
		filesystem: filesystem,
	}
}

// ScanLocal walks root and returns every regular file that passes the
// include and exclude patterns. Patterns match the slash-separated path
// relative to root.
func (s *Scanner) ScanLocal(
	ctx context.Context,
	root string,
	include, exclude []string,
) ([]*objtypes.LocalFile, error) {
	var files []*objtypes.LocalFile

	err := s.filesystem.Walk(root, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, filePath)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", filePath, err)
		}
		if !Include(filepath.ToSlash(rel), include, exclude) {
			return nil
		}

		files = append(files, &objtypes.LocalFile{
			Path:    filePath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// ScanRemote pages through the bucket and returns every object under
// prefix. Listing entry tags are stripped of their wire quoting so they
// compare directly against local checksums.
func (s *Scanner) ScanRemote(ctx context.Context, bucket, prefix string) ([]*objtypes.RemoteFile, error) {
	var objects []*objtypes.RemoteFile

	token := ""
	for {
		page, err := s.remote.ListObjectsV2(ctx, &rest.ListObjectsV2Input{
			Bucket:            bucket,
			Prefix:            prefix,
			MaxKeys:           pageSize,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", bucket, err)
		}

		for _, entry := range page.Contents {
			objects = append(objects, &objtypes.RemoteFile{
				Key:          entry.Key,
				Size:         entry.Size,
				LastModified: entry.LastModified,
				ETag:         rest.TrimETag(entry.ETag),
			})
		}

		if !page.IsTruncated || page.NextContinuationToken == "" {
			return objects, nil
		}
		token = page.NextContinuationToken
	}
}
