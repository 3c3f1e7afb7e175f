package objstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/comparator"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/executor"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/planner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/scanner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/sync"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// Sync mirrors a local directory to a bucket prefix. It scans both
// sides, uploads new and changed files with bounded parallelism, and
// optionally deletes remote objects that have no local counterpart.
//
// Files are compared without transferring them. The default comparison
// checks size first, then the content hash when the remote entity tag
// is a plain MD5, and falls back to modification time. Use
// WithSyncComparator to pick a cheaper or stricter mode.
//
// Per-file failures do not stop the run; they are collected in the
// result's Errors. Use WithSyncDryRun to get the planned counts
// without transferring anything.
//
// Returns:
//   - *SyncResult: Counts of uploaded, skipped, and deleted files
//   - error: Scan, plan, or request-level failures
//
// Errors:
//   - ErrInvalidInput: If localPath or bucket is empty, a pattern is
//     malformed, or the comparator mode is unknown
//   - Filesystem errors if the local directory cannot be walked
//   - Network or service errors from listing, uploading, or deleting
//
// Example:
//
//	result, err := client.Sync(ctx, "./site", "my-bucket", "public/",
//	    objstore.WithSyncExclude("*.tmp"),
//	    objstore.WithSyncDelete(true),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("uploaded %d, skipped %d, deleted %d\n",
//	    result.FilesUploaded, result.FilesSkipped, result.FilesDeleted)
func (c *Client) Sync(
	ctx context.Context,
	localPath, bucket, prefix string,
	opts ...objtypes.SyncOption,
) (*objtypes.SyncResult, error) {
	const op = "sync"

	if localPath == "" {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("local path cannot be empty")
	}
	if bucket == "" {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	cfg := &objtypes.SyncOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	absPath, err := filepath.Abs(localPath)
	if err != nil {
		return nil, objerrors.NewError(op, fmt.Errorf("resolve local path: %w", err)).
			WithBucket(bucket)
	}

	patterns := make([]string, 0, len(cfg.IncludePatterns)+len(cfg.ExcludePatterns))
	patterns = append(patterns, cfg.IncludePatterns...)
	patterns = append(patterns, cfg.ExcludePatterns...)
	if err := scanner.ValidatePatterns(patterns); err != nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	comp, err := comparator.ForMode(cfg.Comparator, c.filesystem())
	if err != nil {
		return nil, objerrors.NewError(op, objerrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = c.concurrency
	}

	manager := sync.NewManager(
		scanner.New(c.api, c.filesystem()),
		planner.New(comp),
		executor.New(c, parallelism, c.logger),
		c.logger,
	)

	result, err := manager.Run(ctx, &sync.Config{
		LocalPath:   absPath,
		Bucket:      bucket,
		Prefix:      prefix,
		Include:     cfg.IncludePatterns,
		Exclude:     cfg.ExcludePatterns,
		DeleteExtra: cfg.DeleteExtra,
		DryRun:      cfg.DryRun,
		Tracker:     cfg.ProgressTracker,
	})
	if err != nil {
		return nil, objerrors.NewError(op, err).WithBucket(bucket)
	}
	return result, nil
}
