// Package executor runs a sync plan against the store, uploading with
// bounded parallelism and deleting in batches.
package executor

import (
	"context"
	"fmt"
	"sync"

	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/planner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// DefaultParallelism is the upload worker count when none is configured.
const DefaultParallelism = 5

// Storage is the subset of client operations the executor needs.
type Storage interface {
	UploadFile(ctx context.Context, bucket, key, path string, opts ...objtypes.UploadOption) (*objtypes.UploadResult, error)
	DeleteMany(ctx context.Context, bucket string, keys []string) (*objtypes.DeleteResult, error)
}

// Executor applies plans.
type Executor struct {
	storage     Storage
	parallelism int
	logger      pslog.Logger
}

// New returns an executor that uploads through storage with at most
// parallelism concurrent transfers.
func New(storage Storage, parallelism int, logger pslog.Logger) *Executor {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Executor{
		storage:     storage,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Result is the tally of an executed plan. Per-file failures are
// collected rather than aborting the run.
type Result struct {
	Uploaded      int
	Deleted       int
	BytesUploaded int64
	Errors        []objtypes.SyncError
}

// Run executes the plan's uploads and then its deletes. Individual
// transfer failures are recorded in the result; Run itself returns an
// error only when the context is cancelled or a whole delete request
// fails.
func (e *Executor) Run(
	ctx context.Context,
	bucket string,
	plan *planner.Plan,
	tracker objtypes.ProgressTracker,
) (*Result, error) {
	result := &Result{}

	var uploads []planner.Operation
	var deleteKeys []string
	for _, op := range plan.Operations {
		switch op.Action {
		case planner.ActionUpload:
			uploads = append(uploads, op)
		case planner.ActionDelete:
			deleteKeys = append(deleteKeys, op.RemoteKey)
		}
	}

	if err := e.runUploads(ctx, bucket, uploads, plan.UploadBytes, tracker, result); err != nil {
		return result, err
	}

	if len(deleteKeys) > 0 {
		deleted, err := e.storage.DeleteMany(ctx, bucket, deleteKeys)
		if deleted != nil {
			result.Deleted = len(deleted.Deleted)
			for _, failure := range deleted.Errors {
				result.Errors = append(result.Errors, objtypes.SyncError{
					Path:    failure.Key,
					Code:    failure.Code,
					Message: failure.Message,
				})
			}
		}
		if err != nil {
			return result, fmt.Errorf("delete extra objects: %w", err)
		}
	}

	return result, nil
}

func (e *Executor) runUploads(
	ctx context.Context,
	bucket string,
	uploads []planner.Operation,
	totalBytes int64,
	tracker objtypes.ProgressTracker,
	result *Result,
) error {
	if len(uploads) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int64
	)
	sem := make(chan struct{}, e.parallelism)

	for _, op := range uploads {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		go func(op planner.Operation) {
			defer func() {
				<-sem
				wg.Done()
			}()

			_, err := e.storage.UploadFile(ctx, bucket, op.RemoteKey, op.LocalPath)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, objtypes.SyncError{
					Path:    op.LocalPath,
					Code:    "upload",
					Message: err.Error(),
				})
				e.logger.Warn("sync.upload.failed", "key", op.RemoteKey, "error", err)
				return
			}
			result.Uploaded++
			result.BytesUploaded += op.Size
			sent += op.Size
			if tracker != nil {
				tracker.Update(sent, totalBytes)
			}
		}(op)
	}

	wg.Wait()
	return ctx.Err()
}
