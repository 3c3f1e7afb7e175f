// Package sync orchestrates a directory sync run: scan both sides, plan
// the difference, execute the plan.
package sync

import (
	"context"
	"fmt"
	"time"

	"pkt.systems/pslog"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/executor"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/planner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/scanner"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// Config describes a single sync run.
type Config struct {
	// LocalPath is the absolute local directory to mirror.
	LocalPath string

	// Bucket is the destination bucket.
	Bucket string

	// Prefix is the remote key prefix, empty or ending in a slash.
	Prefix string

	// Include and Exclude filter the local inventory.
	Include []string
	Exclude []string

	// DeleteExtra removes remote objects with no local counterpart.
	DeleteExtra bool

	// DryRun plans without transferring.
	DryRun bool

	// Tracker receives cumulative upload progress.
	Tracker objtypes.ProgressTracker
}

// Manager wires the scan, plan, and execute phases together.
type Manager struct {
	scanner  *scanner.Scanner
	planner  *planner.Planner
	executor *executor.Executor
	logger   pslog.Logger
}

// NewManager assembles a manager from its phases.
func NewManager(sc *scanner.Scanner, pl *planner.Planner, ex *executor.Executor, logger pslog.Logger) *Manager {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Manager{
		scanner:  sc,
		planner:  pl,
		executor: ex,
		logger:   logger,
	}
}

// Run performs one sync. On a dry run the result carries the planned
// counts and nothing is transferred.
func (m *Manager) Run(ctx context.Context, cfg *Config) (*objtypes.SyncResult, error) {
	start := time.Now()

	local, err := m.scanner.ScanLocal(ctx, cfg.LocalPath, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, m.fail(cfg, fmt.Errorf("scan local: %w", err))
	}
	remote, err := m.scanner.ScanRemote(ctx, cfg.Bucket, cfg.Prefix)
	if err != nil {
		return nil, m.fail(cfg, fmt.Errorf("scan remote: %w", err))
	}
	m.logger.Debug("sync.inventory",
		"local", len(local),
		"remote", len(remote),
	)

	plan, err := m.planner.Build(cfg.LocalPath, cfg.Prefix, local, remote, cfg.DeleteExtra)
	if err != nil {
		return nil, m.fail(cfg, fmt.Errorf("plan: %w", err))
	}
	m.logger.Debug("sync.plan",
		"uploads", plan.Uploads,
		"deletes", plan.Deletes,
		"skips", plan.Skips,
		"upload_bytes", plan.UploadBytes,
	)

	if cfg.DryRun {
		return &objtypes.SyncResult{
			FilesUploaded: plan.Uploads,
			FilesSkipped:  plan.Skips,
			FilesDeleted:  plan.Deletes,
			BytesUploaded: plan.UploadBytes,
			Duration:      time.Since(start),
		}, nil
	}

	run, err := m.executor.Run(ctx, cfg.Bucket, plan, cfg.Tracker)
	if err != nil {
		return nil, m.fail(cfg, err)
	}

	result := &objtypes.SyncResult{
		FilesUploaded: run.Uploaded,
		FilesSkipped:  plan.Skips,
		FilesDeleted:  run.Deleted,
		BytesUploaded: run.BytesUploaded,
		Errors:        run.Errors,
		Duration:      time.Since(start),
	}
	if cfg.Tracker != nil {
		cfg.Tracker.Complete()
	}
	m.logger.Debug("sync.done",
		"uploaded", result.FilesUploaded,
		"skipped", result.FilesSkipped,
		"deleted", result.FilesDeleted,
		"errors", len(result.Errors),
		"elapsed", result.Duration,
	)
	return result, nil
}

func (m *Manager) fail(cfg *Config, err error) error {
	if cfg.Tracker != nil {
		cfg.Tracker.Error(err)
	}
	return err
}
