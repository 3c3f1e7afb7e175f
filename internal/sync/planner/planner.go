// Package planner turns a pair of inventories into an ordered list of
// sync operations.
package planner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/sync/comparator"
	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// Action identifies what a planned operation does.
type Action string

const (
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// Operation is one planned step of a sync run.
type Operation struct {
	Action    Action
	LocalPath string
	RemoteKey string
	Size      int64
	Reason    string
}

// Plan is the full set of operations for a run, uploads first, with
// precomputed totals.
type Plan struct {
	Operations  []Operation
	UploadBytes int64
	Uploads     int
	Deletes     int
	Skips       int
}

// Planner builds plans with a fixed change comparator.
type Planner struct {
	comparator comparator.Comparator
}

// New returns a planner that uses cmp to decide whether matched files
// need re-uploading.
func New(cmp comparator.Comparator) *Planner {
	return &Planner{comparator: cmp}
}

// Build matches the local inventory under localRoot against the remote
// inventory under prefix and plans the operations that reconcile them.
// Remote objects with no local counterpart become deletes only when
// deleteExtra is set.
func (p *Planner) Build(
	localRoot, prefix string,
	local []*objtypes.LocalFile,
	remote []*objtypes.RemoteFile,
	deleteExtra bool,
) (*Plan, error) {
	localByRel := make(map[string]*objtypes.LocalFile, len(local))
	for _, file := range local {
		rel, err := filepath.Rel(localRoot, file.Path)
		if err != nil {
			continue
		}
		localByRel[filepath.ToSlash(rel)] = file
	}

	remoteByRel := make(map[string]*objtypes.RemoteFile, len(remote))
	for _, entry := range remote {
		rel := strings.TrimPrefix(entry.Key, prefix)
		rel = strings.TrimPrefix(rel, "/")
		remoteByRel[rel] = entry
	}

	var uploads, deletes, skips []Operation

	for rel, file := range localByRel {
		key := prefix + rel
		existing, ok := remoteByRel[rel]
		if !ok {
			uploads = append(uploads, Operation{
				Action:    ActionUpload,
				LocalPath: file.Path,
				RemoteKey: key,
				Size:      file.Size,
				Reason:    "new file",
			})
			continue
		}

		changed, err := p.comparator.HasChanged(file, existing)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", rel, err)
		}
		if changed {
			uploads = append(uploads, Operation{
				Action:    ActionUpload,
				LocalPath: file.Path,
				RemoteKey: key,
				Size:      file.Size,
				Reason:    "modified",
			})
		} else {
			skips = append(skips, Operation{
				Action:    ActionSkip,
				LocalPath: file.Path,
				RemoteKey: key,
				Size:      file.Size,
				Reason:    "unchanged",
			})
		}
	}

	if deleteExtra {
		for rel, entry := range remoteByRel {
			if _, ok := localByRel[rel]; ok {
				continue
			}
			deletes = append(deletes, Operation{
				Action:    ActionDelete,
				RemoteKey: entry.Key,
				Size:      entry.Size,
				Reason:    "no local counterpart",
			})
		}
	}

	// Small uploads first so a run shows progress early and an abort
	// loses the least transferred data.
	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].Size != uploads[j].Size {
			return uploads[i].Size < uploads[j].Size
		}
		return uploads[i].RemoteKey < uploads[j].RemoteKey
	})
	sort.Slice(deletes, func(i, j int) bool {
		return deletes[i].RemoteKey < deletes[j].RemoteKey
	})
	sort.Slice(skips, func(i, j int) bool {
		return skips[i].RemoteKey < skips[j].RemoteKey
	})

	plan := &Plan{
		Operations: make([]Operation, 0, len(uploads)+len(deletes)+len(skips)),
		Uploads:    len(uploads),
		Deletes:    len(deletes),
		Skips:      len(skips),
	}
	for _, op := range uploads {
		plan.UploadBytes += op.Size
	}
	plan.Operations = append(plan.Operations, uploads...)
	plan.Operations = append(plan.Operations, deletes...)
	plan.Operations = append(plan.Operations, skips...)
	return plan, nil
}
