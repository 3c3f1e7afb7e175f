// Package comparator decides whether a local file and a remote object
// hold the same content, using progressively more expensive checks.
package comparator

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/objtypes"
)

// skew is how far timestamps may drift before a time comparison reports a
// change. Object stores round to the second and clocks differ.
const skew = 2 * time.Second

// Comparator reports whether a local file differs from its remote
// counterpart.
type Comparator interface {
	HasChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) (bool, error)
}

// Mode names accepted by ForMode.
const (
	ModeSize = "size"
	ModeTime = "mtime"
	ModeETag = "etag"
	ModeFull = "full"
)

// ForMode returns the comparator named by mode. The empty mode selects
// the full comparison.
func ForMode(mode string, filesystem fs.Filesystem) (Comparator, error) {
	switch mode {
	case ModeSize:
		return Size{}, nil
	case ModeTime:
		return Time{}, nil
	case ModeETag:
		return &Checksum{filesystem: filesystem}, nil
	case ModeFull, "":
		return &Full{filesystem: filesystem}, nil
	default:
		return nil, fmt.Errorf("unknown comparator %q", mode)
	}
}

// Full compares size first, checksums when the remote tag permits it, and
// falls back to modification time. It is the default.
type Full struct {
	filesystem fs.Filesystem
}

// HasChanged implements Comparator.
func (c *Full) HasChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) (bool, error) {
	if local.Size != remote.Size {
		return true, nil
	}
	if comparableETag(remote.ETag) {
		sum, err := localChecksum(c.filesystem, local)
		if err == nil {
			return sum != remote.ETag, nil
		}
		// Unreadable file: let the time check decide and let the upload
		// surface the real error if one is planned.
	}
	return timeChanged(local, remote), nil
}

// Size reports a change only when byte counts differ. Cheapest and least
// precise.
type Size struct{}

// HasChanged implements Comparator.
func (Size) HasChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) (bool, error) {
	return local.Size != remote.Size, nil
}

// Time reports a change when timestamps drift apart by more than the skew
// window.
type Time struct{}

// HasChanged implements Comparator.
func (Time) HasChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) (bool, error) {
	return timeChanged(local, remote), nil
}

// Checksum always hashes the local file. A multipart remote tag is not a
// content hash, so it always reads as changed.
type Checksum struct {
	filesystem fs.Filesystem
}

// HasChanged implements Comparator.
func (c *Checksum) HasChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) (bool, error) {
	if !comparableETag(remote.ETag) {
		return true, nil
	}
	sum, err := localChecksum(c.filesystem, local)
	if err != nil {
		return false, fmt.Errorf("checksum %s: %w", local.Path, err)
	}
	return sum != remote.ETag, nil
}

// comparableETag reports whether the tag is a plain MD5. Multipart tags
// carry a part-count suffix after a dash.
func comparableETag(etag string) bool {
	return etag != "" && !strings.Contains(etag, "-")
}

// localChecksum returns the file's MD5, computing it once and caching it
// on the inventory entry.
func localChecksum(filesystem fs.Filesystem, local *objtypes.LocalFile) (string, error) {
	if local.Checksum != "" {
		return local.Checksum, nil
	}

	file, err := filesystem.Open(local.Path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	local.Checksum = hex.EncodeToString(hasher.Sum(nil))
	return local.Checksum, nil
}

func timeChanged(local *objtypes.LocalFile, remote *objtypes.RemoteFile) bool {
	diff := local.ModTime.Sub(remote.LastModified)
	if diff < 0 {
		diff = -diff
	}
	return diff > skew
}
