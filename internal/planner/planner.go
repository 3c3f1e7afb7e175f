// Package planner computes multipart part layouts. All size limits are
// enforced here, before any request is issued.
package planner

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

// Service limits for uploads.
const (
	// MinPartSize is the smallest part size the service accepts for any
	// part except the last one.
	MinPartSize int64 = 5 * humanize.MiByte

	// MaxPartSize is the largest part size the service accepts.
	MaxPartSize int64 = 5 * humanize.GiByte

	// MaxPartCount is the most parts a single upload may have.
	MaxPartCount = 10000

	// MaxObjectSize is the largest object a multipart upload can create.
	MaxObjectSize int64 = 5 * humanize.TiByte

	// MaxSinglePutSize is the largest object a single PUT can carry.
	MaxSinglePutSize int64 = 5 * humanize.GiByte

	// DefaultStreamPartSize is used for unknown-length sources when no
	// part size was configured. It bounds buffering at 16 MiB per worker
	// while still allowing streams up to 156 GiB.
	DefaultStreamPartSize int64 = 16 * humanize.MiByte
)

// Part is one contiguous slice of the object payload. Numbers are 1-based
// and parts never overlap.
type Part struct {
	// Number is the 1-based part number
	Number int

	// Offset is the byte offset of the part within the object
	Offset int64

	// Length is the part length in bytes
	Length int64
}

// PartSize resolves the part size for an object of totalSize bytes.
// totalSize -1 means the length is unknown. A hint of zero or less selects
// automatic sizing: the smallest multiple of MinPartSize that fits the
// object within MaxPartCount parts, with MinPartSize as the floor.
func PartSize(totalSize, hint int64) (int64, error) {
	if hint > 0 {
		if hint < MinPartSize {
			return 0, errors.NewInvalidSizeError(hint,
				fmt.Sprintf("part size is below the %s minimum", humanize.IBytes(uint64(MinPartSize))))
		}
		if hint > MaxPartSize {
			return 0, errors.NewInvalidSizeError(hint,
				fmt.Sprintf("part size is above the %s maximum", humanize.IBytes(uint64(MaxPartSize))))
		}
	}

	if totalSize < 0 {
		if hint > 0 {
			return hint, nil
		}
		return DefaultStreamPartSize, nil
	}

	if totalSize > MaxObjectSize {
		return 0, errors.NewInvalidSizeError(totalSize,
			fmt.Sprintf("object exceeds the %s maximum", humanize.IBytes(uint64(MaxObjectSize))))
	}

	if hint > 0 {
		if count := countParts(totalSize, hint); count > MaxPartCount {
			return 0, errors.NewInvalidSizeError(totalSize,
				fmt.Sprintf("object needs %d parts at the requested part size, the limit is %d", count, MaxPartCount))
		}
		return hint, nil
	}

	size := ceilDiv(ceilDiv(totalSize, MaxPartCount), MinPartSize) * MinPartSize
	if size < MinPartSize {
		size = MinPartSize
	}
	return size, nil
}

// Plan lays out the parts for an object of known size. The returned parts
// are contiguous, 1-based, and cover exactly [0, totalSize); every part is
// the resolved part size except the final remainder. A single-element plan
// signals that the object fits in one request.
func Plan(totalSize, hint int64) ([]Part, error) {
	if totalSize < 0 {
		return nil, errors.NewInvalidSizeError(totalSize, "cannot plan parts for an unknown length")
	}
	size, err := PartSize(totalSize, hint)
	if err != nil {
		return nil, err
	}

	if totalSize == 0 {
		return []Part{{Number: 1, Offset: 0, Length: 0}}, nil
	}

	parts := make([]Part, 0, countParts(totalSize, size))
	for number, offset := 1, int64(0); offset < totalSize; number, offset = number+1, offset+size {
		length := size
		if remaining := totalSize - offset; remaining < length {
			length = remaining
		}
		parts = append(parts, Part{Number: number, Offset: offset, Length: length})
	}
	return parts, nil
}

func countParts(totalSize, partSize int64) int {
	if totalSize == 0 {
		return 1
	}
	return int((totalSize + partSize - 1) / partSize)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
