// Package pool reuses transfer buffers so large uploads and downloads do
// not churn the allocator.
package pool

import (
	"sync"
)

// CopyBufferSize is the size of the buffers used for streaming copies.
const CopyBufferSize = 64 * 1024

var copyPool = sync.Pool{
	New: func() any {
		buf := make([]byte, CopyBufferSize)
		return &buf
	},
}

// GetCopy returns a buffer for io.CopyBuffer. Return it with PutCopy.
func GetCopy() *[]byte {
	return copyPool.Get().(*[]byte)
}

// PutCopy returns a copy buffer to the pool.
func PutCopy(buf *[]byte) {
	copyPool.Put(buf)
}

// Sized pools buffers of one fixed size, such as the part buffers of a
// single upload where every part is the same length.
type Sized struct {
	size int
	pool sync.Pool
}

// NewSized creates a pool whose buffers are exactly size bytes long.
func NewSized(size int) *Sized {
	s := &Sized{size: size}
	s.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return s
}

// Get returns a full-length buffer from the pool.
func (s *Sized) Get() []byte {
	return *s.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool. Buffers that were resized elsewhere
// are dropped rather than pooled.
func (s *Sized) Put(buf []byte) {
	if cap(buf) != s.size {
		return
	}
	buf = buf[:s.size]
	s.pool.Put(&buf)
}
