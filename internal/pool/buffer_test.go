package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCopy(t *testing.T) {
	buf := GetCopy()
	assert.Len(t, *buf, CopyBufferSize)
	PutCopy(buf)

	again := GetCopy()
	assert.Len(t, *again, CopyBufferSize)
	PutCopy(again)
}

func TestSized(t *testing.T) {
	bufs := NewSized(1024)

	buf := bufs.Get()
	assert.Len(t, buf, 1024)
	bufs.Put(buf)

	// A truncated buffer comes back at full length.
	short := bufs.Get()[:10]
	bufs.Put(short)
	assert.Len(t, bufs.Get(), 1024)
}

func TestSizedDropsForeignBuffers(t *testing.T) {
	bufs := NewSized(1024)

	bufs.Put(make([]byte, 512))
	assert.Len(t, bufs.Get(), 1024, "a wrong-sized buffer is never handed back out")
}
