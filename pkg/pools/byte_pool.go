package pools

import (
	"sync"
)

// Frame buffer size classes. A JSON frame costs roughly 50 bytes per body,
// so the classes cover a handful of bodies up to a page past the prune
// ceiling.
const (
	SmallSize  = 1 << 10
	MediumSize = 4 << 10
	LargeSize  = 16 << 10
	HugeSize   = 64 << 10
	MaxPool    = 256 << 10 // Don't pool buffers larger than this
)

var sizeClasses = [...]int{SmallSize, MediumSize, LargeSize, HugeSize, MaxPool}

// BytePool provides size-class based pooling for byte slices
type BytePool struct {
	classes [len(sizeClasses)]sync.Pool
}

// NewBytePool creates a new byte pool
func NewBytePool() *BytePool {
	p := &BytePool{}
	for i, size := range sizeClasses {
		size := size
		p.classes[i].New = func() any {
			b := make([]byte, 0, size)
			return &b
		}
	}
	return p
}

// classFor returns the smallest class holding size, or -1
func classFor(size int) int {
	for i, c := range sizeClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// Get returns a zero-length slice with at least the requested capacity
func (p *BytePool) Get(size int) []byte {
	i := classFor(size)
	if i < 0 {
		return make([]byte, 0, size)
	}
	bp, ok := p.classes[i].Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, sizeClasses[i])
	}
	return (*bp)[:0]
}

// Put returns a slice to the pool. Slices are filed under the largest class
// their capacity satisfies; oversized or undersized slices are dropped.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool || c < SmallSize {
		return
	}
	i := len(sizeClasses) - 1
	for i > 0 && sizeClasses[i] > c {
		i--
	}
	b = b[:0]
	p.classes[i].Put(&b)
}

var defaultBytePool = NewBytePool()

// DefaultBytePool returns the process-wide pool behind GetBytes and PutBytes
func DefaultBytePool() *BytePool {
	return defaultBytePool
}

// GetBytes returns a byte slice from the default pool
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// PutBytes returns a byte slice to the default pool
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
