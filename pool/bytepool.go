// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool hands out fixed-size byte buffers backed by sync.Pool.
// Returned buffers always have length == size.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool builds a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		panic("byte pool size must be positive")
	}
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Get returns a buffer from the pool.
func (b *BytePool) Get() []byte {
	return *(b.p.Get().(*[]byte))
}

// Put returns a buffer to the pool. Buffers of a foreign size are
// dropped for the GC rather than poisoning the pool.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}

// Size returns the fixed buffer length this pool serves.
func (b *BytePool) Size() int { return b.size }
