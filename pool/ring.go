// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Bounded lock-free ring buffer (power-of-two capacity) with
// per-slot sequence numbers. Safe for many producers and many
// consumers; the submission path uses it many-producers,
// one-consumer.

package pool

import "sync/atomic"

type slot[T any] struct {
	seq uint64
	val T
}

// RingBuffer is a fixed-capacity lock-free FIFO.
type RingBuffer[T any] struct {
	slots []slot[T]
	mask  uint64
	_     [64]byte // separate producer and consumer cursors
	head  uint64
	_     [64]byte
	tail  uint64
}

// NewRingBuffer allocates a ring buffer with the given capacity,
// which must be a power of two.
func NewRingBuffer[T any](size uint64) *RingBuffer[T] {
	if size == 0 || (size&(size-1)) != 0 {
		panic("ring buffer size must be power of two")
	}
	r := &RingBuffer[T]{
		slots: make([]slot[T], size),
		mask:  size - 1,
	}
	for i := range r.slots {
		r.slots[i].seq = uint64(i)
	}
	return r
}

// Enqueue adds an item; returns false if the ring is full.
func (r *RingBuffer[T]) Enqueue(val T) bool {
	pos := atomic.LoadUint64(&r.tail)
	for {
		s := &r.slots[pos&r.mask]
		seq := atomic.LoadUint64(&s.seq)
		switch d := int64(seq) - int64(pos); {
		case d == 0:
			if atomic.CompareAndSwapUint64(&r.tail, pos, pos+1) {
				s.val = val
				atomic.StoreUint64(&s.seq, pos+1)
				return true
			}
			pos = atomic.LoadUint64(&r.tail)
		case d < 0:
			return false
		default:
			pos = atomic.LoadUint64(&r.tail)
		}
	}
}

// Dequeue removes the oldest item; ok==false if the ring is empty.
func (r *RingBuffer[T]) Dequeue() (res T, ok bool) {
	pos := atomic.LoadUint64(&r.head)
	for {
		s := &r.slots[pos&r.mask]
		seq := atomic.LoadUint64(&s.seq)
		switch d := int64(seq) - int64(pos+1); {
		case d == 0:
			if atomic.CompareAndSwapUint64(&r.head, pos, pos+1) {
				res = s.val
				var zero T
				s.val = zero
				atomic.StoreUint64(&s.seq, pos+r.mask+1)
				return res, true
			}
			pos = atomic.LoadUint64(&r.head)
		case d < 0:
			return res, false
		default:
			pos = atomic.LoadUint64(&r.head)
		}
	}
}

// Len returns the current number of items.
func (r *RingBuffer[T]) Len() int {
	tail := atomic.LoadUint64(&r.tail)
	head := atomic.LoadUint64(&r.head)
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Cap returns the fixed capacity.
func (r *RingBuffer[T]) Cap() int { return len(r.slots) }
