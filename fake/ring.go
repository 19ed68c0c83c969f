// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the core interfaces.

package fake

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-sock/api"
)

// Ring is a scripted in-memory completion ring. Handle is invoked
// synchronously for every submission and its return value becomes the
// raw completion result.
type Ring struct {
	mu        sync.Mutex
	Handle    func(*api.SQE) int
	Submitted []*api.SQE

	refs   atomic.Int64
	closed atomic.Bool
}

var _ api.CompletionRing = (*Ring)(nil)

// NewRing builds a fake ring around a submission handler.
func NewRing(handle func(*api.SQE) int) *Ring {
	r := &Ring{Handle: handle}
	r.refs.Store(1)
	return r
}

// Submit records the entry and resolves it through Handle.
func (r *Ring) Submit(ctx context.Context, configure func(*api.SQE)) (int, error) {
	if r.closed.Load() {
		return 0, api.ErrRingClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sqe := &api.SQE{}
	configure(sqe)
	r.mu.Lock()
	r.Submitted = append(r.Submitted, sqe)
	r.mu.Unlock()
	if r.Handle == nil {
		return 0, nil
	}
	return r.Handle(sqe), nil
}

// Retain adds a sharer reference.
func (r *Ring) Retain() { r.refs.Add(1) }

// Release drops a reference, closing the fake on the last one.
func (r *Ring) Release() error {
	if r.refs.Add(-1) <= 0 {
		r.closed.Store(true)
	}
	return nil
}

// Closed reports whether the last reference was released.
func (r *Ring) Closed() bool { return r.closed.Load() }

// Ops returns the opcode order of everything submitted so far.
func (r *Ring) Ops() []api.Opcode {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]api.Opcode, len(r.Submitted))
	for i, sqe := range r.Submitted {
		ops[i] = sqe.Op
	}
	return ops
}
