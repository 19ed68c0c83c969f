//go:build linux

// File: ring/ring_linux.go
// Author: momentics <momentics@gmail.com>
//
// Ring lifecycle, submission path and dispatcher loop.

package ring

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/pool"
	"github.com/momentics/hioload-sock/reactor"
)

// DefaultDepth is the submission queue capacity used when New is
// given a non-positive depth.
const DefaultDepth = 1024

// pendingOp couples a submission entry with its completion slot.
// The sqe and its buffers belong to the dispatcher goroutine from
// enqueue until the result is posted on res.
type pendingOp struct {
	sqe *api.SQE
	res chan int

	// cancel is set by the submitter when its context is done. The
	// dispatcher consults it before executing or retrying the op, so a
	// cancellation that raced ahead of the submission queue drain is
	// never lost.
	cancel atomic.Bool

	// dispatcher-owned bookkeeping
	done    bool
	parkDir reactor.Interest
}

// Ring is the Linux completion ring. One dispatcher goroutine owns all
// descriptor state; concurrent callers interact only through the
// submission queue and the per-operation result channels.
type Ring struct {
	rx      reactor.EventReactor
	sq      *pool.RingBuffer[*pendingOp]
	cancels *pool.RingBuffer[uint64]
	efd     int

	mu       sync.RWMutex // orders submissions against shutdown
	closed   atomic.Bool  // no new submissions; may be set by the loop itself
	released atomic.Bool  // final teardown ran, descriptors reclaimed
	refs     atomic.Int64
	tokens   atomic.Uint64
	done     chan struct{}
}

var _ api.CompletionRing = (*Ring)(nil)

// New builds a ring with the given submission queue depth (rounded up
// to a power of two) and starts its dispatcher.
func New(depth int) (*Ring, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	rx, err := reactor.NewReactor()
	if err != nil {
		return nil, err
	}
	efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		rx.Close()
		return nil, err
	}
	if err := rx.Add(efd, reactor.Read); err != nil {
		unix.Close(efd)
		rx.Close()
		return nil, err
	}
	r := &Ring{
		rx:      rx,
		sq:      pool.NewRingBuffer[*pendingOp](ceilPow2(uint64(depth))),
		cancels: pool.NewRingBuffer[uint64](ceilPow2(uint64(depth))),
		efd:     efd,
		done:    make(chan struct{}),
	}
	r.refs.Store(1)
	go r.loop()
	return r, nil
}

// Submit enqueues one operation and suspends until its completion.
// See api.CompletionRing.
func (r *Ring) Submit(ctx context.Context, configure func(*api.SQE)) (int, error) {
	op := &pendingOp{sqe: &api.SQE{}, res: make(chan int, 1)}
	configure(op.sqe)
	if op.sqe.UserData == 0 {
		op.sqe.UserData = r.tokens.Add(1)
	}

	r.mu.RLock()
	if r.closed.Load() {
		r.mu.RUnlock()
		return 0, api.ErrRingClosed
	}
	ok := r.sq.Enqueue(op)
	r.mu.RUnlock()
	if !ok {
		return 0, api.ErrSubmissionFull
	}
	r.wake()

	select {
	case res := <-op.res:
		return res, nil
	case <-ctx.Done():
		// The kernel side may already be in flight. Mark the op,
		// ask the dispatcher to tear it off, then wait for the
		// definitive result so the caller's buffer is never touched
		// after this call returns. The flag covers an op still
		// sitting in the submission queue, which the token lookup
		// cannot see.
		op.cancel.Store(true)
		r.requestCancel(op.sqe.UserData)
		res := <-op.res
		if res == -int(unix.ECANCELED) {
			return res, ctx.Err()
		}
		return res, nil
	}
}

// Retain adds a sharer reference.
func (r *Ring) Retain() { r.refs.Add(1) }

// Release drops a reference; the last one shuts the dispatcher down,
// waits for it to drain and reclaims the reactor and eventfd. The
// dispatcher may have stored closed on its own after a wait failure,
// so the descriptors are always closed here, never in the loop.
func (r *Ring) Release() error {
	if r.refs.Add(-1) > 0 {
		return nil
	}
	if r.released.Swap(true) {
		return nil
	}
	r.mu.Lock()
	r.closed.Store(true)
	r.mu.Unlock()
	r.wake()
	<-r.done
	err := r.rx.Close()
	if cerr := unix.Close(r.efd); err == nil {
		err = cerr
	}
	return err
}

// requestCancel hands a cancellation token to the dispatcher.
func (r *Ring) requestCancel(token uint64) {
	r.mu.RLock()
	if !r.closed.Load() && r.cancels.Enqueue(token) {
		r.mu.RUnlock()
		r.wake()
		return
	}
	r.mu.RUnlock()
}

// wake kicks the dispatcher out of its reactor wait.
func (r *Ring) wake() {
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	for {
		if _, err := unix.Write(r.efd, one[:]); err != unix.EINTR {
			return
		}
	}
}

func (r *Ring) drainEventfd() {
	var buf [8]byte
	for {
		if _, err := unix.Read(r.efd, buf[:]); err != unix.EINTR {
			return
		}
	}
}

// loop is the dispatcher: it drains cancellations and submissions,
// executes entries, parks the ones that would block, and resumes them
// as the reactor reports readiness.
func (r *Ring) loop() {
	defer close(r.done)
	d := newDispatcher(r)
	events := make([]reactor.Event, 128)
	for {
		d.drainCancels()
		d.drainSubmissions()
		if r.closed.Load() {
			// Catch entries enqueued before closed was published,
			// then fail everything still parked.
			d.drainCancels()
			d.drainSubmissions()
			d.shutdown()
			return
		}
		n, err := r.rx.Wait(events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			r.closed.Store(true)
			continue
		}
		for i := 0; i < n; i++ {
			if events[i].Fd == r.efd {
				r.drainEventfd()
				continue
			}
			d.ready(events[i])
		}
	}
}

func ceilPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
