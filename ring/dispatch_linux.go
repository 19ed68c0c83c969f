//go:build linux

// File: ring/dispatch_linux.go
// Author: momentics <momentics@gmail.com>
//
// Dispatcher state machine. Everything here runs on the single
// dispatcher goroutine; no locking is needed around fd state, parked
// queues, or SQE buffers.

package ring

import (
	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/reactor"
)

// fdState tracks the parked operations of one descriptor, FIFO per
// direction so completions never reorder same-direction submissions.
type fdState struct {
	readQ     *queue.Queue // parked *pendingOp: read, accept
	writeQ    *queue.Queue // parked *pendingOp: write, connect
	liveRead  int
	liveWrite int
	interest  reactor.Interest
}

type dispatcher struct {
	r      *Ring
	states map[int]*fdState
	parked map[uint64]*pendingOp // token -> parked op, for cancellation

	// tombs holds descriptors this dispatcher has closed. An entry
	// blocks every later operation on that fd number: the number may
	// already belong to someone else's descriptor, so touching it
	// again would read or write a stranger's socket. The tomb is
	// lifted when accept hands the same number back as a fresh
	// connection.
	tombs map[int]struct{}
}

func newDispatcher(r *Ring) *dispatcher {
	return &dispatcher{
		r:      r,
		states: make(map[int]*fdState),
		parked: make(map[uint64]*pendingOp),
		tombs:  make(map[int]struct{}),
	}
}

// complete posts the raw result and clears any parked bookkeeping.
// Safe to call at most effectively once per op; later calls no-op.
func (d *dispatcher) complete(op *pendingOp, res int) {
	if op.done {
		return
	}
	op.done = true
	if op.parkDir != 0 {
		if st := d.states[op.sqe.Fd]; st != nil {
			if op.parkDir&reactor.Read != 0 {
				st.liveRead--
			}
			if op.parkDir&reactor.Write != 0 {
				st.liveWrite--
			}
		}
		delete(d.parked, op.sqe.UserData)
		op.parkDir = 0
	}
	op.res <- res
}

func (d *dispatcher) drainSubmissions() {
	for {
		op, ok := d.r.sq.Dequeue()
		if !ok {
			return
		}
		d.execute(op)
	}
}

func (d *dispatcher) drainCancels() {
	for {
		token, ok := d.r.cancels.Dequeue()
		if !ok {
			return
		}
		d.cancelToken(token)
	}
}

func (d *dispatcher) execute(op *pendingOp) {
	if op.cancel.Load() {
		d.complete(op, -int(unix.ECANCELED))
		return
	}
	if op.sqe.Op != api.OpNop && op.sqe.Op != api.OpCancel {
		if _, dead := d.tombs[op.sqe.Fd]; dead {
			d.complete(op, -int(unix.ECANCELED))
			return
		}
	}
	switch op.sqe.Op {
	case api.OpNop:
		d.complete(op, 0)
	case api.OpConnect:
		if errno := rawConnect(op.sqe.Fd, op.sqe.Addr); errno == 0 {
			d.complete(op, 0)
		} else if errno == unix.EINPROGRESS || errno == unix.EAGAIN || errno == unix.EALREADY || errno == unix.EINTR {
			d.park(op, reactor.Write)
		} else {
			d.complete(op, -int(errno))
		}
	case api.OpRead:
		if !d.attemptRead(op) {
			d.park(op, reactor.Read)
		}
	case api.OpWrite:
		if !d.attemptWrite(op) {
			d.park(op, reactor.Write)
		}
	case api.OpAccept:
		if !d.attemptAccept(op) {
			d.park(op, reactor.Read)
		}
	case api.OpClose:
		d.execClose(op)
	case api.OpCancel:
		if d.cancelToken(op.sqe.UserData) {
			d.complete(op, 0)
		} else {
			d.complete(op, -int(unix.ENOENT))
		}
	default:
		d.complete(op, -int(unix.EINVAL))
	}
}

// attemptRead returns true once the op completed (either way); false
// means it would block and must be parked or stay parked.
func (d *dispatcher) attemptRead(op *pendingOp) bool {
	for {
		n, err := unix.Read(op.sqe.Fd, op.sqe.Buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return false
		case err != nil:
			d.complete(op, -errnoOf(err))
			return true
		default:
			d.complete(op, n)
			return true
		}
	}
}

func (d *dispatcher) attemptWrite(op *pendingOp) bool {
	for {
		n, err := unix.Write(op.sqe.Fd, op.sqe.Buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return false
		case err != nil:
			d.complete(op, -errnoOf(err))
			return true
		default:
			d.complete(op, n)
			return true
		}
	}
}

func (d *dispatcher) attemptAccept(op *pendingOp) bool {
	for {
		nfd, addrLen, errno := rawAccept(op.sqe.Fd, op.sqe.Addr)
		switch errno {
		case 0:
			// The kernel may hand back a number we closed earlier;
			// it is a fresh descriptor now.
			delete(d.tombs, nfd)
			op.sqe.AddrLen = addrLen
			d.complete(op, nfd)
			return true
		case unix.EINTR, unix.ECONNABORTED:
			continue
		case unix.EAGAIN:
			return false
		default:
			d.complete(op, -int(errno))
			return true
		}
	}
}

// finishConnect resolves a parked connect once the descriptor reports
// writable: SO_ERROR carries the outcome.
func (d *dispatcher) finishConnect(op *pendingOp) bool {
	soerr, err := unix.GetsockoptInt(op.sqe.Fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		d.complete(op, -errnoOf(err))
		return true
	}
	if soerr != 0 {
		d.complete(op, -soerr)
		return true
	}
	d.complete(op, 0)
	return true
}

// execClose tears off every parked operation on the descriptor, drops
// its reactor registration, tombstones the number and closes it. The
// descriptor must never be handed back to the kernel while a parked
// read could still write into a caller's buffer, which is why
// cancellation precedes close; the tombstone blocks any straggler that
// was enqueued after the close entry.
func (d *dispatcher) execClose(op *pendingOp) {
	fd := op.sqe.Fd
	if st, ok := d.states[fd]; ok {
		d.cancelQueue(st.readQ)
		d.cancelQueue(st.writeQ)
		if st.interest != 0 {
			d.r.rx.Del(fd)
		}
		delete(d.states, fd)
	}
	d.tombs[fd] = struct{}{}
	if err := unix.Close(fd); err != nil {
		d.complete(op, -errnoOf(err))
		return
	}
	d.complete(op, 0)
}

func (d *dispatcher) cancelQueue(q *queue.Queue) {
	for q.Length() > 0 {
		op := q.Remove().(*pendingOp)
		if !op.done {
			d.complete(op, -int(unix.ECANCELED))
		}
	}
}

// cancelToken completes a parked op with -ECANCELED. Returns false if
// the token is unknown (already completed or never parked).
func (d *dispatcher) cancelToken(token uint64) bool {
	op, ok := d.parked[token]
	if !ok {
		return false
	}
	fd := op.sqe.Fd
	d.complete(op, -int(unix.ECANCELED))
	if st := d.states[fd]; st != nil {
		d.updateInterest(fd, st)
	}
	return true
}

func (d *dispatcher) stateOf(fd int) *fdState {
	st, ok := d.states[fd]
	if !ok {
		st = &fdState{readQ: queue.New(), writeQ: queue.New()}
		d.states[fd] = st
	}
	return st
}

// park queues the op on its direction FIFO and registers readiness
// interest. A registration failure fails the op instead of wedging it.
func (d *dispatcher) park(op *pendingOp, dir reactor.Interest) {
	st := d.stateOf(op.sqe.Fd)
	op.parkDir = dir
	if dir&reactor.Read != 0 {
		st.readQ.Add(op)
		st.liveRead++
	} else {
		st.writeQ.Add(op)
		st.liveWrite++
	}
	d.parked[op.sqe.UserData] = op
	if err := d.updateInterest(op.sqe.Fd, st); err != nil {
		d.complete(op, -errnoOf(err))
		d.updateInterest(op.sqe.Fd, st)
	}
}

// updateInterest reconciles the reactor registration with the live
// parked counts and drops empty fd state.
func (d *dispatcher) updateInterest(fd int, st *fdState) error {
	var want reactor.Interest
	if st.liveRead > 0 {
		want |= reactor.Read
	}
	if st.liveWrite > 0 {
		want |= reactor.Write
	}
	if want == st.interest {
		d.maybeDrop(fd, st)
		return nil
	}
	var err error
	switch {
	case st.interest == 0:
		err = d.r.rx.Add(fd, want)
	case want == 0:
		err = d.r.rx.Del(fd)
	default:
		err = d.r.rx.Mod(fd, want)
	}
	if err == nil {
		st.interest = want
	}
	d.maybeDrop(fd, st)
	return err
}

func (d *dispatcher) maybeDrop(fd int, st *fdState) {
	if st.liveRead == 0 && st.liveWrite == 0 && st.interest == 0 {
		delete(d.states, fd)
	}
}

// ready resumes parked operations on a descriptor that became ready.
func (d *dispatcher) ready(ev reactor.Event) {
	st, ok := d.states[ev.Fd]
	if !ok {
		return
	}
	if ev.Ready&reactor.Read != 0 {
		d.drainParked(st.readQ)
	}
	if ev.Ready&reactor.Write != 0 {
		d.drainParked(st.writeQ)
	}
	d.updateInterest(ev.Fd, st)
}

// drainParked retries queued ops in FIFO order until one would still
// block. Entries completed by cancellation are skipped.
func (d *dispatcher) drainParked(q *queue.Queue) {
	for q.Length() > 0 {
		op := q.Peek().(*pendingOp)
		if op.done {
			q.Remove()
			continue
		}
		if !d.retry(op) {
			return
		}
		q.Remove()
	}
}

func (d *dispatcher) retry(op *pendingOp) bool {
	if op.cancel.Load() {
		d.complete(op, -int(unix.ECANCELED))
		return true
	}
	switch op.sqe.Op {
	case api.OpConnect:
		return d.finishConnect(op)
	case api.OpRead:
		return d.attemptRead(op)
	case api.OpWrite:
		return d.attemptWrite(op)
	case api.OpAccept:
		return d.attemptAccept(op)
	default:
		d.complete(op, -int(unix.EINVAL))
		return true
	}
}

// shutdown fails everything still queued or parked. Pending close
// operations are executed rather than cancelled so descriptors are
// reclaimed even during teardown.
func (d *dispatcher) shutdown() {
	for {
		op, ok := d.r.sq.Dequeue()
		if !ok {
			break
		}
		if op.sqe.Op == api.OpClose {
			if _, dead := d.tombs[op.sqe.Fd]; dead {
				d.complete(op, -int(unix.ECANCELED))
				continue
			}
			d.execClose(op)
			continue
		}
		d.complete(op, -int(unix.ECANCELED))
	}
	for fd, st := range d.states {
		d.cancelQueue(st.readQ)
		d.cancelQueue(st.writeQ)
		if st.interest != 0 {
			d.r.rx.Del(fd)
		}
		delete(d.states, fd)
	}
}
