// File: api/ring.go
// Author: momentics <momentics@gmail.com>
//
// Completion-ring contract. Kernel operations are described by a
// submission entry (SQE), enqueued on a ring, and resolve out-of-band
// to a raw integer result: non-negative is a byte count or success
// code, negative is a negated OS error number.

package api

import "context"

// Opcode selects the kernel operation a submission entry describes.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpConnect
	OpRead
	OpWrite
	OpClose
	OpAccept
	OpCancel
)

// String returns the opcode mnemonic.
func (op Opcode) String() string {
	switch op {
	case OpNop:
		return "nop"
	case OpConnect:
		return "connect"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpClose:
		return "close"
	case OpAccept:
		return "accept"
	case OpCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// SQE is a submission queue entry: one kernel operation descriptor.
// Buf and Addr are owned by the ring between submission and completion;
// callers must not reuse them until Submit returns.
type SQE struct {
	Op Opcode

	// Fd is the target descriptor for connect/read/write/close/accept.
	Fd int

	// Buf is the payload window for read and write operations.
	Buf []byte

	// Addr is the wire-format socket address: input for connect,
	// output for accept.
	Addr []byte

	// AddrLen is set on accept completion to the number of valid
	// bytes written into Addr.
	AddrLen uint32

	// UserData correlates this entry with its completion. Zero means
	// the ring assigns a token; OpCancel targets the token of a prior
	// submission.
	UserData uint64
}

// CompletionRing accepts submission entries and suspends the caller
// until the matching completion arrives.
type CompletionRing interface {
	// Submit fills a fresh SQE via configure, enqueues it, and blocks
	// until the completion is reaped. The int result is the raw kernel
	// return value (negative = negated errno). A non-nil error means
	// the operation could not be submitted or was abandoned because
	// the ring shut down; ctx cancellation cancels the in-flight
	// operation before returning.
	Submit(ctx context.Context, configure func(*SQE)) (int, error)

	// Retain adds a reference for a new sharer of the ring. Servers
	// share one ring across many sockets; each client socket owns its
	// own.
	Retain()

	// Release drops a reference. The last release shuts the ring
	// down: parked operations complete with -ECANCELED and further
	// submissions fail with ErrRingClosed.
	Release() error
}
