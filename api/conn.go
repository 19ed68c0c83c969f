// File: api/conn.go
// Author: momentics <momentics@gmail.com>
//
// Defines the byte-stream connection abstraction exposed to upstream
// layers that do not care whether the backing I/O is ring-mediated.

package api

// Conn abstracts a full-duplex stream connection backed by a raw
// descriptor.
type Conn interface {
	// Read reads into a preallocated buffer.
	Read(p []byte) (n int, err error)

	// Write writes the full buffer contents into the connection,
	// looping over partial transfers.
	Write(p []byte) (n int, err error)

	// Close shuts down the connection and releases the descriptor.
	Close() error

	// RawFD returns the underlying OS-level file descriptor.
	RawFD() uintptr
}

// BytePool defines a reusable fixed-size buffer pool.
type BytePool interface {
	Get() []byte
	Put([]byte)
}
