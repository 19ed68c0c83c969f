// File: socket/socket.go
// Author: momentics <momentics@gmail.com>
//
// Socket entity and lifecycle. The descriptor is valid exactly between
// a successful open and the submission of the close operation; once
// close is submitted no further operation reaches this fd.

package socket

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/pool"
	"github.com/momentics/hioload-sock/sockaddr"
)

// Socket is a connected TCP stream backed by a completion ring.
type Socket struct {
	fd     int
	ring   api.CompletionRing
	remote sockaddr.SockAddr

	readPermit  permit
	writePermit permit

	chunkSize int
	chunkPool *pool.BytePool

	closed atomic.Bool
}

var _ api.Conn = (*Socket)(nil)

func newSocket(fd int, r api.CompletionRing, remote sockaddr.SockAddr, cfg config) *Socket {
	return &Socket{
		fd:          fd,
		ring:        r,
		remote:      remote,
		readPermit:  newPermit(),
		writePermit: newPermit(),
		chunkSize:   cfg.chunkSize,
		chunkPool:   pool.NewBytePool(cfg.chunkSize),
	}
}

// RemoteAddr returns the peer address captured at connect or accept
// time. It never fails and performs no syscall.
func (s *Socket) RemoteAddr() sockaddr.SockAddr { return s.remote }

// LocalAddr issues getsockname synchronously (it cannot block, so it
// bypasses the ring) and decodes the wire address. Unsupported
// families surface as a decode error naming the family.
func (s *Socket) LocalAddr() (sockaddr.SockAddr, error) {
	if s.closed.Load() {
		return nil, api.ErrSocketClosed
	}
	return localAddrOf(s.fd)
}

// RawFD returns the underlying OS-level file descriptor.
func (s *Socket) RawFD() uintptr { return uintptr(s.fd) }

// Close submits the close operation through the ring and drops the
// socket's ring reference. Idempotent. Operations still parked on the
// ring are cancelled before the descriptor is reclaimed, so the kernel
// never writes into a buffer whose owner has moved on.
func (s *Socket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	fd := s.fd
	res, err := s.ring.Submit(context.Background(), func(sqe *api.SQE) {
		sqe.Op = api.OpClose
		sqe.Fd = fd
	})
	relErr := s.ring.Release()
	if errors.Is(err, api.ErrRingClosed) {
		// The shared ring was released first (listener teardown):
		// reclaim the descriptor synchronously instead of leaking it.
		return closeFD(fd)
	}
	if err != nil {
		return err
	}
	if cerr := api.CompletionErr("close", res); cerr != nil {
		return cerr
	}
	return relErr
}

// CloseRead half-closes the receive side. Like getsockname this is a
// non-blocking metadata call and stays off the ring.
func (s *Socket) CloseRead() error {
	if s.closed.Load() {
		return api.ErrSocketClosed
	}
	return shutdownFD(s.fd, false)
}

// CloseWrite half-closes the send side, signalling end of output to
// the peer.
func (s *Socket) CloseWrite() error {
	if s.closed.Load() {
		return api.ErrSocketClosed
	}
	return shutdownFD(s.fd, true)
}
