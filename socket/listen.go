// File: socket/listen.go
// Author: momentics <momentics@gmail.com>
//
// Listener path: bind, listen, and a ring-mediated accept loop.
// Accepted sockets share the listener's ring; each Accept call submits
// exactly one accept operation, so callers pace the accept rate.

package socket

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/ring"
	"github.com/momentics/hioload-sock/sockaddr"
)

// Listener is a bound, listening TCP socket producing ring-backed
// connections.
type Listener struct {
	fd     int
	ring   api.CompletionRing
	bound  sockaddr.SockAddr
	cfg    config
	closed atomic.Bool
}

// Listen binds and listens on a TCP "host:port" address. An empty host
// binds the IPv4 wildcard; port 0 picks an ephemeral port, readable
// from Addr afterwards.
func Listen(ctx context.Context, address string, opts ...Option) (*Listener, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	laddr, err := sockaddr.Resolve(ctx, address)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s: resolve", address)
	}

	r, err := ring.New(cfg.ringDepth)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s: ring", address)
	}

	family, err := familyOf(laddr)
	if err != nil {
		r.Release()
		return nil, errors.Wrapf(err, "listen %s", address)
	}

	fd, err := openStream(family)
	if err != nil {
		r.Release()
		return nil, errors.Wrapf(err, "listen %s: socket", address)
	}

	release := func() {
		_, _ = r.Submit(context.Background(), func(sqe *api.SQE) {
			sqe.Op = api.OpClose
			sqe.Fd = fd
		})
		_ = r.Release()
	}

	if err := bindListen(fd, laddr, cfg.backlog); err != nil {
		release()
		return nil, errors.Wrapf(err, "listen %s", address)
	}

	bound, err := localAddrOf(fd)
	if err != nil {
		release()
		return nil, errors.Wrapf(err, "listen %s", address)
	}

	return &Listener{fd: fd, ring: r, bound: bound, cfg: cfg}, nil
}

// Addr returns the actual bound address.
func (l *Listener) Addr() sockaddr.SockAddr { return l.bound }

// Accept waits for one inbound connection. The accepted socket
// inherits the listener's options and shares its ring.
func (l *Listener) Accept(ctx context.Context) (*Socket, error) {
	if l.closed.Load() {
		return nil, api.ErrListenerClosed
	}
	addrBuf := make([]byte, sockaddr.WireSizeAny)
	lfd := l.fd
	var entry *api.SQE
	res, err := l.ring.Submit(ctx, func(sqe *api.SQE) {
		entry = sqe
		sqe.Op = api.OpAccept
		sqe.Fd = lfd
		sqe.Addr = addrBuf
	})
	if err != nil {
		if errors.Is(err, api.ErrRingClosed) {
			return nil, api.ErrListenerClosed
		}
		return nil, err
	}
	if aerr := api.CompletionErr("accept", res); aerr != nil {
		var ioe *api.IOError
		if errors.As(aerr, &ioe) && ioe.Canceled() {
			return nil, api.ErrListenerClosed
		}
		return nil, aerr
	}

	remote, err := sockaddr.FromWire(addrBuf[:entry.AddrLen])
	if err != nil {
		_ = closeFD(res)
		return nil, errors.Wrap(err, "accept: peer address")
	}

	l.ring.Retain()
	return newSocket(res, l.ring, remote, l.cfg), nil
}

// Sockets returns a lazy stream of accepted connections, one accept
// operation in flight at a time. The stream ends when the listener
// closes; any other failure is yielded once before the stream stops.
func (l *Listener) Sockets(ctx context.Context) iter.Seq2[*Socket, error] {
	return func(yield func(*Socket, error) bool) {
		for {
			s, err := l.Accept(ctx)
			if err != nil {
				if errors.Is(err, api.ErrListenerClosed) {
					return
				}
				yield(nil, err)
				return
			}
			if !yield(s, nil) {
				return
			}
		}
	}
}

// Close cancels pending accepts, closes the listening descriptor and
// drops the listener's ring reference. Idempotent. Sockets already
// accepted keep the shared ring alive through their own references.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	fd := l.fd
	res, err := l.ring.Submit(context.Background(), func(sqe *api.SQE) {
		sqe.Op = api.OpClose
		sqe.Fd = fd
	})
	relErr := l.ring.Release()
	if errors.Is(err, api.ErrRingClosed) {
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
