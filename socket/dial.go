// File: socket/dial.go
// Author: momentics <momentics@gmail.com>
//
// Connector: resolve, open, connect through the ring. Each client
// socket is created with its own ring instance.

package socket

import (
	"context"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/ring"
	"github.com/momentics/hioload-sock/sockaddr"
)

// Dial connects to a TCP "host:port" target and returns a live Socket.
// On every failure path past socket creation the descriptor is
// reclaimed through the ring before the error is returned; no path
// leaks it.
func Dial(ctx context.Context, address string, opts ...Option) (*Socket, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	raddr, err := sockaddr.Resolve(ctx, address)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s: resolve", address)
	}

	r, err := ring.New(cfg.ringDepth)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s: ring", address)
	}

	family, err := familyOf(raddr)
	if err != nil {
		r.Release()
		return nil, errors.Wrapf(err, "dial %s", address)
	}

	fd, err := openStream(family)
	if err != nil {
		r.Release()
		return nil, errors.Wrapf(err, "dial %s: socket", address)
	}

	// Scoped release: close is submitted through the ring so a connect
	// still in flight is cancelled before the descriptor goes away.
	release := func() {
		_, _ = r.Submit(context.Background(), func(sqe *api.SQE) {
			sqe.Op = api.OpClose
			sqe.Fd = fd
		})
		_ = r.Release()
	}

	wire, err := sockaddr.ToWire(raddr)
	if err != nil {
		release()
		return nil, errors.Wrapf(err, "dial %s", address)
	}

	res, err := r.Submit(ctx, func(sqe *api.SQE) {
		sqe.Op = api.OpConnect
		sqe.Fd = fd
		sqe.Addr = wire
	})
	if err != nil {
		release()
		return nil, errors.Wrapf(err, "dial %s", address)
	}
	if cerr := api.CompletionErr("connect", res); cerr != nil {
		release()
		return nil, errors.Wrapf(cerr, "dial %s", address)
	}

	return newSocket(fd, r, raddr, cfg), nil
}
