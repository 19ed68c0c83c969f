//go:build !linux

// File: socket/platform_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package socket

import (
	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sockaddr"
)

func familyOf(sa sockaddr.SockAddr) (int, error) {
	return 0, api.ErrNotSupported
}

func openStream(family int) (int, error) {
	return -1, api.ErrNotSupported
}

func closeFD(fd int) error {
	return api.ErrNotSupported
}

func shutdownFD(fd int, write bool) error {
	return api.ErrNotSupported
}

func bindListen(fd int, sa sockaddr.SockAddr, backlog int) error {
	return api.ErrNotSupported
}

func localAddrOf(fd int) (sockaddr.SockAddr, error) {
	return nil, api.ErrNotSupported
}
