//go:build linux

// File: socket/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Synchronous descriptor plumbing: open, bind/listen, half-close and
// getsockname. Only non-blocking metadata calls live here; everything
// that can block goes through the ring.

package socket

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sock/api"
	"github.com/momentics/hioload-sock/sockaddr"
)

// familyOf maps the address variant to the socket domain. Exhaustive
// over the codec's variants.
func familyOf(sa sockaddr.SockAddr) (int, error) {
	switch sa.(type) {
	case sockaddr.Inet4:
		return unix.AF_INET, nil
	case sockaddr.Inet6:
		return unix.AF_INET6, nil
	default:
		return 0, &sockaddr.UnsupportedFamilyError{Family: uint16(sa.Family())}
	}
}

// openStream opens a non-blocking, close-on-exec TCP socket in the
// given domain.
func openStream(family int) (int, error) {
	return unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
}

func closeFD(fd int) error {
	return unix.Close(fd)
}

func shutdownFD(fd int, write bool) error {
	how := unix.SHUT_RD
	if write {
		how = unix.SHUT_WR
	}
	return unix.Shutdown(fd, how)
}

// bindListen binds the descriptor and puts it into listening state.
func bindListen(fd int, sa sockaddr.SockAddr, backlog int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return err
	}
	usa, err := sockaddr.ToUnix(sa)
	if err != nil {
		return err
	}
	if err := unix.Bind(fd, usa); err != nil {
		return err
	}
	return unix.Listen(fd, backlog)
}

// localAddrOf issues getsockname(2) and decodes the wire address.
func localAddrOf(fd int) (sockaddr.SockAddr, error) {
	buf := make([]byte, sockaddr.WireSizeAny)
	l := uint32(len(buf))
	_, _, errno := unix.Syscall(
		unix.SYS_GETSOCKNAME,
		uintptr(fd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&l)),
	)
	if errno != 0 {
		return nil, api.CompletionErr("getsockname", -int(errno))
	}
	return sockaddr.FromWire(buf[:l])
}
