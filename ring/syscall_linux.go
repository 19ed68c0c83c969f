//go:build linux

// File: ring/syscall_linux.go
// Author: momentics <momentics@gmail.com>
//
// Raw socket syscalls taking wire-format address buffers, so the
// sockaddr codec output is handed to the kernel untranslated.

package ring

import (
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawConnect issues connect(2) with an already encoded sockaddr.
// Returns 0 on success or the errno.
func rawConnect(fd int, addr []byte) syscall.Errno {
	if len(addr) == 0 {
		return unix.EINVAL
	}
	_, _, errno := unix.Syscall(
		unix.SYS_CONNECT,
		uintptr(fd),
		uintptr(unsafe.Pointer(&addr[0])),
		uintptr(len(addr)),
	)
	return errno
}

// rawAccept issues accept4(2), writing the peer's wire address into
// addr when one is supplied. The new descriptor is created
// non-blocking and close-on-exec.
func rawAccept(fd int, addr []byte) (nfd int, addrLen uint32, errno syscall.Errno) {
	var addrPtr, lenPtr unsafe.Pointer
	addrLen = uint32(len(addr))
	if len(addr) > 0 {
		addrPtr = unsafe.Pointer(&addr[0])
		lenPtr = unsafe.Pointer(&addrLen)
	}
	r0, _, e := unix.Syscall6(
		unix.SYS_ACCEPT4,
		uintptr(fd),
		uintptr(addrPtr),
		uintptr(lenPtr),
		uintptr(unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC),
		0, 0,
	)
	return int(r0), addrLen, e
}

// errnoOf extracts the OS error number from an x/sys/unix error.
func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return int(unix.EIO)
}
