// File: sockaddr/unix.go
// Author: momentics <momentics@gmail.com>
//
// Conversions to and from golang.org/x/sys/unix Sockaddr values, used
// by the synchronous bind/listen path which goes through the wrapped
// syscalls rather than raw wire buffers.

package sockaddr

import "golang.org/x/sys/unix"

// ToUnix converts the semantic address into the x/sys/unix sockaddr
// form accepted by Bind.
func ToUnix(sa SockAddr) (unix.Sockaddr, error) {
	switch a := sa.(type) {
	case Inet4:
		return &unix.SockaddrInet4{Port: int(a.Port), Addr: a.Addr}, nil
	case Inet6:
		return &unix.SockaddrInet6{Port: int(a.Port), Addr: a.Addr}, nil
	default:
		return nil, &UnsupportedFamilyError{Family: uint16(sa.Family())}
	}
}

// FromUnix converts an x/sys/unix sockaddr back into the semantic
// form. Unix-domain and other families are rejected.
func FromUnix(raw unix.Sockaddr) (SockAddr, error) {
	switch a := raw.(type) {
	case *unix.SockaddrInet4:
		return Inet4{Addr: a.Addr, Port: uint16(a.Port)}, nil
	case *unix.SockaddrInet6:
		return Inet6{Addr: a.Addr, Port: uint16(a.Port)}, nil
	default:
		return nil, &UnsupportedFamilyError{Family: unix.AF_UNSPEC}
	}
}
