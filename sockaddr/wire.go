// File: sockaddr/wire.go
// Author: momentics <momentics@gmail.com>
//
// Binary encode/decode against the kernel sockaddr layouts. The family
// field lives in native byte order (it is a plain sa_family_t in
// memory), the port in network byte order, and the address bytes in
// their natural big-endian layout.

package sockaddr

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// sockaddr_in:  family(2) port(2,BE) addr(4) zero(8)
// sockaddr_in6: family(2) port(2,BE) flowinfo(4) addr(16) scope_id(4)
const (
	offFamily   = 0
	offPort     = 2
	offAddr4    = 4
	offFlowinfo = 4
	offAddr6    = 8
	offScopeID  = 24
)

// ToWire serializes the address into a freshly allocated wire buffer
// sized exactly for the variant's sockaddr layout.
func ToWire(sa SockAddr) ([]byte, error) {
	switch a := sa.(type) {
	case Inet4:
		buf := make([]byte, WireSizeInet4)
		binary.NativeEndian.PutUint16(buf[offFamily:offFamily+2], uint16(unix.AF_INET))
		binary.BigEndian.PutUint16(buf[offPort:offPort+2], a.Port)
		copy(buf[offAddr4:offAddr4+4], a.Addr[:])
		return buf, nil
	case Inet6:
		buf := make([]byte, WireSizeInet6)
		binary.NativeEndian.PutUint16(buf[offFamily:offFamily+2], uint16(unix.AF_INET6))
		binary.BigEndian.PutUint16(buf[offPort:offPort+2], a.Port)
		copy(buf[offAddr6:offAddr6+16], a.Addr[:])
		return buf, nil
	default:
		return nil, &UnsupportedFamilyError{Family: uint16(sa.Family())}
	}
}

// FromWire decodes a wire buffer into the semantic address. The family
// discriminator is read first; anything other than AF_INET or AF_INET6
// is a hard error, never a silent default.
func FromWire(buf []byte) (SockAddr, error) {
	if len(buf) < offPort {
		return nil, ErrShortBuffer
	}
	family := binary.NativeEndian.Uint16(buf[offFamily : offFamily+2])
	switch family {
	case unix.AF_INET:
		if len(buf) < offAddr4+4 {
			return nil, ErrShortBuffer
		}
		var a Inet4
		a.Port = binary.BigEndian.Uint16(buf[offPort : offPort+2])
		copy(a.Addr[:], buf[offAddr4:offAddr4+4])
		return a, nil
	case unix.AF_INET6:
		if len(buf) < offScopeID+4 {
			return nil, ErrShortBuffer
		}
		var a Inet6
		a.Port = binary.BigEndian.Uint16(buf[offPort : offPort+2])
		copy(a.Addr[:], buf[offAddr6:offAddr6+16])
		return a, nil
	default:
		return nil, &UnsupportedFamilyError{Family: family}
	}
}
