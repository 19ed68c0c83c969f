// File: sockaddr/sockaddr.go
// Author: momentics <momentics@gmail.com>

package sockaddr

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Family is the kernel address family discriminator.
type Family uint16

const (
	FamilyInet4 Family = unix.AF_INET
	FamilyInet6 Family = unix.AF_INET6
)

// Wire layout sizes, matching sockaddr_in / sockaddr_in6 / the generic
// sockaddr storage used for accept and getsockname out-buffers.
const (
	WireSizeInet4 = unix.SizeofSockaddrInet4
	WireSizeInet6 = unix.SizeofSockaddrInet6
	WireSizeAny   = unix.SizeofSockaddrAny
)

// ErrShortBuffer reports a wire buffer too small for its declared family.
var ErrShortBuffer = errors.New("sockaddr: wire buffer too short")

// UnsupportedFamilyError reports an address family the codec does not
// handle. Only AF_INET and AF_INET6 are supported.
type UnsupportedFamilyError struct {
	Family uint16
}

// Error implements the error interface.
func (e *UnsupportedFamilyError) Error() string {
	return fmt.Sprintf("sockaddr: unsupported address family %d", e.Family)
}

// SockAddr is a tagged IPv4/IPv6 socket address. The two concrete
// variants are Inet4 and Inet6; every encode/decode boundary switches
// over them exhaustively.
type SockAddr interface {
	// Family returns the variant's address family tag.
	Family() Family

	// AddrPort returns the address in net/netip form.
	AddrPort() netip.AddrPort

	// String renders "host:port" with IPv6 hosts bracketed.
	String() string
}

// Inet4 is an IPv4 address and port. Port is in host representation.
type Inet4 struct {
	Addr [4]byte
	Port uint16
}

// Family returns FamilyInet4.
func (a Inet4) Family() Family { return FamilyInet4 }

// AddrPort returns the address in net/netip form.
func (a Inet4) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), a.Port)
}

// String renders "a.b.c.d:port".
func (a Inet4) String() string {
	return net.JoinHostPort(netip.AddrFrom4(a.Addr).String(), strconv.Itoa(int(a.Port)))
}

// Inet6 is an IPv6 address and port. Zone identifiers are not carried
// beyond the raw address bytes.
type Inet6 struct {
	Addr [16]byte
	Port uint16
}

// Family returns FamilyInet6.
func (a Inet6) Family() Family { return FamilyInet6 }

// AddrPort returns the address in net/netip form.
func (a Inet6) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), a.Port)
}

// String renders "[h]:port".
func (a Inet6) String() string {
	return net.JoinHostPort(netip.AddrFrom16(a.Addr).String(), strconv.Itoa(int(a.Port)))
}

// FromNetIP converts a net.IP and host-order port into the matching
// SockAddr variant. Four-byte-mappable addresses become Inet4.
func FromNetIP(ip net.IP, port uint16) (SockAddr, error) {
	if v4 := ip.To4(); v4 != nil {
		var a Inet4
		copy(a.Addr[:], v4)
		a.Port = port
		return a, nil
	}
	if v6 := ip.To16(); v6 != nil {
		var a Inet6
		copy(a.Addr[:], v6)
		a.Port = port
		return a, nil
	}
	return nil, &UnsupportedFamilyError{Family: unix.AF_UNSPEC}
}
