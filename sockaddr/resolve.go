// File: sockaddr/resolve.go
// Author: momentics <momentics@gmail.com>
//
// Target resolution. Name lookup itself is delegated to the standard
// resolver; this layer only picks a concrete address variant.

package sockaddr

import (
	"context"
	"net"
	"strconv"

	"github.com/momentics/hioload-sock/api"
)

// Resolve turns a "host:port" target into a concrete SockAddr using
// net.DefaultResolver. IPv4 candidates are preferred when the name has
// both families. An empty host resolves to the IPv4 wildcard, which is
// the listen-side convention.
func Resolve(ctx context.Context, address string) (SockAddr, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, api.ErrInvalidArgument
	}
	if host == "" {
		return Inet4{Port: uint16(port)}, nil
	}
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if v4 := ip.IP.To4(); v4 != nil {
			var a Inet4
			copy(a.Addr[:], v4)
			a.Port = uint16(port)
			return a, nil
		}
	}
	for _, ip := range ips {
		if v6 := ip.IP.To16(); v6 != nil {
			var a Inet6
			copy(a.Addr[:], v6)
			a.Port = uint16(port)
			return a, nil
		}
	}
	return nil, api.ErrResolveNoAddress
}
