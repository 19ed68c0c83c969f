// Package sockaddr
// Author: momentics <momentics@gmail.com>
//
// Address codec between the semantic socket address (tagged IPv4/IPv6
// host plus port) and the kernel's binary sockaddr_in/sockaddr_in6
// layouts. Port values are host-order in the semantic type and network
// byte order on the wire; the family discriminator follows the native
// layout of sa_family_t.
package sockaddr
