// Package socket is the public entry point of hioload-sock: TCP
// sockets whose reads, writes, connects and closes are submitted to a
// completion ring. Dial constructs client sockets (one ring per
// socket); Listen constructs a listener whose accepted sockets share
// its ring. Reads are serialized by a read permit and writes by a
// write permit, so at most one submission per direction is in flight
// on a socket while the two directions proceed concurrently.
//
// Author: momentics <momentics@gmail.com>
package socket
