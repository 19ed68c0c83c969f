// Package reactor provides the readiness demultiplexer used by the
// completion ring's dispatcher, with an epoll implementation on Linux
// and a stub elsewhere.
// Author: momentics <momentics@gmail.com>
package reactor
