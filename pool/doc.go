// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory and queueing primitives for hioload-sock: a bounded
// multi-producer ring buffer backing the submission queue, and a
// reusable byte pool backing the read-side chunk stream. All
// primitives are allocation-free on the hot path.
package pool
