// Package ring implements the completion ring: kernel operations are
// described by submission entries, executed against non-blocking
// descriptors by a single dispatcher goroutine, and parked on a
// readiness reactor when they would block. Callers suspend on Submit
// until the matching completion is reaped. Results follow the
// completion-queue convention: non-negative is a byte count or success
// code, negative is a negated errno.
//
// Author: momentics <momentics@gmail.com>
package ring
