//go:build !linux

// File: ring/ring_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package ring

import (
	"context"
	"errors"

	"github.com/momentics/hioload-sock/api"
)

// DefaultDepth is the submission queue capacity used when New is
// given a non-positive depth.
const DefaultDepth = 1024

// Ring is unavailable on this platform.
type Ring struct{}

var _ api.CompletionRing = (*Ring)(nil)

// New returns an error for unsupported platforms.
func New(depth int) (*Ring, error) {
	return nil, errors.New("ring: this platform is not supported")
}

// Submit always fails on unsupported platforms.
func (r *Ring) Submit(ctx context.Context, configure func(*api.SQE)) (int, error) {
	return 0, api.ErrNotSupported
}

// Retain is a no-op on unsupported platforms.
func (r *Ring) Retain() {}

// Release is a no-op on unsupported platforms.
func (r *Ring) Release() error { return nil }
