// File: socket/permit.go
// Author: momentics <momentics@gmail.com>

package socket

import "context"

// permit is a single-slot semaphore granting exclusive rights over one
// transfer direction. Capacity is always one: a direction is either
// idle or owned by exactly one in-flight logical operation.
type permit chan struct{}

func newPermit() permit {
	p := make(permit, 1)
	p <- struct{}{}
	return p
}

func (p permit) acquire(ctx context.Context) error {
	select {
	case <-p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p permit) release() {
	p <- struct{}{}
}
