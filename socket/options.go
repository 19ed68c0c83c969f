// File: socket/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options shared by Dial and Listen.

package socket

// DefaultChunkSize is the read size used by the Chunks stream when no
// option overrides it.
const DefaultChunkSize = 32 * 1024

// DefaultBacklog is the listen(2) backlog used when no option
// overrides it.
const DefaultBacklog = 128

type config struct {
	ringDepth int
	chunkSize int
	backlog   int
}

func defaultConfig() config {
	return config{
		ringDepth: 0, // ring.DefaultDepth
		chunkSize: DefaultChunkSize,
		backlog:   DefaultBacklog,
	}
}

// Option customizes socket construction.
type Option func(*config)

// WithRingDepth overrides the completion ring submission queue depth.
func WithRingDepth(depth int) Option {
	return func(c *config) {
		c.ringDepth = depth
	}
}

// WithChunkSize overrides the default read chunk size used by Chunks.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithBacklog overrides the listen backlog.
func WithBacklog(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.backlog = n
		}
	}
}
