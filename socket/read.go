// File: socket/read.go
// Author: momentics <momentics@gmail.com>
//
// Read path. All reads on a socket are totally ordered by the read
// permit; a zero-byte completion is end of stream, the only terminal
// condition that is not an error.

package socket

import (
	"context"
	"io"
	"iter"

	"github.com/momentics/hioload-sock/api"
)

// Read implements io.Reader over the ring. Returns (0, io.EOF) at end
// of stream.
func (s *Socket) Read(p []byte) (int, error) {
	return s.read(context.Background(), p)
}

// ReadContext is Read with caller-controlled cancellation: cancelling
// ctx tears the in-flight read off the ring before returning.
func (s *Socket) ReadContext(ctx context.Context, p []byte) (int, error) {
	return s.read(ctx, p)
}

// ReadChunk reads at most max bytes into a fresh buffer. Returns
// (nil, io.EOF) at end of stream.
func (s *Socket) ReadChunk(ctx context.Context, max int) ([]byte, error) {
	if max <= 0 {
		return nil, api.ErrInvalidArgument
	}
	buf := make([]byte, max)
	n, err := s.read(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ReadFull reads exactly n bytes unless the stream ends first, in
// which case the shorter prefix is returned without error. The permit
// is held for the whole loop, so a concurrent reader can never
// interleave into the middle of this logical read.
func (s *Socket) ReadFull(ctx context.Context, n int) ([]byte, error) {
	if n < 0 {
		return nil, api.ErrInvalidArgument
	}
	if s.closed.Load() {
		return nil, api.ErrSocketClosed
	}
	buf := make([]byte, n)
	if err := s.readPermit.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.readPermit.release()

	filled := 0
	for filled < n {
		// Close can land between iterations; stop before the next
		// submission instead of racing it to the descriptor.
		if s.closed.Load() {
			return nil, api.ErrSocketClosed
		}
		res, err := s.submitRead(ctx, buf[filled:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		filled += res
	}
	return buf[:filled], nil
}

// Chunks returns a lazy stream of reads of the socket's chunk size,
// terminating at end of stream. The yielded slice is pool-backed and
// valid only until the next iteration step; callers that retain data
// must copy it.
func (s *Socket) Chunks(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		buf := s.chunkPool.Get()
		defer s.chunkPool.Put(buf)
		for {
			n, err := s.read(ctx, buf)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(buf[:n], nil) {
				return
			}
		}
	}
}

func (s *Socket) read(ctx context.Context, p []byte) (int, error) {
	if s.closed.Load() {
		return 0, api.ErrSocketClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	if err := s.readPermit.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.readPermit.release()
	return s.submitRead(ctx, p)
}

// submitRead requires the caller to hold the read permit.
func (s *Socket) submitRead(ctx context.Context, p []byte) (int, error) {
	fd := s.fd
	res, err := s.ring.Submit(ctx, func(sqe *api.SQE) {
		sqe.Op = api.OpRead
		sqe.Fd = fd
		sqe.Buf = p
	})
	if err != nil {
		return 0, err
	}
	if res == 0 {
		return 0, io.EOF
	}
	if cerr := api.CompletionErr("read", res); cerr != nil {
		return 0, cerr
	}
	return res, nil
}
