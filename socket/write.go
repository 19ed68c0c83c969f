// File: socket/write.go
// Author: momentics <momentics@gmail.com>
//
// Write path, symmetric to ReadFull: stream sockets may take fewer
// bytes than offered, so every write loops from the current offset
// until the buffer is drained. A zero-byte completion here is a
// failure to make progress, never success, which is the opposite of
// read's end-of-stream convention.

package socket

import (
	"context"
	"iter"

	"github.com/momentics/hioload-sock/api"
)

// Write sends the whole buffer, looping over partial transfers.
// Implements io.Writer.
func (s *Socket) Write(p []byte) (int, error) {
	return s.write(context.Background(), p)
}

// WriteContext is Write with caller-controlled cancellation.
func (s *Socket) WriteContext(ctx context.Context, p []byte) (int, error) {
	return s.write(ctx, p)
}

// WriteChunks consumes a sequence of chunks, writing each fully and in
// order, halting at the first failure.
func (s *Socket) WriteChunks(ctx context.Context, chunks iter.Seq[[]byte]) error {
	for chunk := range chunks {
		if _, err := s.write(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Socket) write(ctx context.Context, p []byte) (int, error) {
	if s.closed.Load() {
		return 0, api.ErrSocketClosed
	}
	if err := s.writePermit.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.writePermit.release()

	fd := s.fd
	sent := 0
	for sent < len(p) {
		// Close can land between partial transfers; stop before the
		// next submission instead of racing it to the descriptor.
		if s.closed.Load() {
			return sent, api.ErrSocketClosed
		}
		buf := p[sent:]
		res, err := s.ring.Submit(ctx, func(sqe *api.SQE) {
			sqe.Op = api.OpWrite
			sqe.Fd = fd
			sqe.Buf = buf
		})
		if err != nil {
			return sent, err
		}
		if cerr := api.CompletionErr("write", res); cerr != nil {
			return sent, cerr
		}
		if res == 0 {
			return sent, api.ErrNoProgress
		}
		sent += res
	}
	return sent, nil
}
