//go:build linux

// File: socket/socket_linux_test.go
// Author: momentics <momentics@gmail.com>
//
// Loopback integration tests: the standard library plays the peer so
// both the dial and listen paths are exercised against a known-good
// implementation.

package socket_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-sock/socket"
)

// stdPeer runs a stdlib TCP listener whose accepted connection is
// handed to fn.
func stdPeer(t *testing.T, fn func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}()
	return ln.Addr().String()
}

func TestLoopbackRoundTrip(t *testing.T) {
	payload := []byte("for all byte sequences B, write then readN yields B")
	addr := stdPeer(t, func(conn net.Conn) {
		echo := make([]byte, len(payload))
		if _, err := io.ReadFull(conn, echo); err != nil {
			return
		}
		conn.Write(echo)
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	if _, err := s.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.ReadFull(context.Background(), len(payload))
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestReadFullShortThenEOF(t *testing.T) {
	addr := stdPeer(t, func(conn net.Conn) {
		conn.Write([]byte("abc"))
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	got, err := s.ReadFull(context.Background(), 10)
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q, want short chunk %q", got, "abc")
	}
	if _, err := s.ReadChunk(context.Background(), 8); err != io.EOF {
		t.Fatalf("subsequent read: %v, want EOF", err)
	}
}

func TestLocalAddrConnected(t *testing.T) {
	addr := stdPeer(t, func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	local, err := s.LocalAddr()
	if err != nil {
		t.Fatalf("LocalAddr: %v", err)
	}
	if local.AddrPort().Port() == 0 {
		t.Fatalf("local port is zero: %v", local)
	}
	if s.RemoteAddr().String() != addr {
		t.Fatalf("RemoteAddr = %v, want %v", s.RemoteAddr(), addr)
	}
}

func TestDialRefusedNoLeak(t *testing.T) {
	// Grab a port that nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	before := countFDs(t)
	for i := 0; i < 10; i++ {
		if _, err := socket.Dial(context.Background(), addr); err == nil {
			t.Fatal("dial to dead port succeeded")
		}
	}
	after := countFDs(t)
	if after > before {
		t.Fatalf("descriptor leak: %d before, %d after", before, after)
	}
}

func countFDs(t *testing.T) int {
	t.Helper()
	ents, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatalf("read /proc/self/fd: %v", err)
	}
	return len(ents)
}

func TestCloseWithPendingRead(t *testing.T) {
	addr := stdPeer(t, func(conn net.Conn) {
		time.Sleep(500 * time.Millisecond) // never send anything
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	readErr := make(chan error, 1)
	go func() {
		_, err := s.ReadChunk(context.Background(), 64)
		readErr <- err
	}()
	time.Sleep(30 * time.Millisecond) // let the read park

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-readErr:
		if err == nil {
			t.Fatal("pending read returned data after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending read never completed after close")
	}
}

// Concurrent readers must each observe a contiguous, non-overlapping
// range of the stream.
func TestConcurrentReadsContiguous(t *testing.T) {
	const total = 64 * 1024
	stream := make([]byte, total)
	for i := range stream {
		stream[i] = byte(i) // consecutive values mod 256
	}
	addr := stdPeer(t, func(conn net.Conn) {
		conn.Write(stream)
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	var mu sync.Mutex
	received := 0
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				chunk, err := s.ReadChunk(context.Background(), 999)
				if err == io.EOF {
					return
				}
				if err != nil {
					t.Errorf("ReadChunk: %v", err)
					return
				}
				for i := 1; i < len(chunk); i++ {
					if chunk[i] != chunk[i-1]+1 {
						t.Errorf("interleaved read: discontinuity inside chunk at %d", i)
						return
					}
				}
				mu.Lock()
				received += len(chunk)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if received != total {
		t.Fatalf("received %d bytes, want %d", received, total)
	}
}

func TestListenerAcceptEcho(t *testing.T) {
	ln, err := socket.Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	bound := ln.Addr()
	if bound.AddrPort().Port() == 0 {
		t.Fatalf("bound port is zero: %v", bound)
	}

	peerDone := make(chan []byte, 1)
	go func() {
		conn, err := net.Dial("tcp", bound.String())
		if err != nil {
			peerDone <- nil
			return
		}
		defer conn.Close()
		conn.Write([]byte("ping"))
		reply := make([]byte, 4)
		if _, err := io.ReadFull(conn, reply); err != nil {
			peerDone <- nil
			return
		}
		peerDone <- reply
	}()

	s, err := ln.Accept(context.Background())
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer s.Close()

	got, err := s.ReadFull(context.Background(), 4)
	if err != nil || string(got) != "ping" {
		t.Fatalf("ReadFull = (%q, %v)", got, err)
	}
	if _, err := s.Write([]byte("pong")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if reply := <-peerDone; string(reply) != "pong" {
		t.Fatalf("peer got %q", reply)
	}
	if s.RemoteAddr().AddrPort().Port() == 0 {
		t.Fatalf("accepted remote address missing: %v", s.RemoteAddr())
	}
}

func TestSocketsStreamEndsOnClose(t *testing.T) {
	ln, err := socket.Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	bound := ln.Addr().String()

	type result struct {
		accepted int
		err      error
	}
	done := make(chan result, 1)
	go func() {
		var res result
		for s, err := range ln.Sockets(context.Background()) {
			if err != nil {
				res.err = err
				break
			}
			res.accepted++
			s.Close()
		}
		done <- res
	}()

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", bound)
		if err != nil {
			t.Fatalf("peer dial %d: %v", i, err)
		}
		conn.Close()
	}
	time.Sleep(50 * time.Millisecond)
	if err := ln.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("accept stream failed: %v", res.err)
		}
		if res.accepted != 2 {
			t.Fatalf("accepted %d sockets, want 2", res.accepted)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("accept stream never ended after listener close")
	}
}

func TestWriteChunksAndHalfClose(t *testing.T) {
	collected := make(chan []byte, 1)
	addr := stdPeer(t, func(conn net.Conn) {
		data, _ := io.ReadAll(conn)
		collected <- data
	})

	s, err := socket.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	chunks := [][]byte{[]byte("alpha "), []byte("beta "), []byte("gamma")}
	if err := s.WriteChunks(context.Background(), slices.Values(chunks)); err != nil {
		t.Fatalf("WriteChunks: %v", err)
	}
	if err := s.CloseWrite(); err != nil {
		t.Fatalf("CloseWrite: %v", err)
	}
	select {
	case data := <-collected:
		if string(data) != "alpha beta gamma" {
			t.Fatalf("peer collected %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("peer never saw end of stream after CloseWrite")
	}
}

func TestChunksCollectsWholeStream(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 2000)
	addr := stdPeer(t, func(conn net.Conn) {
		conn.Write(payload)
	})

	s, err := socket.Dial(context.Background(), addr, socket.WithChunkSize(1024))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	var got bytes.Buffer
	for chunk, err := range s.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("Chunks: %v", err)
		}
		got.Write(chunk)
	}
	if !bytes.Equal(got.Bytes(), payload) {
		t.Fatalf("stream mismatch: got %d bytes, want %d", got.Len(), len(payload))
	}
}

func TestDialBadTarget(t *testing.T) {
	if _, err := socket.Dial(context.Background(), "not a target"); err == nil {
		t.Fatal("expected resolve error")
	}
}
