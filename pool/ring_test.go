// File: pool/ring_test.go
// Author: momentics <momentics@gmail.com>
//
// Property-based and concurrency tests for the ring buffer.

package pool

import (
	"math/rand"
	"sync"
	"testing"
)

func TestRingPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ring := NewRingBuffer[int](64)

		size := 0
		for i := 0; i < 5000; i++ {
			switch rng.Intn(2) {
			case 0:
				if ring.Enqueue(rng.Intn(100000)) {
					size++
				}
			case 1:
				if _, ok := ring.Dequeue(); ok {
					size--
				}
			}
			if size != ring.Len() {
				t.Fatalf("invariant failed: expected %d, got %d", size, ring.Len())
			}
			if ring.Len() < 0 || ring.Len() > 64 {
				t.Fatalf("ring length out of bounds: %d", ring.Len())
			}
		}
	}
}

func TestRingFIFOOrder(t *testing.T) {
	ring := NewRingBuffer[int](8)
	for i := 0; i < 8; i++ {
		if !ring.Enqueue(i) {
			t.Fatalf("enqueue %d failed on non-full ring", i)
		}
	}
	if ring.Enqueue(99) {
		t.Fatal("enqueue succeeded on full ring")
	}
	for i := 0; i < 8; i++ {
		v, ok := ring.Dequeue()
		if !ok || v != i {
			t.Fatalf("dequeue %d: got (%d, %v)", i, v, ok)
		}
	}
	if _, ok := ring.Dequeue(); ok {
		t.Fatal("dequeue succeeded on empty ring")
	}
}

// Many producers, single consumer: the shape the submission queue uses.
func TestRingConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 1000

	ring := NewRingBuffer[int](1 << 14)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !ring.Enqueue(base + i) {
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for {
		v, ok := ring.Dequeue()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("duplicate item %d", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("lost items: got %d, want %d", len(seen), producers*perProducer)
	}
}
