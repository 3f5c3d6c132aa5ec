// File: pool/slab.go
// Package pool implements lock-free slab recycling per array length.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/core/concurrency"
)

const defaultSlabDepth = 64

// Slab keeps freed arrays in per-length lock-free queues and hands them back
// zeroed on the next Allocate of the same length.
type Slab[T any] struct {
	depth int
	next  api.Allocator[T]

	mu      sync.RWMutex
	classes map[int]*concurrency.LockFreeQueue[[]T]

	reused   atomic.Uint64
	fresh    atomic.Uint64
	released atomic.Uint64
}

// SlabStats reports how Allocate was served.
type SlabStats struct {
	Reused   uint64
	Fresh    uint64
	Released uint64
}

// NewSlab creates a slab that keeps up to depth arrays per length (rounded up
// to a power of two). Misses go to next; a nil next means Heap.
func NewSlab[T any](next api.Allocator[T], depth int) *Slab[T] {
	if depth <= 0 {
		depth = defaultSlabDepth
	}
	if next == nil {
		next = Heap[T]{}
	}
	return &Slab[T]{
		depth:   depth,
		next:    next,
		classes: make(map[int]*concurrency.LockFreeQueue[[]T]),
	}
}

func (s *Slab[T]) class(n int, create bool) *concurrency.LockFreeQueue[[]T] {
	s.mu.RLock()
	q := s.classes[n]
	s.mu.RUnlock()
	if q != nil || !create {
		return q
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if q = s.classes[n]; q == nil {
		q = concurrency.NewLockFreeQueue[[]T](s.depth)
		s.classes[n] = q
	}
	return q
}

func (s *Slab[T]) Allocate(n int) ([]T, error) {
	if q := s.class(n, false); q != nil {
		if buf, ok := q.Dequeue(); ok {
			clear(buf)
			s.reused.Add(1)
			return buf, nil
		}
	}
	buf, err := s.next.Allocate(n)
	if err != nil {
		return nil, err
	}
	s.fresh.Add(1)
	return buf, nil
}

// Free parks buf for reuse; when its class is full the array goes to next.
func (s *Slab[T]) Free(buf []T) {
	if len(buf) == 0 {
		return
	}
	if s.class(len(buf), true).Enqueue(buf) {
		return
	}
	s.released.Add(1)
	s.next.Free(buf)
}

// Stats returns reuse counters.
func (s *Slab[T]) Stats() SlabStats {
	return SlabStats{
		Reused:   s.reused.Load(),
		Fresh:    s.fresh.Load(),
		Released: s.released.Load(),
	}
}

var _ api.Allocator[int] = (*Slab[int])(nil)
