// File: core/concurrency/ring.go
// Package concurrency implements lock-free ring buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RingBuffer is a fixed-capacity overwrite ring. Writers reserve a slot by
// advancing a shared cursor with CAS and then store into the reserved slot
// with a plain write. Only the cursor is synchronized.

package concurrency

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-ring/api"
)

// Ensure compile-time interface compliance.
var _ api.Ring[any] = (*RingBuffer[any])(nil)

// RingBuffer is a lock-free multi-writer ring that always overwrites on wrap.
//
// The reservation of an index and the write of the element are two separate
// steps. Two Add calls never reserve the same index at the same cursor value,
// but a reader of elements[i] is not fenced against a writer that reserved i
// and has not stored yet, nor against a later lap writing the same slot.
// Reads are therefore not linearizable; Snapshot documents the torn view.
type RingBuffer[T any] struct {
	_        cpu.CacheLinePad
	cursor   atomic.Uint64
	_        cpu.CacheLinePad
	capacity uint64
	elements []T
	alloc    api.Allocator[T]
	observer api.RingObserver
	released atomic.Bool
}

// NewRingBuffer allocates capacity slots from alloc and sets the cursor to 0.
// A nil alloc falls back to plain heap allocation.
// Capacity below 1 fails with api.ErrInvalidCapacity; an allocator failure is
// returned unchanged and is never retried.
func NewRingBuffer[T any](capacity int, alloc api.Allocator[T], opts ...Option) (*RingBuffer[T], error) {
	if capacity < 1 {
		return nil, api.NewError(api.ErrCodeInvalidCapacity, "ring capacity must be at least 1").
			WithContext("capacity", capacity)
	}
	if alloc == nil {
		alloc = heapAllocator[T]{}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	elements, err := alloc.Allocate(capacity)
	if err != nil {
		return nil, err
	}
	return &RingBuffer[T]{
		capacity: uint64(capacity),
		elements: elements,
		alloc:    alloc,
		observer: o.observer,
	}, nil
}

// Add reserves the next slot and stores element into it. It never fails and
// never blocks; under contention it retries the CAS until it wins.
// Calling Add after Destroy is undefined.
func (r *RingBuffer[T]) Add(element T) {
	idx := r.reserve()
	r.elements[idx] = element
}

// reserve advances the cursor by one modulo capacity and returns the value the
// cursor held before the successful CAS. That pre-update value is the index
// the caller now owns.
func (r *RingBuffer[T]) reserve() uint64 {
	current := r.cursor.Load()
	for {
		next := (current + 1) % r.capacity
		if r.cursor.CompareAndSwap(current, next) {
			r.observer.OnReserve(current)
			return current
		}
		r.observer.OnContention()
		current = r.cursor.Load()
	}
}

// Cap returns fixed buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return int(r.capacity)
}

// Cursor returns the index the next reservation will start from.
func (r *RingBuffer[T]) Cursor() uint64 {
	return r.cursor.Load()
}

// Destroy returns the backing array to the allocator. The caller must ensure
// no Add is in flight. Only the first call releases; later calls do nothing.
func (r *RingBuffer[T]) Destroy() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	elements := r.elements
	r.elements = nil
	r.alloc.Free(elements)
}

// heapAllocator is the fallback used when no allocator is supplied.
type heapAllocator[T any] struct{}

func (heapAllocator[T]) Allocate(n int) ([]T, error) {
	return make([]T, n), nil
}

func (heapAllocator[T]) Free([]T) {}
