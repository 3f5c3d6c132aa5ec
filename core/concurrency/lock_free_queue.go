// File: core/concurrency/lock_free_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC queue used to recycle freed arrays between allocators.

package concurrency

import "sync/atomic"

const cacheLinePad = 64

// LockFreeQueue is a bounded MPMC queue using per-cell sequence numbers.
// Based on the pattern by Dmitry Vyukov for MPMC queues. Unlike RingBuffer it
// has a full state: Enqueue reports false instead of overwriting.
type LockFreeQueue[T any] struct {
	head  atomic.Uint64
	_     [cacheLinePad]byte
	tail  atomic.Uint64
	_     [cacheLinePad]byte
	mask  uint64
	cells []cell[T]
}

type cell[T any] struct {
	sequence atomic.Uint64
	data     T
}

// NewLockFreeQueue creates a new queue with capacity rounded up to a power of two (min 2).
func NewLockFreeQueue[T any](capacity int) *LockFreeQueue[T] {
	if capacity < 2 {
		capacity = 2
	}
	size := 1
	for size < capacity {
		size <<= 1
	}

	q := &LockFreeQueue[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range q.cells {
		q.cells[i].sequence.Store(uint64(i))
	}
	return q
}

// Enqueue adds val; returns false if full.
func (q *LockFreeQueue[T]) Enqueue(val T) bool {
	for {
		tail := q.tail.Load()
		c := &q.cells[tail&q.mask]
		dif := int64(c.sequence.Load()) - int64(tail)

		switch {
		case dif == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				c.data = val
				c.sequence.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false // full
		}
		// tail moved, retry
	}
}

// Dequeue removes and returns an item; ok false if empty.
func (q *LockFreeQueue[T]) Dequeue() (item T, ok bool) {
	for {
		head := q.head.Load()
		c := &q.cells[head&q.mask]
		dif := int64(c.sequence.Load()) - int64(head+1)

		switch {
		case dif == 0:
			if q.head.CompareAndSwap(head, head+1) {
				item = c.data
				var zero T
				c.data = zero
				c.sequence.Store(head + q.mask + 1)
				return item, true
			}
		case dif < 0:
			var zero T
			return zero, false // empty
		}
		// head moved, retry
	}
}

// Len returns an approximate number of queued items.
func (q *LockFreeQueue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the rounded capacity.
func (q *LockFreeQueue[T]) Cap() int {
	return len(q.cells)
}
