// File: pool/counting.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocation bookkeeping wrapper.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-ring/api"
)

// Counting wraps an allocator and records every call.
type Counting[T any] struct {
	next     api.Allocator[T]
	allocs   atomic.Int64
	frees    atomic.Int64
	failures atomic.Int64
	inUse    atomic.Int64
}

// NewCounting wraps next; a nil next means Heap.
func NewCounting[T any](next api.Allocator[T]) *Counting[T] {
	if next == nil {
		next = Heap[T]{}
	}
	return &Counting[T]{next: next}
}

func (c *Counting[T]) Allocate(n int) ([]T, error) {
	buf, err := c.next.Allocate(n)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.allocs.Add(1)
	c.inUse.Add(int64(len(buf)))
	return buf, nil
}

func (c *Counting[T]) Free(buf []T) {
	c.frees.Add(1)
	c.inUse.Add(-int64(len(buf)))
	c.next.Free(buf)
}

// Stats returns a bookkeeping snapshot.
func (c *Counting[T]) Stats() api.AllocatorStats {
	return api.AllocatorStats{
		Allocs:   c.allocs.Load(),
		Frees:    c.frees.Load(),
		Failures: c.failures.Load(),
		InUse:    c.inUse.Load(),
	}
}

var _ api.Allocator[int] = (*Counting[int])(nil)
