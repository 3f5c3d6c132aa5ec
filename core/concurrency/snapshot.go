// File: core/concurrency/snapshot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sorted point-in-time copy of a ring's slots for inspection.

package concurrency

import (
	"slices"
	"sync/atomic"

	"github.com/momentics/hioload-ring/api"
)

// SortedSnapshot is an independently owned, sorted copy of a ring's slots.
// It never observes mutations made to the ring after it was taken.
type SortedSnapshot[T any] struct {
	values   []T
	alloc    api.Allocator[T]
	released atomic.Bool
}

// NewSortedSnapshot copies every slot of r in one bulk copy and sorts the copy
// with less. The copy is not synchronized with concurrent Add calls: with
// writers active some slots may hold pre-write or overwritten values.
// The snapshot array comes from the ring's allocator; allocation failures are
// returned as-is.
func NewSortedSnapshot[T any](r *RingBuffer[T], less api.Less[T]) (*SortedSnapshot[T], error) {
	if less == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "snapshot comparator is nil")
	}
	values, err := r.alloc.Allocate(len(r.elements))
	if err != nil {
		return nil, err
	}
	copy(values, r.elements)
	slices.SortFunc(values, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
	return &SortedSnapshot[T]{values: values, alloc: r.alloc}, nil
}

// Values returns the sorted elements. The slice is owned by the snapshot and
// becomes invalid after Release.
func (s *SortedSnapshot[T]) Values() []T { return s.values }

// Len returns the number of copied slots.
func (s *SortedSnapshot[T]) Len() int { return len(s.values) }

// At returns the i-th smallest element.
func (s *SortedSnapshot[T]) At(i int) T { return s.values[i] }

// Release frees the snapshot array. Repeated calls are no-ops.
func (s *SortedSnapshot[T]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	values := s.values
	s.values = nil
	s.alloc.Free(values)
}
