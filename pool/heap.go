// File: pool/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/momentics/hioload-ring/api"

// Heap allocates arrays with make and leaves freeing to the garbage collector.
type Heap[T any] struct{}

// Allocate returns n zero-valued elements.
func (Heap[T]) Allocate(n int) ([]T, error) {
	if n < 1 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "allocation size must be positive").
			WithContext("requested", n)
	}
	return make([]T, n), nil
}

// Free drops the array.
func (Heap[T]) Free([]T) {}

var _ api.Allocator[int] = Heap[int]{}
