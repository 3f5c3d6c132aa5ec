package concurrency

import (
	"sync/atomic"

	"github.com/momentics/hioload-ring/api"
)

// trackingAllocator counts Allocate/Free calls and can refuse requests.
type trackingAllocator[T any] struct {
	allocs atomic.Int64
	frees  atomic.Int64
	// limit caps successful Allocate calls; 0 means unlimited.
	limit int64
}

func (a *trackingAllocator[T]) Allocate(n int) ([]T, error) {
	if a.limit > 0 && a.allocs.Load() >= a.limit {
		return nil, api.NewError(api.ErrCodeAllocation, "test allocator exhausted").
			WithContext("requested", n)
	}
	a.allocs.Add(1)
	return make([]T, n), nil
}

func (a *trackingAllocator[T]) Free([]T) {
	a.frees.Add(1)
}

// indexObserver records how often each index was reserved.
type indexObserver struct {
	perIndex   []atomic.Int64
	reserves   atomic.Int64
	contention atomic.Int64
}

func newIndexObserver(capacity int) *indexObserver {
	return &indexObserver{perIndex: make([]atomic.Int64, capacity)}
}

func (o *indexObserver) OnReserve(index uint64) {
	o.perIndex[index].Add(1)
	o.reserves.Add(1)
}

func (o *indexObserver) OnContention() {
	o.contention.Add(1)
}
