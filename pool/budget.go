// File: pool/budget.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Element budget enforcement. Requests beyond the budget fail immediately with
// api.ErrAllocation; there is no retry and no fallback allocator.

package pool

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
)

// Budget caps the number of elements outstanding across all live arrays.
type Budget[T any] struct {
	next        api.Allocator[T]
	limit       int64
	outstanding atomic.Int64
	log         *zap.Logger
}

// BudgetOption configures a Budget allocator.
type BudgetOption func(*budgetConfig)

type budgetConfig struct {
	log *zap.Logger
}

// WithBudgetLogger logs refused requests at debug level.
func WithBudgetLogger(l *zap.Logger) BudgetOption {
	return func(c *budgetConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewBudget wraps next with a limit of elements; a nil next means Heap.
func NewBudget[T any](next api.Allocator[T], limit int, opts ...BudgetOption) *Budget[T] {
	cfg := budgetConfig{log: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}
	if next == nil {
		next = Heap[T]{}
	}
	return &Budget[T]{next: next, limit: int64(limit), log: cfg.log}
}

// Allocate reserves n elements of budget and then delegates.
func (b *Budget[T]) Allocate(n int) ([]T, error) {
	want := int64(n)
	for {
		cur := b.outstanding.Load()
		if cur+want > b.limit {
			b.log.Debug("allocation refused",
				zap.Int("requested", n),
				zap.Int64("available", b.limit-cur),
				zap.Int64("limit", b.limit))
			return nil, api.NewError(api.ErrCodeAllocation, "allocation budget exhausted").
				WithContext("requested", n).
				WithContext("available", b.limit-cur)
		}
		if b.outstanding.CompareAndSwap(cur, cur+want) {
			break
		}
	}
	buf, err := b.next.Allocate(n)
	if err != nil {
		b.outstanding.Add(-want)
		return nil, err
	}
	return buf, nil
}

// Free returns the array's elements to the budget.
func (b *Budget[T]) Free(buf []T) {
	b.outstanding.Add(-int64(len(buf)))
	b.next.Free(buf)
}

// Available returns the remaining element budget.
func (b *Budget[T]) Available() int {
	return int(b.limit - b.outstanding.Load())
}

var _ api.Allocator[int] = (*Budget[int])(nil)
