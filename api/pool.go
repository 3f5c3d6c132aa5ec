// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Allocation service contract for ring and snapshot backing arrays.

package api

// Allocator supplies and takes back fixed-length element arrays.
type Allocator[T any] interface {
	// Allocate returns a zero-valued slice of exactly n elements, or an error
	// matching ErrAllocation when the request cannot be satisfied.
	Allocate(n int) ([]T, error)

	// Free returns an array obtained from Allocate. Each array is freed once.
	Free(buf []T)
}

// AllocatorStats is a bookkeeping snapshot. Element counts, not bytes.
type AllocatorStats struct {
	Allocs   int64
	Frees    int64
	Failures int64
	InUse    int64
}

// Balanced reports whether every allocation was freed.
func (s AllocatorStats) Balanced() bool {
	return s.Allocs == s.Frees && s.InUse == 0
}
