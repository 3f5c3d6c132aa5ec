// Package api
// Author: momentics@gmail.com
//
// Overwrite ring contract shared by the core buffer and its collaborators.

package api

// CursorReader exposes the element-type independent state of a ring.
type CursorReader interface {
	// Cap returns the fixed number of slots.
	Cap() int
	// Cursor returns the index the next Add will try to reserve.
	Cursor() uint64
}

// Ring is a fixed-capacity ring that always overwrites on wrap.
// There is no full state and no read side: Add never fails.
type Ring[T any] interface {
	CursorReader
	// Add reserves the next slot and stores item into it.
	Add(item T)
}

// RingObserver receives reservation events from the cursor CAS loop.
// Implementations must be safe for concurrent use and must not block.
type RingObserver interface {
	// OnReserve is called once per successful reservation with the reserved index.
	OnReserve(index uint64)
	// OnContention is called each time a CAS attempt loses and the loop retries.
	OnContention()
}

// Less reports whether a sorts before b. It must define a strict weak ordering.
type Less[T any] func(a, b T) bool
