// Package pool
// Author: momentics <momentics@gmail.com>
//
// Allocation services for hioload-ring backing arrays.
// Heap is the plain allocator, Slab recycles freed arrays through the lock-free
// queue, Budget enforces an element limit and Counting keeps bookkeeping.
// All allocators are safe for concurrent use and compose by wrapping.
package pool
