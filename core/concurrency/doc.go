// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free primitives for hioload-ring: the overwrite RingBuffer with its
// CAS cursor, sorted diagnostic snapshots, and a bounded MPMC queue.
//
// Memory ordering: Go's sync/atomic operations are sequentially consistent,
// which is at least as strong as the acquire load and acquire-release CAS the
// cursor protocol needs. Go exposes only a strong CAS, so the retry loop never
// sees spurious failures, but it still treats any failure as a plain retry.
// Slot payload writes are ordinary stores and are not fenced for readers.
package concurrency
