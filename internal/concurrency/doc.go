// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Load-driving primitives for hioload-ring: a worker-pool Executor that fans
// writer tasks out over goroutines, optionally pinned to CPUs so contention on
// the ring cursor happens across real cores.
package concurrency
