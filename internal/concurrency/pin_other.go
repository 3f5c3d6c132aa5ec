//go:build !linux

// File: internal/concurrency/pin_other.go
// Author: momentics <momentics@gmail.com>

package concurrency

import "runtime"

// PinCurrentThread locks the OS thread; affinity masks are Linux-only here.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	return ErrAffinityNotSupported
}

// AllowedCPUs returns 0..NumCPU-1.
func AllowedCPUs() []int {
	return sequentialCPUs()
}
