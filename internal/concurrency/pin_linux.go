//go:build linux

// File: internal/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux CPU pinning through sched_setaffinity.

package concurrency

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread locks the calling goroutine to its OS thread and restricts
// that thread to cpuID. The thread stays locked; callers pin from goroutines
// that own their thread until exit.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpuID, err)
	}
	return nil
}

// AllowedCPUs returns the CPUs in the process affinity mask.
func AllowedCPUs() []int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return sequentialCPUs()
	}
	cpus := make([]int, 0, set.Count())
	for i := 0; i < len(set)*64 && len(cpus) < set.Count(); i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus
}
