package concurrency

import "runtime"

func sequentialCPUs() []int {
	n := runtime.NumCPU()
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return cpus
}
