// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Probe registry for runtime inspection of rings and allocators.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-ring/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, replacing any previous one.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Names returns the registered probe names in sorted order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// RegisterRingProbes exposes cursor and capacity under prefix.
func RegisterRingProbes(dp *DebugProbes, prefix string, ring api.CursorReader) {
	dp.RegisterProbe(prefix+".cursor", func() any { return ring.Cursor() })
	dp.RegisterProbe(prefix+".capacity", func() any { return ring.Cap() })
}

// RegisterAllocatorProbe exposes allocator bookkeeping under name.
func RegisterAllocatorProbe(dp *DebugProbes, name string, stats func() api.AllocatorStats) {
	dp.RegisterProbe(name, func() any { return stats() })
}
