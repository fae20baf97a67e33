// Package profiler - Host runtime facilities used around measurements:
// collection settle points, allocation probes and timing trackers.
package profiler

import (
	"runtime"
)

// SettleFunc brings the runtime to a quiet point before measuring.
type SettleFunc func()

// MemoryProbe reports a monotonic or point-in-time allocation figure in bytes.
type MemoryProbe func() uint64

// Settle forces two full collections so that garbage produced by a previous
// unit is not attributed to the next one. It is best-effort: the runtime may
// still schedule background work afterwards.
func Settle() {
	runtime.GC()
	runtime.GC()
}

// NoSettle is a SettleFunc that does nothing, for hosts that manage the
// collector themselves.
func NoSettle() {}

// TotalAllocated reports the cumulative bytes allocated for heap objects.
func TotalAllocated() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.TotalAlloc
}

// HeapInUse reports the bytes of currently allocated heap objects. Unlike
// TotalAllocated it can decrease between two readings.
func HeapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// AllocationDelta returns after-before, clamped at zero when the probe went
// backwards (for example because a collection ran in between).
func AllocationDelta(before, after uint64) int64 {
	if after < before {
		return 0
	}
	return int64(after - before)
}

// MemorySnapshot captures the runtime memory figures the harness reports in
// run summaries.
type MemorySnapshot struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
	NumCPU          int    `json:"num_cpu"`
}

// Snapshot reads the current runtime memory statistics.
func Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemorySnapshot{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		HeapAllocBytes:  m.HeapAlloc,
		HeapSysBytes:    m.HeapSys,
		NumCPU:          runtime.NumCPU(),
	}
}

// Since returns the growth between an earlier snapshot and now. Counters that
// only grow (TotalAlloc, NumGC) are reported as deltas, gauges as current.
func (s MemorySnapshot) Since(earlier MemorySnapshot) MemorySnapshot {
	out := s
	out.TotalAllocBytes = uint64(AllocationDelta(earlier.TotalAllocBytes, s.TotalAllocBytes))
	if s.NumGC >= earlier.NumGC {
		out.NumGC = s.NumGC - earlier.NumGC
	}
	return out
}
