package infrastructure

import (
	"runtime"
	"time"
)

// SystemStats is a point-in-time snapshot of the process, reported by the
// health endpoint
type SystemStats struct {
	GoVersion      string  `json:"go_version"`
	Goroutines     int     `json:"goroutines"`
	CPUCount       int     `json:"cpu_count"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	SysBytes       uint64  `json:"sys_bytes"`
	GCCount        uint32  `json:"gc_count"`
	LastGCPauseMS  float64 `json:"last_gc_pause_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// CollectSystemStats reads the runtime counters
func CollectSystemStats(startTime time.Time) SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := SystemStats{
		GoVersion:      runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		GCCount:        mem.NumGC,
		UptimeSeconds:  time.Since(startTime).Seconds(),
	}
	if mem.NumGC > 0 {
		stats.LastGCPauseMS = float64(mem.PauseNs[(mem.NumGC+255)%256]) / float64(time.Millisecond)
	}
	return stats
}
