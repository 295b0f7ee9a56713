package command

import (
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/memory"
	"github.com/kavinhq/redicore/internal/rerror"
)

// MemoryUsage implements MEMORY USAGE.
func MemoryUsage(db *keyspace.Database, c *clock.Clock, key string, sampleSize int) (int64, error) {
	v, ok := db.LookupRead(key, c, keyspace.NoTouch|keyspace.NoStats)
	if !ok {
		return 0, rerror.ErrKeyNotFound
	}
	return memory.Usage(key, v, sampleSize), nil
}

// MemoryStats implements MEMORY STATS.
func MemoryStats(agg *memory.Aggregator) (*memory.Report, error) {
	return agg.Report()
}

// MemoryDoctor implements MEMORY DOCTOR.
func MemoryDoctor(agg *memory.Aggregator) ([]memory.Warning, error) {
	r, err := agg.Report()
	if err != nil {
		return nil, err
	}
	return memory.Diagnose(r), nil
}

// MemoryPurge implements MEMORY PURGE: a no-op acknowledgement, since
// this engine has no allocator arena to return memory to — kept as a
// real command so clients scripted against real Redis don't hit an
// unknown-command error.
func MemoryPurge() error { return nil }

// MemoryMallocStats implements MEMORY MALLOC-STATS: likewise a fixed
// informational string rather than a jemalloc dump, since Go's runtime
// allocator exposes no equivalent.
func MemoryMallocStats() string {
	return "malloc stats are not available: this engine runs on the Go runtime allocator"
}
