package memory

import (
	"runtime"
	"sync"
	"time"

	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"golang.org/x/sync/singleflight"
)

// dictEntryOverhead and expireEntryOverhead approximate the fixed
// per-entry cost of Go's map bucket layout (hash, key pointer, value
// pointer, and bucket-array amortization) for dict/expires accounting —
// there is no literal hash-table struct to measure directly the way
// Redis's dictEntry/dictht sizing does, so this stands in for it.
const (
	dictEntryOverhead   = 56
	expireEntryOverhead = 48
)

// DBStats summarizes one database's sampled memory footprint.
type DBStats struct {
	Index        int
	KeyCount     int
	KeysSampled  int
	BytesSampled int64
	DictBytes    int64 // dict overhead: KeyCount * dictEntryOverhead
	ExpiresBytes int64 // expires overhead: len(expires) * expireEntryOverhead
}

// ForkInfo tracks the copy-on-write cost of the most recent background
// save, modeled on Redis's childinfo.c reporting path even though this
// engine has no literal fork(2). Nothing in this repository calls
// RecordFork; it is the entry point a persistence collaborator reports
// into, and until then these fields stay zero in MEMORY STATS.
type ForkInfo struct {
	InProgress   bool
	LastForkUsec int64
	LastCOWBytes int64
}

// FragmentationReport is the three-level fragmentation breakdown spec.md
// §4.8 names, computed from runtime.MemStats since this engine has no
// jemalloc allocator to query directly:
//   - AllocatorInternal: HeapInuse/HeapAlloc — span overhead the Go
//     allocator carries above what's actually live in objects.
//   - AllocatorVsRSS: HeapSys/HeapInuse — reserved-but-possibly-unused
//     heap arena versus what's actually in use.
//   - ProcessVsAllocator: Sys/HeapSys — total process memory reserved
//     from the OS versus the portion the Go heap allocator accounts for
//     (stacks, other runtime bookkeeping fill the gap).
type FragmentationReport struct {
	AllocatorInternal  float64
	AllocatorVsRSS     float64
	ProcessVsAllocator float64
}

// Report is the aggregate MEMORY STATS payload.
type Report struct {
	Databases   []DBStats
	TotalBytes  int64 // sampled keyspace footprint, summed across databases
	GeneratedAt time.Time

	AllocatorBytes  int64 // runtime.MemStats.HeapAlloc at sample time
	StartupBaseline int64 // HeapAlloc sampled once, at Aggregator construction
	PeakBytes       int64 // high-water mark of AllocatorBytes across every Report call so far
	ResidentBytes   int64 // runtime.MemStats.Sys: closest stdlib proxy for RSS without a process-inspection library
	Fragmentation   FragmentationReport

	// ClientBuffers and ReplicationBacklog are always zero: this engine
	// has no network-protocol client-connection model or replication
	// stream (both explicit non-goals), so there is nothing to sample
	// for either. Carried so MEMORY STATS' shape matches what a client
	// scripted against real Redis expects to find in the reply.
	ClientBuffers       int64
	ReplicationBacklog  int64
	CachedScriptBytes   int64 // no scripting runtime (non-goal); always zero
	FunctionsCacheBytes int64 // no scripting runtime (non-goal); always zero

	Fork ForkInfo
}

// Aggregator builds Reports, coalescing concurrent callers through
// singleflight the way the teacher's cache-refresh path does — a full
// keyspace sample is not cheap, and MEMORY STATS/DOCTOR/INFO can all be
// asked for it within the same instant.
type Aggregator struct {
	group      singleflight.Group
	dbs        []*keyspace.Database
	sampleSize int

	startupBaseline int64

	peakMu sync.Mutex
	peak   int64

	forkMu sync.Mutex
	fork   ForkInfo
}

// NewAggregator returns an Aggregator sampling sampleSize elements per
// container value across dbs. The current heap allocation at construction
// time is recorded as the startup baseline.
func NewAggregator(dbs []*keyspace.Database, sampleSize int) *Aggregator {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return &Aggregator{dbs: dbs, sampleSize: sampleSize, startupBaseline: int64(ms.HeapAlloc)}
}

// RecordFork updates the last-background-save cost figures.
func (a *Aggregator) RecordFork(usec, cowBytes int64) {
	a.forkMu.Lock()
	a.fork = ForkInfo{InProgress: false, LastForkUsec: usec, LastCOWBytes: cowBytes}
	a.forkMu.Unlock()
}

// Report builds (or returns the in-flight build of) the current memory
// report. Concurrent callers within the same build collapse onto one
// underlying scan.
func (a *Aggregator) Report() (*Report, error) {
	v, err, _ := a.group.Do("report", func() (interface{}, error) {
		return a.build(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (a *Aggregator) build() *Report {
	r := &Report{GeneratedAt: time.Now()}
	a.forkMu.Lock()
	r.Fork = a.fork
	a.forkMu.Unlock()

	for _, db := range a.dbs {
		stats := DBStats{Index: db.Index, KeyCount: db.Len()}
		db.ForEach(func(key string, v *obj.Value) bool {
			stats.KeysSampled++
			stats.BytesSampled += Usage(key, v, a.sampleSize)
			return true
		})
		stats.DictBytes = int64(stats.KeyCount) * dictEntryOverhead
		stats.ExpiresBytes = int64(db.ExpiresLen()) * expireEntryOverhead
		r.Databases = append(r.Databases, stats)
		r.TotalBytes += stats.BytesSampled
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.AllocatorBytes = int64(ms.HeapAlloc)
	r.ResidentBytes = int64(ms.Sys)
	r.StartupBaseline = a.startupBaseline
	if ms.HeapAlloc > 0 {
		r.Fragmentation.AllocatorInternal = float64(ms.HeapInuse) / float64(ms.HeapAlloc)
	}
	if ms.HeapInuse > 0 {
		r.Fragmentation.AllocatorVsRSS = float64(ms.HeapSys) / float64(ms.HeapInuse)
	}
	if ms.HeapSys > 0 {
		r.Fragmentation.ProcessVsAllocator = float64(ms.Sys) / float64(ms.HeapSys)
	}

	a.peakMu.Lock()
	if r.AllocatorBytes > a.peak {
		a.peak = r.AllocatorBytes
	}
	r.PeakBytes = a.peak
	a.peakMu.Unlock()

	return r
}
