package keyspace

import (
	"sync"
	"sync/atomic"

	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

// concurrencyLimiter is a fixed-capacity semaphore with explicit
// ownership, ported from the teacher's processmgr.slotPool: each
// acquisition requires a unique external identifier, which here is a
// monotonic reclaim-job number rather than a process ID.
type concurrencyLimiter struct {
	mu         sync.Mutex
	cond       *sync.Cond
	maxCap     int64
	usage      int64
	acquiredBy map[int64]struct{}
}

func newConcurrencyLimiter(max int64) *concurrencyLimiter {
	l := &concurrencyLimiter{maxCap: max, acquiredBy: make(map[int64]struct{})}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *concurrencyLimiter) acquire(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, holds := l.acquiredBy[id]; holds {
		panic("concurrencyLimiter: id already holds a slot")
	}
	for l.usage >= l.maxCap {
		l.cond.Wait()
	}
	l.usage++
	l.acquiredBy[id] = struct{}{}
}

func (l *concurrencyLimiter) release(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, holds := l.acquiredBy[id]; !holds {
		panic("concurrencyLimiter: release for non-owner id")
	}
	delete(l.acquiredBy, id)
	l.usage--
	l.cond.Signal()
}

func (l *concurrencyLimiter) current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage
}

// Reclaimer runs the asynchronous side of DeleteAsync: releasing a
// value's final reference off the calling goroutine, bounded to
// Config.ReclaimWorkers concurrent reclaims at a time (spec.md §4.4's
// UNLINK semantics — large aggregates shouldn't stall the caller, but
// unbounded reclaim goroutines are their own resource leak).
type Reclaimer struct {
	log     *zap.Logger
	limiter *concurrencyLimiter
	nextJob atomic.Int64
	wg      sync.WaitGroup
}

// NewReclaimer starts a reclaimer allowing up to workers concurrent
// value teardowns.
func NewReclaimer(log *zap.Logger, workers int) *Reclaimer {
	if workers < 1 {
		workers = 1
	}
	return &Reclaimer{
		log:     log.Named("reclaim"),
		limiter: newConcurrencyLimiter(int64(workers)),
	}
}

// Submit hands v's final release to a reclaim goroutine, blocking the
// caller only long enough to acquire a slot, not for the release itself
// to complete.
func (r *Reclaimer) Submit(v *obj.Value) {
	id := r.nextJob.Add(1)
	r.limiter.acquire(id)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.limiter.release(id)
		obj.Release(v)
	}()
}

// InFlight reports the number of reclaim jobs currently running.
func (r *Reclaimer) InFlight() int64 { return r.limiter.current() }

// Close waits for all submitted reclaim jobs to finish. Callers use this
// during shutdown to avoid losing in-flight teardown work.
func (r *Reclaimer) Close() { r.wg.Wait() }
