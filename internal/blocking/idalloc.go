package blocking

import (
	"fmt"
	"sync"
)

// idAllocator hands out monotonic, wrap-around blocked-client IDs,
// ported from the teacher's PIDAllocator: increment, wrap, skip in-use.
// The ID space here is just bookkeeping for CLIENT UNBLOCK / introspection,
// not a real OS resource, so the range is wider than a PID space.
type idAllocator struct {
	mu     sync.Mutex
	next   int64
	inUse  map[int64]struct{}
	idMax  int64
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		next:  1,
		idMax: 1 << 32,
		inUse: make(map[int64]struct{}),
	}
}

// alloc returns the next available ID, panicking only if the entire
// space is exhausted — at 2^32 concurrently blocked clients this engine
// has bigger problems.
func (a *idAllocator) alloc() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := a.next
	for {
		id := a.next
		a.next++
		if a.next > a.idMax {
			a.next = 1
		}
		if _, used := a.inUse[id]; !used {
			a.inUse[id] = struct{}{}
			return id
		}
		if a.next == start {
			panic(fmt.Sprintf("idAllocator exhausted: 1..%d fully allocated", a.idMax))
		}
	}
}

// release returns id to the free pool. No-op on unknown IDs.
func (a *idAllocator) release(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, id)
}
