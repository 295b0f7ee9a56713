package blocking

import (
	"container/heap"
	"time"
)

// deadlineEvent is one scheduled timeout, ported from the teacher's
// schedEvent. index backs heap.Fix/heap.Remove's O(log n) removal.
type deadlineEvent struct {
	id    int64
	when  time.Time
	index int
}

// timeoutQueue is a min-heap of pending blocked-client deadlines, ported
// from the teacher's scheduler — same push/next/pop/remove shape, now
// keyed by blocked-client ID instead of PID.
type timeoutQueue struct {
	h       eventHeap
	entries map[int64]*deadlineEvent
}

func newTimeoutQueue() *timeoutQueue {
	h := eventHeap{}
	heap.Init(&h)
	return &timeoutQueue{h: h, entries: make(map[int64]*deadlineEvent)}
}

func (q *timeoutQueue) push(id int64, when time.Time) {
	if old, ok := q.entries[id]; ok {
		heap.Remove(&q.h, old.index)
		delete(q.entries, id)
	}
	ev := &deadlineEvent{id: id, when: when}
	q.entries[id] = ev
	heap.Push(&q.h, ev)
}

func (q *timeoutQueue) next() (id int64, when time.Time, ok bool) {
	if len(q.h) == 0 {
		return 0, time.Time{}, false
	}
	ev := q.h[0]
	return ev.id, ev.when, true
}

func (q *timeoutQueue) pop() {
	if len(q.h) == 0 {
		return
	}
	ev := heap.Pop(&q.h).(*deadlineEvent)
	delete(q.entries, ev.id)
}

func (q *timeoutQueue) remove(id int64) {
	ev, ok := q.entries[id]
	if !ok {
		return
	}
	heap.Remove(&q.h, ev.index)
	delete(q.entries, id)
}

func (q *timeoutQueue) len() int { return len(q.h) }

type eventHeap []*deadlineEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*deadlineEvent)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	ev.index = -1
	*h = old[:n-1]
	return ev
}
