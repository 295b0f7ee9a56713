package keyspace

import "sync"

// Handle is a stable token identifying one entry in a BlockedList,
// returned at insertion and used for removal: the entry's position is
// found in O(1), but Remove then shifts every later entry, so removal is
// O(n) in the list's length. This
// replaces the intrusive listNode* backpointer spec.md §9 calls out
// ("client's bkinfo.listnode holding a pointer into the key's
// blocked-list") with a token a Go map can key on safely.
//
// The underlying slice+position-map shape is the one
// internal/infrastructure/objectstore.ObjectStore used for its ID index;
// here the "ID" is an opaque monotonic handle and insertion is always at
// the tail, since blocking order must be FIFO arrival order (spec.md
// §3, §4.6) rather than sorted by key.
type Handle uint64

type blockedEntry struct {
	handle Handle
	client any
}

// BlockedList is one key's ordered list of blocked clients
// (spec.md §3 blocking_keys entry). Safe for concurrent use; in practice
// it is only ever touched from the single executor goroutine, but the
// lock keeps it honest against the async reclaimer path.
type BlockedList struct {
	mu         sync.Mutex
	entries    []blockedEntry
	pos        map[Handle]int
	nextHandle Handle
}

// NewBlockedList returns an empty list.
func NewBlockedList() *BlockedList {
	return &BlockedList{pos: make(map[Handle]int)}
}

// PushTail registers client at the tail, returning its removal handle.
func (l *BlockedList) PushTail(client any) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextHandle++
	h := l.nextHandle
	l.pos[h] = len(l.entries)
	l.entries = append(l.entries, blockedEntry{handle: h, client: client})
	return h
}

// Remove deletes the entry for handle, compacting the slice and
// reindexing positions for the shifted tail — the same approach
// ObjectStore.Delete uses for its ids/vals slices. Returns the removed
// client and whether it was present.
func (l *BlockedList) Remove(h Handle) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.pos[h]
	if !ok {
		return nil, false
	}
	client := l.entries[i].client
	copy(l.entries[i:], l.entries[i+1:])
	l.entries = l.entries[:len(l.entries)-1]
	delete(l.pos, h)
	for k := i; k < len(l.entries); k++ {
		l.pos[l.entries[k].handle] = k
	}
	return client, true
}

// Len reports the number of registered clients.
func (l *BlockedList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns clients in FIFO arrival order. Per-type servers
// (spec.md §4.6) iterate this to dispatch wakeups; the snapshot is a
// copy so iteration is safe even if a handler removes entries mid-scan.
func (l *BlockedList) Snapshot() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]any, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.client
	}
	return out
}
