// Package keyspace implements the per-database dict/expires mapping and
// the blocking/ready-key bookkeeping spec.md §3 and §4.4 describe.
package keyspace

import (
	"sync"

	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

// Notifier is the narrow interface Database uses to emit keyspace events
// (spec.md §5's keyspace-notification bus) without importing internal/notify
// directly — wired in by internal/engine at construction time.
type Notifier interface {
	Notify(dbIndex int, class byte, event string, key string)
}

// Stats accumulates the hit/miss counters INFO and OBJECT FREQ-adjacent
// commands read. NOSTATS-flagged lookups skip these increments.
type Stats struct {
	mu      sync.Mutex
	Hits    int64
	Misses  int64
	Expired int64
}

func (s *Stats) hit() {
	s.mu.Lock()
	s.Hits++
	s.mu.Unlock()
}

func (s *Stats) miss() {
	s.mu.Lock()
	s.Misses++
	s.mu.Unlock()
}

func (s *Stats) expired() {
	s.mu.Lock()
	s.Expired++
	s.mu.Unlock()
}

// Database is one numbered keyspace (spec.md §3): the key/value dict,
// the expires table, and the per-key blocked-client lists and
// ready-key set that internal/blocking drives.
type Database struct {
	log *zap.Logger

	Index int

	mu           sync.RWMutex
	dict         map[string]*obj.Value
	expires      map[string]int64 // key -> absolute deadline, ms
	blockingKeys map[string]*BlockedList
	readyKeys    map[string]struct{}

	notifier Notifier
	Stats    Stats
}

// New returns an empty database numbered index.
func New(log *zap.Logger, index int, notifier Notifier) *Database {
	return &Database{
		log:          log.Named("keyspace").With(zap.Int("db", index)),
		Index:        index,
		dict:         make(map[string]*obj.Value),
		expires:      make(map[string]int64),
		blockingKeys: make(map[string]*BlockedList),
		readyKeys:    make(map[string]struct{}),
		notifier:     notifier,
	}
}

// Len returns the number of live keys, not accounting for lazily-unexpired
// entries still sitting in dict.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.dict)
}

// ForEach calls fn for every key/value pair under a read lock, stopping
// early if fn returns false. Used by internal/memory's sampling and by
// introspection commands that need to walk the whole dict without
// internal/keyspace exposing it directly.
func (db *Database) ForEach(fn func(key string, v *obj.Value) bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for k, v := range db.dict {
		if !fn(k, v) {
			return
		}
	}
}

// blockedListFor returns (creating if needed) the BlockedList for key.
// Callers must hold db.mu for writing.
func (db *Database) blockedListFor(key string) *BlockedList {
	l, ok := db.blockingKeys[key]
	if !ok {
		l = NewBlockedList()
		db.blockingKeys[key] = l
	}
	return l
}

// BlockClient registers client on key's blocked list, returning a handle
// for later removal. Exported for internal/blocking's BlockForKeys.
func (db *Database) BlockClient(key string, client any) Handle {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.blockedListFor(key).PushTail(client)
}

// UnblockClient removes client (matched by handle) from key's list,
// pruning the list map entry once empty.
func (db *Database) UnblockClient(key string, h Handle) (any, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.blockingKeys[key]
	if !ok {
		return nil, false
	}
	client, removed := l.Remove(h)
	if l.Len() == 0 {
		delete(db.blockingKeys, key)
	}
	return client, removed
}

// HasBlockedClients reports whether key has any waiters.
func (db *Database) HasBlockedClients(key string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	l, ok := db.blockingKeys[key]
	return ok && l.Len() > 0
}

// BlockedClients snapshots key's waiters in FIFO order.
func (db *Database) BlockedClients(key string) []any {
	db.mu.RLock()
	l, ok := db.blockingKeys[key]
	db.mu.RUnlock()
	if !ok {
		return nil
	}
	return l.Snapshot()
}

// MarkReady adds key to the ready set, returning true if it was not
// already present. The set itself dedups repeated signals for the same
// key within one drain pass (spec.md §4.6).
func (db *Database) MarkReady(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.readyKeys[key]; ok {
		return false
	}
	db.readyKeys[key] = struct{}{}
	return true
}

// DrainReady pops and clears the entire ready set, returning its keys.
// internal/blocking's HandleReadyKeys calls this once per drain pass.
func (db *Database) DrainReady() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	keys := make([]string, 0, len(db.readyKeys))
	for k := range db.readyKeys {
		keys = append(keys, k)
	}
	db.readyKeys = make(map[string]struct{})
	return keys
}
