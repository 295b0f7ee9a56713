package keyspace

import (
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/obj"
)

// LookupFlags mirrors the NOTOUCH/NONOTIFY/NOSTATS/NOEXPIRE modifiers
// spec.md §4.4 requires on lookups — callers like OBJECT/DEBUG/replication
// paths that must not disturb LRU/LFU state, stats counters, or trigger
// lazy expiry use these.
type LookupFlags uint8

const (
	NoTouch   LookupFlags = 1 << iota // skip LRU/LFU update
	NoNotify                          // skip keyspace-event emission
	NoStats                           // skip hit/miss counters
	NoExpire                          // skip lazy-expiry check
)

func (f LookupFlags) has(flag LookupFlags) bool { return f&flag != 0 }

// isExpiredLocked reports whether key has a deadline in the past as of
// nowMS. Callers must hold db.mu.
func (db *Database) isExpiredLocked(key string, nowMS int64) bool {
	deadline, ok := db.expires[key]
	return ok && deadline <= nowMS
}

// expireIfNeededLocked deletes key if it is expired, emitting an "expired"
// notification unless suppressed. Callers must hold db.mu for writing.
func (db *Database) expireIfNeededLocked(key string, c *clock.Clock, flags LookupFlags) bool {
	if flags.has(NoExpire) {
		return false
	}
	if !db.isExpiredLocked(key, c.NowMS()) {
		return false
	}
	db.deleteLocked(key)
	db.Stats.expired()
	if !flags.has(NoNotify) && db.notifier != nil {
		db.notifier.Notify(db.Index, 'x', "expired", key)
	}
	return true
}

// LookupRead fetches key for a read-only command. Applies lazy expiry,
// then LRU/LFU touch and hit/miss stats unless suppressed by flags.
func (db *Database) LookupRead(key string, c *clock.Clock, flags LookupFlags) (*obj.Value, bool) {
	db.mu.Lock()
	db.expireIfNeededLocked(key, c, flags)
	v, ok := db.dict[key]
	db.mu.Unlock()

	if !ok {
		if !flags.has(NoStats) {
			db.Stats.miss()
		}
		return nil, false
	}
	if !flags.has(NoStats) {
		db.Stats.hit()
	}
	if !flags.has(NoTouch) {
		db.touch(v, c)
	}
	return v, true
}

// LookupWrite is LookupRead without stats accounting — Redis's
// lookupKeyWrite never updates hit/miss counters, only LookupRead does.
func (db *Database) LookupWrite(key string, c *clock.Clock, flags LookupFlags) (*obj.Value, bool) {
	db.mu.Lock()
	db.expireIfNeededLocked(key, c, flags)
	v, ok := db.dict[key]
	db.mu.Unlock()
	if ok && !flags.has(NoTouch) {
		db.touch(v, c)
	}
	return v, ok
}

func (db *Database) touch(v *obj.Value, c *clock.Clock) {
	obj.Touch(v, c.NowMinutes())
}

// Add inserts a brand-new key/value pair. The caller is responsible for
// having confirmed key does not already exist; Add overwrites silently
// otherwise, matching dbAdd's contract in the original (callers that
// need overwrite protection check first via LookupWrite).
func (db *Database) Add(key string, v *obj.Value, flags LookupFlags) {
	db.mu.Lock()
	db.dict[key] = v
	db.mu.Unlock()
	if !flags.has(NoNotify) {
		db.SignalModified(key)
	}
}

// Overwrite replaces an existing key's value, preserving its expire
// entry (SET without KEEPTTL semantics are decided by the caller —
// Overwrite itself never touches db.expires).
func (db *Database) Overwrite(key string, v *obj.Value, flags LookupFlags) {
	db.mu.Lock()
	db.dict[key] = v
	db.mu.Unlock()
	if !flags.has(NoNotify) {
		db.SignalModified(key)
	}
}

// deleteLocked removes key and its expire entry. Callers must hold db.mu.
func (db *Database) deleteLocked(key string) (*obj.Value, bool) {
	v, ok := db.dict[key]
	if !ok {
		return nil, false
	}
	delete(db.dict, key)
	delete(db.expires, key)
	return v, ok
}

// DeleteSync removes key immediately on the calling goroutine, releasing
// the value's final reference inline. Use for small values where
// reclaim cost is negligible.
func (db *Database) DeleteSync(key string) bool {
	db.mu.Lock()
	v, ok := db.deleteLocked(key)
	db.mu.Unlock()
	if ok {
		obj.Release(v)
	}
	return ok
}

// DeleteAsync removes key from the dict synchronously but hands the
// final Release to the reclaim worker pool (reclaim.go), matching
// spec.md §4.4's UNLINK semantics for large aggregate values.
func (db *Database) DeleteAsync(key string, r *Reclaimer) bool {
	db.mu.Lock()
	v, ok := db.deleteLocked(key)
	db.mu.Unlock()
	if ok {
		r.Submit(v)
	}
	return ok
}

// SetExpire installs an absolute millisecond deadline for key.
func (db *Database) SetExpire(key string, atMS int64) {
	db.mu.Lock()
	db.expires[key] = atMS
	db.mu.Unlock()
}

// RemoveExpire clears key's deadline (PERSIST), reporting whether one
// had been set.
func (db *Database) RemoveExpire(key string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.expires[key]
	delete(db.expires, key)
	return ok
}

// ExpireAt returns key's absolute deadline in ms, if any.
func (db *Database) ExpireAt(key string) (int64, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	at, ok := db.expires[key]
	return at, ok
}

// SignalModified emits the generic "modified" side effects of a write:
// a keyspace notification hook point for callers that don't supply a
// more specific event name via Notifier directly. Command implementations
// typically call db.notifier.Notify with a precise event instead; this
// exists for the bookkeeping common path (e.g. touching watch state).
func (db *Database) SignalModified(key string) {
	// Placeholder hook for future WATCH/tracking integration; commands
	// emit their own specific keyspace-notification events via Notifier.
	_ = key
}
