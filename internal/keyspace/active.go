package keyspace

import "github.com/kavinhq/redicore/internal/clock"

// SampleActiveExpire inspects up to sampleSize entries of the expires
// table — Go's map iteration order is already randomized per-run, which
// is exactly the "randomly sampled" property the active-expire cycle
// needs (spec.md §4.5) — deleting any that are past their deadline.
// Returns how many were checked and how many were deleted, so the
// caller (internal/expire's cycle driver) can decide whether to keep
// sampling this database.
func (db *Database) SampleActiveExpire(c *clock.Clock, sampleSize int) (checked, expired int) {
	db.mu.Lock()
	defer db.mu.Unlock()

	nowMS := c.NowMS()
	var toDelete []string
	for key, deadline := range db.expires {
		if checked >= sampleSize {
			break
		}
		checked++
		if deadline <= nowMS {
			toDelete = append(toDelete, key)
		}
	}
	for _, key := range toDelete {
		if _, ok := db.deleteLocked(key); ok {
			expired++
			db.Stats.expired()
			if db.notifier != nil {
				db.notifier.Notify(db.Index, 'x', "expired", key)
			}
		}
	}
	return checked, expired
}

// ExpiresLen reports the number of keys currently carrying a TTL, used to
// decide whether an active-expire pass over this database is worthwhile
// at all.
func (db *Database) ExpiresLen() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.expires)
}
