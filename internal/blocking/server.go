package blocking

import (
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
)

// SignalKeyReady marks key as worth re-checking for blocked clients.
// Write commands call this after a mutation that could satisfy a
// waiter (LPUSH, ZADD, XADD, ...); it does not itself wake anyone —
// that happens in the next HandleReadyKeys drain, matching spec.md
// §4.6's "mark, then drain" ordering so a single command's several
// writes coalesce into one wakeup pass.
func SignalKeyReady(db *keyspace.Database, key string) {
	if db.HasBlockedClients(key) {
		db.MarkReady(key)
	}
}

// HandleReadyKeys drains db's ready-key set and serves each one,
// dispatching to the matching per-type wakeup server. lookup is the
// caller's read path into the keyspace (internal/engine wires this to
// keyspace.Database.LookupWrite so a served pop counts as a write).
func (m *Manager) HandleReadyKeys(db *keyspace.Database, lookup func(key string) (*obj.Value, bool)) {
	for _, key := range db.DrainReady() {
		m.serveKey(db, key, lookup)
	}
}

// blockTypeMatchesValue reports whether a waiter of type t can be served
// from a value of type vt. Module waiters always match: serveModule
// decides compatibility itself (erroring a waiter out if the value
// isn't a module type) rather than being skipped over here.
func blockTypeMatchesValue(t Btype, vt obj.Type) bool {
	switch t {
	case BTypeList:
		return vt == obj.TypeList
	case BTypeZSet:
		return vt == obj.TypeSortedSet
	case BTypeStream:
		return vt == obj.TypeStream
	case BTypeModule:
		return true
	default:
		return false
	}
}

// serveKey repeatedly satisfies key's waiters for as long as the value
// backing key has something to give. Waiters are scanned in FIFO order
// for the first one whose type matches the value currently stored under
// key; a type-mismatched waiter ahead of it (e.g. a client that issued
// BLPOP on a key before anyone ZADDed a sorted set there) is skipped
// rather than blocking every later, compatible waiter on the same key
// indefinitely. Skipped waiters stay registered, still in their
// original order, for whenever the key's type changes again.
func (m *Manager) serveKey(db *keyspace.Database, key string, lookup func(key string) (*obj.Value, bool)) {
	for {
		clients := db.BlockedClients(key)
		if len(clients) == 0 {
			return
		}
		v, ok := lookup(key)
		if !ok {
			return
		}

		var info *BlockInfo
		for _, cl := range clients {
			bi, ok := cl.(*BlockInfo)
			if !ok {
				continue
			}
			if blockTypeMatchesValue(bi.Type, v.Type()) {
				info = bi
				break
			}
		}
		if info == nil {
			return
		}

		var served bool
		switch info.Type {
		case BTypeList:
			served = m.serveList(db, key, v, info)
		case BTypeZSet:
			served = m.serveZSet(db, key, v, info)
		case BTypeStream:
			served = m.serveStream(db, key, v, info)
		case BTypeModule:
			served = m.serveModule(db, key, v, info)
		default:
			return
		}
		if !served {
			return
		}
	}
}

func (m *Manager) serveList(db *keyspace.Database, key string, v *obj.Value, info *BlockInfo) bool {
	if v.Type() != obj.TypeList {
		return false
	}
	var val []byte
	var ok bool
	if info.Dir == DirLeft {
		val, ok = obj.ListPopHead(v)
	} else {
		val, ok = obj.ListPopTail(v)
	}
	if !ok {
		return false
	}
	m.Unblock(db, info, Wakeup{Shape: info.Shape, Key: key, Values: [][]byte{val}})
	if obj.ListLen(v) == 0 {
		db.DeleteSync(key)
	}
	return true
}

func (m *Manager) serveZSet(db *keyspace.Database, key string, v *obj.Value, info *BlockInfo) bool {
	if v.Type() != obj.TypeSortedSet {
		return false
	}
	var member []byte
	var score float64
	var ok bool
	if info.Dir == DirLeft {
		member, score, ok = obj.ZSetPopMin(v)
	} else {
		member, score, ok = obj.ZSetPopMax(v)
	}
	if !ok {
		return false
	}
	m.Unblock(db, info, Wakeup{Shape: info.Shape, Key: key, Values: [][]byte{member}, Score: score})
	if obj.ZSetCard(v) == 0 {
		db.DeleteSync(key)
	}
	return true
}

func (m *Manager) serveStream(db *keyspace.Database, key string, v *obj.Value, info *BlockInfo) bool {
	if v.Type() != obj.TypeStream {
		return false
	}
	entries := obj.StreamRangeAfter(v, info.After)
	if len(entries) == 0 {
		return false
	}
	vals := make([][]byte, 0, len(entries))
	for _, e := range entries {
		vals = append(vals, e.Values...)
	}
	m.Unblock(db, info, Wakeup{Shape: info.Shape, Key: key, Values: vals})
	return true
}

func (m *Manager) serveModule(db *keyspace.Database, key string, v *obj.Value, info *BlockInfo) bool {
	if v.Type() != obj.TypeModule {
		m.Unblock(db, info, Wakeup{Err: rerror.ErrNoGroup})
		return true
	}
	m.Unblock(db, info, Wakeup{Shape: ReplyShapeModule, Key: key})
	return true
}
