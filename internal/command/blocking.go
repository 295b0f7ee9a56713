// blocking.go implements the blocking-read command family (BLPOP/BRPOP/
// BLMOVE/BZPOPMIN/BZPOPMAX/BZMPOP/XREAD BLOCK/WAIT) by composing
// internal/blocking.Manager with the per-type keyspace accessors. Every
// function here either satisfies the call immediately or hands back a
// *blocking.BlockInfo for the caller to wait on (Info.Ready) outside of
// internal/engine.Dispatch — nothing in this package owns a connection
// goroutine to block on the caller's behalf (spec.md §9: blocking is a
// registration/wakeup protocol, not a parked goroutine inside the engine).
package command

import (
	"time"

	"github.com/kavinhq/redicore/internal/blocking"
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
)

// BPopResult is the outcome of a blocking list pop attempt.
type BPopResult struct {
	Found bool
	Key   string
	Value []byte
	Info  *blocking.BlockInfo // non-nil when the caller must wait on Info.Ready
}

func blockingListPop(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, dir blocking.Dir, timeout time.Duration) BPopResult {
	for _, key := range keys {
		v, ok := db.LookupWrite(key, c, 0)
		if !ok || v.Type() != obj.TypeList {
			continue
		}
		var val []byte
		if dir == blocking.DirLeft {
			val, ok = obj.ListPopHead(v)
		} else {
			val, ok = obj.ListPopTail(v)
		}
		if !ok {
			continue
		}
		if obj.ListLen(v) == 0 {
			db.DeleteSync(key)
		}
		return BPopResult{Found: true, Key: key, Value: val}
	}
	info := mgr.BlockForKeys(db, keys, blocking.BTypeList, blocking.ReplyShapeKeyValue, dir, "", timeout)
	return BPopResult{Info: info}
}

// BLPop implements BLPOP: pop the head of the first of keys that has
// anything, else register a waiter on all of them.
func BLPop(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, timeout time.Duration) BPopResult {
	return blockingListPop(db, c, mgr, keys, blocking.DirLeft, timeout)
}

// BRPop is BLPop's tail-popping counterpart.
func BRPop(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, timeout time.Duration) BPopResult {
	return blockingListPop(db, c, mgr, keys, blocking.DirRight, timeout)
}

// BLMoveResult mirrors BPopResult but also carries the source direction
// and destination key, since a blocked BLMOVE waiter's eventual wakeup
// still needs to push into dest — CompleteBLMove does that half.
type BLMoveResult struct {
	Found bool
	Value []byte
	Info  *blocking.BlockInfo
}

// BLMove implements BLMOVE/BRPOPLPUSH: pop srcDir's end of source and
// push dstDir's end of dest, atomically from the caller's point of view
// since both happen inside one Dispatch call. If source is empty, the
// waiter blocks on source alone; CompleteBLMove finishes the push once
// the wakeup arrives.
func BLMove(db *keyspace.Database, c *clock.Clock, n notifier, mgr *blocking.Manager, source, dest string, srcDir, dstDir blocking.Dir, timeout time.Duration) BLMoveResult {
	v, ok := db.LookupWrite(source, c, 0)
	if ok && v.Type() == obj.TypeList {
		var val []byte
		if srcDir == blocking.DirLeft {
			val, ok = obj.ListPopHead(v)
		} else {
			val, ok = obj.ListPopTail(v)
		}
		if ok {
			if obj.ListLen(v) == 0 {
				db.DeleteSync(source)
			}
			pushToList(db, c, n, dest, val, dstDir)
			blocking.SignalKeyReady(db, dest)
			return BLMoveResult{Found: true, Value: val}
		}
	}
	info := mgr.BlockForKeys(db, []string{source}, blocking.BTypeList, blocking.ReplyShapeValue, srcDir, dest, timeout)
	return BLMoveResult{Info: info}
}

// CompleteBLMove finishes a BLMOVE whose source waiter just woke up:
// push the value the wakeup carried onto dest. Callers invoke this after
// receiving a non-error, non-timeout Wakeup from a BLMove-returned
// Info.Ready channel.
func CompleteBLMove(db *keyspace.Database, c *clock.Clock, n notifier, mgr *blocking.Manager, w blocking.Wakeup, dest string, dstDir blocking.Dir) {
	if w.Err != nil || w.TimedOut || len(w.Values) == 0 {
		return
	}
	pushToList(db, c, n, dest, w.Values[0], dstDir)
	blocking.SignalKeyReady(db, dest)
}

func pushToList(db *keyspace.Database, c *clock.Clock, n notifier, key string, val []byte, dir blocking.Dir) {
	v, ok := db.LookupWrite(key, c, 0)
	if !ok {
		v = obj.NewList(0, c.NowMinutes())
		db.Add(key, v, 0)
	} else if v.Type() != obj.TypeList {
		return
	}
	if dir == blocking.DirLeft {
		obj.ListPushHead(v, val)
	} else {
		obj.ListPushTail(v, val)
	}
	notifyList(n, db, "lpush", key)
}

// BZPopResult is the outcome of a blocking sorted-set pop attempt.
type BZPopResult struct {
	Found  bool
	Key    string
	Member []byte
	Score  float64
	Info   *blocking.BlockInfo
}

func blockingZSetPop(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, dir blocking.Dir, timeout time.Duration) BZPopResult {
	for _, key := range keys {
		v, ok := db.LookupWrite(key, c, 0)
		if !ok || v.Type() != obj.TypeSortedSet {
			continue
		}
		var member []byte
		var score float64
		if dir == blocking.DirLeft {
			member, score, ok = obj.ZSetPopMin(v)
		} else {
			member, score, ok = obj.ZSetPopMax(v)
		}
		if !ok {
			continue
		}
		if obj.ZSetCard(v) == 0 {
			db.DeleteSync(key)
		}
		return BZPopResult{Found: true, Key: key, Member: member, Score: score}
	}
	info := mgr.BlockForKeys(db, keys, blocking.BTypeZSet, blocking.ReplyShapeKeyMemberScore, dir, "", timeout)
	return BZPopResult{Info: info}
}

// BZPopMin implements BZPOPMIN.
func BZPopMin(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, timeout time.Duration) BZPopResult {
	return blockingZSetPop(db, c, mgr, keys, blocking.DirLeft, timeout)
}

// BZPopMax implements BZPOPMAX.
func BZPopMax(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, timeout time.Duration) BZPopResult {
	return blockingZSetPop(db, c, mgr, keys, blocking.DirRight, timeout)
}

// BZMPop implements BZMPOP: like BZPopMin/Max but over an explicit
// direction flag. count is not consulted: exactly one member is popped,
// both when satisfied immediately and when woken after blocking (the
// zset wakeup server has no notion of a multi-member batch), so a caller
// wanting more than one member re-issues BZMPOP.
func BZMPop(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, keys []string, dir blocking.Dir, count int, timeout time.Duration) BZPopResult {
	for _, key := range keys {
		v, ok := db.LookupWrite(key, c, 0)
		if !ok || v.Type() != obj.TypeSortedSet {
			continue
		}
		if obj.ZSetCard(v) == 0 {
			continue
		}
		var member []byte
		var score float64
		if dir == blocking.DirLeft {
			member, score, ok = obj.ZSetPopMin(v)
		} else {
			member, score, ok = obj.ZSetPopMax(v)
		}
		if !ok {
			continue
		}
		if obj.ZSetCard(v) == 0 {
			db.DeleteSync(key)
		}
		return BZPopResult{Found: true, Key: key, Member: member, Score: score}
	}
	info := mgr.BlockForKeys(db, keys, blocking.BTypeZSet, blocking.ReplyShapeZMPop, dir, "", timeout)
	return BZPopResult{Info: info}
}

// XReadResult is the outcome of a blocking stream read attempt.
type XReadResult struct {
	Entries []obj.StreamEntry
	Info    *blocking.BlockInfo
}

// XReadBlock implements XREAD BLOCK: return every entry after after if
// any exist, else register a stream waiter that wakes on the next XADD.
func XReadBlock(db *keyspace.Database, c *clock.Clock, mgr *blocking.Manager, key string, after obj.StreamID, timeout time.Duration) (XReadResult, error) {
	v, ok := db.LookupWrite(key, c, 0)
	if ok {
		if v.Type() != obj.TypeStream {
			return XReadResult{}, rerror.ErrWrongType
		}
		if entries := obj.StreamRangeAfter(v, after); len(entries) > 0 {
			return XReadResult{Entries: entries}, nil
		}
	}
	info := mgr.BlockForKeys(db, []string{key}, blocking.BTypeStream, blocking.ReplyShapeStreamEntries, blocking.DirLeft, "", timeout)
	info.After = after
	return XReadResult{Info: info}, nil
}

// WaitResult is WAIT's outcome: this engine has no replicas, so the
// acknowledged count is always zero; WAIT blocks only to honor the
// caller's requested timeout before reporting that, matching a
// single-node deployment's observable behavior.
type WaitResult struct {
	Acked int
	Info  *blocking.BlockInfo
}

// Wait implements WAIT. numReplicas <= 0 is satisfied immediately;
// otherwise the caller blocks until timeout (there being no replication
// stream to ever satisfy it early) and is woken with Acked == 0.
func Wait(db *keyspace.Database, mgr *blocking.Manager, numReplicas int, timeout time.Duration) WaitResult {
	if numReplicas <= 0 {
		return WaitResult{Acked: 0}
	}
	info := mgr.BlockForKeys(db, nil, blocking.BTypeWait, blocking.ReplyShapeWaitCount, blocking.DirLeft, "", timeout)
	return WaitResult{Info: info}
}
