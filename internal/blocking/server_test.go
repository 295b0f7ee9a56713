package blocking

import (
	"testing"

	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

func TestSignalAndHandleReadyKeysServesListWaiter(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"k"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	v := obj.NewList(0, 0)
	obj.ListPushTail(v, []byte("hello"))
	db.Add("k", v, 0)
	SignalKeyReady(db, "k")

	m.HandleReadyKeys(db, func(key string) (*obj.Value, bool) {
		return db.LookupWrite(key, testClock(), 0)
	})

	w := <-info.Ready
	if len(w.Values) != 1 || string(w.Values[0]) != "hello" {
		t.Fatalf("wakeup values = %v", w.Values)
	}
	if db.HasBlockedClients("k") {
		t.Fatalf("expected waiter deregistered after being served")
	}
}

func TestServeListDeletesKeyWhenDrained(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	m.BlockForKeys(db, []string{"k"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	v := obj.NewList(0, 0)
	obj.ListPushTail(v, []byte("only"))
	db.Add("k", v, 0)
	SignalKeyReady(db, "k")
	m.HandleReadyKeys(db, func(key string) (*obj.Value, bool) {
		return db.LookupWrite(key, testClock(), 0)
	})

	if _, ok := db.LookupWrite("k", testClock(), 0); ok {
		t.Fatalf("expected the now-empty list to be deleted")
	}
}

func TestServeZSetWakesLowestScoreFirst(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"z"}, BTypeZSet, ReplyShapeKeyMemberScore, DirLeft, "", 0)

	v := obj.NewZSet(0, 0)
	obj.ZSetAdd(v, []byte("b"), 2)
	obj.ZSetAdd(v, []byte("a"), 1)
	db.Add("z", v, 0)
	SignalKeyReady(db, "z")
	m.HandleReadyKeys(db, func(key string) (*obj.Value, bool) {
		return db.LookupWrite(key, testClock(), 0)
	})

	w := <-info.Ready
	if string(w.Values[0]) != "a" || w.Score != 1 {
		t.Fatalf("wakeup = %q %v, want a 1", w.Values[0], w.Score)
	}
}

func TestSignalKeyReadyNoOpWithoutWaiters(t *testing.T) {
	db := newTestDB()
	SignalKeyReady(db, "nobody-waiting")
	if keys := db.DrainReady(); len(keys) != 0 {
		t.Fatalf("expected no ready keys without waiters, got %v", keys)
	}
}

func TestServeKeySkipsTypeMismatchedHeadWaiter(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	listWaiter := m.BlockForKeys(db, []string{"k"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)
	zsetWaiter := m.BlockForKeys(db, []string{"k"}, BTypeZSet, ReplyShapeKeyMemberScore, DirLeft, "", 0)

	v := obj.NewZSet(0, 0)
	obj.ZSetAdd(v, []byte("member"), 5)
	db.Add("k", v, 0)
	SignalKeyReady(db, "k")
	m.HandleReadyKeys(db, func(key string) (*obj.Value, bool) {
		return db.LookupWrite(key, testClock(), 0)
	})

	select {
	case w := <-zsetWaiter.Ready:
		if string(w.Values[0]) != "member" || w.Score != 5 {
			t.Fatalf("zset wakeup = %v %v", w.Values, w.Score)
		}
	default:
		t.Fatalf("expected the zset waiter behind the mismatched list waiter to be served")
	}

	select {
	case <-listWaiter.Ready:
		t.Fatalf("expected the type-mismatched list waiter to stay blocked")
	default:
	}
	if !db.HasBlockedClients("k") {
		t.Fatalf("expected the list waiter still registered on k")
	}
}
