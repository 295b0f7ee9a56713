package command

import (
	"testing"
	"time"

	"github.com/kavinhq/redicore/internal/blocking"
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
	"go.uber.org/zap"
)

func testClock() *clock.Clock { return clock.New() }
func testLogger() *zap.Logger { return zap.NewNop() }

func TestBLPopFindsExistingElement(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	v := obj.NewList(0, c.NowMinutes())
	obj.ListPushTail(v, []byte("x"))
	db.Add("l", v, 0)

	r := BLPop(db, c, mgr, []string{"l"}, 0)
	if !r.Found || r.Key != "l" || string(r.Value) != "x" {
		t.Fatalf("result = %+v", r)
	}
	if r.Info != nil {
		t.Fatalf("expected no registered waiter on an immediate hit")
	}
}

func TestBLPopBlocksWhenEmpty(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())

	r := BLPop(db, c, mgr, []string{"missing"}, 0)
	if r.Found || r.Info == nil {
		t.Fatalf("expected a registered waiter, got %+v", r)
	}
	if !db.HasBlockedClients("missing") {
		t.Fatalf("expected waiter registered on the key")
	}
}

func TestBLMoveImmediateMovesBetweenLists(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	v := obj.NewList(0, c.NowMinutes())
	obj.ListPushTail(v, []byte("x"))
	db.Add("src", v, 0)

	r := BLMove(db, c, nil, mgr, "src", "dst", blocking.DirLeft, blocking.DirRight, 0)
	if !r.Found || string(r.Value) != "x" {
		t.Fatalf("result = %+v", r)
	}
	dst, ok := db.LookupRead("dst", c, 0)
	if !ok || obj.ListLen(dst) != 1 {
		t.Fatalf("expected dest to receive the moved element")
	}
}

func TestBLMoveBlocksOnEmptySource(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())

	r := BLMove(db, c, nil, mgr, "src", "dst", blocking.DirLeft, blocking.DirRight, 0)
	if r.Found || r.Info == nil {
		t.Fatalf("expected a registered waiter, got %+v", r)
	}
}

func TestCompleteBLMovePushesWakeupValue(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())

	CompleteBLMove(db, c, nil, mgr, blocking.Wakeup{Values: [][]byte{[]byte("v")}}, "dst", blocking.DirRight)
	dst, ok := db.LookupRead("dst", c, 0)
	if !ok || obj.ListLen(dst) != 1 {
		t.Fatalf("expected dest list to exist with one element")
	}
}

func TestBZPopMinFindsLowestScore(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	v := obj.NewZSet(0, c.NowMinutes())
	obj.ZSetAdd(v, []byte("a"), 5)
	obj.ZSetAdd(v, []byte("b"), 1)
	db.Add("z", v, 0)

	r := BZPopMin(db, c, mgr, []string{"z"}, 0)
	if !r.Found || string(r.Member) != "b" || r.Score != 1 {
		t.Fatalf("result = %+v", r)
	}
}

func TestBZMPopBlocksWhenAllKeysEmpty(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())

	r := BZMPop(db, c, mgr, []string{"z1", "z2"}, blocking.DirLeft, 1, 0)
	if r.Found || r.Info == nil {
		t.Fatalf("expected registered waiter, got %+v", r)
	}
}

func TestXReadBlockReturnsExistingEntries(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	v := obj.NewStream(0, c.NowMinutes())
	id, _ := obj.StreamAdd(v, obj.StreamID{}, true, [][]byte{[]byte("f")}, [][]byte{[]byte("v")})
	db.Add("s", v, 0)

	res, err := XReadBlock(db, c, mgr, "s", obj.StreamID{}, 0)
	if err != nil || len(res.Entries) != 1 || res.Entries[0].ID != id {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
}

func TestXReadBlockRegistersWaiterWhenCaughtUp(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	v := obj.NewStream(0, c.NowMinutes())
	last, _ := obj.StreamAdd(v, obj.StreamID{}, true, [][]byte{[]byte("f")}, [][]byte{[]byte("v")})
	db.Add("s", v, 0)

	res, err := XReadBlock(db, c, mgr, "s", last, 0)
	if err != nil || res.Info == nil {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
}

func TestXReadBlockWrongType(t *testing.T) {
	db := newDB()
	c := testClock()
	mgr := blocking.NewManager(testLogger())
	Set(db, c, nil, "s", []byte("v"), SetOptions{})

	_, err := XReadBlock(db, c, mgr, "s", obj.StreamID{}, 0)
	if err != rerror.ErrWrongType {
		t.Fatalf("err = %v, want ErrWrongType", err)
	}
}

func TestWaitWithNoReplicasReturnsImmediately(t *testing.T) {
	db := newDB()
	mgr := blocking.NewManager(testLogger())
	r := Wait(db, mgr, 0, time.Second)
	if r.Acked != 0 || r.Info != nil {
		t.Fatalf("result = %+v", r)
	}
}

func TestWaitWithReplicasBlocks(t *testing.T) {
	db := newDB()
	mgr := blocking.NewManager(testLogger())
	r := Wait(db, mgr, 1, time.Second)
	if r.Info == nil {
		t.Fatalf("expected a registered waiter when replicas are requested")
	}
}
