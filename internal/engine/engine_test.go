package engine

import (
	"testing"

	"github.com/kavinhq/redicore/internal/blocking"
	"github.com/kavinhq/redicore/internal/config"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	cfg := config.Default()
	return New(zap.NewNop(), &cfg)
}

func TestDispatchRunsAgainstCorrectDB(t *testing.T) {
	e := newTestEngine()
	err := e.Dispatch(1, func(db *keyspace.Database) error {
		if db.Index != 1 {
			t.Fatalf("expected db index 1, got %d", db.Index)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatchDrainsReadyKeysOnReturn(t *testing.T) {
	e := newTestEngine()
	db := e.DB(0)
	info := e.BlockManager().BlockForKeys(db, []string{"k"}, blocking.BTypeList, blocking.ReplyShapeKeyValue, blocking.DirLeft, "", 0)

	e.Dispatch(0, func(db *keyspace.Database) error {
		v := obj.NewList(0, 0)
		obj.ListPushTail(v, []byte("x"))
		db.Add("k", v, 0)
		blocking.SignalKeyReady(db, "k")
		return nil
	})

	select {
	case w := <-info.Ready:
		if len(w.Values) != 1 || string(w.Values[0]) != "x" {
			t.Fatalf("wakeup values = %v", w.Values)
		}
	default:
		t.Fatalf("expected the waiter to be served by the time Dispatch returned")
	}
}

func TestDispatchOutOfRangeDB(t *testing.T) {
	e := newTestEngine()
	if err := e.Dispatch(999, func(db *keyspace.Database) error { return nil }); err == nil {
		t.Fatalf("expected an error for an out-of-range database index")
	}
}

func TestShutdownUnblocksWaiters(t *testing.T) {
	e := newTestEngine()
	db := e.DB(0)
	info := e.BlockManager().BlockForKeys(db, []string{"k"}, blocking.BTypeList, blocking.ReplyShapeKeyValue, blocking.DirLeft, "", 0)
	e.Shutdown()
	w := <-info.Ready
	if w.Err == nil {
		t.Fatalf("expected a shutdown error")
	}
}
