package blocking

import (
	"testing"
	"time"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/rerror"
	"go.uber.org/zap"
)

func newTestDB() *keyspace.Database {
	return keyspace.New(zap.NewNop(), 0, nil)
}

func testClock() *clock.Clock {
	return clock.New()
}

func TestBlockForKeysRegistersOnAllKeys(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a", "b"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	if !db.HasBlockedClients("a") || !db.HasBlockedClients("b") {
		t.Fatalf("expected client registered on both keys")
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	_ = info
}

func TestUnblockDeregistersFromAllKeys(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a", "b"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	if !m.Unblock(db, info, Wakeup{Key: "a", Values: [][]byte{[]byte("v")}}) {
		t.Fatalf("expected first unblock to win")
	}
	if db.HasBlockedClients("a") || db.HasBlockedClients("b") {
		t.Fatalf("expected client removed from both keys")
	}
	w := <-info.Ready
	if w.Key != "a" {
		t.Fatalf("wakeup key = %q", w.Key)
	}
}

func TestUnblockIsIdempotent(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	if !m.Unblock(db, info, Wakeup{}) {
		t.Fatalf("first unblock should win")
	}
	if m.Unblock(db, info, Wakeup{}) {
		t.Fatalf("second unblock should lose the race")
	}
}

func TestPollTimeoutsFiresExpiredDeadlines(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", time.Millisecond)

	m.PollTimeouts(func(idx int) *keyspace.Database { return db }, time.Now().Add(time.Second))
	w := <-info.Ready
	if !w.TimedOut {
		t.Fatalf("expected a timed-out wakeup")
	}
	if db.HasBlockedClients("a") {
		t.Fatalf("expected client deregistered after timeout")
	}
}

func TestUnblockByIDWithError(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	if !m.UnblockByID(db, info.ID, true) {
		t.Fatalf("expected CLIENT UNBLOCK ERROR to succeed")
	}
	w := <-info.Ready
	if w.Err != rerror.ErrUnblocked {
		t.Fatalf("err = %v, want ErrUnblocked", w.Err)
	}
}

func TestUnblockAllForShutdown(t *testing.T) {
	db := newTestDB()
	m := NewManager(zap.NewNop())
	info := m.BlockForKeys(db, []string{"a"}, BTypeList, ReplyShapeKeyValue, DirLeft, "", 0)

	m.UnblockAllForShutdown(func(idx int) *keyspace.Database {
		if idx == db.Index {
			return db
		}
		return nil
	})
	w := <-info.Ready
	if w.Err != rerror.ErrShutdown {
		t.Fatalf("err = %v, want ErrShutdown", w.Err)
	}
}
