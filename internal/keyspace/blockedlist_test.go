package keyspace

import "testing"

func TestBlockedListFIFOOrder(t *testing.T) {
	l := NewBlockedList()
	l.PushTail("a")
	l.PushTail("b")
	l.PushTail("c")
	got := l.Snapshot()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("entry[%d] = %v, want %v", i, got[i], w)
		}
	}
}

func TestBlockedListRemoveCompactsAndReindexes(t *testing.T) {
	l := NewBlockedList()
	ha := l.PushTail("a")
	l.PushTail("b")
	hc := l.PushTail("c")

	if _, ok := l.Remove(ha); !ok {
		t.Fatalf("expected to remove a")
	}
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	// c's handle must still resolve correctly after the shift.
	client, ok := l.Remove(hc)
	if !ok || client != "c" {
		t.Fatalf("remove c after shift = %v, %v", client, ok)
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
}

func TestBlockedListRemoveUnknownHandle(t *testing.T) {
	l := NewBlockedList()
	l.PushTail("a")
	if _, ok := l.Remove(Handle(999)); ok {
		t.Fatalf("expected removal of unknown handle to fail")
	}
}
