package obj

import "testing"

func TestSetPromotesOnNonInteger(t *testing.T) {
	v := NewSet(lruModeTimestamp, 0)
	SetAdd(v, []byte("1"), 512)
	SetAdd(v, []byte("2"), 512)
	if v.Encoding() != EncIntset {
		t.Fatalf("expected intset, got %v", v.Encoding())
	}
	SetAdd(v, []byte("not-an-int"), 512)
	if v.Encoding() != EncHashtable {
		t.Fatalf("expected hashtable after non-integer insert, got %v", v.Encoding())
	}
	if SetCard(v) != 3 {
		t.Fatalf("card = %d, want 3", SetCard(v))
	}
}

func TestSetPromotesOnCount(t *testing.T) {
	v := NewSet(lruModeTimestamp, 0)
	for i := 0; i < 5; i++ {
		SetAdd(v, []byte(formatInt(int64(i))), 512)
	}
	MaybePromoteSet(v, 3)
	if v.Encoding() != EncHashtable {
		t.Fatalf("expected promotion past count threshold, got %v", v.Encoding())
	}
	if SetCard(v) != 5 {
		t.Fatalf("card = %d, want 5", SetCard(v))
	}
}

func TestHashPromotesOnEntryCount(t *testing.T) {
	v := NewHash(lruModeTimestamp, 0)
	for i := 0; i < 3; i++ {
		HashSet(v, []byte(formatInt(int64(i))), []byte("v"))
	}
	MaybePromoteHash(v, 2, 64)
	if v.Encoding() != EncHashtable {
		t.Fatalf("expected hashtable, got %v", v.Encoding())
	}
	if HashLen(v) != 3 {
		t.Fatalf("len = %d, want 3", HashLen(v))
	}
}

func TestZSetOrderingAndPromotion(t *testing.T) {
	v := NewZSet(lruModeTimestamp, 0)
	ZSetAdd(v, []byte("b"), 2)
	ZSetAdd(v, []byte("a"), 1)
	ZSetAdd(v, []byte("c"), 3)
	members, scores := ZSetRange(v, 0, -1)
	want := []string{"a", "b", "c"}
	for i, m := range members {
		if string(m) != want[i] {
			t.Fatalf("member[%d] = %q, want %q", i, m, want[i])
		}
	}
	if scores[0] != 1 || scores[2] != 3 {
		t.Fatalf("unexpected scores: %v", scores)
	}

	MaybePromoteZSet(v, 2, 64)
	if v.Encoding() != EncSkiplist {
		t.Fatalf("expected skiplist after promotion, got %v", v.Encoding())
	}
	if ZSetCard(v) != 3 {
		t.Fatalf("card = %d, want 3", ZSetCard(v))
	}
	member, score, ok := ZSetPopMin(v)
	if !ok || string(member) != "a" || score != 1 {
		t.Fatalf("ZSetPopMin = %q %v %v", member, score, ok)
	}
}

func TestListPushPopOrdering(t *testing.T) {
	v := NewList(lruModeTimestamp, 0)
	ListPushTail(v, []byte("1"), []byte("2"))
	ListPushHead(v, []byte("0"))
	if ListLen(v) != 3 {
		t.Fatalf("len = %d, want 3", ListLen(v))
	}
	head, ok := ListPopHead(v)
	if !ok || string(head) != "0" {
		t.Fatalf("head = %q", head)
	}
	tail, ok := ListPopTail(v)
	if !ok || string(tail) != "2" {
		t.Fatalf("tail = %q", tail)
	}
}

func TestStreamAddRejectsNonIncreasingID(t *testing.T) {
	v := NewStream(lruModeTimestamp, 0)
	if _, err := StreamAdd(v, StreamID{Ms: 5}, false, nil, nil); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := StreamAdd(v, StreamID{Ms: 4}, false, nil, nil); err == nil {
		t.Fatalf("expected error for non-increasing ID")
	}
}

func TestStreamGroupAdvanceDeliversAfterThreshold(t *testing.T) {
	v := NewStream(lruModeTimestamp, 0)
	StreamAdd(v, StreamID{Ms: 1}, false, [][]byte{[]byte("f")}, [][]byte{[]byte("1")})
	StreamAdd(v, StreamID{Ms: 2}, false, [][]byte{[]byte("f")}, [][]byte{[]byte("2")})
	StreamCreateGroup(v, "g1", StreamID{Ms: 0})
	g, ok := StreamGroup(v, "g1")
	if !ok {
		t.Fatalf("group not found")
	}
	entries := StreamGroupAdvance(v, g, "c1", false)
	if len(entries) != 2 {
		t.Fatalf("delivered %d entries, want 2", len(entries))
	}
	if len(g.Pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(g.Pending))
	}
}
