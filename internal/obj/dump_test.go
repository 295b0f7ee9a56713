package obj

import (
	"bytes"
	"testing"
)

func TestDumpRoundTripString(t *testing.T) {
	v := NewStringFromBytes([]byte("hello world"), lruModeTimestamp, 0)
	var buf bytes.Buffer
	if err := Serialize(&buf, v); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Deserialize(&buf, lruModeTimestamp, 0)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if !bytes.Equal(Decode(got), []byte("hello world")) {
		t.Fatalf("round trip mismatch: %q", Decode(got))
	}
}

func TestDumpRoundTripHash(t *testing.T) {
	v := NewHash(lruModeTimestamp, 0)
	HashSet(v, []byte("f1"), []byte("v1"))
	HashSet(v, []byte("f2"), []byte("v2"))

	var buf bytes.Buffer
	if err := Serialize(&buf, v); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Deserialize(&buf, lruModeTimestamp, 0)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if HashLen(got) != 2 {
		t.Fatalf("len = %d, want 2", HashLen(got))
	}
	val, ok := HashGet(got, []byte("f1"))
	if !ok || string(val) != "v1" {
		t.Fatalf("HashGet f1 = %q, %v", val, ok)
	}
}

func TestDumpRoundTripStream(t *testing.T) {
	v := NewStream(lruModeTimestamp, 0)
	StreamAdd(v, StreamID{Ms: 1, Seq: 0}, false, [][]byte{[]byte("f")}, [][]byte{[]byte("v")})
	StreamAdd(v, StreamID{Ms: 2, Seq: 0}, false, [][]byte{[]byte("f")}, [][]byte{[]byte("v2")})

	var buf bytes.Buffer
	if err := Serialize(&buf, v); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Deserialize(&buf, lruModeTimestamp, 0)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if StreamLen(got) != 2 {
		t.Fatalf("len = %d, want 2", StreamLen(got))
	}
	if StreamLastID(got) != (StreamID{Ms: 2, Seq: 0}) {
		t.Fatalf("last id = %v", StreamLastID(got))
	}
}
