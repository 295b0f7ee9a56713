package memory

import (
	"testing"

	"github.com/kavinhq/redicore/internal/obj"
)

func TestUsageIncludesKeyAndOverhead(t *testing.T) {
	v := obj.NewStringFromBytes([]byte("hello"), 0, 0)
	u := Usage("k", v, 5)
	if u <= int64(len("k")) {
		t.Fatalf("usage %d should exceed bare key length", u)
	}
}

func TestUsageDefaultsSampleSize(t *testing.T) {
	v := obj.NewList(0, 0)
	obj.ListPushTail(v, []byte("a"), []byte("b"))
	if Usage("k", v, 0) == 0 {
		t.Fatalf("expected non-zero usage with default sample size")
	}
}
