package command

import (
	"testing"

	"github.com/kavinhq/redicore/internal/rerror"
)

func TestLCSComputesStringAndLength(t *testing.T) {
	r, err := LCS([]byte("ohmytext"), []byte("mynewtext"), LCSOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len != 6 {
		t.Fatalf("len = %d, want 6", r.Len)
	}
	if r.Str != "mytext" {
		t.Fatalf("str = %q, want mytext", r.Str)
	}
}

func TestLCSLenOnlySkipsStringBuild(t *testing.T) {
	r, err := LCS([]byte("ohmytext"), []byte("mynewtext"), LCSOptions{Len: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len != 6 {
		t.Fatalf("len = %d, want 6", r.Len)
	}
	if r.Str != "" {
		t.Fatalf("expected no string built under Len-only mode, got %q", r.Str)
	}
}

func TestLCSIdxProducesContiguousRanges(t *testing.T) {
	r, err := LCS([]byte("ohmytext"), []byte("mynewtext"), LCSOptions{Idx: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Ranges) != 2 {
		t.Fatalf("ranges = %+v, want 2 groups", r.Ranges)
	}
	first := r.Ranges[0]
	if first.AStart != 2 || first.AEnd != 3 || first.BStart != 0 || first.BEnd != 1 || first.MatchLen != 2 {
		t.Fatalf("first range = %+v", first)
	}
	second := r.Ranges[1]
	if second.AStart != 4 || second.AEnd != 7 || second.BStart != 5 || second.BEnd != 8 || second.MatchLen != 4 {
		t.Fatalf("second range = %+v", second)
	}
}

func TestLCSIdxMinMatchLenFiltersShortRanges(t *testing.T) {
	r, err := LCS([]byte("ohmytext"), []byte("mynewtext"), LCSOptions{Idx: true, MinMatchLen: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Ranges) != 1 {
		t.Fatalf("ranges = %+v, want only the length-4 range to survive", r.Ranges)
	}
	if r.Ranges[0].MatchLen != 4 {
		t.Fatalf("surviving range = %+v", r.Ranges[0])
	}
}

func TestLCSEmptyInputs(t *testing.T) {
	r, err := LCS([]byte(""), []byte("anything"), LCSOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len != 0 || r.Str != "" {
		t.Fatalf("expected empty LCS against an empty input, got %+v", r)
	}
}

// TestLCSGuardBoundary checks the constant the length guard compares
// against rather than actually allocating a UINT32_MAX-sized input.
func TestLCSGuardBoundary(t *testing.T) {
	if maxLCSInputLen != (1<<32)-2 {
		t.Fatalf("maxLCSInputLen = %d, want UINT32_MAX-1", maxLCSInputLen)
	}
	if _, err := LCS(nil, nil, LCSOptions{}); err != nil {
		t.Fatalf("unexpected error on nil input: %v", err)
	}
	_ = rerror.ErrStringTooLongForLCS
}
