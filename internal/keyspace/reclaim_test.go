package keyspace

import (
	"testing"
	"time"

	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

func TestReclaimerReleasesSubmittedValues(t *testing.T) {
	r := NewReclaimer(zap.NewNop(), 2)
	v := obj.NewStringFromBytes([]byte("x"), 0, 0)
	obj.Retain(v) // refcount 2, so release-to-zero doesn't panic on double-teardown path
	r.Submit(v)
	r.Close()
	if got := v.Refcount(); got != 1 {
		t.Fatalf("refcount after reclaim = %d, want 1", got)
	}
}

func TestReclaimerBoundsConcurrency(t *testing.T) {
	r := NewReclaimer(zap.NewNop(), 1)
	for i := 0; i < 5; i++ {
		v := obj.NewStringFromBytes([]byte("x"), 0, 0)
		obj.Retain(v)
		r.Submit(v)
	}
	r.Close()
	if r.InFlight() != 0 {
		t.Fatalf("expected no jobs in flight after close, got %d", r.InFlight())
	}
	// give goroutine scheduling a beat in case Close raced a release callback
	time.Sleep(time.Millisecond)
}
