package command

import (
	"testing"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/memory"
	"github.com/kavinhq/redicore/internal/rerror"
	"go.uber.org/zap"
)

func TestMemoryUsageMissingKey(t *testing.T) {
	db := newDB()
	c := clock.New()
	if _, err := MemoryUsage(db, c, "missing", 5); err != rerror.ErrKeyNotFound {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryUsageRealKey(t *testing.T) {
	db := newDB()
	c := clock.New()
	Set(db, c, nil, "k", []byte("hello"), SetOptions{})
	u, err := MemoryUsage(db, c, "k", 5)
	if err != nil || u <= 0 {
		t.Fatalf("usage = %d, err = %v", u, err)
	}
}

func TestMemoryStatsAndDoctor(t *testing.T) {
	db := keyspace.New(zap.NewNop(), 0, nil)
	agg := memory.NewAggregator([]*keyspace.Database{db}, 5)
	if _, err := MemoryStats(agg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	warnings, err := MemoryDoctor(agg)
	if err != nil || len(warnings) == 0 {
		t.Fatalf("warnings = %v, err = %v", warnings, err)
	}
}

func TestMemoryPurgeAndMallocStats(t *testing.T) {
	if err := MemoryPurge(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if MemoryMallocStats() == "" {
		t.Fatalf("expected non-empty malloc-stats text")
	}
}
