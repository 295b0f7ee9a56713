package memory

import (
	"testing"

	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"go.uber.org/zap"
)

func TestAggregatorReportSumsDatabases(t *testing.T) {
	db0 := keyspace.New(zap.NewNop(), 0, nil)
	db0.Add("a", obj.NewStringFromBytes([]byte("1"), 0, 0), 0)
	db0.Add("b", obj.NewStringFromBytes([]byte("2"), 0, 0), 0)

	agg := NewAggregator([]*keyspace.Database{db0}, 5)
	r, err := agg.Report()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Databases) != 1 || r.Databases[0].KeyCount != 2 {
		t.Fatalf("databases = %+v", r.Databases)
	}
	if r.TotalBytes == 0 {
		t.Fatalf("expected non-zero total bytes")
	}
}

func TestRecordForkFeedsReport(t *testing.T) {
	agg := NewAggregator(nil, 5)
	agg.RecordFork(1234, 5678)
	r, err := agg.Report()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Fork.LastForkUsec != 1234 || r.Fork.LastCOWBytes != 5678 {
		t.Fatalf("fork info = %+v", r.Fork)
	}
}

func TestDiagnoseReportsNoIssuesByDefault(t *testing.T) {
	agg := NewAggregator(nil, 5)
	r, _ := agg.Report()
	warnings := Diagnose(r)
	if len(warnings) != 1 || warnings[0].Summary != "no notable memory issues detected" {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestDiagnoseFlagsHighPeakRatio(t *testing.T) {
	r := &Report{AllocatorBytes: 100, PeakBytes: 200}
	warnings := Diagnose(r)
	found := false
	for _, w := range warnings {
		if w.Summary == "peak memory is much higher than current memory" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a peak-ratio warning, got %+v", warnings)
	}
}

func TestDiagnoseFlagsHighFragmentation(t *testing.T) {
	r := &Report{
		AllocatorBytes: 1 << 20,
		ResidentBytes:  20 << 20,
		Fragmentation:  FragmentationReport{AllocatorVsRSS: 2, ProcessVsAllocator: 1},
	}
	warnings := Diagnose(r)
	found := false
	for _, w := range warnings {
		if w.Summary == "high memory fragmentation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fragmentation warning, got %+v", warnings)
	}
}

func TestDiagnoseFlagsTooManyCachedScripts(t *testing.T) {
	r := &Report{CachedScriptBytes: cachedScriptsThreshold + 1}
	warnings := Diagnose(r)
	found := false
	for _, w := range warnings {
		if w.Summary == "too many cached scripts" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cached-scripts warning, got %+v", warnings)
	}
}
