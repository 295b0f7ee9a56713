package memory

import "fmt"

// Warning is one MEMORY DOCTOR finding.
type Warning struct {
	Summary string
	Detail  string
}

// The five threshold constants MEMORY DOCTOR's real diagnostics check
// against (spec.md §4.8).
const (
	peakRatioThreshold      = 1.5       // peak > 1.5x current
	totalFragRatioThreshold = 1.4       // total-frag > 1.4
	totalFragAbsThreshold   = 10 << 20  // and > 10 MiB
	perClientAvgThreshold   = 200 << 10 // per-client average > 200 KiB
	perReplicaAvgThreshold  = 10 << 20  // per-replica average > 10 MiB
	cachedScriptsThreshold  = 1000      // cached scripts > 1000 (count, not bytes)
)

// Diagnose inspects a Report and produces human-readable warnings, the
// same five checks MEMORY DOCTOR's real diagnostics run.
func Diagnose(r *Report) []Warning {
	var warnings []Warning

	if r.AllocatorBytes > 0 && float64(r.PeakBytes) > peakRatioThreshold*float64(r.AllocatorBytes) {
		warnings = append(warnings, Warning{
			Summary: "peak memory is much higher than current memory",
			Detail:  fmt.Sprintf("peak %d bytes vs current %d bytes; the allocator may be holding onto freed pages", r.PeakBytes, r.AllocatorBytes),
		})
	}

	totalFrag := r.Fragmentation.AllocatorVsRSS * r.Fragmentation.ProcessVsAllocator
	totalFragBytes := r.ResidentBytes - r.AllocatorBytes
	if totalFrag > totalFragRatioThreshold && totalFragBytes > totalFragAbsThreshold {
		warnings = append(warnings, Warning{
			Summary: "high memory fragmentation",
			Detail:  fmt.Sprintf("fragmentation ratio %.2f, %d bytes unaccounted for between allocator and resident memory", totalFrag, totalFragBytes),
		})
	}

	// ClientBuffers stays zero until this engine has a connected-client
	// model to average over; the check is carried anyway so wiring one
	// up later only requires filling in the field, not this threshold.
	if r.ClientBuffers > perClientAvgThreshold {
		warnings = append(warnings, Warning{
			Summary: "client output buffers are using a lot of memory",
			Detail:  fmt.Sprintf("%d bytes average per client", r.ClientBuffers),
		})
	}

	if r.ReplicationBacklog > 0 && r.ReplicationBacklog > perReplicaAvgThreshold {
		warnings = append(warnings, Warning{
			Summary: "replica output buffers are using a lot of memory",
			Detail:  fmt.Sprintf("%d bytes average per replica", r.ReplicationBacklog),
		})
	}

	if r.CachedScriptBytes > cachedScriptsThreshold {
		warnings = append(warnings, Warning{
			Summary: "too many cached scripts",
			Detail:  fmt.Sprintf("%d cached scripts exceed the recommended limit", r.CachedScriptBytes),
		})
	}

	if len(warnings) == 0 {
		warnings = append(warnings, Warning{Summary: "no notable memory issues detected"})
	}
	return warnings
}
