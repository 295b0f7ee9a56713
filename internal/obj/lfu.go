package obj

import "math/rand"

// lfuLogFactor controls how quickly the saturating counter's increment
// probability decays as the counter grows — larger values mean slower
// growth at high counts, mirroring Redis's lfu-log-factor tunable. Fixed
// here rather than threaded through Config since no command surface
// exposes it in this engine.
const lfuLogFactor = 10.0

// lfuRandFloat is overridable in tests; production uses math/rand.
var lfuRandFloat = rand.Float64

// lfuLogIncr applies the probabilistic logarithmic counter increment: the
// higher the current counter, the less likely a single access bumps it,
// so the counter approximates log2(accesses) while saturating at 255.
func lfuLogIncr(counter uint8) uint8 {
	if counter == 255 {
		return counter
	}
	baseval := float64(counter)
	if baseval < 0 {
		baseval = 0
	}
	p := 1.0 / (baseval*lfuLogFactor + 1)
	if lfuRandFloat() < p {
		counter++
	}
	return counter
}

// Touch updates a value's recency/frequency tracking field in place
// according to its own lruMode, so callers (internal/keyspace's lookup
// path) never need to branch on the eviction policy themselves. No-op on
// immortal values.
func Touch(v *Value, nowMinutes uint32) {
	switch v.lruMode {
	case lruModeLFU:
		v.touchLFU(nowMinutes, lfuLogIncr)
	default:
		v.touchLRU(nowMinutes)
	}
}
