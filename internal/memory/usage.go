// Package memory implements the MEMORY USAGE/STATS/DOCTOR introspection
// surface of spec.md §4.8: sampled size estimation, a singleflight-backed
// report aggregator, and "doctor" warning synthesis.
package memory

import "github.com/kavinhq/redicore/internal/obj"

// defaultSampleSize mirrors MEMORY USAGE's SAMPLES default: how many
// elements of a container a size estimate walks before extrapolating.
const defaultSampleSize = 5

// Usage estimates the total bytes a key's value occupies, including a
// fixed per-key overhead for the dict entry and key string itself
// (keyLen bytes plus a constant the teacher's style would call "entry
// overhead" rather than try to model malloc bucket rounding).
func Usage(key string, v *obj.Value, sampleSize int) int64 {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	const dictEntryOverhead = 56
	return int64(len(key)) + dictEntryOverhead + v.SizeBytes(sampleSize)
}
