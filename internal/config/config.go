// Package config carries the engine's tunable knobs. There is no config
// framework here: the teacher reads process configuration with plain
// os.Getenv (cmd/zmux-server/main.go checks os.Getenv("ENV")) and defaults
// struct fields in code (internal/service's SummaryOptions.setDefaults),
// so that is the pattern this package follows too.
package config

import (
	"os"
	"strconv"
	"time"
)

// EvictionPolicy selects how the lru field of a value is interpreted.
type EvictionPolicy int

const (
	EvictionNoEviction EvictionPolicy = iota
	EvictionAllKeysLRU
	EvictionVolatileLRU
	EvictionAllKeysLFU
	EvictionVolatileLFU
	EvictionAllKeysRandom
	EvictionVolatileRandom
	EvictionVolatileTTL
)

// IsLFU reports whether the policy repurposes the lru field as a
// minute-timestamp + logarithmic-counter pair instead of a raw timestamp.
func (p EvictionPolicy) IsLFU() bool {
	return p == EvictionAllKeysLFU || p == EvictionVolatileLFU
}

// IsLRU reports whether the policy tracks per-key idle time at all.
func (p EvictionPolicy) IsLRU() bool {
	switch p {
	case EvictionAllKeysLRU, EvictionVolatileLRU, EvictionVolatileTTL:
		return true
	default:
		return false
	}
}

// Config holds every threshold named, but left empirically-defaulted, by
// spec.md §9's open questions.
type Config struct {
	// String encoding.
	SharedIntegers int // values in [0, SharedIntegers) may be interned.

	// Container encoding promotion thresholds (§4.3).
	HashMaxListpackEntries int
	HashMaxListpackValue   int
	SetMaxIntsetEntries    int
	SetMaxListpackEntries  int
	SetMaxListpackValue    int
	ZsetMaxListpackEntries int
	ZsetMaxListpackValue   int
	ListMaxListpackSize    int

	// Eviction / LRU-LFU.
	MaxMemoryPolicy EvictionPolicy

	// Active expire cycle (§4.5).
	ActiveExpireCycleQuantum   time.Duration
	ActiveExpireCycleSampleSz  int
	ActiveExpireAggressiveFrac float64 // expired-fraction above which the cycle tightens its loop

	// Notification bus default mask, see notify.ParseClassMask.
	NotifyKeyspaceEvents string

	// Async reclaim worker pool size (§5, auxiliary dealloc thread).
	ReclaimWorkers int
}

// Default returns the engine's out-of-the-box tuning, matching the real
// server's compiled-in defaults where the spec names them.
func Default() Config {
	return Config{
		SharedIntegers: 10000,

		HashMaxListpackEntries: 128,
		HashMaxListpackValue:   64,
		SetMaxIntsetEntries:    512,
		SetMaxListpackEntries:  128,
		SetMaxListpackValue:    64,
		ZsetMaxListpackEntries: 128,
		ZsetMaxListpackValue:   64,
		ListMaxListpackSize:    128,

		MaxMemoryPolicy: EvictionNoEviction,

		ActiveExpireCycleQuantum:   100 * time.Millisecond,
		ActiveExpireCycleSampleSz:  20,
		ActiveExpireAggressiveFrac: 0.10,

		NotifyKeyspaceEvents: "",

		ReclaimWorkers: 4,
	}
}

// FromEnv overlays environment-variable overrides onto Default(), using the
// same "read if present, else keep the default" shape as the teacher's
// os.Getenv("ENV") checks.
func FromEnv() Config {
	c := Default()
	if v := os.Getenv("REDICORE_HASH_MAX_LISTPACK_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HashMaxListpackEntries = n
		}
	}
	if v := os.Getenv("REDICORE_SET_MAX_INTSET_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SetMaxIntsetEntries = n
		}
	}
	if v := os.Getenv("REDICORE_ZSET_MAX_LISTPACK_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ZsetMaxListpackEntries = n
		}
	}
	if v := os.Getenv("REDICORE_NOTIFY_KEYSPACE_EVENTS"); v != "" {
		c.NotifyKeyspaceEvents = v
	}
	if v := os.Getenv("REDICORE_RECLAIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ReclaimWorkers = n
		}
	}
	return c
}
