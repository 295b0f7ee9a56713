// Package obj implements the polymorphic value object: a tagged,
// refcounted container holding one of six logical types, each admitting
// multiple physical encodings (spec.md §3, §4.1–§4.3).
package obj

import (
	"sync/atomic"

	"github.com/kavinhq/redicore/internal/rerror"
)

// Type is the logical kind of a value, independent of its encoding.
type Type int

const (
	TypeString Type = iota
	TypeList
	TypeSet
	TypeHash
	TypeSortedSet
	TypeStream
	TypeModule
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	case TypeHash:
		return "hash"
	case TypeSortedSet:
		return "zset"
	case TypeStream:
		return "stream"
	case TypeModule:
		return "module"
	default:
		return "unknown"
	}
}

// Encoding is the physical representation chosen for a value of a given
// Type. The legal (Type, Encoding) pairs are enumerated in §4.2/§4.3; no
// other pair may appear on a live value.
type Encoding int

const (
	EncInvalid Encoding = iota
	EncInt            // string: pointer-width integer, stored in the payload slot itself
	EncEmbstr         // string: header + bytes in one allocation, immutable
	EncRaw            // string: separate resizable byte buffer, mutable
	EncQuicklist      // list: packed-list of packed nodes (the only list encoding)
	EncIntset         // set: sorted unique fixed-width integers
	EncHashtable      // set/hash: generic hash table
	EncListpack       // hash/zset: packed field/value or member/score pairs
	EncSkiplist       // zset: skip-list + hash-table hybrid
	EncStream         // stream: radix-tree of listpack-packed entries
)

func (e Encoding) String() string {
	switch e {
	case EncInt:
		return "int"
	case EncEmbstr:
		return "embstr"
	case EncRaw:
		return "raw"
	case EncQuicklist:
		return "quicklist"
	case EncIntset:
		return "intset"
	case EncHashtable:
		return "hashtable"
	case EncListpack:
		return "listpack"
	case EncSkiplist:
		return "skiplist"
	case EncStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Refcount sentinels. Values strictly greater than zero are ordinary
// reachable reference counts; the two sentinels below are never
// incremented or decremented by retain/release.
const (
	RefcountImmortal  int32 = -1 // interned/shared objects (e.g. the shared-integer pool)
	RefcountForbidden int32 = -2 // stack-allocated-by-convention, must never be retained
)

// lruMode distinguishes the two interpretations the 24-bit lru field
// admits. Stored alongside the field rather than recomputed from the
// eviction policy each access, because a value can outlive a policy
// change in flight.
type lruMode uint8

const (
	lruModeTimestamp lruMode = iota // coarse wall-clock minute, LRU policies
	lruModeLFU                      // 16-bit minute timestamp + 8-bit log counter
)

// lfuInitCounter is the starting logarithmic access-frequency counter for
// a freshly created value under an LFU policy (spec.md §3).
const lfuInitCounter = 5

// payload is the encoding-specific body a Value owns. Each (Type,
// Encoding) pair stores one concrete implementation of this interface;
// dispatch replaces a hand-written switch, per spec.md §9 ("tagged
// variant... dispatch tables replace hand-coded switches").
type payload interface {
	// encoding reports which Encoding this payload implements, so Value
	// need not carry a redundant copy that could drift from the payload.
	encoding() Encoding
	// sizeBytes is the exact or estimated footprint of this payload; see
	// internal/memory for the sampling contract layered on top.
	sizeBytes(sampleSize int) int64
}

// Value is the tagged polymorphic container described in spec.md §3.
// Zero value is not meaningful; use Create.
type Value struct {
	typ Type

	refcount int32 // atomic; RefcountImmortal/RefcountForbidden are sentinels, never mutated

	lru     uint32 // 24 meaningful bits, interpreted per lruMode
	lruMode lruMode

	body payload
}

// Create builds a new Value of the given type wrapping body, with
// refcount 1 and an initial lru field appropriate to mode.
func Create(typ Type, body payload, mode lruMode, nowMinutes uint32) *Value {
	v := &Value{
		typ:      typ,
		refcount: 1,
		lruMode:  mode,
		body:     body,
	}
	switch mode {
	case lruModeLFU:
		v.lru = (nowMinutes&0xFFFF)<<8 | uint32(lfuInitCounter)
	default:
		v.lru = nowMinutes & 0x00FFFFFF
	}
	return v
}

// Type reports the value's logical type.
func (v *Value) Type() Type { return v.typ }

// Encoding reports the value's current physical encoding.
func (v *Value) Encoding() Encoding { return v.body.encoding() }

// Refcount returns the raw refcount, including sentinel values.
func (v *Value) Refcount() int32 { return atomic.LoadInt32(&v.refcount) }

// IsImmortal reports whether retain/release are no-ops on this value.
func (v *Value) IsImmortal() bool { return atomic.LoadInt32(&v.refcount) == RefcountImmortal }

// Retain increments the refcount. No-op on immortal-shared values.
// Retaining a value at RefcountForbidden is a fatal invariant violation:
// such values were never meant to be aliased into the keyspace.
func Retain(v *Value) {
	rc := atomic.LoadInt32(&v.refcount)
	if rc == RefcountImmortal {
		return
	}
	if rc == RefcountForbidden {
		rerror.Fatal("retain on stack-allocated-forbidden-to-retain value")
	}
	atomic.AddInt32(&v.refcount, 1)
}

// Release decrements the refcount, running encoding-specific teardown and
// freeing the value when it reaches zero. No-op on immortal-shared
// values. Refcount dropping below zero before this call is fatal.
func Release(v *Value) {
	rc := atomic.LoadInt32(&v.refcount)
	if rc == RefcountImmortal {
		return
	}
	if rc <= 0 {
		rerror.Fatal("release on value with refcount <= 0")
	}
	n := atomic.AddInt32(&v.refcount, -1)
	if n == 0 {
		teardown(v)
	} else if n < 0 {
		rerror.Fatal("refcount went negative")
	}
}

// teardown releases any encoding-specific resources. Most payloads are
// plain Go values collected by the GC; this exists as the single named
// hook spec.md §4.1 requires ("encoding-specific teardown... then frees")
// so that encodings owning external resources (e.g. a pooled buffer) have
// somewhere to return them.
func teardown(v *Value) {
	if tb, ok := v.body.(interface{ teardown() }); ok {
		tb.teardown()
	}
	v.body = nil
}

// touchLRU updates the coarse timestamp under LRU-style tracking. It is a
// no-op under LFU tracking and on immortal values, matching the NOTOUCH
// keyspace flag's intent without callers needing to check lruMode
// themselves.
func (v *Value) touchLRU(nowMinutes uint32) {
	if v.IsImmortal() || v.lruMode != lruModeTimestamp {
		return
	}
	v.lru = nowMinutes & 0x00FFFFFF
}

// touchLFU increments the logarithmic access counter (with probabilistic
// saturation, mirroring Redis's LFULogIncr) and refreshes the embedded
// minute timestamp used for decay. No-op outside LFU tracking.
func (v *Value) touchLFU(nowMinutes uint32, counterIncr func(uint8) uint8) {
	if v.IsImmortal() || v.lruMode != lruModeLFU {
		return
	}
	counter := uint8(v.lru & 0xFF)
	counter = counterIncr(counter)
	v.lru = (nowMinutes&0xFFFF)<<8 | uint32(counter)
}

// IdleTimeSeconds reports OBJECT IDLETIME's value: seconds since the
// stored coarse timestamp. Only meaningful under LRU tracking; OBJECT
// IDLETIME refuses to call it under an LFU policy (OBJECT IDLETIME vs.
// OBJECT FREQ are mutually exclusive by policy, spec.md §9).
func (v *Value) IdleTimeSeconds(nowMinutes uint32) uint32 {
	last := v.lru & 0x00FFFFFF
	now := nowMinutes & 0x00FFFFFF
	if now < last { // wrapped
		return 0
	}
	return (now - last) * 60
}

// AccessFrequency reports OBJECT FREQ's value: the 8-bit logarithmic
// counter. Only meaningful under LFU tracking.
func (v *Value) AccessFrequency() uint8 {
	return uint8(v.lru & 0xFF)
}

// SizeBytes delegates to the encoding's own estimator; see
// internal/memory.Usage for the sampling contract built on top.
func (v *Value) SizeBytes(sampleSize int) int64 {
	return v.body.sizeBytes(sampleSize)
}
