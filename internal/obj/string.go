package obj

import (
	"strconv"
)

// embstrMaxLen is the length threshold below which a freshly created raw
// byte string is represented inline instead of via a separate buffer
// (spec.md §4.2).
const embstrMaxLen = 44

// intPayload is the INT string encoding: the payload pointer *is* the
// integer value (spec.md §4.1). Immutable; any mutation promotes to RAW.
type intPayload struct {
	val int64
}

func (intPayload) encoding() Encoding { return EncInt }
func (intPayload) sizeBytes(int) int64 {
	return 16 // value header + inline int64, no separate allocation
}

// embstrPayload is the EMBSTR encoding: header and bytes share one
// allocation. Immutable; any mutation promotes to RAW.
type embstrPayload struct {
	bytes []byte
}

func (p *embstrPayload) encoding() Encoding { return EncEmbstr }
func (p *embstrPayload) sizeBytes(int) int64 {
	return int64(16 + len(p.bytes))
}

// rawPayload is the RAW encoding: a separately allocated, resizable byte
// buffer. The only mutable string encoding.
type rawPayload struct {
	buf []byte
}

func (p *rawPayload) encoding() Encoding { return EncRaw }
func (p *rawPayload) sizeBytes(int) int64 {
	return int64(16 + cap(p.buf))
}

// NewStringFromBytes builds a new string Value choosing the most compact
// legal encoding for b, per the selection rules in spec.md §4.2: INT if b
// parses as a pointer-width signed integer, else EMBSTR if len(b) <= 44,
// else RAW.
func NewStringFromBytes(b []byte, mode lruMode, nowMinutes uint32) *Value {
	if n, ok := parseStrictInt(b); ok {
		return Create(TypeString, intPayload{val: n}, mode, nowMinutes)
	}
	if len(b) <= embstrMaxLen {
		cp := make([]byte, len(b))
		copy(cp, b)
		return Create(TypeString, &embstrPayload{bytes: cp}, mode, nowMinutes)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Create(TypeString, &rawPayload{buf: cp}, mode, nowMinutes)
}

// NewRawString always builds a RAW-encoded value, bypassing the INT/EMBSTR
// selection. Used by commands (APPEND, SETRANGE) that are about to mutate
// the buffer in place and would immediately force a promotion anyway.
func NewRawString(b []byte, mode lruMode, nowMinutes uint32) *Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Create(TypeString, &rawPayload{buf: cp}, mode, nowMinutes)
}

// parseStrictInt parses b as a base-10 signed integer with no leading
// zeros (other than a lone "0"), no leading '+', and no surrounding
// whitespace — the same strict grammar Redis's string2ll applies before
// allowing INT encoding, so that e.g. "007" and "+5" stay as strings.
func parseStrictInt(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	s := string(b)
	i := 0
	if s[0] == '-' {
		i = 1
	}
	if i >= len(s) {
		return 0, false
	}
	if s[i] == '0' && (i+1 < len(s) || i == 1) {
		return 0, false // leading zero, e.g. "01" or "-0"
	}
	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decode materializes a byte-string view of a string value regardless of
// its current encoding (spec.md §4.1 decode operation). The round-trip
// law in spec.md §8 requires INT<->decimal-ASCII and EMBSTR/RAW identity.
func Decode(v *Value) []byte {
	switch p := v.body.(type) {
	case intPayload:
		return []byte(strconv.FormatInt(p.val, 10))
	case *embstrPayload:
		out := make([]byte, len(p.bytes))
		copy(out, p.bytes)
		return out
	case *rawPayload:
		out := make([]byte, len(p.buf))
		copy(out, p.buf)
		return out
	default:
		return nil
	}
}

// IntValue returns the integer interpretation of a string value and
// whether the current bytes parse as one, without forcing an encoding
// change. Used by INCR/DECR family commands.
func IntValue(v *Value) (int64, bool) {
	if p, ok := v.body.(intPayload); ok {
		return p.val, true
	}
	return parseStrictInt(Decode(v))
}

// StrLen reports the byte length uniformly across encodings, per spec.md
// §4.2's "length... operations must behave uniformly" requirement.
func StrLen(v *Value) int {
	switch p := v.body.(type) {
	case intPayload:
		return len(strconv.FormatInt(p.val, 10))
	case *embstrPayload:
		return len(p.bytes)
	case *rawPayload:
		return len(p.buf)
	default:
		return 0
	}
}

// EnsureRaw promotes v's payload to RAW in place if it is not already,
// copying the decoded bytes into a fresh mutable buffer. Mutating
// commands (APPEND, SETRANGE) call this before editing. Promotion
// is monotonic: RAW never demotes back to INT/EMBSTR within a value's
// lifetime (spec.md §4.2).
func EnsureRaw(v *Value) *rawPayload {
	if p, ok := v.body.(*rawPayload); ok {
		return p
	}
	b := Decode(v)
	p := &rawPayload{buf: b}
	v.body = p
	return p
}

// RawBytes exposes the live RAW buffer for in-place mutation by command
// implementations. Panics if v is not RAW-encoded; callers must
// EnsureRaw first.
func RawBytes(v *Value) []byte {
	p := v.body.(*rawPayload)
	return p.buf
}

// SetRawBytes replaces the live RAW buffer's contents wholesale (used by
// SETRANGE/APPEND once they've computed the new byte slice).
func SetRawBytes(v *Value, b []byte) {
	p := v.body.(*rawPayload)
	p.buf = b
}

// TryEncode is the best-effort compaction pass described in spec.md
// §4.1. It runs only on string values with refcount 1, currently RAW or
// EMBSTR. It returns the (possibly same) value to use going forward; on
// RAW inputs whose buffer carries >=10% trailing free capacity it trims
// that capacity in place.
func TryEncode(v *Value, sharedIntegers int, lookupShared func(int64) (*Value, bool)) *Value {
	if v.Type() != TypeString || v.Refcount() != 1 {
		return v
	}
	switch p := v.body.(type) {
	case *rawPayload:
		if n, ok := parseStrictInt(p.buf); ok {
			if lookupShared != nil {
				if shared, ok := lookupShared(n); ok {
					return shared
				}
			}
			v.body = intPayload{val: n}
			return v
		}
		if len(p.buf) <= embstrMaxLen {
			cp := make([]byte, len(p.buf))
			copy(cp, p.buf)
			v.body = &embstrPayload{bytes: cp}
			return v
		}
		// Trim trailing free capacity >= 10% of len, matching
		// sdsReqType's "reallocate if wasteful" heuristic.
		if cap(p.buf) > 0 {
			free := cap(p.buf) - len(p.buf)
			if float64(free) >= 0.10*float64(len(p.buf)) && len(p.buf) > 0 {
				trimmed := make([]byte, len(p.buf))
				copy(trimmed, p.buf)
				p.buf = trimmed
			}
		}
		return v
	case *embstrPayload:
		if n, ok := parseStrictInt(p.bytes); ok {
			if lookupShared != nil {
				if shared, ok := lookupShared(n); ok {
					return shared
				}
			}
			v.body = intPayload{val: n}
		}
		return v
	default:
		return v
	}
}
