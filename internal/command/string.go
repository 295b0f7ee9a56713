// Package command implements the command surface over internal/obj,
// internal/keyspace, internal/expire, and internal/blocking: the logical
// operations spec.md names, expressed as plain functions rather than a
// wire protocol (nothing in this repo terminates a RESP connection).
package command

import (
	"math"
	"strconv"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
)

// maxStringLength mirrors checkStringLength's proto-max-bulk-len default
// (512MB): the ceiling SETRANGE/APPEND refuse to grow a value past.
const maxStringLength = 512 * 1024 * 1024

// notifier is satisfied by *notify.Bus; narrowed here so tests can stub it.
type notifier interface {
	Notify(dbIndex int, class byte, event string, key string)
}

func notifyGeneric(n notifier, db *keyspace.Database, event, key string) {
	if n != nil {
		n.Notify(db.Index, 'g', event, key)
	}
}

func notifyString(n notifier, db *keyspace.Database, event, key string) {
	if n != nil {
		n.Notify(db.Index, '$', event, key)
	}
}

func notifyList(n notifier, db *keyspace.Database, event, key string) {
	if n != nil {
		n.Notify(db.Index, 'l', event, key)
	}
}

// Get implements GET: returns the string value, WRONGTYPE if key holds
// something else, or (nil, false, nil) on a miss.
func Get(db *keyspace.Database, c *clock.Clock, key string) ([]byte, bool, error) {
	v, ok := db.LookupRead(key, c, 0)
	if !ok {
		return nil, false, nil
	}
	if v.Type() != obj.TypeString {
		return nil, false, rerror.ErrWrongType
	}
	return obj.Decode(v), true, nil
}

// SetOptions mirrors SET's modifier surface.
type SetOptions struct {
	NX        bool
	XX        bool
	KeepTTL   bool
	ExpireAt  int64 // absolute ms; zero means "no new expire requested"
	HasExpire bool
	GetOld    bool
}

// Set implements SET (and, via options, SETNX/SETEX/PSETEX's semantics
// composed by the caller). Returns the previous value when GetOld is
// requested, and whether the write actually happened (NX/XX can refuse it).
func Set(db *keyspace.Database, c *clock.Clock, n notifier, key string, value []byte, opts SetOptions) (old []byte, wrote bool, err error) {
	existing, exists := db.LookupWrite(key, c, 0)
	if opts.GetOld && exists {
		if existing.Type() != obj.TypeString {
			return nil, false, rerror.ErrWrongType
		}
		old = obj.Decode(existing)
	}
	if opts.NX && exists {
		return old, false, nil
	}
	if opts.XX && !exists {
		return old, false, nil
	}

	v := obj.NewStringFromBytes(value, 0, c.NowMinutes())
	if exists {
		if opts.KeepTTL {
			if at, hasTTL := db.ExpireAt(key); hasTTL {
				db.Overwrite(key, v, 0)
				db.SetExpire(key, at)
				notifyString(n, db, "set", key)
				return old, true, nil
			}
		}
		db.Overwrite(key, v, 0)
	} else {
		db.Add(key, v, 0)
	}
	if !opts.KeepTTL {
		db.RemoveExpire(key)
	}
	if opts.HasExpire {
		db.SetExpire(key, opts.ExpireAt)
	}
	notifyString(n, db, "set", key)
	return old, true, nil
}

// GetDel implements GETDEL: GET followed by an unconditional delete.
func GetDel(db *keyspace.Database, c *clock.Clock, n notifier, key string) ([]byte, bool, error) {
	v, found, err := Get(db, c, key)
	if err != nil || !found {
		return v, found, err
	}
	db.DeleteSync(key)
	notifyGeneric(n, db, "del", key)
	return v, true, nil
}

// GetSet implements GETSET: like Set with no expire/NX/XX, returning the
// old value.
func GetSet(db *keyspace.Database, c *clock.Clock, n notifier, key string, value []byte) ([]byte, error) {
	old, _, err := Set(db, c, n, key, value, SetOptions{GetOld: true})
	return old, err
}

// GetEx implements GETEX: GET plus an optional TTL mutation with no
// value change.
func GetEx(db *keyspace.Database, c *clock.Clock, key string, persist bool, newExpireAt int64, hasNewExpire bool) ([]byte, bool, error) {
	v, found, err := Get(db, c, key)
	if err != nil || !found {
		return v, found, err
	}
	if persist {
		db.RemoveExpire(key)
	} else if hasNewExpire {
		db.SetExpire(key, newExpireAt)
	}
	return v, true, nil
}

// Append implements APPEND, promoting to RAW if necessary and returning
// the new total length.
func Append(db *keyspace.Database, c *clock.Clock, n notifier, key string, suffix []byte) (int, error) {
	v, ok := db.LookupWrite(key, c, 0)
	if !ok {
		nv := obj.NewRawString(append([]byte(nil), suffix...), 0, c.NowMinutes())
		db.Add(key, nv, 0)
		notifyString(n, db, "append", key)
		return obj.StrLen(nv), nil
	}
	if v.Type() != obj.TypeString {
		return 0, rerror.ErrWrongType
	}
	if obj.StrLen(v)+len(suffix) > maxStringLength {
		return 0, rerror.ErrStringTooLarge
	}
	obj.EnsureRaw(v)
	obj.SetRawBytes(v, append(obj.RawBytes(v), suffix...))
	notifyString(n, db, "append", key)
	return len(obj.RawBytes(v)), nil
}

// StrLen implements STRLEN.
func StrLen(db *keyspace.Database, c *clock.Clock, key string) (int, error) {
	v, ok := db.LookupRead(key, c, 0)
	if !ok {
		return 0, nil
	}
	if v.Type() != obj.TypeString {
		return 0, rerror.ErrWrongType
	}
	return obj.StrLen(v), nil
}

// MGet implements MGET: positional results, nil for misses or wrong type.
func MGet(db *keyspace.Database, c *clock.Clock, keys []string) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		v, ok := db.LookupRead(k, c, 0)
		if !ok || v.Type() != obj.TypeString {
			continue
		}
		out[i] = obj.Decode(v)
	}
	return out
}

// MSet implements MSET: unconditional multi-key overwrite.
func MSet(db *keyspace.Database, c *clock.Clock, n notifier, pairs map[string][]byte) {
	for k, val := range pairs {
		v := obj.NewStringFromBytes(val, 0, c.NowMinutes())
		if _, exists := db.LookupWrite(k, c, NoTouch()); exists {
			db.Overwrite(k, v, 0)
		} else {
			db.Add(k, v, 0)
		}
		db.RemoveExpire(k)
		notifyString(n, db, "set", k)
	}
}

// NoTouch returns the keyspace flag combination MSet's existence probe
// uses, so the probe itself never perturbs LRU/LFU state.
func NoTouch() keyspace.LookupFlags { return keyspace.NoTouch }

// MSetNX implements MSETNX: all-or-nothing multi-key set, only if none
// of the keys already exist.
func MSetNX(db *keyspace.Database, c *clock.Clock, n notifier, pairs map[string][]byte) bool {
	for k := range pairs {
		if _, exists := db.LookupWrite(k, c, NoTouch()); exists {
			return false
		}
	}
	MSet(db, c, n, pairs)
	return true
}

// SetRange implements SETRANGE: overwrite value's bytes starting at
// offset, zero-padding if offset runs past the current length, and
// creating the key as a zero-padded buffer if it doesn't exist. Writing
// zero bytes against a missing key leaves no key behind, matching
// t_string.c's "return 0, create nothing" case.
func SetRange(db *keyspace.Database, c *clock.Clock, n notifier, key string, offset int, value []byte) (int, error) {
	if offset < 0 {
		return 0, rerror.ErrOffsetOutOfRange
	}
	v, exists := db.LookupWrite(key, c, 0)
	if !exists {
		if len(value) == 0 {
			return 0, nil
		}
		if offset+len(value) > maxStringLength {
			return 0, rerror.ErrStringTooLarge
		}
		buf := make([]byte, offset+len(value))
		copy(buf[offset:], value)
		nv := obj.NewRawString(buf, 0, c.NowMinutes())
		db.Add(key, nv, 0)
		notifyString(n, db, "setrange", key)
		return len(buf), nil
	}
	if v.Type() != obj.TypeString {
		return 0, rerror.ErrWrongType
	}
	if len(value) == 0 {
		return obj.StrLen(v), nil
	}
	if offset+len(value) > maxStringLength {
		return 0, rerror.ErrStringTooLarge
	}
	obj.EnsureRaw(v)
	buf := obj.RawBytes(v)
	if need := offset + len(value); need > len(buf) {
		grown := make([]byte, need)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[offset:], value)
	obj.SetRawBytes(v, buf)
	notifyString(n, db, "setrange", key)
	return len(buf), nil
}

// GetRange implements GETRANGE: an inclusive, Python-style negative-index
// slice over the string's bytes. A non-existent key or an empty result
// range yields an empty (not nil) slice, matching shared.emptybulk.
func GetRange(db *keyspace.Database, c *clock.Clock, key string, start, end int) ([]byte, error) {
	v, ok := db.LookupRead(key, c, 0)
	if !ok {
		return []byte{}, nil
	}
	if v.Type() != obj.TypeString {
		return nil, rerror.ErrWrongType
	}
	b := obj.Decode(v)
	n := len(b)

	if start < 0 && end < 0 && start > end {
		return []byte{}, nil
	}
	if start < 0 {
		start = n + start
	}
	if end < 0 {
		end = n + end
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if end >= n {
		end = n - 1
	}
	if start > end || n == 0 {
		return []byte{}, nil
	}
	out := make([]byte, end-start+1)
	copy(out, b[start:end+1])
	return out, nil
}

// incrDecrBy implements the shared INCR/DECR/INCRBY/DECRBY arithmetic:
// parse the existing value (defaulting to 0 on a missing key) as an
// int64, add incr with overflow detection, and store the result back in
// the most compact encoding.
func incrDecrBy(db *keyspace.Database, c *clock.Clock, n notifier, key string, incr int64) (int64, error) {
	v, exists := db.LookupWrite(key, c, 0)
	var cur int64
	if exists {
		if v.Type() != obj.TypeString {
			return 0, rerror.ErrWrongType
		}
		parsed, ok := obj.IntValue(v)
		if !ok {
			return 0, rerror.ErrValueOutOfRange
		}
		cur = parsed
	}

	if (incr < 0 && cur < 0 && incr < math.MinInt64-cur) ||
		(incr > 0 && cur > 0 && incr > math.MaxInt64-cur) {
		return 0, rerror.ErrIncrOverflow
	}
	result := cur + incr

	nv := obj.NewStringFromBytes([]byte(strconv.FormatInt(result, 10)), 0, c.NowMinutes())
	if exists {
		db.Overwrite(key, nv, 0)
	} else {
		db.Add(key, nv, 0)
	}
	notifyString(n, db, "incrby", key)
	return result, nil
}

// Incr implements INCR.
func Incr(db *keyspace.Database, c *clock.Clock, n notifier, key string) (int64, error) {
	return incrDecrBy(db, c, n, key, 1)
}

// Decr implements DECR.
func Decr(db *keyspace.Database, c *clock.Clock, n notifier, key string) (int64, error) {
	return incrDecrBy(db, c, n, key, -1)
}

// IncrBy implements INCRBY.
func IncrBy(db *keyspace.Database, c *clock.Clock, n notifier, key string, incr int64) (int64, error) {
	return incrDecrBy(db, c, n, key, incr)
}

// DecrBy implements DECRBY. Negating math.MinInt64 would itself overflow,
// so that one input is rejected up front rather than silently wrapping.
func DecrBy(db *keyspace.Database, c *clock.Clock, n notifier, key string, decr int64) (int64, error) {
	if decr == math.MinInt64 {
		return 0, rerror.ErrIncrOverflow
	}
	return incrDecrBy(db, c, n, key, -decr)
}

// IncrByFloat implements INCRBYFLOAT: parse the existing value as a
// float (defaulting to 0 on a missing key), add incr, and store the
// result's shortest round-tripping decimal form.
func IncrByFloat(db *keyspace.Database, c *clock.Clock, n notifier, key string, incr float64) ([]byte, error) {
	v, exists := db.LookupWrite(key, c, 0)
	var cur float64
	if exists {
		if v.Type() != obj.TypeString {
			return nil, rerror.ErrWrongType
		}
		parsed, err := strconv.ParseFloat(string(obj.Decode(v)), 64)
		if err != nil {
			return nil, rerror.ErrValueNotFloat
		}
		cur = parsed
	}

	result := cur + incr
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, rerror.ErrIncrByFloatNotFinite
	}

	out := []byte(strconv.FormatFloat(result, 'f', -1, 64))
	nv := obj.NewStringFromBytes(out, 0, c.NowMinutes())
	if exists {
		db.Overwrite(key, nv, 0)
	} else {
		db.Add(key, nv, 0)
	}
	notifyString(n, db, "incrbyfloat", key)
	return out, nil
}
