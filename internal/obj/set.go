package obj

import (
	"sort"
	"strconv"
)

// intsetPayload is the compact set encoding: a sorted slice of unique
// int64 elements, legal only while every member is an integer and the
// count stays within the configured threshold (spec.md §4.3).
type intsetPayload struct {
	ints []int64
}

func (p *intsetPayload) encoding() Encoding { return EncIntset }
func (p *intsetPayload) sizeBytes(int) int64 {
	return int64(16 + 8*len(p.ints))
}

// hashtableSetPayload is the general set encoding once membership
// outgrows intset eligibility.
type hashtableSetPayload struct {
	members map[string]struct{}
}

func (p *hashtableSetPayload) encoding() Encoding { return EncHashtable }
func (p *hashtableSetPayload) sizeBytes(sampleSize int) int64 {
	const perEntryOverhead = 56
	n := len(p.members)
	if n == 0 {
		return perEntryOverhead
	}
	if sampleSize <= 0 || sampleSize >= n {
		var total int64
		for m := range p.members {
			total += int64(len(m)) + perEntryOverhead
		}
		return total
	}
	var sampled int64
	count := 0
	for m := range p.members {
		if count >= sampleSize {
			break
		}
		sampled += int64(len(m)) + perEntryOverhead
		count++
	}
	avg := sampled / int64(count)
	return avg * int64(n)
}

// NewSet builds an empty set value in the most compact legal encoding
// (intset, since an empty set trivially satisfies "all elements are
// integers").
func NewSet(mode lruMode, nowMinutes uint32) *Value {
	return Create(TypeSet, &intsetPayload{}, mode, nowMinutes)
}

// SetAdd inserts member, promoting the encoding per thresholds when
// necessary. Returns whether member was newly added.
func SetAdd(v *Value, member []byte, intsetMaxEntries int) bool {
	switch p := v.body.(type) {
	case *intsetPayload:
		if n, ok := parseStrictInt(member); ok {
			added := intsetInsert(p, n)
			if len(p.ints) > intsetMaxEntries {
				v.body = intsetToHashtable(p)
			}
			return added
		}
		// Non-integer member: migrate to hashtable, one-way per §4.3.
		ht := intsetToHashtable(p)
		v.body = ht
		_, existed := ht.members[string(member)]
		ht.members[string(member)] = struct{}{}
		return !existed
	case *hashtableSetPayload:
		if _, ok := p.members[string(member)]; ok {
			return false
		}
		p.members[string(member)] = struct{}{}
		return true
	default:
		return false
	}
}

func intsetInsert(p *intsetPayload, n int64) bool {
	i := sort.Search(len(p.ints), func(i int) bool { return p.ints[i] >= n })
	if i < len(p.ints) && p.ints[i] == n {
		return false
	}
	p.ints = append(p.ints, 0)
	copy(p.ints[i+1:], p.ints[i:])
	p.ints[i] = n
	return true
}

func intsetToHashtable(p *intsetPayload) *hashtableSetPayload {
	ht := &hashtableSetPayload{members: make(map[string]struct{}, len(p.ints)+1)}
	for _, n := range p.ints {
		ht.members[formatInt(n)] = struct{}{}
	}
	return ht
}

// MaybePromoteSet migrates an intset-encoded value to hashtable once its
// cardinality exceeds intsetMaxEntries, even if every member remains an
// integer (count-triggered promotion, spec.md §4.3).
func MaybePromoteSet(v *Value, intsetMaxEntries int) {
	p, ok := v.body.(*intsetPayload)
	if !ok || len(p.ints) <= intsetMaxEntries {
		return
	}
	v.body = intsetToHashtable(p)
}

// SetRemove deletes member if present, returning whether it was removed.
func SetRemove(v *Value, member []byte) bool {
	switch p := v.body.(type) {
	case *intsetPayload:
		n, ok := parseStrictInt(member)
		if !ok {
			return false
		}
		i := sort.Search(len(p.ints), func(i int) bool { return p.ints[i] >= n })
		if i >= len(p.ints) || p.ints[i] != n {
			return false
		}
		p.ints = append(p.ints[:i], p.ints[i+1:]...)
		return true
	case *hashtableSetPayload:
		if _, ok := p.members[string(member)]; !ok {
			return false
		}
		delete(p.members, string(member))
		return true
	default:
		return false
	}
}

// SetCard reports cardinality.
func SetCard(v *Value) int {
	switch p := v.body.(type) {
	case *intsetPayload:
		return len(p.ints)
	case *hashtableSetPayload:
		return len(p.members)
	default:
		return 0
	}
}

// SetIsMember reports membership.
func SetIsMember(v *Value, member []byte) bool {
	switch p := v.body.(type) {
	case *intsetPayload:
		n, ok := parseStrictInt(member)
		if !ok {
			return false
		}
		i := sort.Search(len(p.ints), func(i int) bool { return p.ints[i] >= n })
		return i < len(p.ints) && p.ints[i] == n
	case *hashtableSetPayload:
		_, ok := p.members[string(member)]
		return ok
	default:
		return false
	}
}

// SetMembers returns every member as a byte slice, in encoding-native
// order (ascending for intset, unordered for hashtable).
func SetMembers(v *Value) [][]byte {
	switch p := v.body.(type) {
	case *intsetPayload:
		out := make([][]byte, len(p.ints))
		for i, n := range p.ints {
			out[i] = []byte(formatInt(n))
		}
		return out
	case *hashtableSetPayload:
		out := make([][]byte, 0, len(p.members))
		for m := range p.members {
			out = append(out, []byte(m))
		}
		return out
	default:
		return nil
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
