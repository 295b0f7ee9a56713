package obj

import (
	"sort"
)

// listpackZsetPayload is the compact sorted-set encoding: interleaved
// member/score pairs kept sorted by (score, member), legal while size
// stays within configured bounds (spec.md §4.3).
type listpackZsetPayload struct {
	members [][]byte
	scores  []float64
}

func (p *listpackZsetPayload) encoding() Encoding { return EncListpack }
func (p *listpackZsetPayload) sizeBytes(int) int64 {
	var total int64
	for _, m := range p.members {
		total += int64(len(m)) + 19
	}
	return total + 16
}

func (p *listpackZsetPayload) find(member []byte) int {
	for i, m := range p.members {
		if string(m) == string(member) {
			return i
		}
	}
	return -1
}

func zsetLess(scoreA float64, memberA []byte, scoreB float64, memberB []byte) bool {
	if scoreA != scoreB {
		return scoreA < scoreB
	}
	return string(memberA) < string(memberB)
}

func (p *listpackZsetPayload) insertSorted(member []byte, score float64) {
	i := sort.Search(len(p.members), func(i int) bool {
		return !zsetLess(p.scores[i], p.members[i], score, member)
	})
	p.members = append(p.members, nil)
	p.scores = append(p.scores, 0)
	copy(p.members[i+1:], p.members[i:])
	copy(p.scores[i+1:], p.scores[i:])
	p.members[i] = cloneBytes(member)
	p.scores[i] = score
}

// skiplistZsetPayload is the general sorted-set encoding: a skip-list
// ordered by (score, member) plus a hash table mapping member->score for
// O(1) ZSCORE (spec.md §4.3). The skip-list is modeled as a sorted slice
// here — correct ordering semantics without pointer-chasing node
// plumbing, since nothing in this engine needs sub-allocation-level
// memory locality.
type skiplistZsetPayload struct {
	byMember map[string]float64
	order    []zsetEntry // kept sorted by (score, member)
}

type zsetEntry struct {
	member []byte
	score  float64
}

func (p *skiplistZsetPayload) encoding() Encoding { return EncSkiplist }
func (p *skiplistZsetPayload) sizeBytes(sampleSize int) int64 {
	return hashtableSizeBytes(len(p.order), sampleSize, func(yield func(k string, vlen int) bool) {
		for _, e := range p.order {
			if !yield(string(e.member), 8) {
				return
			}
		}
	}) + int64(len(p.order))*32 // skip-list level pointers, approximate
}

func (p *skiplistZsetPayload) insertSorted(member []byte, score float64) {
	i := sort.Search(len(p.order), func(i int) bool {
		return !zsetLess(p.order[i].score, p.order[i].member, score, member)
	})
	p.order = append(p.order, zsetEntry{})
	copy(p.order[i+1:], p.order[i:])
	p.order[i] = zsetEntry{member: cloneBytes(member), score: score}
}

func (p *skiplistZsetPayload) removeMember(member []byte) {
	for i, e := range p.order {
		if string(e.member) == string(member) {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// NewZSet builds an empty sorted set in listpack encoding.
func NewZSet(mode lruMode, nowMinutes uint32) *Value {
	return Create(TypeSortedSet, &listpackZsetPayload{}, mode, nowMinutes)
}

// ZSetAdd inserts or updates member's score, keeping ordering invariants.
// Returns whether member was newly added.
func ZSetAdd(v *Value, member []byte, score float64) bool {
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		if i := p.find(member); i >= 0 {
			p.members = append(p.members[:i], p.members[i+1:]...)
			p.scores = append(p.scores[:i], p.scores[i+1:]...)
			p.insertSorted(member, score)
			return false
		}
		p.insertSorted(member, score)
		return true
	case *skiplistZsetPayload:
		_, existed := p.byMember[string(member)]
		if existed {
			p.removeMember(member)
		}
		p.byMember[string(member)] = score
		p.insertSorted(member, score)
		return !existed
	default:
		return false
	}
}

// MaybePromoteZSet migrates a listpack-encoded zset to skiplist once the
// entry count or any single member length exceeds the configured bound.
func MaybePromoteZSet(v *Value, maxEntries, maxValueLen int) {
	p, ok := v.body.(*listpackZsetPayload)
	if !ok {
		return
	}
	needs := len(p.members) > maxEntries
	if !needs {
		for _, m := range p.members {
			if len(m) > maxValueLen {
				needs = true
				break
			}
		}
	}
	if !needs {
		return
	}
	sl := &skiplistZsetPayload{byMember: make(map[string]float64, len(p.members))}
	for i := range p.members {
		sl.byMember[string(p.members[i])] = p.scores[i]
		sl.order = append(sl.order, zsetEntry{member: p.members[i], score: p.scores[i]})
	}
	v.body = sl
}

// ZSetScore returns member's score, if present.
func ZSetScore(v *Value, member []byte) (float64, bool) {
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		if i := p.find(member); i >= 0 {
			return p.scores[i], true
		}
		return 0, false
	case *skiplistZsetPayload:
		s, ok := p.byMember[string(member)]
		return s, ok
	default:
		return 0, false
	}
}

// ZSetRemove deletes member, returning whether it was present.
func ZSetRemove(v *Value, member []byte) bool {
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		i := p.find(member)
		if i < 0 {
			return false
		}
		p.members = append(p.members[:i], p.members[i+1:]...)
		p.scores = append(p.scores[:i], p.scores[i+1:]...)
		return true
	case *skiplistZsetPayload:
		if _, ok := p.byMember[string(member)]; !ok {
			return false
		}
		delete(p.byMember, string(member))
		p.removeMember(member)
		return true
	default:
		return false
	}
}

// ZSetCard reports member count.
func ZSetCard(v *Value) int {
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		return len(p.members)
	case *skiplistZsetPayload:
		return len(p.byMember)
	default:
		return 0
	}
}

// ZSetRange returns (member, score) pairs in ascending (score, member)
// order for indices [start, stop] inclusive, clamped like ZRANGE.
func ZSetRange(v *Value, start, stop int) (members [][]byte, scores []float64) {
	var n int
	get := func(i int) ([]byte, float64) { return nil, 0 }
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		n = len(p.members)
		get = func(i int) ([]byte, float64) { return p.members[i], p.scores[i] }
	case *skiplistZsetPayload:
		n = len(p.order)
		get = func(i int) ([]byte, float64) { return p.order[i].member, p.order[i].score }
	default:
		return nil, nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil, nil
	}
	for i := start; i <= stop; i++ {
		m, s := get(i)
		members = append(members, m)
		scores = append(scores, s)
	}
	return members, scores
}

// ZSetPopMin / ZSetPopMax implement BZPOPMIN/BZPOPMAX's extraction step.
func ZSetPopMin(v *Value) (member []byte, score float64, ok bool) {
	return zsetPopAt(v, true)
}

func ZSetPopMax(v *Value) (member []byte, score float64, ok bool) {
	return zsetPopAt(v, false)
}

func zsetPopAt(v *Value, min bool) ([]byte, float64, bool) {
	switch p := v.body.(type) {
	case *listpackZsetPayload:
		n := len(p.members)
		if n == 0 {
			return nil, 0, false
		}
		i := 0
		if !min {
			i = n - 1
		}
		m, s := p.members[i], p.scores[i]
		p.members = append(p.members[:i], p.members[i+1:]...)
		p.scores = append(p.scores[:i], p.scores[i+1:]...)
		return m, s, true
	case *skiplistZsetPayload:
		n := len(p.order)
		if n == 0 {
			return nil, 0, false
		}
		i := 0
		if !min {
			i = n - 1
		}
		e := p.order[i]
		p.order = append(p.order[:i], p.order[i+1:]...)
		delete(p.byMember, string(e.member))
		return e.member, e.score, true
	default:
		return nil, 0, false
	}
}

