package obj

// listPayload implements the list type's only encoding: a packed list of
// packed nodes ("quicklist" of listpacks), modeled here as a flat slice of
// byte-string elements. Real quicklist node-splitting/compression is an
// allocator-level concern out of scope for this engine (spec.md §4.3
// only requires that length/iteration/mutation behave as if it were one).
type listPayload struct {
	elems [][]byte
}

func (p *listPayload) encoding() Encoding { return EncQuicklist }

func (p *listPayload) sizeBytes(sampleSize int) int64 {
	const perNodeOverhead = 48
	n := len(p.elems)
	if n == 0 {
		return perNodeOverhead
	}
	if sampleSize <= 0 || sampleSize >= n {
		var total int64
		for _, e := range p.elems {
			total += int64(len(e)) + 11
		}
		return total + perNodeOverhead
	}
	var sampled int64
	step := n / sampleSize
	if step < 1 {
		step = 1
	}
	count := 0
	for i := 0; i < n && count < sampleSize; i += step {
		sampled += int64(len(p.elems[i])) + 11
		count++
	}
	avg := sampled / int64(count)
	return avg*int64(n) + perNodeOverhead
}

// NewList builds an empty list value.
func NewList(mode lruMode, nowMinutes uint32) *Value {
	return Create(TypeList, &listPayload{}, mode, nowMinutes)
}

// ListLen reports the element count. Panics if v is not a list; callers
// go through command-layer type checks first.
func ListLen(v *Value) int { return len(v.body.(*listPayload).elems) }

// ListPushHead / ListPushTail implement LPUSH/RPUSH's element insertion,
// per the block-position enum in spec.md §3's blocking-client record
// (head/tail addressing is shared between the blocking and non-blocking
// paths).
func ListPushHead(v *Value, elems ...[]byte) {
	p := v.body.(*listPayload)
	fresh := make([][]byte, 0, len(elems)+len(p.elems))
	for i := len(elems) - 1; i >= 0; i-- {
		fresh = append(fresh, cloneBytes(elems[i]))
	}
	p.elems = append(fresh, p.elems...)
}

func ListPushTail(v *Value, elems ...[]byte) {
	p := v.body.(*listPayload)
	for _, e := range elems {
		p.elems = append(p.elems, cloneBytes(e))
	}
}

// ListPopHead / ListPopTail implement LPOP/RPOP/BLPOP/BRPOP's extraction
// step. ok is false on an empty list.
func ListPopHead(v *Value) (elem []byte, ok bool) {
	p := v.body.(*listPayload)
	if len(p.elems) == 0 {
		return nil, false
	}
	elem = p.elems[0]
	p.elems = p.elems[1:]
	return elem, true
}

func ListPopTail(v *Value) (elem []byte, ok bool) {
	p := v.body.(*listPayload)
	n := len(p.elems)
	if n == 0 {
		return nil, false
	}
	elem = p.elems[n-1]
	p.elems = p.elems[:n-1]
	return elem, true
}

// ListIndex returns the element at idx (supporting negative indices from
// the tail), and whether idx was in range.
func ListIndex(v *Value, idx int) ([]byte, bool) {
	p := v.body.(*listPayload)
	n := len(p.elems)
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, false
	}
	return p.elems[idx], true
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
