package obj

// listpackHashPayload is the compact hash encoding: field/value pairs
// packed into one ordered slice, legal while total size and element
// count stay within configured bounds (spec.md §4.3).
type listpackHashPayload struct {
	fields [][]byte
	values [][]byte
}

func (p *listpackHashPayload) encoding() Encoding { return EncListpack }
func (p *listpackHashPayload) sizeBytes(int) int64 {
	var total int64
	for i := range p.fields {
		total += int64(len(p.fields[i])+len(p.values[i])) + 11
	}
	return total + 16
}

func (p *listpackHashPayload) indexOf(field []byte) int {
	for i, f := range p.fields {
		if string(f) == string(field) {
			return i
		}
	}
	return -1
}

// hashtableHashPayload is the general hash encoding once listpack bounds
// are exceeded.
type hashtableHashPayload struct {
	m map[string][]byte
}

func (p *hashtableHashPayload) encoding() Encoding { return EncHashtable }
func (p *hashtableHashPayload) sizeBytes(sampleSize int) int64 {
	return hashtableSizeBytes(len(p.m), sampleSize, func(yield func(k string, vlen int) bool) {
		for k, v := range p.m {
			if !yield(k, len(v)) {
				return
			}
		}
	})
}

// hashtableSizeBytes is shared sampling logic for hashtable-encoded
// aggregates whose entries are (key, value-length) pairs; compute_size
// (spec.md §4.8) sums fixed overhead plus sampled average per element.
func hashtableSizeBytes(n, sampleSize int, each func(yield func(k string, vlen int) bool)) int64 {
	const perEntryOverhead = 56
	if n == 0 {
		return perEntryOverhead
	}
	var sampled int64
	count := 0
	each(func(k string, vlen int) bool {
		if sampleSize > 0 && sampleSize < n && count >= sampleSize {
			return false
		}
		sampled += int64(len(k)+vlen) + perEntryOverhead
		count++
		return true
	})
	if count == 0 {
		return perEntryOverhead
	}
	avg := sampled / int64(count)
	return avg * int64(n)
}

// NewHash builds an empty hash value in listpack encoding.
func NewHash(mode lruMode, nowMinutes uint32) *Value {
	return Create(TypeHash, &listpackHashPayload{}, mode, nowMinutes)
}

// HashSet sets field to value, returning whether field was newly created.
func HashSet(v *Value, field, value []byte) bool {
	switch p := v.body.(type) {
	case *listpackHashPayload:
		if i := p.indexOf(field); i >= 0 {
			p.values[i] = cloneBytes(value)
			return false
		}
		p.fields = append(p.fields, cloneBytes(field))
		p.values = append(p.values, cloneBytes(value))
		return true
	case *hashtableHashPayload:
		_, existed := p.m[string(field)]
		p.m[string(field)] = cloneBytes(value)
		return !existed
	default:
		return false
	}
}

// MaybePromoteHash migrates a listpack-encoded hash to hashtable once
// either the entry count or any single field/value length exceeds the
// configured bound.
func MaybePromoteHash(v *Value, maxEntries, maxValueLen int) {
	p, ok := v.body.(*listpackHashPayload)
	if !ok {
		return
	}
	needs := len(p.fields) > maxEntries
	if !needs {
		for i := range p.fields {
			if len(p.fields[i]) > maxValueLen || len(p.values[i]) > maxValueLen {
				needs = true
				break
			}
		}
	}
	if !needs {
		return
	}
	ht := &hashtableHashPayload{m: make(map[string][]byte, len(p.fields))}
	for i := range p.fields {
		ht.m[string(p.fields[i])] = p.values[i]
	}
	v.body = ht
}

// HashGet returns the value for field, if present.
func HashGet(v *Value, field []byte) ([]byte, bool) {
	switch p := v.body.(type) {
	case *listpackHashPayload:
		if i := p.indexOf(field); i >= 0 {
			return p.values[i], true
		}
		return nil, false
	case *hashtableHashPayload:
		val, ok := p.m[string(field)]
		return val, ok
	default:
		return nil, false
	}
}

// HashDel removes field, returning whether it was present.
func HashDel(v *Value, field []byte) bool {
	switch p := v.body.(type) {
	case *listpackHashPayload:
		i := p.indexOf(field)
		if i < 0 {
			return false
		}
		p.fields = append(p.fields[:i], p.fields[i+1:]...)
		p.values = append(p.values[:i], p.values[i+1:]...)
		return true
	case *hashtableHashPayload:
		if _, ok := p.m[string(field)]; !ok {
			return false
		}
		delete(p.m, string(field))
		return true
	default:
		return false
	}
}

// HashLen reports field count.
func HashLen(v *Value) int {
	switch p := v.body.(type) {
	case *listpackHashPayload:
		return len(p.fields)
	case *hashtableHashPayload:
		return len(p.m)
	default:
		return 0
	}
}

// HashFieldsValues returns all fields and their values, aligned by index.
func HashFieldsValues(v *Value) (fields, values [][]byte) {
	switch p := v.body.(type) {
	case *listpackHashPayload:
		return p.fields, p.values
	case *hashtableHashPayload:
		fields = make([][]byte, 0, len(p.m))
		values = make([][]byte, 0, len(p.m))
		for k, val := range p.m {
			fields = append(fields, []byte(k))
			values = append(values, val)
		}
		return fields, values
	default:
		return nil, nil
	}
}
