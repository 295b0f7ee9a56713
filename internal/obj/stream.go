package obj

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StreamID is the 128-bit stream entry identifier: a millisecond
// timestamp plus a per-millisecond sequence number (spec.md §4.3,
// §GLOSSARY "Stream entry").
type StreamID struct {
	Ms  uint64
	Seq uint64
}

func (id StreamID) String() string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

// Compare orders IDs by (Ms, Seq).
func (id StreamID) Compare(other StreamID) int {
	switch {
	case id.Ms != other.Ms:
		if id.Ms < other.Ms {
			return -1
		}
		return 1
	case id.Seq != other.Seq:
		if id.Seq < other.Seq {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Next returns the smallest ID strictly greater than id.
func (id StreamID) Next() StreamID {
	if id.Seq == ^uint64(0) {
		return StreamID{Ms: id.Ms + 1, Seq: 0}
	}
	return StreamID{Ms: id.Ms, Seq: id.Seq + 1}
}

// ParseStreamID parses the "ms-seq" or bare "ms" wire form.
func ParseStreamID(s string) (StreamID, error) {
	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("invalid stream ID %q: %w", s, err)
	}
	if len(parts) == 1 {
		return StreamID{Ms: ms}, nil
	}
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("invalid stream ID %q: %w", s, err)
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// StreamEntry is one (id, field/value pairs) record.
type StreamEntry struct {
	ID     StreamID
	Fields [][]byte
	Values [][]byte
}

// ConsumerGroup tracks one XGROUP-created reader group: its last
// delivered ID and the set of entries still pending acknowledgement,
// keyed by ID (spec.md §4.3's "per-group pending-entry radix-tree").
type ConsumerGroup struct {
	LastDelivered StreamID
	Pending       map[StreamID]*PendingEntry
	Consumers     map[string]*Consumer
}

// PendingEntry records one delivered-but-unacked entry.
type PendingEntry struct {
	Consumer      string
	DeliveryCount int64
}

// Consumer tracks one named reader within a group (per-consumer
// pending-entry radix-tree in spec.md §4.3, modeled as a plain set here).
type Consumer struct {
	Pending map[StreamID]struct{}
}

// streamPayload is the stream type's only encoding: entries keyed by
// StreamID, modeled as an ordered slice standing in for the radix tree
// (spec.md §4.3) since ordering and range-scan are the only properties
// the command surface actually depends on.
type streamPayload struct {
	entries    []StreamEntry // kept sorted by ID
	lastID     StreamID
	maxDeleted StreamID
	entriesAdd uint64
	groups     map[string]*ConsumerGroup
}

func (p *streamPayload) encoding() Encoding { return EncStream }
func (p *streamPayload) sizeBytes(sampleSize int) int64 {
	const perEntryOverhead = 32
	n := len(p.entries)
	if n == 0 {
		return 64
	}
	sample := sampleSize
	if sample <= 0 || sample > n {
		sample = n
	}
	var sampled int64
	for i := 0; i < sample; i++ {
		e := p.entries[i]
		for j := range e.Fields {
			sampled += int64(len(e.Fields[j]) + len(e.Values[j]))
		}
		sampled += perEntryOverhead
	}
	avg := sampled / int64(sample)
	return avg*int64(n) + 64
}

// NewStream builds an empty stream value.
func NewStream(mode lruMode, nowMinutes uint32) *Value {
	return Create(TypeStream, &streamPayload{groups: make(map[string]*ConsumerGroup)}, mode, nowMinutes)
}

// StreamAdd appends a new entry with an auto-generated or explicit ID,
// enforcing that IDs strictly increase (XADD's core invariant).
func StreamAdd(v *Value, id StreamID, autoSeq bool, fields, values [][]byte) (StreamID, error) {
	p := v.body.(*streamPayload)
	if autoSeq && id.Ms == p.lastID.Ms {
		id.Seq = p.lastID.Seq + 1
	}
	if len(p.entries) > 0 || p.entriesAdd > 0 {
		if id.Compare(p.lastID) <= 0 {
			return StreamID{}, fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
		}
	}
	p.entries = append(p.entries, StreamEntry{ID: id, Fields: fields, Values: values})
	p.lastID = id
	p.entriesAdd++
	return id, nil
}

// StreamLen reports entry count (post-deletion), matching XLEN.
func StreamLen(v *Value) int { return len(v.body.(*streamPayload).entries) }

// StreamLastID reports the most recently added ID, used by BLOCK
// readiness (§4.6 "start = max(threshold, last_delivered_for_group)+1").
func StreamLastID(v *Value) StreamID { return v.body.(*streamPayload).lastID }

// StreamRangeAfter returns every entry with ID > after, in ascending
// order — the core of both XREAD and the blocking-wakeup path.
func StreamRangeAfter(v *Value, after StreamID) []StreamEntry {
	p := v.body.(*streamPayload)
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].ID.Compare(after) > 0
	})
	out := make([]StreamEntry, len(p.entries)-i)
	copy(out, p.entries[i:])
	return out
}

// StreamGroup returns the named consumer group, if any.
func StreamGroup(v *Value, name string) (*ConsumerGroup, bool) {
	p := v.body.(*streamPayload)
	g, ok := p.groups[name]
	return g, ok
}

// StreamCreateGroup creates a new consumer group starting after
// afterID (XGROUP CREATE's $ or explicit-ID start position).
func StreamCreateGroup(v *Value, name string, afterID StreamID) {
	p := v.body.(*streamPayload)
	p.groups[name] = &ConsumerGroup{
		LastDelivered: afterID,
		Pending:       make(map[StreamID]*PendingEntry),
		Consumers:     make(map[string]*Consumer),
	}
}

// StreamDestroyGroup removes a consumer group, returning whether it
// existed. Readiness servers must unblock any XREADGROUP waiters on it
// with NoGroup after this call (spec.md §4.6).
func StreamDestroyGroup(v *Value, name string) bool {
	p := v.body.(*streamPayload)
	if _, ok := p.groups[name]; !ok {
		return false
	}
	delete(p.groups, name)
	return true
}

// StreamGroupAdvance delivers every entry after g.LastDelivered up to and
// including the stream's current tail, recording them pending for
// consumer, and advances LastDelivered. Returns the delivered entries.
func StreamGroupAdvance(v *Value, g *ConsumerGroup, consumer string, noack bool) []StreamEntry {
	entries := StreamRangeAfter(v, g.LastDelivered)
	if len(entries) == 0 {
		return nil
	}
	c, ok := g.Consumers[consumer]
	if !ok {
		c = &Consumer{Pending: make(map[StreamID]struct{})}
		g.Consumers[consumer] = c
	}
	for _, e := range entries {
		if !noack {
			g.Pending[e.ID] = &PendingEntry{Consumer: consumer, DeliveryCount: 1}
			c.Pending[e.ID] = struct{}{}
		}
	}
	g.LastDelivered = entries[len(entries)-1].ID
	return entries
}
