// Package notify implements the keyspace-notification bus: class-mask
// configuration, channel-name synthesis, and publish fan-out (spec.md §5).
package notify

import (
	"strings"

	"github.com/kavinhq/redicore/internal/rerror"
)

// Mask is a bitset of which notification classes are active, plus the
// two delivery-channel flags (K/E).
type Mask uint32

const (
	ClassGeneric Mask = 1 << iota // g
	ClassString                   // $
	ClassList                     // l
	ClassSet                      // s
	ClassHash                     // h
	ClassZSet                     // z
	ClassExpired                  // x
	ClassEvicted                  // e
	ClassNew                      // n
	ClassStream                   // t
	ClassModule                   // d
	ClassKeyMiss                  // m

	FlagKeyspace // K: deliver on __keyspace@<db>__:<key>
	FlagKeyevent // E: deliver on __keyevent@<db>__:<event>
)

// classAlias is what the single-letter 'A' shorthand expands to: every
// class except key-miss ('m') and new-key ('n'), matching Redis's
// NOTIFY_ALL definition.
const classAlias = ClassGeneric | ClassString | ClassList | ClassSet | ClassHash |
	ClassZSet | ClassExpired | ClassEvicted | ClassStream | ClassModule

var classByLetter = map[byte]Mask{
	'g': ClassGeneric,
	'$': ClassString,
	'l': ClassList,
	's': ClassSet,
	'h': ClassHash,
	'z': ClassZSet,
	'x': ClassExpired,
	'e': ClassEvicted,
	'n': ClassNew,
	't': ClassStream,
	'd': ClassModule,
	'm': ClassKeyMiss,
	'K': FlagKeyspace,
	'E': FlagKeyevent,
}

var letterByClass = []struct {
	letter byte
	class  Mask
}{
	{'g', ClassGeneric}, {'$', ClassString}, {'l', ClassList}, {'s', ClassSet},
	{'h', ClassHash}, {'z', ClassZSet}, {'x', ClassExpired}, {'e', ClassEvicted},
	{'n', ClassNew}, {'t', ClassStream}, {'d', ClassModule}, {'m', ClassKeyMiss},
}

// ParseClassMask parses a CONFIG SET notify-keyspace-events string. 'A'
// expands to classAlias in place; every other character must be a known
// class or flag letter.
func ParseClassMask(s string) (Mask, error) {
	var m Mask
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 'A' {
			m |= classAlias
			continue
		}
		bit, ok := classByLetter[c]
		if !ok {
			return 0, rerror.ErrInvalidMask
		}
		m |= bit
	}
	return m, nil
}

// String renders m back to its canonical letter form: K/E flags first,
// then either 'A' (if every alias class is set) or the remaining classes
// in a fixed order, matching keyspaceEventsFlagsToString's layout.
func (m Mask) String() string {
	var b strings.Builder
	if m&FlagKeyspace != 0 {
		b.WriteByte('K')
	}
	if m&FlagKeyevent != 0 {
		b.WriteByte('E')
	}
	if m&classAlias == classAlias {
		b.WriteByte('A')
		m &^= classAlias
	}
	for _, lc := range letterByClass {
		if m&lc.class != 0 {
			b.WriteByte(lc.letter)
		}
	}
	return b.String()
}

// Has reports whether class is enabled in m.
func (m Mask) Has(class Mask) bool { return m&class != 0 }
