// Package blocking implements blocking command support: the per-key
// waiter lists, the global ready-key draining pass, and the per-type
// wakeup servers described in spec.md §3, §4.6, and §9.
package blocking

import (
	"time"

	"github.com/google/uuid"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
)

// Btype identifies which command family a blocked client is waiting
// for, so HandleReadyKeys can dispatch to the matching wakeup server.
type Btype int

const (
	BTypeNone Btype = iota
	BTypeList
	BTypeZSet
	BTypeStream
	BTypeWait   // WAIT: blocked on replica ack count, not a key
	BTypeModule // module-registered blocking command
)

// ReplyShape resolves spec.md §9's open question on how a blocked
// client's eventual reply is structured — different blocking command
// families wake up with structurally different payloads, and the
// wakeup path needs to know which shape it's filling in rather than
// have command code re-derive it from Btype after the fact.
type ReplyShape int

const (
	// ReplyShapeKeyValue is BLPOP/BRPOP's [key, value] pair.
	ReplyShapeKeyValue ReplyShape = iota
	// ReplyShapeValue is BLMOVE/BRPOPLPUSH's single bulk value.
	ReplyShapeValue
	// ReplyShapeKeyMemberScore is BZPOPMIN/BZPOPMAX's [key, member, score].
	ReplyShapeKeyMemberScore
	// ReplyShapeZMPop is BZMPOP's [key, [[member, score], ...]].
	ReplyShapeZMPop
	// ReplyShapeStreamEntries is XREAD/XREADGROUP BLOCK's per-key entry batch.
	ReplyShapeStreamEntries
	// ReplyShapeWaitCount is WAIT's acknowledged-replica integer.
	ReplyShapeWaitCount
	// ReplyShapeModule is a module-defined reply, opaque to this package.
	ReplyShapeModule
)

// Dir selects which end of a list/zset a blocking pop favors.
type Dir int

const (
	DirLeft Dir = iota
	DirRight
)

// Wakeup is what a blocked client receives when it stops waiting,
// whether satisfied, timed out, or forcibly unblocked.
type Wakeup struct {
	Shape    ReplyShape
	Key      string
	Values   [][]byte
	Score    float64
	TimedOut bool
	Err      error
}

// BlockInfo is the bookkeeping record for one blocked client, analogous
// to Redis's client->bstate. It is the value stored in each waited-on
// key's keyspace.BlockedList, type-erased on that side as `any`.
type BlockInfo struct {
	ID       int64
	ClientID uuid.UUID // stamped at BlockForKeys time, mirrors CLIENT ID
	DB       int
	Keys     []string
	Type     Btype
	Shape    ReplyShape
	Dir      Dir
	Target   string    // e.g. BLMOVE's destination key; empty if unused
	Deadline time.Time // zero means block forever

	// After is the stream ID a stream waiter last saw; only meaningful
	// when Type is BTypeStream. The caller sets this on the BlockInfo
	// returned by BlockForKeys before the command returns control to the
	// single-threaded dispatcher, so no wakeup pass can observe it unset.
	After obj.StreamID

	Ready chan Wakeup

	handles map[string]keyspace.Handle
}
