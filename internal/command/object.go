package command

import (
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/config"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
)

// sharedRefcount is what real Redis reports for a shared/immortal object's
// refcount (INT_MAX), rather than the internal sentinel used to mark it
// non-reclaimable.
const sharedRefcount = int64(2147483647)

// ObjectSubcommand is OBJECT's sub-operation selector.
type ObjectSubcommand int

const (
	ObjectRefcount ObjectSubcommand = iota
	ObjectEncoding
	ObjectIdletime
	ObjectFreq
	ObjectHelp
)

// ObjectHelpText is OBJECT HELP's canned listing — a fixed dispatch
// target rather than a real introspection result, the same way the
// original's objectCommandGetKey-adjacent HELP branch just prints usage.
var ObjectHelpText = []string{
	"OBJECT REFCOUNT <key>",
	"OBJECT ENCODING <key>",
	"OBJECT IDLETIME <key>",
	"OBJECT FREQ <key>",
	"OBJECT HELP",
}

// Object dispatches one OBJECT sub-operation. cfg is consulted to reject
// IDLETIME under an LFU policy and FREQ under any non-LFU policy, mirroring
// objectCommand's policy guard.
func Object(db *keyspace.Database, c *clock.Clock, cfg *config.Config, sub ObjectSubcommand, key string) (int64, string, error) {
	if sub == ObjectHelp {
		return 0, "", nil
	}

	v, ok := db.LookupRead(key, c, keyspace.NoTouch|keyspace.NoStats)
	if !ok {
		return 0, "", rerror.ErrKeyNotFound
	}

	switch sub {
	case ObjectRefcount:
		if v.Refcount() == obj.RefcountImmortal {
			return sharedRefcount, "", nil
		}
		return int64(v.Refcount()), "", nil
	case ObjectEncoding:
		return 0, v.Encoding().String(), nil
	case ObjectIdletime:
		if cfg.MaxMemoryPolicy.IsLFU() {
			return 0, "", rerror.ErrLRURequired
		}
		return int64(v.IdleTimeSeconds(c.NowMinutes())), "", nil
	case ObjectFreq:
		if !cfg.MaxMemoryPolicy.IsLFU() {
			return 0, "", rerror.ErrLFURequired
		}
		return int64(v.AccessFrequency()), "", nil
	default:
		return 0, "", rerror.ErrSyntax
	}
}

// Type implements TYPE: the logical type name, or "none" for a missing key.
func Type(db *keyspace.Database, c *clock.Clock, key string) string {
	v, ok := db.LookupRead(key, c, keyspace.NoTouch|keyspace.NoStats)
	if !ok {
		return "none"
	}
	return v.Type().String()
}
