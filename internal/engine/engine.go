// Package engine wires the keyspace, expiration, blocking, notification,
// and memory-introspection subsystems behind one dispatch entrypoint, the
// single-executor model spec.md §5 describes.
package engine

import (
	"context"
	"time"

	"github.com/kavinhq/redicore/internal/blocking"
	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/config"
	"github.com/kavinhq/redicore/internal/expire"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/memory"
	"github.com/kavinhq/redicore/internal/notify"
	"github.com/kavinhq/redicore/internal/obj"
	"github.com/kavinhq/redicore/internal/rerror"
	"go.uber.org/zap"
)

// DefaultDatabaseCount matches the stock server's 16 logical databases.
const DefaultDatabaseCount = 16

// Engine is the single point through which every command runs. It
// refreshes the cached clock once per top-level command and drains
// ready-key wakeups only once the outermost command finishes, so a
// command that triggers its own sub-operations (e.g. a Lua-style nested
// call, if ever added) never observes a half-finished wakeup pass.
type Engine struct {
	log *zap.Logger
	cfg *config.Config

	clock      *clock.Clock
	dbs        []*keyspace.Database
	notifyBus  *notify.Bus
	blockMgr   *blocking.Manager
	memAgg     *memory.Aggregator
	reclaimer  *keyspace.Reclaimer
	expireCy   *expire.Cycle
	expireStop context.CancelFunc

	depth int
}

// New builds an Engine with DefaultDatabaseCount databases, wired
// together per cfg.
func New(log *zap.Logger, cfg *config.Config) *Engine {
	mask, err := notify.ParseClassMask(cfg.NotifyKeyspaceEvents)
	if err != nil {
		mask = 0
	}
	bus := notify.NewBus(log, mask)

	e := &Engine{
		log:       log.Named("engine"),
		cfg:       cfg,
		clock:     clock.New(),
		notifyBus: bus,
		blockMgr:  blocking.NewManager(log),
		reclaimer: keyspace.NewReclaimer(log, cfg.ReclaimWorkers),
	}
	e.dbs = make([]*keyspace.Database, DefaultDatabaseCount)
	for i := range e.dbs {
		e.dbs[i] = keyspace.New(log, i, bus)
	}
	e.memAgg = memory.NewAggregator(e.dbs, 10)

	expireDBs := make([]expire.Database, len(e.dbs))
	for i, db := range e.dbs {
		expireDBs[i] = db
	}
	// The active cycle runs on its own background goroutine, so it gets
	// its own Clock rather than sharing Dispatch's: clock.Clock is not
	// safe for concurrent use, and the cycle's sampling has no need for
	// the "same now across one command's sub-operations" guarantee that
	// sharing would be for.
	e.expireCy = expire.NewCycle(log, cfg, clock.New(), expireDBs)
	ctx, cancel := context.WithCancel(context.Background())
	e.expireStop = cancel
	go func() {
		if err := e.expireCy.Run(ctx); err != nil {
			e.log.Error("active expire cycle exited", zap.Error(err))
		}
	}()

	return e
}

// DB returns the database numbered index, or nil if out of range.
func (e *Engine) DB(index int) *keyspace.Database {
	if index < 0 || index >= len(e.dbs) {
		return nil
	}
	return e.dbs[index]
}

// NotifyBus exposes the keyspace-notification bus for CONFIG SET/GET
// and PubSub wiring.
func (e *Engine) NotifyBus() *notify.Bus { return e.notifyBus }

// BlockManager exposes the blocking-command manager for command
// implementations that need to register or unblock waiters.
func (e *Engine) BlockManager() *blocking.Manager { return e.blockMgr }

// MemoryAggregator exposes the MEMORY USAGE/STATS/DOCTOR report builder.
func (e *Engine) MemoryAggregator() *memory.Aggregator { return e.memAgg }

// Reclaimer exposes the async-delete worker pool for UNLINK-style commands.
func (e *Engine) Reclaimer() *keyspace.Reclaimer { return e.reclaimer }

// Clock exposes the cached per-command clock.
func (e *Engine) Clock() *clock.Clock { return e.clock }

// Dispatch runs fn against the database numbered dbIndex as one
// top-level command: the clock is refreshed on entry if this is not a
// nested call, and ready-key draining plus timeout polling happen once
// on the way out of the outermost call.
func (e *Engine) Dispatch(dbIndex int, fn func(db *keyspace.Database) error) error {
	db := e.DB(dbIndex)
	if db == nil {
		return rerror.ErrSyntax
	}

	if e.depth == 0 {
		e.clock.Refresh()
	}
	e.depth++
	err := fn(db)
	e.depth--

	if e.depth == 0 {
		e.drain(db)
	}
	return err
}

// drain runs the post-command housekeeping pass: ready-key wakeups, then
// timeout polling so a client that both got satisfied and timed out in
// the same instant is resolved by the wakeup, not the timeout.
func (e *Engine) drain(db *keyspace.Database) {
	e.blockMgr.HandleReadyKeys(db, func(key string) (*obj.Value, bool) {
		return db.LookupWrite(key, e.clock, 0)
	})
	e.blockMgr.PollTimeouts(e.DB, time.Now())
}

// Shutdown stops the active expire cycle, wakes every blocked client
// with a shutdown error, and waits for in-flight async reclaims to
// finish.
func (e *Engine) Shutdown() {
	e.expireStop()
	e.blockMgr.UnblockAllForShutdown(e.DB)
	e.reclaimer.Close()
}
