package blocking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kavinhq/redicore/internal/keyspace"
	"github.com/kavinhq/redicore/internal/rerror"
	"go.uber.org/zap"
)

// Manager owns the blocked-client registry and the timeout heap across
// every database; one Manager serves the whole engine (spec.md §4.6).
type Manager struct {
	log *zap.Logger

	ids      *idAllocator
	timeouts *timeoutQueue

	mu      sync.Mutex
	clients map[int64]*BlockInfo
}

// NewManager returns an empty Manager.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:      log.Named("blocking"),
		ids:      newIDAllocator(),
		timeouts: newTimeoutQueue(),
		clients:  make(map[int64]*BlockInfo),
	}
}

// BlockForKeys registers a new waiter across keys in db, returning its
// BlockInfo. The caller blocks on info.Ready (or a timer derived from
// info.Deadline) after this returns. timeout of zero blocks forever.
func (m *Manager) BlockForKeys(db *keyspace.Database, keys []string, btype Btype, shape ReplyShape, dir Dir, target string, timeout time.Duration) *BlockInfo {
	id := m.ids.alloc()
	info := &BlockInfo{
		ID:       id,
		ClientID: uuid.New(),
		DB:       db.Index,
		Keys:    append([]string(nil), keys...),
		Type:    btype,
		Shape:   shape,
		Dir:     dir,
		Target:  target,
		Ready:   make(chan Wakeup, 1),
		handles: make(map[string]keyspace.Handle, len(keys)),
	}
	if timeout > 0 {
		info.Deadline = time.Now().Add(timeout)
	}

	for _, key := range keys {
		info.handles[key] = db.BlockClient(key, info)
	}

	m.mu.Lock()
	m.clients[id] = info
	m.mu.Unlock()

	if !info.Deadline.IsZero() {
		m.timeouts.push(id, info.Deadline)
	}
	return info
}

// deregister removes info from every key it was waiting on and from the
// registry/timeout heap. Returns false if info had already been removed
// by a concurrent winner (timeout vs. wakeup race).
func (m *Manager) deregister(db *keyspace.Database, info *BlockInfo) bool {
	m.mu.Lock()
	if _, ok := m.clients[info.ID]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.clients, info.ID)
	m.mu.Unlock()

	for key, h := range info.handles {
		db.UnblockClient(key, h)
	}
	m.timeouts.remove(info.ID)
	m.ids.release(info.ID)
	return true
}

// Unblock is the single path by which a blocked client stops waiting:
// the ready-key server, a timeout firing, CLIENT UNBLOCK, or shutdown
// all call this. Only the first caller for a given client's ID wins;
// later callers are silently ignored, which is what makes a wakeup
// racing a timeout-fire safe.
func (m *Manager) Unblock(db *keyspace.Database, info *BlockInfo, w Wakeup) bool {
	if !m.deregister(db, info) {
		return false
	}
	info.Ready <- w
	close(info.Ready)
	return true
}

// PollTimeouts fires every deadline that has passed as of now, sending
// each affected client a timed-out Wakeup. internal/engine calls this
// once per command dispatch (or off a ticker for idle periods). dbByIndex
// resolves each fired client's own database, since one Manager serves
// every database in the engine.
func (m *Manager) PollTimeouts(dbByIndex func(int) *keyspace.Database, now time.Time) {
	for {
		id, when, ok := m.timeouts.next()
		if !ok || when.After(now) {
			return
		}
		m.timeouts.pop()

		m.mu.Lock()
		info, ok := m.clients[id]
		m.mu.Unlock()
		if !ok {
			continue
		}
		db := dbByIndex(info.DB)
		if db == nil {
			continue
		}
		m.Unblock(db, info, Wakeup{TimedOut: true})
	}
}

// UnblockByID implements CLIENT UNBLOCK. withError selects between a
// nil timeout-style reply and the UNBLOCKED error reply.
func (m *Manager) UnblockByID(db *keyspace.Database, id int64, withError bool) bool {
	m.mu.Lock()
	info, ok := m.clients[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	w := Wakeup{TimedOut: true}
	if withError {
		w = Wakeup{Err: rerror.ErrUnblocked}
	}
	return m.Unblock(db, info, w)
}

// UnblockAllForShutdown wakes every registered client across all
// databases with a shutdown error, for graceful-shutdown draining.
// Callers pass a lookup so databases outside the caller's immediate
// scope can still be found by DB index.
func (m *Manager) UnblockAllForShutdown(dbByIndex func(int) *keyspace.Database) {
	m.mu.Lock()
	infos := make([]*BlockInfo, 0, len(m.clients))
	for _, info := range m.clients {
		infos = append(infos, info)
	}
	m.mu.Unlock()

	for _, info := range infos {
		db := dbByIndex(info.DB)
		if db == nil {
			continue
		}
		m.Unblock(db, info, Wakeup{Err: rerror.ErrShutdown})
	}
}

// Count reports how many clients are currently registered as blocked.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}
