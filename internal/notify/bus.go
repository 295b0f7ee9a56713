package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Publisher is anything the notification bus can hand a channel/message
// pair to — a pub/sub hub, a test recorder, or eventually a network
// listener's fan-out table.
type Publisher interface {
	Publish(channel, message string)
}

// Bus filters keyspace events through a configured Mask and fans each
// surviving event out to every registered Publisher.
type Bus struct {
	log *zap.Logger

	mu         sync.RWMutex
	mask       Mask
	publishers []Publisher
}

// NewBus returns a Bus starting with the given mask.
func NewBus(log *zap.Logger, mask Mask) *Bus {
	return &Bus{log: log.Named("notify"), mask: mask}
}

// AddPublisher registers p to receive every event the current mask lets
// through.
func (b *Bus) AddPublisher(p Publisher) {
	b.mu.Lock()
	b.publishers = append(b.publishers, p)
	b.mu.Unlock()
}

// SetMask replaces the active class mask (CONFIG SET notify-keyspace-events).
func (b *Bus) SetMask(m Mask) {
	b.mu.Lock()
	b.mask = m
	b.mu.Unlock()
}

// Mask returns the active class mask.
func (b *Bus) Mask() Mask {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mask
}

// Notify implements internal/keyspace.Notifier: fires event for key in
// database dbIndex if class is enabled under the active mask, delivering
// on the keyspace and/or keyevent channel per the K/E flags.
func (b *Bus) Notify(dbIndex int, class byte, event, key string) {
	classBit, ok := classByLetter[class]
	if !ok {
		return
	}
	b.mu.RLock()
	mask := b.mask
	pubs := append([]Publisher(nil), b.publishers...)
	b.mu.RUnlock()

	if mask&classBit == 0 {
		return
	}
	if mask&FlagKeyspace != 0 {
		ch := KeyspaceChannel(dbIndex, key)
		for _, p := range pubs {
			p.Publish(ch, event)
		}
	}
	if mask&FlagKeyevent != 0 {
		ch := KeyeventChannel(dbIndex, event)
		for _, p := range pubs {
			p.Publish(ch, key)
		}
	}
}

// NotifyModule delivers a module-originated event without checking its
// class against the mask. Real modules call RM_NotifyKeyspaceEvent only
// when they've already decided an event is worth emitting, so there is
// nothing left for the class bits to filter. The K/E channel bits still
// apply: with neither set (e.g. an empty mask) nothing is published.
func (b *Bus) NotifyModule(dbIndex int, event, key string) {
	b.mu.RLock()
	pubs := append([]Publisher(nil), b.publishers...)
	mask := b.mask
	b.mu.RUnlock()

	if mask&FlagKeyspace != 0 {
		ch := KeyspaceChannel(dbIndex, key)
		for _, p := range pubs {
			p.Publish(ch, event)
		}
	}
	if mask&FlagKeyevent != 0 {
		ch := KeyeventChannel(dbIndex, event)
		for _, p := range pubs {
			p.Publish(ch, key)
		}
	}
}
