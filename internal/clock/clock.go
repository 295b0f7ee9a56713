// Package clock provides the per-command cached wall-clock used
// throughout the engine. spec.md §4.5 requires expire instants to be
// computed against "a monotonic-ish wall clock, synchronized with wall
// time at command entry (cached per command to avoid drift between
// sub-operations)" — every sub-operation of one command must see the
// same "now".
package clock

import "time"

// Clock holds one cached timestamp, refreshed once per top-level command
// dispatch. It is not safe for concurrent use across goroutines without
// external synchronization, matching the single-executor model of §5.
type Clock struct {
	now time.Time
}

// New returns a Clock seeded with the current wall time.
func New() *Clock {
	return &Clock{now: time.Now()}
}

// Refresh re-samples wall time. Callers invoke this exactly once per
// top-level command (internal/engine.Engine.Dispatch), never mid-command.
func (c *Clock) Refresh() {
	c.now = time.Now()
}

// Now returns the cached timestamp.
func (c *Clock) Now() time.Time { return c.now }

// NowMS returns the cached timestamp as absolute milliseconds, the unit
// spec.md §3/§4.5 uses for expire deadlines.
func (c *Clock) NowMS() int64 { return c.now.UnixMilli() }

// NowMinutes returns the cached timestamp truncated to minutes, the unit
// the lru field's coarse-timestamp mode uses (spec.md §3).
func (c *Clock) NowMinutes() uint32 { return uint32(c.now.Unix() / 60) }
