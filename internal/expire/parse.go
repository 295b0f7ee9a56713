// Package expire implements TTL parsing and the active/lazy expiration
// cycle described in spec.md §4.5.
package expire

import (
	"math"
	"time"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/rerror"
)

// Unit distinguishes the four ways SET/EXPIRE/GETEX accept a deadline.
type Unit int

const (
	Seconds      Unit = iota // EX / EXPIRE
	Milliseconds             // PX / PEXPIRE
	UnixSeconds              // EXAT / EXPIREAT
	UnixMillis               // PXAT / PEXPIREAT
)

// maxDeltaMS bounds relative deadlines so that converting to an absolute
// millisecond instant cannot overflow; this is the same ceiling Redis
// enforces (roughly 100 years of milliseconds) in t_string/t_expire's
// validateExpire checks.
const maxDeltaMS = int64(100) * 365 * 24 * 60 * 60 * 1000

// ToAbsoluteMS converts a relative or absolute deadline value (already
// expressed in unit's terms) to an absolute millisecond instant, using c
// as "now" for relative units. Returns rerror.ErrExpireTime if the value
// is non-positive where positivity is required, or would overflow.
func ToAbsoluteMS(c *clock.Clock, unit Unit, value int64) (int64, error) {
	switch unit {
	case Seconds:
		if value <= 0 || value > maxDeltaMS/1000 {
			return 0, rerror.ErrExpireTime
		}
		return c.NowMS() + value*1000, nil
	case Milliseconds:
		if value <= 0 || value > maxDeltaMS {
			return 0, rerror.ErrExpireTime
		}
		return c.NowMS() + value, nil
	case UnixSeconds:
		if value < 0 || value > math.MaxInt64/1000 {
			return 0, rerror.ErrExpireTime
		}
		return value * 1000, nil
	case UnixMillis:
		if value < 0 {
			return 0, rerror.ErrExpireTime
		}
		return value, nil
	default:
		return 0, rerror.ErrSyntax
	}
}

// TTLRemaining reports the remaining duration until atMS, rounded down
// to zero once the deadline has passed — the value PTTL/TTL report
// before their own unit conversion.
func TTLRemaining(c *clock.Clock, atMS int64) time.Duration {
	remaining := atMS - c.NowMS()
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * time.Millisecond
}
