package expire

import (
	"testing"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/rerror"
)

func TestToAbsoluteMSRelativeSeconds(t *testing.T) {
	c := clock.New()
	at, err := ToAbsoluteMS(c, Seconds, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := c.NowMS() + 10000; at != want {
		t.Fatalf("at = %d, want %d", at, want)
	}
}

func TestToAbsoluteMSRejectsNonPositiveRelative(t *testing.T) {
	c := clock.New()
	if _, err := ToAbsoluteMS(c, Seconds, 0); err != rerror.ErrExpireTime {
		t.Fatalf("err = %v, want ErrExpireTime", err)
	}
	if _, err := ToAbsoluteMS(c, Milliseconds, -5); err != rerror.ErrExpireTime {
		t.Fatalf("err = %v, want ErrExpireTime", err)
	}
}

func TestToAbsoluteMSUnixAbsolute(t *testing.T) {
	c := clock.New()
	at, err := ToAbsoluteMS(c, UnixSeconds, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at != 1000000 {
		t.Fatalf("at = %d, want 1000000", at)
	}
}

func TestTTLRemainingClampsAtZero(t *testing.T) {
	c := clock.New()
	d := TTLRemaining(c, c.NowMS()-5000)
	if d != 0 {
		t.Fatalf("expected clamped zero duration, got %v", d)
	}
}
