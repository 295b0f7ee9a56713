package expire

import (
	"context"
	"testing"
	"time"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/config"
	"go.uber.org/zap"
)

type fakeDB struct {
	expiresLen  int
	expiredLeft int
}

func (f *fakeDB) ExpiresLen() int { return f.expiresLen }

func (f *fakeDB) SampleActiveExpire(c *clock.Clock, sampleSize int) (checked, expired int) {
	if f.expiredLeft == 0 {
		return 0, 0
	}
	n := sampleSize
	if n > f.expiredLeft {
		n = f.expiredLeft
	}
	f.expiredLeft -= n
	f.expiresLen -= n
	return n, n
}

func TestSweepDatabaseStopsWhenNothingLeft(t *testing.T) {
	cfg := config.Default()
	cfg.ActiveExpireCycleSampleSz = 10
	cfg.ActiveExpireAggressiveFrac = 0.1
	cy := NewCycle(zap.NewNop(), &cfg, clock.New(), nil)

	db := &fakeDB{expiresLen: 25, expiredLeft: 25}
	cy.sweepDatabase(db)
	if db.expiredLeft != 0 {
		t.Fatalf("expected full drain while above aggressive fraction, left = %d", db.expiredLeft)
	}
}

func TestSweepDatabaseSkipsEmptyExpires(t *testing.T) {
	cfg := config.Default()
	cy := NewCycle(zap.NewNop(), &cfg, clock.New(), nil)
	db := &fakeDB{expiresLen: 0}
	cy.sweepDatabase(db) // must not panic or loop forever
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.ActiveExpireCycleQuantum = time.Millisecond
	cy := NewCycle(zap.NewNop(), &cfg, clock.New(), []Database{&fakeDB{}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := cy.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
