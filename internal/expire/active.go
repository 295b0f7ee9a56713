package expire

import (
	"context"
	"time"

	"github.com/kavinhq/redicore/internal/clock"
	"github.com/kavinhq/redicore/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Database is the subset of keyspace.Database the active cycle needs;
// narrowed to an interface so this package's tests don't need a full
// keyspace wiring, and so internal/keyspace never has to import
// internal/expire back.
type Database interface {
	SampleActiveExpire(c *clock.Clock, sampleSize int) (checked, expired int)
	ExpiresLen() int
}

// Cycle drives the background active-expiration sweep across every
// database on a fixed quantum, adapting its effort per database the way
// Redis's activeExpireCycle does: keep sampling while the observed
// expired fraction stays above AggressiveFrac, up to the quantum's time
// budget, then move on.
//
// The supervisor shape — ticker, select on ctx.Done(), structured
// logging around each pass — follows the teacher's process-supervision
// loop; what changed is what gets supervised.
type Cycle struct {
	log   *zap.Logger
	cfg   *config.Config
	clock *clock.Clock
	dbs   []Database
}

// NewCycle returns a driver for dbs, using cfg's quantum/sample-size/
// aggressiveness tunables.
func NewCycle(log *zap.Logger, cfg *config.Config, c *clock.Clock, dbs []Database) *Cycle {
	return &Cycle{log: log.Named("expire-cycle"), cfg: cfg, clock: c, dbs: dbs}
}

// Run blocks until ctx is cancelled, ticking at cfg.ActiveExpireCycleQuantum.
func (cy *Cycle) Run(ctx context.Context) error {
	ticker := time.NewTicker(cy.cfg.ActiveExpireCycleQuantum)
	defer ticker.Stop()

	cy.log.Info("active expire cycle started", zap.Duration("quantum", cy.cfg.ActiveExpireCycleQuantum))
	for {
		select {
		case <-ctx.Done():
			cy.log.Info("active expire cycle stopped")
			return nil
		case <-ticker.C:
			if err := cy.runPass(ctx); err != nil {
				return err
			}
		}
	}
}

// runPass sweeps every database concurrently, bounded by errgroup so one
// database's panic-free error doesn't stop the others mid-pass.
func (cy *Cycle) runPass(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, db := range cy.dbs {
		db := db
		g.Go(func() error {
			cy.sweepDatabase(db)
			return nil
		})
	}
	return g.Wait()
}

// sweepDatabase repeatedly samples db until the expired fraction drops
// below cfg.ActiveExpireAggressiveFrac, or there's nothing left worth
// sampling, or the quantum's time budget is spent.
func (cy *Cycle) sweepDatabase(db Database) {
	if db.ExpiresLen() == 0 {
		return
	}
	deadline := time.Now().Add(cy.cfg.ActiveExpireCycleQuantum)
	totalChecked, totalExpired := 0, 0
	for time.Now().Before(deadline) {
		cy.clock.Refresh()
		checked, expired := db.SampleActiveExpire(cy.clock, cy.cfg.ActiveExpireCycleSampleSz)
		totalChecked += checked
		totalExpired += expired
		if checked == 0 {
			break
		}
		if float64(expired)/float64(checked) < cy.cfg.ActiveExpireAggressiveFrac {
			break
		}
	}
	if totalExpired > 0 {
		cy.log.Debug("active expire pass", zap.Int("checked", totalChecked), zap.Int("expired", totalExpired))
	}
}
