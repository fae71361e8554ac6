package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// The sweeper applies the two date-driven system transitions: it
// activates FULLY_SIGNED contracts whose start date has been reached
// and expires ACTIVE contracts whose end date has passed. It is
// advisory, not safety-critical: every gate that matters accepts
// FULLY_SIGNED and ACTIVE alike, so a late sweep never blocks a user
// action. Lost races with user-triggered transitions are simply
// skipped.

// SweepDue runs one pass and returns how many contracts were activated
// and expired.
func (o *Orchestrator) SweepDue(ctx context.Context) (activated, expired int, err error) {
	now := o.now()

	ids, err := o.deps.Contracts.ListActivatable(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if err := o.deps.Contracts.ApplyTransition(ctx, id, model.StatusFullySigned, model.StatusActive); err != nil {
			continue // raced with another transition, next sweep will see the truth
		}
		if c, gerr := o.deps.Contracts.GetByID(ctx, id); gerr == nil {
			o.emitTransition(ctx, c, model.StatusFullySigned, model.StatusActive, Actor{Role: RoleSystem})
		}
		activated++
	}

	ids, err = o.deps.Contracts.ListExpirable(ctx, now)
	if err != nil {
		return activated, expired, err
	}
	for _, id := range ids {
		if err := o.deps.Contracts.ApplyTransition(ctx, id, model.StatusActive, model.StatusExpired); err != nil {
			continue
		}
		if c, gerr := o.deps.Contracts.GetByID(ctx, id); gerr == nil {
			o.emitTransition(ctx, c, model.StatusActive, model.StatusExpired, Actor{Role: RoleSystem})
		}
		expired++
	}
	return activated, expired, nil
}

// RunSweeper loops SweepDue on the given interval until the context is
// cancelled. Meant to run as a background goroutine from main.
func (o *Orchestrator) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			activated, expired, err := o.SweepDue(ctx)
			if err != nil {
				log.Printf("sweeper: pass failed: %v", err)
				continue
			}
			if activated > 0 || expired > 0 {
				log.Printf("sweeper: activated=%d expired=%d", activated, expired)
			}
		}
	}
}
