package services

import (
	"context"
	"math"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/period"
	"pocketbook/internal/store"
)

// Allocation describes what one Allocate call did.
type Allocation struct {
	PeriodKey string
	Balance   float64
	Target    float64
	// PerGoal is positive for a surplus split and negative for a deficit
	// reduction. Zero when nothing was allocated.
	PerGoal float64
	Goals   int
}

// GoalAllocator spreads the current surplus over active dated goals as
// provisional contributions, and solidifies them once their period closes.
//
// Contribution keys are calendar months ("2006-01") regardless of the reset
// policy; the generic goal's TargetAmount is the amount to keep each period.
type GoalAllocator struct {
	store  *store.Store
	logger *log.Logger
}

func NewGoalAllocator(st *store.Store, logger *log.Logger) *GoalAllocator {
	if logger == nil {
		logger = log.Discard()
	}
	return &GoalAllocator{store: st, logger: logger.WithComponent(log.ComponentAllocator)}
}

// Allocate recomputes the provisional contribution of every active goal for
// the current period. A surplus over the generic goal's target is split
// equally and overwrites the provisional values; a deficit lowers them,
// never below zero. It does nothing without a generic goal or active goals.
func (a *GoalAllocator) Allocate(ctx context.Context, now time.Time) Allocation {
	var result Allocation

	a.store.Apply(ctx, func(snap *core.Snapshot) bool {
		generic, ok := core.GenericGoal(snap.SavingGoals)
		if !ok {
			return false
		}

		var active []int
		for i, g := range snap.SavingGoals {
			if g.IsActiveTarget(now) {
				active = append(active, i)
			}
		}
		if len(active) == 0 {
			return false
		}

		key := period.CalendarKey(now)
		balance := currentBalance(snap, now)
		result = Allocation{
			PeriodKey: key,
			Balance:   balance,
			Target:    generic.TargetAmount,
			Goals:     len(active),
		}

		changed := false
		set := func(g *core.SavingGoal, amount float64) {
			if old, ok := g.MonthlyContributions[key]; ok && old == amount {
				return
			}
			g.SetProvisional(key, amount)
			changed = true
		}

		if balance > generic.TargetAmount {
			perGoal := (balance - generic.TargetAmount) / float64(len(active))
			result.PerGoal = perGoal
			for _, i := range active {
				set(&snap.SavingGoals[i], perGoal)
			}
		} else {
			reduction := (generic.TargetAmount - balance) / float64(len(active))
			result.PerGoal = -reduction
			for _, i := range active {
				g := &snap.SavingGoals[i]
				set(g, math.Max(0, g.MonthlyContributions.Provisional(key)-reduction))
			}
		}
		return changed
	})

	if result.Goals > 0 {
		a.logger.DebugContext(ctx, "Surplus allocated",
			log.FieldOperation, log.OpAllocate,
			log.FieldPeriodKey, result.PeriodKey,
			log.FieldBalance, result.Balance,
			"per_goal", result.PerGoal,
			log.FieldCount, result.Goals)
	}
	return result
}

// Rollover solidifies the provisional contributions of every closed period
// once the current period key differs from the stored one, then advances
// the stored key. It returns the total amount moved into goals.
func (a *GoalAllocator) Rollover(ctx context.Context, now time.Time) float64 {
	current := period.CalendarKey(now)
	var moved float64
	var previous string

	a.store.Apply(ctx, func(snap *core.Snapshot) bool {
		previous = snap.LastPeriodKey
		if previous == current {
			return false
		}
		for i := range snap.SavingGoals {
			g := &snap.SavingGoals[i]
			if g.IsGeneric {
				continue
			}
			for _, key := range g.StaleKeys(current) {
				if amount, ok := g.Solidify(key); ok {
					moved += amount
					a.logger.InfoContext(ctx, "Contribution solidified",
						log.FieldOperation, log.OpSolidify,
						log.FieldGoalID, g.ID,
						log.FieldPeriodKey, key,
						log.FieldAmount, amount)
				}
			}
		}
		snap.LastPeriodKey = current
		return true
	})

	if previous != current {
		a.logger.InfoContext(ctx, "Period rolled over",
			"previous_key", previous,
			log.FieldPeriodKey, current,
			log.FieldAmount, moved)
	}
	return moved
}
