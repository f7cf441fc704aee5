package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/store"
)

// SubscriptionMaterializer turns active subscriptions into dated expenses,
// at most one per subscription per dedup window.
type SubscriptionMaterializer struct {
	store  *store.Store
	window DedupWindow
	logger *log.Logger
}

func NewSubscriptionMaterializer(st *store.Store, window DedupWindow, logger *log.Logger) *SubscriptionMaterializer {
	if window == nil {
		window = BudgetPeriod{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &SubscriptionMaterializer{
		store:  st,
		window: window,
		logger: logger.WithComponent(log.ComponentMaterializer),
	}
}

// Materialize creates the missing subscription expenses for the window
// containing now and persists them in one save. It returns how many were
// created; calling it again in the same window creates none.
func (m *SubscriptionMaterializer) Materialize(ctx context.Context, now time.Time) int {
	var created []core.Expense

	m.store.Apply(ctx, func(snap *core.Snapshot) bool {
		start := m.window.Start(now, snap.Settings)
		for _, sub := range snap.Subscriptions {
			if !sub.IsActive || sub.StartDate.After(now) {
				continue
			}
			if hasCharge(snap.Expenses, sub, start) {
				continue
			}
			subID := sub.ID
			e := core.Expense{
				ID:                   uuid.New(),
				Amount:               sub.Amount,
				Comment:              core.SubscriptionComment(sub.Name),
				Date:                 start,
				CategoryID:           sub.CategoryID,
				SourceSubscriptionID: &subID,
			}
			snap.Expenses = append(snap.Expenses, e)
			created = append(created, e)
		}
		return len(created) > 0
	})

	for _, e := range created {
		m.logger.InfoContext(ctx, "Created expense from subscription",
			log.FieldSubscriptionID, *e.SourceSubscriptionID,
			log.FieldExpenseID, e.ID,
			log.FieldAmount, e.Amount,
			log.FieldPeriodStart, e.Date.Format(time.DateOnly))
	}
	if len(created) > 0 {
		m.logger.InfoContext(ctx, "Subscription materialization complete",
			log.FieldOperation, log.OpMaterialize, log.FieldCount, len(created))
	}
	return len(created)
}

// hasCharge reports whether an expense for sub already exists on or after
// start. Expenses with provenance match by subscription id; legacy expenses
// without it match the exact generated comment.
func hasCharge(expenses []core.Expense, sub core.Subscription, start time.Time) bool {
	legacyComment := core.SubscriptionComment(sub.Name)
	for _, e := range expenses {
		if e.Date.Before(start) {
			continue
		}
		if e.SourceSubscriptionID != nil {
			if *e.SourceSubscriptionID == sub.ID {
				return true
			}
			continue
		}
		if e.Comment == legacyComment {
			return true
		}
	}
	return false
}

// FixDates moves every subscription expense onto the start of the dedup
// window containing it, the same date Materialize would have given it. It is
// run once at load time to repair entries dated by older materialization
// rules, and returns how many expenses moved.
func (m *SubscriptionMaterializer) FixDates(ctx context.Context) int {
	fixed := 0
	m.store.Apply(ctx, func(snap *core.Snapshot) bool {
		for i, e := range snap.Expenses {
			if !e.IsFromSubscription() {
				continue
			}
			start := m.window.Start(e.Date, snap.Settings)
			if !e.Date.Equal(start) {
				snap.Expenses[i].Date = start
				fixed++
			}
		}
		return fixed > 0
	})
	if fixed > 0 {
		m.logger.InfoContext(ctx, "Corrected subscription expense dates", log.FieldCount, fixed)
	}
	return fixed
}
