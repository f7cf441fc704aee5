package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/period"
	"pocketbook/internal/store"
)

// Notifier receives a balance snapshot after every refresh. Publishing is
// best effort: errors are logged and never fail the caller.
type Notifier interface {
	PublishBalanceSnapshot(ctx context.Context, snap core.BalanceSnapshot) error
}

type Option func(*LedgerService)

// WithClock replaces the time source used for "now".
func WithClock(now func() time.Time) Option {
	return func(l *LedgerService) { l.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(l *LedgerService) { l.notifier = n }
}

// WithLocation sets the time zone of calendar-month statistics.
func WithLocation(loc *time.Location) Option {
	return func(l *LedgerService) { l.loc = loc }
}

func WithDedupWindow(w DedupWindow) Option {
	return func(l *LedgerService) { l.window = w }
}

type updateConfig struct {
	skipReallocation bool
}

type UpdateOption func(*updateConfig)

// SkipReallocation stops a goal update from re-running the allocator.
func SkipReallocation() UpdateOption {
	return func(c *updateConfig) { c.skipReallocation = true }
}

// LedgerService is the entry point for every ledger operation. It owns the
// store and re-runs materialization and allocation when balances change.
type LedgerService struct {
	store        *store.Store
	materializer *SubscriptionMaterializer
	stats        *StatisticsService
	allocator    *GoalAllocator
	notifier     Notifier
	window       DedupWindow
	now          func() time.Time
	loc          *time.Location
	logger       *log.Logger
}

func NewLedgerService(st *store.Store, logger *log.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	l := &LedgerService{
		store:  st,
		now:    time.Now,
		loc:    time.Local,
		window: BudgetPeriod{},
		logger: logger.WithComponent(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.materializer = NewSubscriptionMaterializer(st, l.window, logger)
	l.stats = NewStatisticsService(st, l.loc, logger)
	l.allocator = NewGoalAllocator(st, logger)
	return l
}

func (l *LedgerService) Store() *store.Store                     { return l.store }
func (l *LedgerService) Statistics() *StatisticsService          { return l.stats }
func (l *LedgerService) Allocator() *GoalAllocator               { return l.allocator }
func (l *LedgerService) Materializer() *SubscriptionMaterializer { return l.materializer }

// Now returns the service clock in the configured location.
func (l *LedgerService) Now() time.Time {
	return l.now().In(l.loc)
}

// Open loads persisted state, repairs subscription expense dates and runs a
// first refresh.
func (l *LedgerService) Open(ctx context.Context) (core.BalanceSnapshot, error) {
	if seeded := l.store.Load(ctx); seeded {
		l.logger.InfoContext(ctx, "Seeded default categories")
	}
	l.materializer.FixDates(ctx)
	return l.Refresh(ctx)
}

// Refresh solidifies closed periods, materializes subscriptions, allocates
// the surplus and publishes the resulting balance snapshot.
func (l *LedgerService) Refresh(ctx context.Context) (core.BalanceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.BalanceSnapshot{}, err
	}
	now := l.Now()

	l.allocator.Rollover(ctx, now)
	l.materializer.Materialize(ctx, now)
	l.allocator.Allocate(ctx, now)

	snap := l.BalanceSnapshot(now)
	l.publish(ctx, snap)

	l.logger.DebugContext(ctx, "Ledger refreshed",
		log.FieldOperation, log.OpRefresh,
		log.FieldPeriodKey, snap.PeriodKey,
		log.FieldBalance, snap.Balance)
	return snap, nil
}

// BalanceSnapshot reads the current balance and goal progress.
func (l *LedgerService) BalanceSnapshot(now time.Time) core.BalanceSnapshot {
	state := l.store.Snapshot()
	income := currentIncome(&state, now)
	expenses := currentExpenseTotal(&state, now)
	balance := income - expenses
	currency := state.Settings.CurrencyCode()

	return core.BalanceSnapshot{
		PeriodKey:   period.Label(now, state.Settings),
		PeriodStart: period.Start(now, state.Settings),
		Balance:     balance,
		Income:      income,
		Expenses:    expenses,
		Currency:    currency,
		Goals:       goalProgress(state.SavingGoals, now),
		Message:     Reminder(balance, currency),
		Timestamp:   now,
	}
}

func goalProgress(goals []core.SavingGoal, now time.Time) []core.GoalProgress {
	key := period.CalendarKey(now)
	var out []core.GoalProgress
	for _, g := range goals {
		if g.IsGeneric {
			continue
		}
		out = append(out, core.GoalProgress{
			GoalID:        g.ID,
			Name:          g.Name,
			Progress:      g.Progress(),
			Provisional:   g.MonthlyContributions.Provisional(key),
			Remaining:     g.RemainingAmount(),
			DaysRemaining: g.DaysRemaining(now),
		})
	}
	return out
}

func (l *LedgerService) publish(ctx context.Context, snap core.BalanceSnapshot) {
	if l.notifier == nil || !l.store.Settings().NotificationsEnabled {
		return
	}
	if err := l.notifier.PublishBalanceSnapshot(ctx, snap); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish balance snapshot",
			log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
	}
}

// reallocate runs after every balance-affecting mutation.
func (l *LedgerService) reallocate(ctx context.Context) {
	l.allocator.Allocate(ctx, l.Now())
}

// Expenses

func (l *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := l.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	l.reallocate(ctx)
	return created, nil
}

func (l *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := l.store.UpdateExpense(ctx, e); err != nil {
		return err
	}
	l.reallocate(ctx)
	return nil
}

func (l *LedgerService) DeleteExpense(ctx context.Context, id uuid.UUID) {
	l.store.DeleteExpense(ctx, id)
	l.reallocate(ctx)
}

// ConvertExpenseToInvestment moves an expense into investments.
func (l *LedgerService) ConvertExpenseToInvestment(ctx context.Context, id uuid.UUID) (core.Investment, bool) {
	inv, ok := l.store.ConvertExpenseToInvestment(ctx, id)
	if ok {
		l.reallocate(ctx)
	}
	return inv, ok
}

// ExpensesByPeriod groups every expense by budget period, newest first.
func (l *LedgerService) ExpensesByPeriod() []core.PeriodGroup {
	return period.GroupExpenses(l.store.Expenses(), l.store.Settings())
}

// Incomes

func (l *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	created, err := l.store.AddIncome(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	l.reallocate(ctx)
	return created, nil
}

func (l *LedgerService) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := l.store.UpdateIncome(ctx, in); err != nil {
		return err
	}
	l.reallocate(ctx)
	return nil
}

func (l *LedgerService) DeleteIncome(ctx context.Context, id uuid.UUID) {
	l.store.DeleteIncome(ctx, id)
	l.reallocate(ctx)
}

// Investments do not affect the balance and never trigger allocation.

func (l *LedgerService) AddInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	return l.store.AddInvestment(ctx, inv)
}

func (l *LedgerService) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	return l.store.UpdateInvestment(ctx, inv)
}

func (l *LedgerService) DeleteInvestment(ctx context.Context, id uuid.UUID) {
	l.store.DeleteInvestment(ctx, id)
}

// Subscriptions

func (l *LedgerService) AddSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	created, err := l.store.AddSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, err
	}
	l.materializeAndAllocate(ctx)
	return created, nil
}

func (l *LedgerService) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	if err := l.store.UpdateSubscription(ctx, sub); err != nil {
		return err
	}
	l.materializeAndAllocate(ctx)
	return nil
}

// DeleteSubscription keeps the expenses already generated from it.
func (l *LedgerService) DeleteSubscription(ctx context.Context, id uuid.UUID) {
	l.store.DeleteSubscription(ctx, id)
}

func (l *LedgerService) materializeAndAllocate(ctx context.Context) {
	now := l.Now()
	if l.materializer.Materialize(ctx, now) > 0 {
		l.allocator.Allocate(ctx, now)
	}
}

// Saving goals

func (l *LedgerService) AddSavingGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	created, err := l.store.AddSavingGoal(ctx, g)
	if err != nil {
		return core.SavingGoal{}, err
	}
	l.reallocate(ctx)
	return created, nil
}

func (l *LedgerService) UpdateSavingGoal(ctx context.Context, g core.SavingGoal, opts ...UpdateOption) error {
	var cfg updateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := l.store.UpdateSavingGoal(ctx, g); err != nil {
		return err
	}
	if !cfg.skipReallocation {
		l.reallocate(ctx)
	}
	return nil
}

func (l *LedgerService) DeleteSavingGoal(ctx context.Context, id uuid.UUID) {
	l.store.DeleteSavingGoal(ctx, id)
	l.reallocate(ctx)
}

// Manual P/L overrides

// AddManualPL replaces any override of the same month.
func (l *LedgerService) AddManualPL(ctx context.Context, m core.ManualPL) (core.ManualPL, error) {
	return l.store.AddManualPL(ctx, m)
}

// UpdateManualPL replaces an override by id, dropping any other override of
// its new month.
func (l *LedgerService) UpdateManualPL(ctx context.Context, m core.ManualPL) error {
	return l.store.UpdateManualPL(ctx, m)
}

func (l *LedgerService) DeleteManualPL(ctx context.Context, id uuid.UUID) {
	l.store.DeleteManualPL(ctx, id)
}

// Categories

func (l *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	return l.store.AddCategory(ctx, c)
}

func (l *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	return l.store.UpdateCategory(ctx, c)
}

func (l *LedgerService) DeleteCategory(ctx context.Context, id uuid.UUID) {
	l.store.DeleteCategory(ctx, id)
}

// CategoryFor resolves a category reference; false means Uncategorized.
func (l *LedgerService) CategoryFor(id *uuid.UUID) (core.Category, bool) {
	return l.store.CategoryFor(id)
}

// ExpenseCount returns how many expenses reference the category.
func (l *LedgerService) ExpenseCount(categoryID uuid.UUID) int {
	n := 0
	for _, e := range l.store.Expenses() {
		if e.CategoryID != nil && *e.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// Settings

// UpdateSettings applies new settings and re-runs materialization and
// allocation, since period boundaries may have moved.
func (l *LedgerService) UpdateSettings(ctx context.Context, s core.Settings) error {
	if err := l.store.UpdateSettings(ctx, s); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	now := l.Now()
	l.materializer.Materialize(ctx, now)
	l.allocator.Allocate(ctx, now)
	return nil
}

// Backup

func (l *LedgerService) Export(ctx context.Context) ([]byte, error) {
	return l.store.Export(ctx)
}

// Import replaces all data with blob and refreshes derived state.
func (l *LedgerService) Import(ctx context.Context, blob []byte) error {
	if err := l.store.Import(ctx, blob); err != nil {
		return err
	}
	_, err := l.Refresh(ctx)
	return err
}
