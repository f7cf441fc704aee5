package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
)

// Expenses

func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.state.Expenses...)
}

func (s *Store) Expense(id uuid.UUID) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findRecord(s.state.Expenses, id)
}

// AddExpense stores e, assigning an id when it has none.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	ensureID(&e.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses = append(s.state.Expenses, e)
	s.persistLocked(ctx)
	s.logger.DebugContext(ctx, "Expense added", log.FieldExpenseID, e.ID, log.FieldAmount, e.Amount)
	return e, nil
}

// AddExpenses appends a batch with a single save.
func (s *Store) AddExpenses(ctx context.Context, batch []core.Expense) ([]core.Expense, error) {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return nil, fmt.Errorf("add expenses: item %d: %w", i, err)
		}
		ensureID(&batch[i].ID)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses = append(s.state.Expenses, batch...)
	s.persistLocked(ctx)
	return batch, nil
}

// UpdateExpense replaces the expense with the same id. Unknown ids are ignored.
func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceRecord(s.state.Expenses, e) {
		s.persistLocked(ctx)
	}
	return nil
}

// UpdateExpenses replaces a batch with a single save.
func (s *Store) UpdateExpenses(ctx context.Context, batch []core.Expense) error {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return fmt.Errorf("update expenses: item %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, e := range batch {
		if replaceRecord(s.state.Expenses, e) {
			changed = true
		}
	}
	if changed {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Expenses)
	s.state.Expenses = removeRecord(s.state.Expenses, id)
	// persists even when nothing matched, keeping delete idempotent
	s.persistLocked(ctx)
	return len(s.state.Expenses) != n
}

// ConvertExpenseToInvestment removes the expense and adds an investment with
// the same amount, comment, date and category in one save.
func (s *Store) ConvertExpenseToInvestment(ctx context.Context, id uuid.UUID) (core.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := findRecord(s.state.Expenses, id)
	if !ok {
		return core.Investment{}, false
	}
	inv := core.ExpenseToInvestment(e)
	s.state.Expenses = removeRecord(s.state.Expenses, id)
	s.state.Investments = append(s.state.Investments, inv)
	s.persistLocked(ctx)
	return inv, true
}

// Incomes

func (s *Store) Incomes() []core.Income {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.state.Incomes...)
}

func (s *Store) Income(id uuid.UUID) (core.Income, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findRecord(s.state.Incomes, id)
}

func (s *Store) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	ensureID(&in.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Incomes = append(s.state.Incomes, in)
	s.persistLocked(ctx)
	s.logger.DebugContext(ctx, "Income added", log.FieldIncomeID, in.ID, log.FieldAmount, in.Amount)
	return in, nil
}

func (s *Store) UpdateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceRecord(s.state.Incomes, in) {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Store) DeleteIncome(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Incomes)
	s.state.Incomes = removeRecord(s.state.Incomes, id)
	s.persistLocked(ctx)
	return len(s.state.Incomes) != n
}

// Investments

func (s *Store) Investments() []core.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Investment(nil), s.state.Investments...)
}

func (s *Store) Investment(id uuid.UUID) (core.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findRecord(s.state.Investments, id)
}

func (s *Store) AddInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if err := inv.Validate(); err != nil {
		return core.Investment{}, fmt.Errorf("add investment: %w", err)
	}
	ensureID(&inv.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Investments = append(s.state.Investments, inv)
	s.persistLocked(ctx)
	return inv, nil
}

func (s *Store) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceRecord(s.state.Investments, inv) {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Store) DeleteInvestment(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Investments)
	s.state.Investments = removeRecord(s.state.Investments, id)
	s.persistLocked(ctx)
	return len(s.state.Investments) != n
}

// Subscriptions

func (s *Store) Subscriptions() []core.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Subscription(nil), s.state.Subscriptions...)
}

func (s *Store) Subscription(id uuid.UUID) (core.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findRecord(s.state.Subscriptions, id)
}

func (s *Store) AddSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("add subscription: %w", err)
	}
	ensureID(&sub.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Subscriptions = append(s.state.Subscriptions, sub)
	s.persistLocked(ctx)
	s.logger.DebugContext(ctx, "Subscription added", log.FieldSubscriptionID, sub.ID)
	return sub, nil
}

func (s *Store) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceRecord(s.state.Subscriptions, sub) {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Store) DeleteSubscription(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Subscriptions)
	s.state.Subscriptions = removeRecord(s.state.Subscriptions, id)
	s.persistLocked(ctx)
	return len(s.state.Subscriptions) != n
}

// Saving goals

func (s *Store) SavingGoals() []core.SavingGoal {
	return s.Snapshot().SavingGoals
}

func (s *Store) SavingGoal(id uuid.UUID) (core.SavingGoal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := findRecord(s.state.SavingGoals, id)
	g.MonthlyContributions = g.MonthlyContributions.Clone()
	return g, ok
}

func (s *Store) AddSavingGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingGoal{}, fmt.Errorf("add saving goal: %w", err)
	}
	ensureID(&g.ID)
	if g.MonthlyContributions == nil {
		g.MonthlyContributions = core.Contributions{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SavingGoals = append(s.state.SavingGoals, g)
	s.persistLocked(ctx)
	return g, nil
}

func (s *Store) UpdateSavingGoal(ctx context.Context, g core.SavingGoal) error {
	return s.UpdateSavingGoals(ctx, []core.SavingGoal{g})
}

// UpdateSavingGoals replaces a batch with a single save.
func (s *Store) UpdateSavingGoals(ctx context.Context, batch []core.SavingGoal) error {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return fmt.Errorf("update saving goals: item %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, g := range batch {
		g.MonthlyContributions = g.MonthlyContributions.Clone()
		if replaceRecord(s.state.SavingGoals, g) {
			changed = true
		}
	}
	if changed {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Store) DeleteSavingGoal(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.SavingGoals)
	s.state.SavingGoals = removeRecord(s.state.SavingGoals, id)
	s.persistLocked(ctx)
	return len(s.state.SavingGoals) != n
}

// Manual P/L overrides

func (s *Store) ManualPLs() []core.ManualPL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ManualPL(nil), s.state.ManualPLs...)
}

// ManualPLFor returns the override of a calendar month, if any.
func (s *Store) ManualPLFor(month, year int) (core.ManualPL, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return manualPLFor(s.state.ManualPLs, month, year)
}

func manualPLFor(items []core.ManualPL, month, year int) (core.ManualPL, bool) {
	for _, m := range items {
		if m.Month == month && m.Year == year {
			return m, true
		}
	}
	return core.ManualPL{}, false
}

// AddManualPL upserts by (Month, Year): an existing entry for the same month
// is removed and m is stored in its place under its own id.
func (s *Store) AddManualPL(ctx context.Context, m core.ManualPL) (core.ManualPL, error) {
	if err := m.Validate(); err != nil {
		return core.ManualPL{}, fmt.Errorf("add manual p/l: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&m.ID)
	kept := dropSamePeriod(removeRecord(s.state.ManualPLs, m.ID), m)
	s.state.ManualPLs = append(kept, m)
	s.persistLocked(ctx)
	return m, nil
}

// UpdateManualPL replaces the entry with m's id. When the new month already
// has another override, that one is dropped so each month keeps one entry.
func (s *Store) UpdateManualPL(ctx context.Context, m core.ManualPL) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("update manual p/l: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := findRecord(s.state.ManualPLs, m.ID); !ok {
		return nil
	}
	s.state.ManualPLs = dropSamePeriod(s.state.ManualPLs, m)
	replaceRecord(s.state.ManualPLs, m)
	s.persistLocked(ctx)
	return nil
}

// dropSamePeriod removes the entries for m's month other than m itself.
func dropSamePeriod(items []core.ManualPL, m core.ManualPL) []core.ManualPL {
	out := items[:0]
	for _, it := range items {
		if it.ID != m.ID && it.SamePeriod(m) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) DeleteManualPL(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.ManualPLs)
	s.state.ManualPLs = removeRecord(s.state.ManualPLs, id)
	s.persistLocked(ctx)
	return len(s.state.ManualPLs) != n
}

// Categories

func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.state.Categories...)
}

func (s *Store) Category(id uuid.UUID) (core.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findRecord(s.state.Categories, id)
}

// CategoryFor resolves a record's category reference. A nil or dangling
// reference reports false; callers display UncategorizedName.
func (s *Store) CategoryFor(id *uuid.UUID) (core.Category, bool) {
	if id == nil {
		return core.Category{}, false
	}
	return s.Category(*id)
}

// CategoryName is CategoryFor with the Uncategorized fallback applied.
func (s *Store) CategoryName(id *uuid.UUID) string {
	if c, ok := s.CategoryFor(id); ok {
		return c.Name
	}
	return UncategorizedName
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	ensureID(&c.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Categories = append(s.state.Categories, c)
	s.persistLocked(ctx)
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceRecord(s.state.Categories, c) {
		s.persistLocked(ctx)
	}
	return nil
}

// DeleteCategory removes the category only. Records that referenced it keep
// the dangling id and resolve to Uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Categories)
	s.state.Categories = removeRecord(s.state.Categories, id)
	s.persistLocked(ctx)
	return len(s.state.Categories) != n
}
