package core

import (
	"github.com/google/uuid"
)

// Snapshot is the full state handed to and received from the persistence hook.
type Snapshot struct {
	Expenses      []Expense      `json:"expenses"`
	Incomes       []Income       `json:"incomes"`
	Investments   []Investment   `json:"investments"`
	Subscriptions []Subscription `json:"subscriptions"`
	SavingGoals   []SavingGoal   `json:"savingGoals"`
	ManualPLs     []ManualPL     `json:"manualPLs"`
	Categories    []Category     `json:"categories"`
	Settings      Settings       `json:"settings"`
	LastPeriodKey string         `json:"lastPeriodKey,omitempty"`
}

// EmptySnapshot has no records and default settings.
func EmptySnapshot() Snapshot {
	return Snapshot{Settings: DefaultSettings()}
}

// Clone returns a copy that shares no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Expenses = append([]Expense(nil), s.Expenses...)
	out.Incomes = append([]Income(nil), s.Incomes...)
	out.Investments = append([]Investment(nil), s.Investments...)
	out.Subscriptions = append([]Subscription(nil), s.Subscriptions...)
	out.ManualPLs = append([]ManualPL(nil), s.ManualPLs...)
	out.Categories = append([]Category(nil), s.Categories...)
	out.SavingGoals = make([]SavingGoal, len(s.SavingGoals))
	for i, g := range s.SavingGoals {
		g.MonthlyContributions = g.MonthlyContributions.Clone()
		out.SavingGoals[i] = g
	}
	return out
}

// DefaultCategories is the starter set seeded on first run.
func DefaultCategories() []Category {
	seed := []struct {
		name  string
		color Color
	}{
		{"Food", Color{Red: 1, Green: 0.58, Blue: 0, Alpha: 1}},
		{"Transportation", Color{Red: 0, Green: 0.48, Blue: 1, Alpha: 1}},
		{"Shopping", Color{Red: 0.69, Green: 0.32, Blue: 0.87, Alpha: 1}},
		{"Entertainment", Color{Red: 0.2, Green: 0.78, Blue: 0.35, Alpha: 1}},
		{"Bills", Color{Red: 1, Green: 0.23, Blue: 0.19, Alpha: 1}},
		{"Other", Color{Red: 0.56, Green: 0.56, Blue: 0.58, Alpha: 1}},
	}
	out := make([]Category, len(seed))
	for i, c := range seed {
		out[i] = Category{ID: uuid.New(), Name: c.name, Color: c.color}
	}
	return out
}
