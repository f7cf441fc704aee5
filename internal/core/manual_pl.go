package core

import (
	"github.com/google/uuid"
)

const (
	// DirectOverride replaces the month's profit/loss with a single figure.
	DirectOverride OverrideMode = "direct"
	// DerivedOverride replaces income and expenses; profit/loss is their difference.
	DerivedOverride OverrideMode = "derived"
)

type (
	OverrideMode string

	// ManualPL replaces the computed figures of one (Month, Year).
	// When ProfitLoss is set the entry is a direct override and wins over
	// Income/Expenses even if both happen to be populated.
	ManualPL struct {
		ID          uuid.UUID `json:"id"`
		Month       int       `json:"month"`
		Year        int       `json:"year"`
		ProfitLoss  *float64  `json:"profitLoss,omitempty"`
		Income      *float64  `json:"income,omitempty"`
		Expenses    *float64  `json:"expenses,omitempty"`
		Investments float64   `json:"investments"`
		Note        string    `json:"note,omitempty"`
	}
)

// NewDirectPL builds a direct profit/loss override.
func NewDirectPL(month, year int, profitLoss, investments float64, note string) ManualPL {
	return ManualPL{
		ID:          uuid.New(),
		Month:       month,
		Year:        year,
		ProfitLoss:  &profitLoss,
		Investments: investments,
		Note:        note,
	}
}

// NewDerivedPL builds an override from income and expenses.
func NewDerivedPL(month, year int, income, expenses, investments float64, note string) ManualPL {
	return ManualPL{
		ID:          uuid.New(),
		Month:       month,
		Year:        year,
		Income:      &income,
		Expenses:    &expenses,
		Investments: investments,
		Note:        note,
	}
}

func (m ManualPL) Mode() OverrideMode {
	if m.ProfitLoss != nil {
		return DirectOverride
	}
	return DerivedOverride
}

func (m ManualPL) EffectiveIncome() float64 {
	if m.Income == nil {
		return 0
	}
	return *m.Income
}

func (m ManualPL) EffectiveExpenses() float64 {
	if m.Expenses == nil {
		return 0
	}
	return *m.Expenses
}

func (m ManualPL) EffectiveProfitLoss() float64 {
	if m.ProfitLoss != nil {
		return *m.ProfitLoss
	}
	return m.EffectiveIncome() - m.EffectiveExpenses()
}

// SamePeriod reports whether both entries target the same (Month, Year).
func (m ManualPL) SamePeriod(o ManualPL) bool {
	return m.Month == o.Month && m.Year == o.Year
}

func (m ManualPL) Validate() error {
	if m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	if m.Year < 1 {
		return ErrInvalidYear
	}
	for _, v := range []*float64{m.ProfitLoss, m.Income, m.Expenses} {
		if v == nil {
			continue
		}
		if err := validateAmount(*v); err != nil {
			return err
		}
	}
	return validateAmount(m.Investments)
}
