// Package services holds the ledger's business logic: subscription
// materialization, statistics, goal allocation and the LedgerService facade
// that wires them to the store.
//
// Subscription deduplication is a Strategy: each window policy decides from
// when an existing subscription expense counts as "already charged".
package services

import (
	"fmt"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/period"
)

// WindowPolicy names a deduplication window.
type WindowPolicy string

const (
	// BudgetPeriodWindow dedups within the configured budget period.
	BudgetPeriodWindow WindowPolicy = "budgetPeriod"
	// CalendarMonthWindow dedups within the plain calendar month of now.
	CalendarMonthWindow WindowPolicy = "calendarMonth"
)

// DedupWindow returns the instant from which an existing subscription
// expense suppresses a new one, and the date the new expense gets.
type DedupWindow interface {
	Start(now time.Time, s core.Settings) time.Time
}

type BudgetPeriod struct{}

func (BudgetPeriod) Start(now time.Time, s core.Settings) time.Time {
	return period.Start(now, s)
}

type CalendarMonth struct{}

func (CalendarMonth) Start(now time.Time, _ core.Settings) time.Time {
	start, _ := period.CalendarMonth(now.Year(), now.Month(), now.Location())
	return start
}

var windowStrategies = map[WindowPolicy]DedupWindow{
	BudgetPeriodWindow:  BudgetPeriod{},
	CalendarMonthWindow: CalendarMonth{},
}

// GetDedupWindow returns the strategy registered for policy.
func GetDedupWindow(policy WindowPolicy) (DedupWindow, error) {
	w, ok := windowStrategies[policy]
	if !ok {
		return nil, fmt.Errorf("unknown dedup window: %s", policy)
	}
	return w, nil
}
