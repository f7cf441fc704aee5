package core

import (
	"time"

	"github.com/google/uuid"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	CategoryID *uuid.UUID
	Name       string
	Amount     float64
}

// MonthlyStats summarises one calendar month. When Manual is true the
// figures come from a ManualPL override instead of the stored transactions.
type MonthlyStats struct {
	Year        int
	Month       int // 1-12
	Income      float64
	Expenses    float64
	Investments float64
	ProfitLoss  float64
	Manual      bool
}

// MonthName returns the English month name.
func (m MonthlyStats) MonthName() string {
	if m.Month < 1 || m.Month > 12 {
		return "N/A"
	}
	return time.Month(m.Month).String()
}

// HasData reports whether the month takes part in yearly averages.
func (m MonthlyStats) HasData() bool {
	return m.Income > 0 || m.Expenses > 0 || m.ProfitLoss != 0
}

// YearlyStats aggregates the twelve MonthlyStats of a year.
type YearlyStats struct {
	Year                               int
	TotalIncome                        float64
	TotalExpenses                      float64
	TotalInvestments                   float64
	TotalProfitLoss                    float64
	TotalProfitLossWithoutInvestments  float64
	AverageMonthlyPL                   float64
	AverageMonthlyPLWithoutInvestments float64
	MonthsWithData                     int
	BestMonth                          int
	BestMonthPL                        float64
	WorstMonth                         int
	WorstMonthPL                       float64
}

func (y YearlyStats) BestMonthName() string {
	return MonthlyStats{Month: y.BestMonth}.MonthName()
}

func (y YearlyStats) WorstMonthName() string {
	return MonthlyStats{Month: y.WorstMonth}.MonthName()
}

// GoalProgress is the read-only view of a dated goal used by reminders.
type GoalProgress struct {
	GoalID        uuid.UUID `json:"goalId"`
	Name          string    `json:"name"`
	Progress      float64   `json:"progress"`
	Provisional   float64   `json:"provisional"`
	Remaining     float64   `json:"remaining"`
	DaysRemaining int       `json:"daysRemaining"`
}

// BalanceSnapshot is what notification consumers receive after a refresh.
type BalanceSnapshot struct {
	PeriodKey   string         `json:"periodKey"`
	PeriodStart time.Time      `json:"periodStart"`
	Balance     float64        `json:"balance"`
	Income      float64        `json:"income"`
	Expenses    float64        `json:"expenses"`
	Currency    string         `json:"currency"`
	Goals       []GoalProgress `json:"goals,omitempty"`
	Message     string         `json:"message"`
	Timestamp   time.Time      `json:"timestamp"`
}

// PeriodGroup holds the expenses of one budget period.
type PeriodGroup struct {
	Label    string
	Start    time.Time
	Expenses []Expense
	Total    float64
}
