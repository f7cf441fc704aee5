package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

// Ports for outbound adapters.
type (
	// StatsWriter exports a year of statistics to an external spreadsheet.
	StatsWriter interface {
		WriteYearlyStats(ctx context.Context, year core.YearlyStats, months []core.MonthlyStats) error
	}
)

// Header is the first row of every exported stats sheet.
var Header = []any{"Month", "Income", "Expenses", "Investments", "Profit/Loss", "Manual"}

// StatsRows lays out a year as a header, one row per month, then totals,
// averages and the best and worst months. Amounts are fixed two-decimal
// strings so USER_ENTERED input parses them as numbers in any locale.
func StatsRows(year core.YearlyStats, months []core.MonthlyStats) [][]any {
	rows := make([][]any, 0, len(months)+5)
	rows = append(rows, Header)
	for _, m := range months {
		manual := ""
		if m.Manual {
			manual = "yes"
		}
		rows = append(rows, []any{
			m.MonthName(),
			Amount(m.Income),
			Amount(m.Expenses),
			Amount(m.Investments),
			Amount(m.ProfitLoss),
			manual,
		})
	}
	rows = append(rows,
		[]any{"Total", Amount(year.TotalIncome), Amount(year.TotalExpenses), Amount(year.TotalInvestments), Amount(year.TotalProfitLoss), ""},
		[]any{"Average", "", "", "", Amount(year.AverageMonthlyPL), ""},
		[]any{"Profit/Loss excl. investments", "", "", "", Amount(year.TotalProfitLossWithoutInvestments), ""},
		[]any{"Best month", year.BestMonthName(), "", "", Amount(year.BestMonthPL), ""},
		[]any{"Worst month", year.WorstMonthName(), "", "", Amount(year.WorstMonthPL), ""},
	)
	return rows
}

// Amount renders v with exactly two decimals.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
