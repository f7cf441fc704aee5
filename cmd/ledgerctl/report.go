package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"pocketbook/internal/cli"
	"pocketbook/internal/core"
	"pocketbook/internal/services"
)

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show the balance of the current budget period" }
func (*balanceCmd) Usage() string {
	return `ledgerctl balance

  Prints income, expenses and balance of the current period, the
  spending by category and the progress of every saving goal.
`
}
func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ *env, l *cli.Ledger) error {
		snap := l.BalanceSnapshot(l.Now())
		writeBalance(os.Stdout, snap, l.Statistics().ExpensesByCategory(l.Now()))
		return nil
	})
}

func writeBalance(out io.Writer, snap core.BalanceSnapshot, byCategory []core.CategoryAmount) {
	cur := snap.Currency
	fmt.Fprintf(out, "Period %s (since %s)\n", snap.PeriodKey, snap.PeriodStart.Format("2006-01-02"))
	fmt.Fprintf(out, "%s\n\n", snap.Message)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Income\t%s\t\n", services.FormatAmount(snap.Income, cur))
	fmt.Fprintf(tw, "Expenses\t%s\t\n", services.FormatAmount(snap.Expenses, cur))
	fmt.Fprintf(tw, "Balance\t%s\t\n", services.FormatAmount(snap.Balance, cur))
	tw.Flush()

	if len(byCategory) > 0 {
		fmt.Fprintln(out, "\nBy category")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, c := range byCategory {
			fmt.Fprintf(tw, "%s\t%s\t\n", c.Name, services.FormatAmount(c.Amount, cur))
		}
		tw.Flush()
	}

	if len(snap.Goals) > 0 {
		fmt.Fprintln(out, "\nGoals")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, g := range snap.Goals {
			fmt.Fprintf(tw, "%s\t%.0f%%\t%s left\t%d days\n",
				g.Name, g.Progress*100, services.FormatAmount(g.Remaining, cur), g.DaysRemaining)
		}
		tw.Flush()
	}
}

type statsCmd struct {
	year int
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show monthly and yearly profit and loss" }
func (*statsCmd) Usage() string {
	return `ledgerctl stats [-year <year>]

  Prints one row per month and the year's totals. Manual profit/loss
  entries override the derived figures of their month.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "The year to report (defaults to the current year).")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ *env, l *cli.Ledger) error {
		year := c.year
		if year == 0 {
			year = l.Now().Year()
		}
		stats := l.Statistics()
		cur := l.Store().Settings().CurrencyCode()
		writeStats(os.Stdout, stats.YearlyStats(year), stats.MonthlyStats(year), cur)
		return nil
	})
}

func writeStats(out io.Writer, year core.YearlyStats, months []core.MonthlyStats, cur string) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tIncome\tExpenses\tInvestments\tP/L\t\t")
	for _, m := range months {
		marker := ""
		if m.Manual {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", m.MonthName(),
			services.FormatAmount(m.Income, cur),
			services.FormatAmount(m.Expenses, cur),
			services.FormatAmount(m.Investments, cur),
			services.FormatAmount(m.ProfitLoss, cur),
			marker)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t%s\t\t\n",
		services.FormatAmount(year.TotalIncome, cur),
		services.FormatAmount(year.TotalExpenses, cur),
		services.FormatAmount(year.TotalInvestments, cur),
		services.FormatAmount(year.TotalProfitLoss, cur))
	tw.Flush()

	if year.MonthsWithData == 0 {
		fmt.Fprintf(out, "\nNo data for %d\n", year.Year)
		return
	}
	fmt.Fprintf(out, "\nAverage monthly P/L: %s\n", services.FormatAmount(year.AverageMonthlyPL, cur))
	fmt.Fprintf(out, "P/L excluding investments: %s\n", services.FormatAmount(year.TotalProfitLossWithoutInvestments, cur))
	fmt.Fprintf(out, "Best month: %s (%s)\n", year.BestMonthName(), services.FormatAmount(year.BestMonthPL, cur))
	fmt.Fprintf(out, "Worst month: %s (%s)\n", year.WorstMonthName(), services.FormatAmount(year.WorstMonthPL, cur))
}
