package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"pocketbook/internal/cli"
	"pocketbook/internal/core"
	"pocketbook/internal/services"
)

type addExpenseCmd struct {
	amount   string
	date     string
	comment  string
	category string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense" }
func (*addExpenseCmd) Usage() string {
	return `ledgerctl add-expense -amount <amount> [-date <yyyy-mm-dd>] [-comment <text>] [-category <name>]

  Records an expense and reallocates the period surplus to saving goals.
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "The amount, with either '.' or ',' as decimal separator.")
	f.StringVar(&c.date, "date", "", "The expense date (defaults to today).")
	f.StringVar(&c.comment, "comment", "", "A free-form note.")
	f.StringVar(&c.category, "category", "", "The category name (case-insensitive).")
}

func (c *addExpenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(e *env, l *cli.Ledger) error {
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", c.amount, err)
		}
		date, err := parseDate(c.date, l.Now())
		if err != nil {
			return err
		}
		categoryID, err := findCategory(l, c.category)
		if err != nil {
			return err
		}

		added, err := l.AddExpense(ctx, core.Expense{
			Amount:     amount,
			Date:       date,
			Comment:    c.comment,
			CategoryID: categoryID,
		})
		if err != nil {
			return err
		}
		snap := l.BalanceSnapshot(l.Now())
		fmt.Printf("Added expense %s. %s\n", added.ID, snap.Message)
		return nil
	})
}

type addIncomeCmd struct {
	amount  string
	date    string
	monthly bool
}

func (*addIncomeCmd) Name() string     { return "add-income" }
func (*addIncomeCmd) Synopsis() string { return "record an income" }
func (*addIncomeCmd) Usage() string {
	return `ledgerctl add-income -amount <amount> [-date <yyyy-mm-dd>] [-monthly]
`
}

func (c *addIncomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "The amount, with either '.' or ',' as decimal separator.")
	f.StringVar(&c.date, "date", "", "The income date (defaults to today).")
	f.BoolVar(&c.monthly, "monthly", false, "Mark the income as a recurring salary.")
}

func (c *addIncomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(e *env, l *cli.Ledger) error {
		amount, err := core.ParseAmount(c.amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", c.amount, err)
		}
		date, err := parseDate(c.date, l.Now())
		if err != nil {
			return err
		}
		added, err := l.AddIncome(ctx, core.Income{Amount: amount, Date: date, IsMonthly: c.monthly})
		if err != nil {
			return err
		}
		snap := l.BalanceSnapshot(l.Now())
		fmt.Printf("Added income %s. Balance %s\n", added.ID, services.FormatAmount(snap.Balance, snap.Currency))
		return nil
	})
}

// parseDate reads yyyy-mm-dd in now's location; empty means now.
func parseDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

func findCategory(l *cli.Ledger, name string) (*uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	for _, c := range l.Store().Categories() {
		if strings.EqualFold(c.Name, name) {
			id := c.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q", name)
}
