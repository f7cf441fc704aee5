package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"pocketbook/internal/cli"
	"pocketbook/internal/services"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "roll periods over, materialize subscriptions and reallocate" }
func (*refreshCmd) Usage() string {
	return `ledgerctl refresh

  Runs the same refresh the worker runs on every tick and publishes the
  balance snapshot when notifications are enabled.
`
}
func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ *env, l *cli.Ledger) error {
		snap, err := l.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", snap.PeriodKey, services.FormatAmount(snap.Balance, snap.Currency))
		return nil
	})
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the whole ledger as JSON" }
func (*exportCmd) Usage() string {
	return `ledgerctl export [-o <file>]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (defaults to stdout).")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ *env, l *cli.Ledger) error {
		blob, err := l.Export(ctx)
		if err != nil {
			return err
		}
		if c.output == "" {
			_, err = os.Stdout.Write(append(blob, '\n'))
			return err
		}
		if err := os.WriteFile(c.output, blob, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", c.output, err)
		}
		return nil
	})
}

type importCmd struct {
	input string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the ledger with a JSON export" }
func (*importCmd) Usage() string {
	return `ledgerctl import -i <file|->

  Replaces every collection and the settings. A blob that fails to
  decode leaves the ledger untouched.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Input file, or - for stdin.")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(_ *env, l *cli.Ledger) error {
		var (
			blob []byte
			err  error
		)
		switch c.input {
		case "":
			return errors.New("missing -i")
		case "-":
			blob, err = io.ReadAll(os.Stdin)
		default:
			blob, err = os.ReadFile(c.input)
		}
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		return l.Import(ctx, blob)
	})
}

type syncSheetsCmd struct {
	year int
}

func (*syncSheetsCmd) Name() string     { return "sync-sheets" }
func (*syncSheetsCmd) Synopsis() string { return "export a year of statistics to Google Sheets" }
func (*syncSheetsCmd) Usage() string {
	return `ledgerctl sync-sheets [-year <year>]

  Requires GOOGLE_SPREADSHEET_ID and service account credentials.
`
}

func (c *syncSheetsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "The year to export (defaults to the current year).")
}

func (c *syncSheetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(e *env, l *cli.Ledger) error {
		if !e.cfg.SheetsEnabled() {
			return errors.New("sheets export disabled: set GOOGLE_SPREADSHEET_ID")
		}
		year := c.year
		if year == 0 {
			year = l.Now().Year()
		}
		return l.ExportYear(ctx, l.Backend.Stats, year)
	})
}
