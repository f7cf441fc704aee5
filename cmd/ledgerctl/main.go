// Command ledgerctl inspects and edits a pocketbook ledger from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"pocketbook/internal/cli"
	"pocketbook/internal/config"
	"pocketbook/internal/log"
)

var commands = []subcommands.Command{
	&balanceCmd{},
	&statsCmd{},
	&addExpenseCmd{},
	&addIncomeCmd{},
	&refreshCmd{},
	&exportCmd{},
	&importCmd{},
	&syncSheetsCmd{},
	&watchCmd{},
}

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// env is what every command needs before touching the ledger.
type env struct {
	cfg    *config.Config
	logger *log.Logger
}

func loadEnv() (*env, error) {
	// keep stdout readable unless asked otherwise
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

// withLedger opens the ledger, runs fn and closes the backend again.
func withLedger(ctx context.Context, fn func(*env, *cli.Ledger) error) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ledger, err := cli.OpenLedger(ctx, e.cfg, e.logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer ledger.Close()

	if err := fn(e, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
