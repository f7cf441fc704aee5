package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cli"
	"pocketbook/internal/services"
)

type watchCmd struct{}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print balance snapshots as they are published" }
func (*watchCmd) Usage() string {
	return `ledgerctl watch

  Consumes the balance snapshot queue until interrupted.
`
}
func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (*watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if !e.cfg.NotificationsEnabled() {
		fmt.Fprintln(os.Stderr, "notifications disabled - set AMQP_URL")
		return subcommands.ExitFailure
	}

	client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPQueue, e.logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(e.logger)
	defer cancel()

	err = client.ConsumeBalanceSnapshots(ctx, func(msg *amqp.BalanceSnapshotMessage) error {
		s := msg.Snapshot
		fmt.Printf("%s  %s  %s  %s\n",
			msg.PublishedAt.Format("2006-01-02 15:04:05"),
			s.PeriodKey,
			services.FormatAmount(s.Balance, s.Currency),
			s.Message)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
