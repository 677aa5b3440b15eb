package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/core"
)

type watchCmd struct {
	app *app
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "print transaction changes published on AMQP" }
func (*watchCmd) Usage() string {
	return `watch

  Follows the change events other fintrack processes publish to $AMQP_URL
  and prints one line per event until interrupted.
`
}

func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := c.app.config()
	if err != nil {
		return c.app.fail("%v", err)
	}
	if cfg.AMQPURL == "" {
		fmt.Fprintln(c.app.errOut(), "Error: AMQP_URL is not set.")
		return subcommands.ExitUsageError
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		return c.app.fail("%v", err)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(ctx, logger)
	defer cancel()

	err = client.Watch(ctx, func(e core.ChangeEvent) error {
		_, err := fmt.Fprintf(c.app.out(), "%s %s %s %s %s (%d total)\n",
			e.OccurredAt.Format("2006-01-02 15:04:05"), e.Kind, e.Transaction.ID,
			e.Transaction.Merchant, e.Transaction.Amount.Format(cfg.Currency), e.Count)
		return err
	})
	if err != nil && ctx.Err() == nil {
		return c.app.fail("%v", err)
	}
	return subcommands.ExitSuccess
}
