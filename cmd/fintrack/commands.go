package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/render"
	"fintrack/internal/services"
)

// withRuntime opens the store, runs fn and releases the backend.
func (a *app) withRuntime(ctx context.Context, fn func(*cli.Runtime) subcommands.ExitStatus) subcommands.ExitStatus {
	rt, err := a.open(ctx)
	if err != nil {
		return a.fail("%v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.Logger.Warn("Failed to close backend", "error", err)
		}
	}()
	return fn(rt)
}

func (a *app) snapshot(ctx context.Context, rt *cli.Runtime, months int) services.Snapshot {
	return services.NewDashboardService(rt.Store, nil, rt.Logger).Snapshot(ctx, months, time.Now())
}

type listCmd struct {
	app   *app
	query string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list transactions, newest first" }
func (*listCmd) Usage() string {
	return `list [-q <text>]

  Lists transactions. With -q only those whose merchant or category contains
  the text (ignoring case) are shown.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Filter by merchant or category")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		var b strings.Builder
		render.Transactions(&b, services.NewTransactionService(rt.Store).List(c.query), strings.TrimSpace(c.query), rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}

type addCmd struct {
	app *app
	in  services.DraftInput
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new transaction dated today" }
func (*addCmd) Usage() string {
	return `add -merchant <name> -amount <amount> -category <name> [-status paid|pending|failed] [-type income|expense]

  Records a transaction. The amount accepts a dot or a comma as decimal
  separator and must be greater than zero. Status defaults to paid and type
  to expense.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.Merchant, "merchant", "", "Merchant or payer (required)")
	f.StringVar(&c.in.Amount, "amount", "", "Amount, e.g. 12.50 (required)")
	f.StringVar(&c.in.Category, "category", "", "Category (required)")
	f.StringVar(&c.in.Status, "status", "", "paid, pending or failed")
	f.StringVar(&c.in.Type, "type", "", "income or expense")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, err := c.in.Draft(); err != nil {
		fmt.Fprintf(c.app.errOut(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		tx, err := services.NewTransactionService(rt.Store).Create(ctx, c.in)
		if err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(c.app.errOut(), "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
			return c.app.fail("%v", err)
		}
		var b strings.Builder
		render.Added(&b, tx, rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}

type deleteCmd struct {
	app *app
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete transactions by id" }
func (*deleteCmd) Usage() string {
	return `delete <id>...

  Deletes the transactions with the given ids. Unknown ids are reported and
  otherwise ignored.
`
}

func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids := f.Args()
	if len(ids) == 0 {
		fmt.Fprintln(c.app.errOut(), "Error: at least one transaction id is required.")
		return subcommands.ExitUsageError
	}
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		missing := services.NewTransactionService(rt.Store).Delete(ctx, ids...)
		for _, id := range missing {
			fmt.Fprintf(c.app.errOut(), "No transaction with id %q\n", id)
		}
		fmt.Fprintf(c.app.out(), "Deleted %d transaction(s)\n", len(ids)-len(missing))
		return subcommands.ExitSuccess
	})
}

type summaryCmd struct {
	app *app
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show total income, expenses, balance and savings rate" }
func (*summaryCmd) Usage() string {
	return `summary

  Displays lifetime totals over every transaction.
`
}

func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		var b strings.Builder
		render.Summary(&b, c.app.snapshot(ctx, rt, rt.Config.MonthWindow).Totals, rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}

// checkMonths validates an explicitly given -months flag. An absent flag
// leaves months at zero, which selects the configured window.
func checkMonths(f *flag.FlagSet, months int) error {
	set := false
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "months" {
			set = true
		}
	})
	if set && (months < 1 || months > services.MaxMonthWindow) {
		return fmt.Errorf("-months must be between 1 and %d, got %d", services.MaxMonthWindow, months)
	}
	return nil
}

type monthlyCmd struct {
	app    *app
	months int
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "show income and expenses per month" }
func (*monthlyCmd) Usage() string {
	return fmt.Sprintf(`monthly [-months <n>]

  Displays income and expenses for the last n calendar months ending with the
  current one (1 to %d, default $MONTH_WINDOW).
`, services.MaxMonthWindow)
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "months", 0, "Number of months (default $MONTH_WINDOW)")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkMonths(f, c.months); err != nil {
		fmt.Fprintf(c.app.errOut(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		months := services.ClampMonths(c.months, rt.Config.MonthWindow)
		var b strings.Builder
		render.Monthly(&b, c.app.snapshot(ctx, rt, months).Monthly, rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}

type categoriesCmd struct {
	app *app
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "show spending per category" }
func (*categoriesCmd) Usage() string {
	return `categories

  Displays expenses grouped by category, largest first, with each category's
  share of total spending.
`
}

func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		var b strings.Builder
		render.Categories(&b, c.app.snapshot(ctx, rt, rt.Config.MonthWindow).Categories, rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}

type dashboardCmd struct {
	app    *app
	months int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show summary, monthly series and categories together" }
func (*dashboardCmd) Usage() string {
	return fmt.Sprintf(`dashboard [-months <n>]

  Displays every report at once. The monthly series covers n months
  (1 to %d, default $MONTH_WINDOW).
`, services.MaxMonthWindow)
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "months", 0, "Number of months in the monthly series (default $MONTH_WINDOW)")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkMonths(f, c.months); err != nil {
		fmt.Fprintf(c.app.errOut(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return c.app.withRuntime(ctx, func(rt *cli.Runtime) subcommands.ExitStatus {
		months := services.ClampMonths(c.months, rt.Config.MonthWindow)
		var b strings.Builder
		render.Dashboard(&b, c.app.snapshot(ctx, rt, months), rt.Config.Currency)
		c.app.printMarkdown(b.String())
		return subcommands.ExitSuccess
	})
}
