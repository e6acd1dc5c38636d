package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/report"
)

// matureCmd holds the flags for the 'mature' subcommand.
type matureCmd struct {
	name        string
	principal   float64
	start       string
	rate        float64
	compounding string
	months      int
}

func (*matureCmd) Name() string     { return "mature" }
func (*matureCmd) Synopsis() string { return "run a single deposit to maturity and print its summary" }
func (*matureCmd) Usage() string {
	return `depsim mature [-name <name>] [-principal <amount>] [-start <date>] [-rate <percent>] [-compounding quarterly|annual] [-months <n>]

  Ticks one deposit to its end date and prints what it paid and earned.
  -rate is a percentage: 2.5 means 2.5% a year.
`
}

func (c *matureCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", deposit.DefaultName, "Deposit name.")
	f.Float64Var(&c.principal, "principal", 10000, "Principal locked on the start date.")
	f.StringVar(&c.start, "start", generic.Today().String(), "Start date (YYYY-MM-DD).")
	f.Float64Var(&c.rate, "rate", 2.5, "Nominal annual rate in percent.")
	f.StringVar(&c.compounding, "compounding", "quarterly", "Compounding period: quarterly or annual.")
	f.IntVar(&c.months, "months", 72, "Duration in months.")
}

func (c *matureCmd) config() (deposit.Config, error) {
	start, err := generic.ParseTimePoint(c.start)
	if err != nil {
		return deposit.Config{}, fmt.Errorf("invalid -start: %w", err)
	}
	period, err := generic.ParseCompoundingPeriod(c.compounding)
	if err != nil {
		return deposit.Config{}, fmt.Errorf("invalid -compounding: %w", err)
	}
	return deposit.Config{
		Name:           c.name,
		Principal:      generic.NewAmount(c.principal, generic.DefaultCurrency),
		StartDate:      start,
		Rate:           generic.NewRate(c.rate / 100),
		Period:         period,
		DurationMonths: c.months,
	}, nil
}

func (c *matureCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	l, err := deposit.New(cfg, deposit.WithLogger(engineLogger()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	snap := l.Mature()

	var b strings.Builder
	b.WriteString(report.MaturitySummary(snap))
	b.WriteString("\n")
	b.WriteString(report.InstrumentInfo(snap))
	if advs := report.AdvisoryList(l.Advisories()); advs != "" {
		b.WriteString("\n")
		b.WriteString(advs)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
