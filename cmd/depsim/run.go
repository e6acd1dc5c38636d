package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/report"
)

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	scenario scenarioFlags
	format   string
	limit    int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "simulate a scenario and print its report" }
func (*runCmd) Usage() string {
	return `depsim run (-scenario <id> | -file <path>) [-horizon <days>] [-format terminal|markdown|html] [-limit <rows>]

  Runs the scenario day by day and prints the wallet summary, the
  per-deposit totals, the advisories and the ledger.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.scenario.register(f)
	f.StringVar(&c.format, "format", "terminal", "Output format: terminal, markdown or html.")
	f.IntVar(&c.limit, "limit", 20, "Ledger rows to show, 0 for all.")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sim, err := c.scenario.simulate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	run := sim.Record("", time.Now())
	md := report.Document(run, sim.Wallet.Ledger(), c.limit)

	switch c.format {
	case "terminal":
		printMarkdown(md)
	case "markdown":
		fmt.Fprint(stdout, md)
	case "html":
		page, err := report.HTMLPage(run.Scenario, md)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		stdout.Write(page)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	out, err := report.Terminal(md, *style)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
