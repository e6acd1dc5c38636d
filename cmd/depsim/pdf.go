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

// pdfCmd holds the flags for the 'pdf' subcommand.
type pdfCmd struct {
	scenario scenarioFlags
	out      string
}

func (*pdfCmd) Name() string     { return "pdf" }
func (*pdfCmd) Synopsis() string { return "write a run's PDF report" }
func (*pdfCmd) Usage() string {
	return `depsim pdf (-scenario <id> | -file <path>) [-horizon <days>] [-o <file.pdf>]
`
}

func (c *pdfCmd) SetFlags(f *flag.FlagSet) {
	c.scenario.register(f)
	f.StringVar(&c.out, "o", "", "Output file. Defaults to <scenario id>.pdf.")
}

func (c *pdfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sim, err := c.scenario.simulate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	run := sim.Record("", time.Now())
	data, err := report.PDF(run, sim.Wallet.Ledger())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	out := c.out
	if out == "" {
		out = run.Scenario + ".pdf"
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", out, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", out, len(data))
	return subcommands.ExitSuccess
}
