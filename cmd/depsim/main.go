/*
depsim - Command line front-end of the deposit projection engine

PURPOSE:
  Runs scenarios on the terminal: reports rendered with glamour, ledgers as
  JSON or CSV (optionally filtered with JSONPath), exports into SQLite and
  PDF reports.

COMMANDS:
  run        Simulate a scenario and print its report
  mature     Mature a single deposit and print its summary
  ledger     Print a scenario's ledger as JSON or CSV
  export     Write a run and its ledger into a SQLite database
  pdf        Write a run's PDF report
  scenarios  List the built-in scenarios

GLOBAL FLAGS:
  -v       Log engine events (activations, accruals, levies, flat taxes)
  -style   glamour style for terminal output (auto, dark, light, notty)

SHELL COMPLETION:
  Completion is served by the binary itself (posener/complete):
    COMP_INSTALL=1 depsim     # install for the current shell
    COMP_UNINSTALL=1 depsim   # remove

EXAMPLES:
  depsim run -scenario ladder
  depsim run -file my-portfolio.yaml -horizon 730
  depsim ledger -scenario single -query '$[?(@.kind=="gain")]'
  depsim ledger -scenario bond-mix -format csv > ledger.csv
  depsim export -scenario ladder -db runs.db
  depsim mature -principal 10000 -rate 2.5 -months 72

SEE ALSO:
  - factory/scenario.go: Scenario files
  - report/: Markdown, terminal, HTML and PDF renderers
*/
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/warp/deposit-engine/factory"
)

// as a CLI application, it has a very short lived lifecycle, so globals are fine.

var (
	verbose = flag.Bool("v", false, "Log engine events to stderr")
	style   = flag.String("style", "auto", "Terminal style: auto, dark, light or notty")
)

// stdout is replaced in tests.
var stdout io.Writer = os.Stdout

func commands() []subcommands.Command {
	return []subcommands.Command{
		&runCmd{},
		&matureCmd{},
		&ledgerCmd{},
		&exportCmd{},
		&pdfCmd{},
		&scenariosCmd{},
	}
}

func main() {
	name := path.Base(os.Args[0])
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	var ids predict.Set
	if all, err := factory.Builtins(); err == nil {
		for _, sc := range all {
			ids = append(ids, sc.ID)
		}
	}
	scenarioFlags := map[string]complete.Predictor{
		"scenario": ids,
		"file":     predict.Or(predict.Files("*.yaml"), predict.Files("*.yml"), predict.Files("*.json")),
		"horizon":  predict.Something,
	}
	with := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		out := make(map[string]complete.Predictor, len(scenarioFlags)+len(extra))
		for k, v := range scenarioFlags {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"run": {Flags: with(map[string]complete.Predictor{
				"format": predict.Set{"terminal", "markdown", "html"},
				"limit":  predict.Something,
			})},
			"mature": {Flags: map[string]complete.Predictor{
				"name":        predict.Something,
				"principal":   predict.Something,
				"start":       predict.Something,
				"rate":        predict.Something,
				"compounding": predict.Set{"quarterly", "annual"},
				"months":      predict.Something,
			}},
			"ledger": {Flags: with(map[string]complete.Predictor{
				"query":  predict.Something,
				"format": predict.Set{"json", "csv"},
			})},
			"export": {Flags: with(map[string]complete.Predictor{
				"db": predict.Files("*.db"),
				"id": predict.Something,
			})},
			"pdf": {Flags: with(map[string]complete.Predictor{
				"o": predict.Files("*.pdf"),
			})},
			"scenarios": {},
			"help":      {Args: predict.Set{"run", "mature", "ledger", "export", "pdf", "scenarios"}},
		},
		Flags: map[string]complete.Predictor{
			"v":     predict.Nothing,
			"style": predict.Set{"auto", "dark", "light", "notty"},
		},
	}
}

// engineLogger is the logger handed to wallets and deposits.
func engineLogger() *slog.Logger {
	if !*verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
