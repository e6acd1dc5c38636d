package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/generic"
)

// ledgerCmd holds the flags for the 'ledger' subcommand.
type ledgerCmd struct {
	scenario scenarioFlags
	query    string
	format   string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "print a scenario's ledger as JSON or CSV" }
func (*ledgerCmd) Usage() string {
	return `depsim ledger (-scenario <id> | -file <path>) [-horizon <days>] [-query <jsonpath>] [-format json|csv]

  Runs the scenario and prints every ledger row. Rows use the column names
  of the SQLite export (op_id, name, kind, operation, currday, totalticks,
  quarter, totalpaid, totalgain, wallet_amount, ...).

  -query filters the rows with a JSONPath expression evaluated on the array
  of rows, for example:
    $[?(@.kind=="gain")]
    $[?(@.name=="bp-2023" && @.operation < 0)]
    $[-1:].wallet_amount
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	c.scenario.register(f)
	f.StringVar(&c.query, "query", "", "JSONPath expression applied to the array of rows.")
	f.StringVar(&c.format, "format", "json", "Output format: json or csv.")
}

func (c *ledgerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "csv" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	sim, err := c.scenario.simulate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records := generic.Records(sim.Wallet.Ledger())

	var result any = records
	if c.query != "" {
		if result, err = queryLedger(records, c.query); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	if c.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	rows, err := asRecords(result)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := writeCSV(stdout, rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// queryLedger evaluates a JSONPath expression on the JSON form of records.
func queryLedger(records []generic.Record, query string) (any, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(query, doc)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", query, err)
	}
	return v, nil
}

// asRecords converts a query result back into rows. A single row is
// accepted as a one-row result.
func asRecords(v any) ([]generic.Record, error) {
	if records, ok := v.([]generic.Record); ok {
		return records, nil
	}
	if m, ok := v.(map[string]any); ok {
		v = []any{m}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var records []generic.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("query result is not a list of ledger rows, use -format json")
	}
	return records, nil
}

func writeCSV(w io.Writer, records []generic.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(generic.RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
