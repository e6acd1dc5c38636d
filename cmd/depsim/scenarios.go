package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/warp/deposit-engine/factory"
)

type scenariosCmd struct{}

func (*scenariosCmd) Name() string           { return "scenarios" }
func (*scenariosCmd) Synopsis() string       { return "list the built-in scenarios" }
func (*scenariosCmd) Usage() string          { return "depsim scenarios\n" }
func (*scenariosCmd) SetFlags(*flag.FlagSet) {}

func (*scenariosCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	all, err := factory.Builtins()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString("| ID | Name | Start | Deposits | Description |\n")
	b.WriteString("|---|---|---|---:|---|\n")
	for _, sc := range all {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
			sc.ID, sc.Name, sc.Wallet.StartDate, len(sc.Instruments), sc.Description)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
