/*
Package report renders simulation results for people.

PURPOSE:
  Every report is first produced as Markdown, which is readable as-is and
  is then rendered for the target medium:
    - Terminal: glamour (ANSI styled)
    - HTML:     goldmark (GitHub-flavored tables)
    - PDF:      fpdf, drawn directly from the same data

REPORTS:
  WalletSummary:   Gains, taxes and net result of a wallet
  InstrumentInfo:  One deposit: term, periods, current vs initial amount
  MaturitySummary: One deposit after Mature(): start/end, initial/final, taxes
  LedgerTable:     The ledger as a Markdown table
  Document:        A full run: summary, per-instrument totals, advisories, ledger

SEE ALSO:
  - money.go: Currency formatting via go-money
  - render.go: Terminal and HTML renderers
  - pdf.go: PDF report
*/
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// WALLET
// =============================================================================

// WalletSummary reports gross gain, taxes paid and net gain over the
// simulated days.
func WalletSummary(s generic.WalletSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Wallet from %s to %s\n\n", s.StartDate, s.CurrentDate)
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total gain | %s |\n", Money(s.TotalGain))
	fmt.Fprintf(&b, "| Total paid | %s |\n", Money(s.TotalPaid.Neg()))
	fmt.Fprintf(&b, "| **Net gain** | **%s** |\n", Money(s.NetGain()))
	fmt.Fprintf(&b, "| Injected | %s |\n", Money(s.Injected))
	fmt.Fprintf(&b, "| Balance | %s |\n", Money(s.Balance))
	fmt.Fprintf(&b, "| Return on injected | %s |\n\n", Pct(generic.Percent(s.NetGain(), s.Injected)))
	fmt.Fprintf(&b, "%s net gain in %d days from %d locked sums.\n",
		Money(s.NetGain()), s.Ticks, s.Instruments)
	return b.String()
}

// =============================================================================
// INSTRUMENTS
// =============================================================================

// InstrumentInfo describes one deposit at its current date.
func InstrumentInfo(s generic.InstrumentSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Report for locked sum '%s'\n\n", s.Name)
	fmt.Fprintf(&b, "- Days total: %d, started on %s, %d %s periods (%s years) ago\n",
		s.MaxTicks, s.Term.Start, s.Periods, s.Period, decimal.NewFromFloat(s.Years()).StringFixed(2))
	fmt.Fprintf(&b, "- Rate: %s, ends on %s, next accrual %s\n",
		Pct(s.Rate.Mul(decimal.NewFromInt(100))), s.Term.End, s.NextAccrual)
	fmt.Fprintf(&b, "- %s initial amount\n", Money(s.Principal))
	fmt.Fprintf(&b, "- %s current amount, %s of initial\n",
		Money(s.Balance), Pct(generic.Percent(s.Balance, s.Principal)))
	if s.Expired {
		b.WriteString("- Expired\n")
	}
	return b.String()
}

// MaturitySummary reports a matured deposit.
func MaturitySummary(s generic.InstrumentSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s at maturity\n\n", s.Name)
	fmt.Fprintf(&b, "Start date: %s - end date: %s\n\n", s.Term.Start, s.CurrentDate)
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Initial amount | %s |\n", Money(s.Principal))
	fmt.Fprintf(&b, "| Final amount | %s |\n", Money(s.Balance))
	fmt.Fprintf(&b, "| Gross gain | %s |\n", Money(s.TotalGain))
	fmt.Fprintf(&b, "| Total taxes paid | %s |\n", Money(s.TotalPaid.Neg()))
	return b.String()
}

// InstrumentTotal is an instrument's contribution reconstructed from ledger
// rows, used where only the exported ledger is available.
type InstrumentTotal struct {
	Name      string
	Injected  generic.Amount
	Gain      generic.Amount
	Paid      generic.Amount
	Periods   int
	Ticks     int
	FirstDate generic.TimePoint
	LastDate  generic.TimePoint
}

// Net is what the instrument added to the pool beyond its principal.
func (t InstrumentTotal) Net() generic.Amount { return t.Gain.Sub(t.Paid) }

// InstrumentTotals groups ledger rows by instrument, in order of first
// appearance. Wallet operations are skipped.
func InstrumentTotals(entries []generic.Entry) []InstrumentTotal {
	var (
		out   []InstrumentTotal
		index = map[string]int{}
	)
	for _, e := range entries {
		if e.IsWalletOperation() {
			continue
		}
		i, ok := index[e.Source]
		if !ok {
			zero := e.Amount.Zero()
			out = append(out, InstrumentTotal{Name: e.Source, Injected: zero, Gain: zero, Paid: zero, FirstDate: e.Date})
			i = len(out) - 1
			index[e.Source] = i
		}
		t := &out[i]
		switch e.Kind {
		case generic.EntryActivation:
			t.Injected = t.Injected.Add(e.Amount)
		case generic.EntryGain:
			t.Gain = t.Gain.Add(e.Amount)
		case generic.EntryTax:
			t.Paid = t.Paid.Sub(e.Amount)
		}
		if e.InstrumentPeriods != nil {
			t.Periods = *e.InstrumentPeriods
		}
		t.Ticks = *e.InstrumentTicks
		t.LastDate = e.Date
	}
	return out
}

// InstrumentTable renders InstrumentTotals.
func InstrumentTable(totals []InstrumentTotal) string {
	if len(totals) == 0 {
		return "_No instruments contributed._\n"
	}
	var b strings.Builder
	b.WriteString("| Instrument | Injected | Gain | Paid | Net | Periods | Last event |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---|\n")
	for _, t := range totals {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s |\n",
			t.Name, Money(t.Injected), Money(t.Gain), Money(t.Paid.Neg()), Money(t.Net()), t.Periods, t.LastDate)
	}
	return b.String()
}

// =============================================================================
// LEDGER & ADVISORIES
// =============================================================================

// LedgerTable renders entries as a Markdown table. limit <= 0 means all.
func LedgerTable(entries []generic.Entry, limit int) string {
	if len(entries) == 0 {
		return "_The ledger is empty._\n"
	}
	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	b.WriteString("| # | Date | Source | Kind | Amount | Balance |\n")
	b.WriteString("|---:|---|---|---|---:|---:|\n")
	for _, e := range shown {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			e.ID, e.Date, e.Source, e.Kind, Signed(e.Amount), Money(e.Balance))
	}
	if len(shown) < len(entries) {
		fmt.Fprintf(&b, "\n_%d more entries not shown._\n", len(entries)-len(shown))
	}
	return b.String()
}

// AdvisoryList renders advisories as a bullet list.
func AdvisoryList(advs []generic.Advisory) string {
	if len(advs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("### Advisories\n\n")
	for _, a := range advs {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	return b.String()
}

// =============================================================================
// FULL DOCUMENT
// =============================================================================

// Document is the complete report of an exported run.
func Document(run generic.Run, entries []generic.Entry, ledgerLimit int) string {
	var b strings.Builder
	title := run.Scenario
	if title == "" {
		title = run.ID
	}
	fmt.Fprintf(&b, "# Simulation %s\n\n", title)
	if run.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", run.Description)
	}
	b.WriteString(WalletSummary(run.Summary))
	b.WriteString("\n## Instruments\n\n")
	b.WriteString(InstrumentTable(InstrumentTotals(entries)))
	if advs := AdvisoryList(run.Advisories); advs != "" {
		b.WriteString("\n")
		b.WriteString(advs)
	}
	b.WriteString("\n## Ledger\n\n")
	b.WriteString(LedgerTable(entries, ledgerLimit))
	return b.String()
}
