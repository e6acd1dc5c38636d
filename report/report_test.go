package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/report"
	"github.com/warp/deposit-engine/wallet"
)

func date(s string) generic.TimePoint { return generic.MustParseTimePoint(s) }

// runWallet simulates two deposits for two years.
func runWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w := wallet.MustNew(wallet.DefaultConfig(date("2023-01-01")))
	_, err := w.Lock(deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 24))
	require.NoError(t, err)
	_, err = w.Lock(deposit.Quarterly("stub", 3000, date("2023-02-01"), 0.03, 7))
	require.NoError(t, err)
	w.Ticks(731)
	return w
}

func TestMoney(t *testing.T) {
	s := report.Money(generic.NewAmountFromDecimal(generic.MustParseDecimal("10046.254"), generic.CurrencyEUR))
	assert.Contains(t, s, "046.25")
	assert.Contains(t, s, "€")

	assert.Contains(t, report.Money(generic.NewAmount(12.5, generic.CurrencyUSD)), "$")
	assert.Equal(t, "-", report.Signed(generic.EUR(0)))
	assert.True(t, strings.HasPrefix(report.Signed(generic.EUR(3)), "+"))
	assert.True(t, strings.HasPrefix(report.Signed(generic.EUR(-3)), "-"))
}

func TestWalletSummary(t *testing.T) {
	w := runWallet(t)
	md := report.WalletSummary(w.Snapshot())

	assert.Contains(t, md, "## Wallet from 2023-01-01 to 2025-01-01")
	assert.Contains(t, md, "Total gain")
	assert.Contains(t, md, "net gain in 731 days from 2 locked sums.")
}

func TestInstrumentReports(t *testing.T) {
	l := deposit.MustNew(deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 12))
	l.Ticks(90)

	info := report.InstrumentInfo(l.Snapshot())
	assert.Contains(t, info, "Report for locked sum 'bp'")
	assert.Contains(t, info, "1 quarterly periods (0.25 years) ago")
	assert.Contains(t, info, "100.46% of initial")

	snap := l.Mature()
	mat := report.MaturitySummary(snap)
	assert.Contains(t, mat, "Start date: 2023-01-01 - end date: 2024-01-01")
	assert.Contains(t, mat, "Total taxes paid")
}

func TestInstrumentTotals_MatchWallet(t *testing.T) {
	w := runWallet(t)
	totals := report.InstrumentTotals(w.Ledger())
	require.Len(t, totals, 2)

	for _, tot := range totals {
		inst, ok := w.Instrument(tot.Name)
		require.True(t, ok)
		snap := inst.Snapshot()
		assert.True(t, snap.Principal.Equal(tot.Injected), tot.Name)
		assert.True(t, snap.TotalGain.Equal(tot.Gain), tot.Name)
		assert.True(t, snap.TotalPaid.Equal(tot.Paid), tot.Name)
		assert.Equal(t, snap.Periods, tot.Periods, tot.Name)
	}
	assert.Equal(t, "bp", totals[0].Name, "first appearance order")
}

func TestLedgerTable_Limit(t *testing.T) {
	w := runWallet(t)
	entries := w.Ledger()
	require.Greater(t, len(entries), 5)

	md := report.LedgerTable(entries, 5)
	assert.Contains(t, md, "| # | Date | Source | Kind | Amount | Balance |")
	assert.Contains(t, md, "more entries not shown")
	assert.Equal(t, "_The ledger is empty._\n", report.LedgerTable(nil, 0))
}

func TestDocument_RendersEverywhere(t *testing.T) {
	w := runWallet(t)
	run := generic.Run{
		ID:          "run-1",
		Scenario:    "two-deposits",
		Description: "Quarterly deposit with a stub",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Horizon:     w.TotalTicks(),
		Summary:     w.Snapshot(),
		Advisories:  w.Advisories(),
	}
	require.NotEmpty(t, run.Advisories)

	md := report.Document(run, w.Ledger(), 0)
	assert.Contains(t, md, "# Simulation two-deposits")
	assert.Contains(t, md, "### Advisories")
	assert.Contains(t, md, "won't gain interests")

	html, err := report.HTMLPage("two-deposits", md)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "<title>two-deposits</title>")

	term, err := report.Terminal(md, "notty")
	require.NoError(t, err)
	assert.Contains(t, term, "Wallet from")

	pdf, err := report.PDF(run, w.Ledger())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
