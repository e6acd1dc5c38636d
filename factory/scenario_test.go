package factory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/factory"
	"github.com/warp/deposit-engine/generic"
)

const ladderYAML = `
id: test-ladder
name: Test ladder
horizon_days: 400
wallet:
  start_date: 2023-01-01
  exemption_threshold: 1000
instruments:
  - name: a
    principal: 10000
    rate: 2.5%
    compounding: quarterly
    duration_months: 12
  - name: b
    principal: 2000
    start_date: 2023-02-01
    rate: 0.04
    compounding: "12"
    duration_months: 24
`

func TestParse_YAML(t *testing.T) {
	sc, err := factory.Parse([]byte(ladderYAML), factory.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "test-ladder", sc.ID)
	assert.Equal(t, 400, sc.HorizonDays)
	require.Len(t, sc.Instruments, 2)
	assert.Equal(t, 0.025, sc.Instruments[0].Rate, "percentages are converted")
	assert.Equal(t, 0.04, sc.Instruments[1].Rate)

	wcfg, err := sc.WalletConfig()
	require.NoError(t, err)
	assert.Equal(t, "34.20", wcfg.FlatTax.Value.StringFixed(2), "flat tax defaults")
	assert.Equal(t, generic.YearEnd, wcfg.FlatTaxAnchor)
	assert.Equal(t, "1000", wcfg.ExemptionThreshold.Value.String())

	first, err := sc.InstrumentConfig(0)
	require.NoError(t, err)
	assert.Equal(t, generic.Quarterly, first.Period)
	assert.Equal(t, generic.MustParseTimePoint("2023-01-01"), first.StartDate, "start defaults to the wallet's")

	second, err := sc.InstrumentConfig(1)
	require.NoError(t, err)
	assert.Equal(t, generic.Annual, second.Period)
	assert.Equal(t, generic.MustParseTimePoint("2023-02-01"), second.StartDate)
}

func TestParse_JSON(t *testing.T) {
	data := `{
		"id": "json",
		"wallet": {"start_date": "2023-01-01", "flat_tax": 10, "flat_tax_day": 30, "flat_tax_month": 6},
		"instruments": [{"name": "x", "principal": 500, "rate": 0.03, "compounding": "annual", "duration_months": 12}]
	}`

	sc, err := factory.Parse([]byte(data), factory.FormatJSON)
	require.NoError(t, err)

	wcfg, err := sc.WalletConfig()
	require.NoError(t, err)
	assert.Equal(t, "10", wcfg.FlatTax.Value.String())
	assert.Equal(t, generic.Anchor{Day: 30, Month: time.June}, wcfg.FlatTaxAnchor)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		target error
	}{
		{
			name:   "bad compounding",
			data:   "wallet: {start_date: 2023-01-01}\ninstruments: [{name: x, principal: 1, rate: 0.01, compounding: monthly, duration_months: 12}]",
			target: generic.ErrConfiguration,
		},
		{
			name:   "zero principal",
			data:   "wallet: {start_date: 2023-01-01}\ninstruments: [{name: x, principal: 0, rate: 0.01, compounding: annual, duration_months: 12}]",
			target: generic.ErrConfiguration,
		},
		{
			name:   "missing wallet start",
			data:   "instruments: []",
			target: generic.ErrConfiguration,
		},
		{
			name:   "impossible anchor",
			data:   "wallet: {start_date: 2023-01-01, flat_tax_day: 30, flat_tax_month: 2}",
			target: generic.ErrConfiguration,
		},
		{
			name: "duplicate names",
			data: "wallet: {start_date: 2023-01-01}\ninstruments:\n" +
				"  - {name: x, principal: 1, rate: 0.01, compounding: annual, duration_months: 12}\n" +
				"  - {name: x, principal: 2, rate: 0.01, compounding: annual, duration_months: 12}",
			target: generic.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Parse([]byte(tt.data), factory.FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestLoadFile_IDFromFileName(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "my-plan.yml")
	require.NoError(t, os.WriteFile(p, []byte("wallet: {start_date: 2024-01-01}\ninstruments: []\n"), 0o644))

	sc, err := factory.LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "my-plan", sc.ID)
}

// =============================================================================
// BUILD & RUN
// =============================================================================

func TestBuild_RunsToMaturityByDefault(t *testing.T) {
	// GIVEN: The built-in single-deposit scenario (no horizon)
	// WHEN: It is built and run
	// THEN: The run lasts until the deposit expires, and the pool matches the ledger
	sc, err := factory.Lookup("single")
	require.NoError(t, err)

	sim, err := sc.Build()
	require.NoError(t, err)

	inst, ok := sim.Wallet.Instrument("bp-2023")
	require.True(t, ok)
	assert.Equal(t, inst.Snapshot().MaxTicks+1, sim.Horizon)

	snap, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, inst.Expired())
	assert.Equal(t, 24, inst.Snapshot().Periods)
	assert.Equal(t, sim.Horizon, snap.Ticks)

	sum := generic.SumEntries(sim.Wallet.Ledger(), generic.DefaultCurrency)
	assert.True(t, sum.Equal(snap.Balance))
}

func TestBuild_ExplicitHorizon(t *testing.T) {
	sc, err := factory.Parse([]byte(ladderYAML), factory.FormatYAML)
	require.NoError(t, err)

	sim, err := sc.Build()
	require.NoError(t, err)
	assert.Equal(t, 400, sim.Horizon)

	snap, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 400, snap.Ticks)
	assert.Equal(t, generic.MustParseTimePoint("2024-02-05"), snap.CurrentDate)

	// Running again is a no-op once the horizon is reached.
	again, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestRun_Canceled(t *testing.T) {
	sc, err := factory.Lookup("ladder")
	require.NoError(t, err)
	sim, err := sc.Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecord(t *testing.T) {
	sc, err := factory.Lookup("ladder")
	require.NoError(t, err)
	sim, err := sc.Build()
	require.NoError(t, err)
	_, err = sim.Run(context.Background())
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	run := sim.Record("", now)

	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err, "generated IDs are UUIDs")
	assert.Equal(t, "ladder", run.Scenario)
	assert.Equal(t, now, run.CreatedAt)
	assert.Equal(t, sim.Wallet.Snapshot(), run.Summary)
	assert.NotEmpty(t, run.Advisories, "rung-3 has a trailing stub")

	assert.Equal(t, "fixed", sim.Record("fixed", now).ID)
}

// =============================================================================
// BUILT-INS
// =============================================================================

func TestBuiltins(t *testing.T) {
	all, err := factory.Builtins()
	require.NoError(t, err)

	var ids []string
	for _, sc := range all {
		ids = append(ids, sc.ID)
		_, err := sc.Build()
		assert.NoError(t, err, sc.ID)
	}
	assert.Equal(t, []string{"bond-mix", "ladder", "single"}, ids)
}

func TestLookup_NotFound(t *testing.T) {
	_, err := factory.Lookup("nope")
	assert.ErrorIs(t, err, generic.ErrScenarioNotFound)
	assert.True(t, generic.IsNotFound(err))
}
