package wallet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/wallet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func date(s string) generic.TimePoint { return generic.MustParseTimePoint(s) }

func newWallet(t *testing.T, start string) *wallet.Wallet {
	t.Helper()
	w, err := wallet.New(wallet.DefaultConfig(date(start)))
	require.NoError(t, err)
	return w
}

func lock(t *testing.T, w *wallet.Wallet, cfg deposit.Config) *deposit.Locked {
	t.Helper()
	l, err := w.Lock(cfg)
	require.NoError(t, err)
	return l
}

func assertConserved(t *testing.T, w *wallet.Wallet) {
	t.Helper()
	entries := w.Ledger()
	sum := generic.SumEntries(entries, generic.DefaultCurrency)
	assert.True(t, sum.Equal(w.Balance()), "ledger sum %s != balance %s", sum, w.Balance())

	expected := w.Injected().Add(w.TotalGain()).Sub(w.TotalPaid())
	assert.True(t, expected.Equal(w.Balance()), "injected+gain-paid %s != balance %s", expected, w.Balance())
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	w := newWallet(t, "2023-01-01")

	cfg := w.Config()
	assert.Equal(t, "34.20", cfg.FlatTax.Value.StringFixed(2))
	assert.Equal(t, generic.YearEnd, cfg.FlatTaxAnchor)
	assert.Equal(t, "5000", cfg.ExemptionThreshold.Value.String())
	assert.True(t, w.Balance().IsZero())
	assert.Equal(t, date("2023-01-01"), w.CurrentDate())
	assert.Empty(t, w.Ledger())
}

func TestNew_InvalidConfiguration(t *testing.T) {
	_, err := wallet.New(wallet.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrConfiguration))

	cfg := wallet.DefaultConfig(date("2023-01-01"))
	cfg.FlatTaxAnchor = generic.Anchor{Day: 31, Month: 2}
	_, err = wallet.New(cfg)
	var cfgErr *generic.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "flat_tax_anchor", cfgErr.Field)
}

// =============================================================================
// INSTRUMENT SET
// =============================================================================

func TestAdd_DuplicateNameRejected(t *testing.T) {
	// GIVEN: A wallet holding "bp-2023"
	// WHEN: Another instrument named "bp-2023" is added
	// THEN: DuplicateNameError, and the wallet still holds only the first one
	w := newWallet(t, "2023-01-01")
	first := lock(t, w, deposit.Quarterly("bp-2023", 10000, date("2023-01-01"), 0.025, 72))

	second := deposit.MustNew(deposit.Annual("bp-2023", 500, date("2023-01-01"), 0.04, 12))
	err := w.Add(second)

	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrDuplicateName))
	var dupErr *generic.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "bp-2023", dupErr.Name)

	assert.Len(t, w.Instruments(), 1)
	got, ok := w.Instrument("bp-2023")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestLock_InvalidConfigNotAdded(t *testing.T) {
	w := newWallet(t, "2023-01-01")
	_, err := w.Lock(deposit.Config{Name: "bad", Principal: generic.EUR(100), StartDate: date("2023-01-01"), Period: 6, DurationMonths: 12})
	assert.True(t, errors.Is(err, generic.ErrConfiguration))
	assert.Empty(t, w.Instruments())
}

func TestRemove(t *testing.T) {
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("a", 1000, date("2023-01-01"), 0.02, 12))
	lock(t, w, deposit.Quarterly("b", 1000, date("2023-01-01"), 0.02, 12))
	lock(t, w, deposit.Quarterly("c", 1000, date("2023-01-01"), 0.02, 12))
	w.Ticks(10)
	balance := w.Balance()

	assert.True(t, w.Remove("b"))
	assert.False(t, w.Remove("b"), "removing twice is a no-op")

	names := []string{}
	for _, inst := range w.Instruments() {
		names = append(names, inst.Name())
	}
	assert.Equal(t, []string{"a", "c"}, names)
	assert.True(t, balance.Equal(w.Balance()), "removal does not touch the pool")

	// A removed instrument no longer contributes.
	w.Ticks(365)
	for _, e := range w.LedgerSince(3) {
		assert.NotEqual(t, "b", e.Source)
	}
	assertConserved(t, w)
}

// =============================================================================
// ACTIVATION
// =============================================================================

func TestTick_ActivationOnFirstInstrumentTick(t *testing.T) {
	// GIVEN: A wallet from 1 January and a deposit starting 11 January
	// WHEN: The wallet ticks
	// THEN: Nothing is pooled until the wallet reaches 11 January
	w := newWallet(t, "2023-01-01")
	l := lock(t, w, deposit.Quarterly("later", 10000, date("2023-01-11"), 0.025, 12))

	w.Ticks(9)
	assert.Equal(t, date("2023-01-10"), w.CurrentDate())
	assert.Equal(t, 0, l.TotalTicks(), "a future deposit is not ticked")
	assert.True(t, w.Balance().IsZero())
	assert.Empty(t, w.Ledger())

	w.Tick()
	entries := w.Ledger()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, generic.EntryActivation, e.Kind)
	assert.Equal(t, "later", e.Source)
	assert.Equal(t, date("2023-01-11"), e.Date)
	assert.Equal(t, 10, e.WalletTicks)
	require.NotNil(t, e.InstrumentTicks)
	assert.Equal(t, 1, *e.InstrumentTicks)
	assert.Equal(t, "10000", e.Amount.Value.String())
	assert.Equal(t, "10000", w.Balance().Value.String())
	assert.Equal(t, "10000", w.Injected().Value.String())

	// Activation happens once.
	w.Ticks(30)
	activations := 0
	for _, e := range w.Ledger() {
		if e.Kind == generic.EntryActivation {
			activations++
		}
	}
	assert.Equal(t, 1, activations)
}

func TestTick_AbsorbsTaxThenGain(t *testing.T) {
	// GIVEN: 10,000 quarterly at 2.5% from the wallet start
	// WHEN: The first accrual date is reached
	// THEN: A tax row (-16.25) then a gain row (+62.50) are logged
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 72))

	w.Ticks(90)
	entries := w.Ledger()
	require.Len(t, entries, 3)

	assert.Equal(t, generic.EntryActivation, entries[0].Kind)
	assert.Equal(t, generic.EntryTax, entries[1].Kind)
	assert.Equal(t, "-16.25", entries[1].Amount.Value.String())
	assert.Equal(t, "9983.75", entries[1].Balance.Value.String())
	assert.Equal(t, generic.EntryGain, entries[2].Kind)
	assert.Equal(t, "62.5", entries[2].Amount.Value.String())
	assert.Equal(t, "10046.25", entries[2].Balance.Value.String())

	for _, e := range entries[1:] {
		assert.Equal(t, date("2023-04-01"), e.Date)
		require.NotNil(t, e.InstrumentPeriods)
		assert.Equal(t, 1, *e.InstrumentPeriods)
		require.NotNil(t, e.InstrumentTotalGain)
		assert.Equal(t, "62.5", e.InstrumentTotalGain.Value.String())
	}
	assert.Equal(t, "16.25", w.PaidThisTick().Value.String())
	assert.Equal(t, "62.5", w.GainThisTick().Value.String())
	assertConserved(t, w)
}

// =============================================================================
// FLAT TAX
// =============================================================================

func TestTick_FlatTaxAboveThreshold(t *testing.T) {
	// GIVEN: A wallet pooling 10,000
	// WHEN: 31 December is reached
	// THEN: The wallet charges 34.20 as a wallet operation, before the instrument's levy
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 72))

	w.Ticks(363)
	before := w.Ledger()

	w.Tick()
	today := w.Ledger()[len(before):]
	require.Len(t, today, 2)

	flat := today[0]
	assert.Equal(t, generic.EntryFlatTax, flat.Kind)
	assert.Equal(t, generic.WalletSource, flat.Source)
	assert.True(t, flat.IsWalletOperation())
	assert.Nil(t, flat.InstrumentTicks)
	assert.Nil(t, flat.InstrumentPeriods)
	assert.Nil(t, flat.InstrumentTotalPaid)
	assert.Nil(t, flat.InstrumentTotalGain)
	assert.Equal(t, "-34.2", flat.Amount.Value.String())
	assert.Equal(t, date("2023-12-31"), flat.Date)

	levy := today[1]
	assert.Equal(t, generic.EntryTax, levy.Kind)
	assert.Equal(t, "bp", levy.Source)
	assertConserved(t, w)
}

func TestTick_FlatTaxExemptBelowThreshold(t *testing.T) {
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("small", 4000, date("2023-01-01"), 0.025, 72))

	w.Ticks(365 * 3)
	for _, e := range w.Ledger() {
		assert.NotEqual(t, generic.EntryFlatTax, e.Kind)
	}
	assertConserved(t, w)
}

func TestTick_FlatTaxExemptAtThreshold(t *testing.T) {
	// GIVEN: The threshold equals the balance held on 30 December
	// THEN: No flat tax is charged (balance must strictly exceed it)
	reference := newWallet(t, "2023-01-01")
	lock(t, reference, deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 72))
	reference.Ticks(363)

	cfg := wallet.DefaultConfig(date("2023-01-01"))
	cfg.ExemptionThreshold = reference.Balance()
	w, err := wallet.New(cfg)
	require.NoError(t, err)
	lock(t, w, deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 72))

	w.Ticks(364)
	for _, e := range w.Ledger() {
		assert.NotEqual(t, generic.EntryFlatTax, e.Kind)
	}
}

func TestTick_ZeroFlatTaxStillRecorded(t *testing.T) {
	// GIVEN: A wallet above the threshold with the flat tax set to zero
	// WHEN: 31 December is reached
	// THEN: Exactly one flat tax row of zero is written and the balance is unchanged by it
	cfg := wallet.DefaultConfig(date("2023-01-01"))
	cfg.FlatTax = generic.Zero(generic.DefaultCurrency)
	w, err := wallet.New(cfg)
	require.NoError(t, err)
	lock(t, w, deposit.Quarterly("bp", 10000, date("2023-01-01"), 0.025, 72))

	w.Ticks(364)

	var flat []generic.Entry
	for _, e := range w.Ledger() {
		if e.Kind == generic.EntryFlatTax {
			flat = append(flat, e)
		}
	}
	require.Len(t, flat, 1)
	assert.True(t, flat[0].Amount.IsZero())
	assert.Equal(t, date("2023-12-31"), flat[0].Date)
	assertConserved(t, w)
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestTick_ConservationAcrossPortfolio(t *testing.T) {
	// GIVEN: Three deposits with different periods, starts and a stub
	// WHEN: The wallet runs past all of their maturities
	// THEN: Balance equals the ledger sum, and IDs are dense
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("q", 10000, date("2023-01-01"), 0.025, 36))
	lock(t, w, deposit.Annual("a", 20000, date("2023-06-15"), 0.035, 30))
	lock(t, w, deposit.Quarterly("stub", 3000, date("2024-01-31"), 0.03, 7))

	for i := 0; i < 5*365; i++ {
		w.Tick()
		if i%97 == 0 {
			assertConserved(t, w)
		}
	}
	assertConserved(t, w)

	for i, e := range w.Ledger() {
		assert.Equal(t, i, e.ID)
	}
	assert.Len(t, w.Advisories(), 2, "the annual deposit and the stub both forfeit a tail")

	for _, inst := range w.Instruments() {
		assert.True(t, inst.Expired(), inst.Name())
	}

	// Expired instruments contribute nothing more.
	n := len(w.Ledger())
	balance := w.Balance()
	w.Ticks(30)
	assert.Len(t, w.Ledger(), n)
	assert.True(t, balance.Equal(w.Balance()))
}

func TestTicks_BatchEquivalence(t *testing.T) {
	build := func() *wallet.Wallet {
		w := newWallet(t, "2023-01-01")
		lock(t, w, deposit.Quarterly("q", 10000, date("2023-01-01"), 0.025, 24))
		lock(t, w, deposit.Annual("a", 7000, date("2023-03-01"), 0.03, 24))
		return w
	}

	batch := build()
	batch.Ticks(800)

	single := build()
	for i := 0; i < 800; i++ {
		single.Tick()
	}

	assert.Equal(t, batch.Snapshot(), single.Snapshot())
	assert.Equal(t, batch.Ledger(), single.Ledger())
}

func TestLedger_IsACopy(t *testing.T) {
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("q", 10000, date("2023-01-01"), 0.025, 24))
	w.Ticks(100)

	entries := w.Ledger()
	require.NotEmpty(t, entries)
	entries[0].Amount = generic.EUR(1)

	assert.Equal(t, "10000", w.Ledger()[0].Amount.Value.String())
}

func TestSnapshot_Counters(t *testing.T) {
	w := newWallet(t, "2023-01-01")
	lock(t, w, deposit.Quarterly("q", 10000, date("2023-01-01"), 0.025, 24))
	w.Ticks(365)

	snap := w.Snapshot()
	assert.Equal(t, 365, snap.Ticks)
	assert.Equal(t, date("2024-01-01"), snap.CurrentDate)
	assert.Equal(t, 1, snap.Instruments)
	assert.Equal(t, len(w.Ledger()), snap.Entries)
	assert.True(t, snap.Injected.Add(snap.NetGain()).Equal(snap.Balance))
}
