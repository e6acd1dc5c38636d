/*
Package wallet pools deposits into a single balance and keeps the ledger.

PURPOSE:
  A Wallet advances every instrument it holds by one day per Tick, in
  insertion order, and absorbs what they recognized that day: principal on
  their first tick, then taxes, then gross gains. It also charges its own
  flat tax once a year when the pooled balance is above the exemption
  threshold. Every cash movement becomes one ledger Entry.

TICK ORDER (one simulated day):
  1. Count the tick, advance the date, reset this tick's deltas
  2. Flat-tax anchor and balance > threshold? Charge the flat tax
  3. For each instrument, in insertion order:
       expired                         -> skip
       its date is after the wallet's  -> skip (starts in the future)
       otherwise Tick it, then absorb:
         first tick  -> activation (+principal)
         tax != 0    -> tax (-tax)
         gain != 0   -> gain (+gain)
  4. Re-index the ledger densely from 0

INVARIANT:
  Balance == sum of all ledger amounts
          == injected + total gain - total paid

EXAMPLE:
  w, _ := wallet.New(wallet.DefaultConfig(generic.MustParseTimePoint("2023-01-01")))
  _, _ = w.Lock(deposit.Quarterly("bp", 10000, w.CurrentDate(), 0.025, 72))
  w.Ticks(365 * 6)
  fmt.Println(w.Balance())

SEE ALSO:
  - deposit/locked.go: The instrument tick machine
  - generic/ledger.go: Entry and Ledger
  - report/: Summaries built from snapshots and the ledger
*/
package wallet

import (
	"log/slog"

	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// CONFIG
// =============================================================================

type Config struct {
	StartDate          generic.TimePoint
	FlatTax            generic.Amount
	FlatTaxAnchor      generic.Anchor
	ExemptionThreshold generic.Amount
}

// DefaultConfig is the Italian "imposta di bollo" setup: 34.20 every
// 31 December on balances above 5,000.
func DefaultConfig(start generic.TimePoint) Config {
	return Config{
		StartDate:          start,
		FlatTax:            generic.NewAmountFromDecimal(generic.MustParseDecimal("34.20"), generic.DefaultCurrency),
		FlatTaxAnchor:      generic.YearEnd,
		ExemptionThreshold: generic.NewAmount(5000, generic.DefaultCurrency),
	}
}

// Validate returns a *generic.ConfigurationError for the first bad field.
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return &generic.ConfigurationError{Field: "start_date", Value: c.StartDate, Reason: "is required"}
	}
	if c.FlatTax.IsNegative() {
		return &generic.ConfigurationError{Field: "flat_tax", Value: c.FlatTax.Value, Reason: "must not be negative"}
	}
	if !c.FlatTaxAnchor.Valid() {
		return &generic.ConfigurationError{Field: "flat_tax_anchor", Value: c.FlatTaxAnchor.String(), Reason: "not a calendar day"}
	}
	if c.ExemptionThreshold.IsNegative() {
		return &generic.ConfigurationError{Field: "exemption_threshold", Value: c.ExemptionThreshold.Value, Reason: "must not be negative"}
	}
	return nil
}

type Option func(*Wallet)

// WithLogger routes wallet events to logger. Instruments created through
// Lock share it.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wallet) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// =============================================================================
// WALLET
// =============================================================================

// Wallet is not safe for concurrent use.
type Wallet struct {
	cfg         Config
	instruments []Instrument
	state       state
	ledger      generic.Ledger
	logger      *slog.Logger
}

type state struct {
	currentDate  generic.TimePoint
	ticks        int
	balance      generic.Amount
	injected     generic.Amount
	totalPaid    generic.Amount
	totalGain    generic.Amount
	paidThisTick generic.Amount
	gainThisTick generic.Amount
}

// New builds an empty wallet. A zero FlatTaxAnchor means 31 December.
func New(cfg Config, opts ...Option) (*Wallet, error) {
	if cfg.FlatTaxAnchor == (generic.Anchor{}) {
		cfg.FlatTaxAnchor = generic.YearEnd
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cur := cfg.FlatTax.Currency
	if cur == "" {
		cur = generic.DefaultCurrency
	}
	zero := generic.Zero(cur)

	w := &Wallet{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		state: state{
			currentDate:  cfg.StartDate,
			balance:      zero,
			injected:     zero,
			totalPaid:    zero,
			totalGain:    zero,
			paidThisTick: zero,
			gainThisTick: zero,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *Wallet {
	w, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

// =============================================================================
// INSTRUMENT SET
// =============================================================================

// Add appends inst. A name already in use returns *generic.DuplicateNameError
// and leaves the wallet unchanged.
func (w *Wallet) Add(inst Instrument) error {
	if inst == nil {
		return &generic.ConfigurationError{Field: "instrument", Value: nil, Reason: "is required"}
	}
	if _, ok := w.Instrument(inst.Name()); ok {
		return &generic.DuplicateNameError{Name: inst.Name()}
	}
	w.instruments = append(w.instruments, inst)
	w.logger.Debug("instrument added", "instrument", inst.Name(), "start", inst.CurrentDate().String())
	return nil
}

// Lock builds a deposit sharing the wallet's logger and adds it.
func (w *Wallet) Lock(cfg deposit.Config) (*deposit.Locked, error) {
	l, err := deposit.New(cfg, deposit.WithLogger(w.logger))
	if err != nil {
		return nil, err
	}
	if err := w.Add(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Remove drops the named instrument and reports whether it was held.
// Amounts it already contributed stay in the pool and the ledger.
func (w *Wallet) Remove(name string) bool {
	for i, inst := range w.instruments {
		if inst.Name() == name {
			w.instruments = append(w.instruments[:i:i], w.instruments[i+1:]...)
			w.logger.Debug("instrument removed", "instrument", name)
			return true
		}
	}
	return false
}

// Instrument looks up an instrument by name.
func (w *Wallet) Instrument(name string) (Instrument, bool) {
	for _, inst := range w.instruments {
		if inst.Name() == name {
			return inst, true
		}
	}
	return nil, false
}

// Instruments returns the held instruments in insertion order.
func (w *Wallet) Instruments() []Instrument {
	out := make([]Instrument, len(w.instruments))
	copy(out, w.instruments)
	return out
}

// =============================================================================
// TICK
// =============================================================================

// Tick advances the wallet and every eligible instrument by one day.
func (w *Wallet) Tick() {
	s := &w.state
	s.ticks++
	s.currentDate = s.currentDate.AddDays(1)
	s.paidThisTick = s.paidThisTick.Zero()
	s.gainThisTick = s.gainThisTick.Zero()

	if w.cfg.FlatTaxAnchor.Matches(s.currentDate) && s.balance.GreaterThan(w.cfg.ExemptionThreshold) {
		w.chargeFlatTax()
	}

	for _, inst := range w.instruments {
		if inst.Expired() {
			continue
		}
		if inst.CurrentDate().After(s.currentDate) {
			continue
		}
		inst.Tick()
		w.absorb(inst)
	}

	w.ledger.Reindex()
}

// Ticks calls Tick n times.
func (w *Wallet) Ticks(n int) {
	for i := 0; i < n; i++ {
		w.Tick()
	}
}

func (w *Wallet) chargeFlatTax() {
	s := &w.state
	tax := w.cfg.FlatTax
	s.balance = s.balance.Sub(tax)
	s.paidThisTick = s.paidThisTick.Add(tax)
	s.totalPaid = s.totalPaid.Add(tax)
	w.record(generic.WalletSource, generic.EntryFlatTax, tax.Neg(), nil)

	w.logger.Info("flat tax",
		"amount", tax.Neg().Value, "balance", s.balance.Value, "date", s.currentDate.String())
}

func (w *Wallet) absorb(inst Instrument) {
	s := &w.state
	snap := inst.Snapshot()

	if inst.TotalTicks() == 1 {
		principal := inst.Principal()
		s.balance = s.balance.Add(principal)
		s.injected = s.injected.Add(principal)
		w.record(inst.Name(), generic.EntryActivation, principal, &snap)
		w.logger.Info("activation",
			"instrument", inst.Name(), "amount", principal.Value, "date", s.currentDate.String())
	}

	if tax := inst.PaidThisTick(); !tax.IsZero() {
		s.balance = s.balance.Sub(tax)
		s.paidThisTick = s.paidThisTick.Add(tax)
		s.totalPaid = s.totalPaid.Add(tax)
		w.record(inst.Name(), generic.EntryTax, tax.Neg(), &snap)
		w.logger.Debug("tax absorbed", "instrument", inst.Name(), "amount", tax.Neg().Value)
	}

	if gain := inst.GainThisTick(); !gain.IsZero() {
		s.balance = s.balance.Add(gain)
		s.gainThisTick = s.gainThisTick.Add(gain)
		s.totalGain = s.totalGain.Add(gain)
		w.record(inst.Name(), generic.EntryGain, gain, &snap)
		w.logger.Debug("gain absorbed", "instrument", inst.Name(), "amount", gain.Value)
	}
}

// record appends one row. inst is nil for wallet operations.
func (w *Wallet) record(source string, kind generic.EntryKind, amount generic.Amount, inst *generic.InstrumentSnapshot) {
	s := w.state
	e := generic.Entry{
		Source:          source,
		Kind:            kind,
		Amount:          amount,
		Date:            s.currentDate,
		WalletTicks:     s.ticks,
		WalletTotalPaid: s.totalPaid,
		WalletTotalGain: s.totalGain,
		Balance:         s.balance,
	}
	if inst != nil {
		ticks, periods := inst.Ticks, inst.Periods
		e.InstrumentTicks = &ticks
		e.InstrumentPeriods = &periods
		e.InstrumentTotalPaid = inst.TotalPaid.Ptr()
		e.InstrumentTotalGain = inst.TotalGain.Ptr()
	}
	w.ledger.Append(e)
}

// =============================================================================
// READ-ONLY ACCESSORS
// =============================================================================

func (w *Wallet) Config() Config                 { return w.cfg }
func (w *Wallet) StartDate() generic.TimePoint   { return w.cfg.StartDate }
func (w *Wallet) CurrentDate() generic.TimePoint { return w.state.currentDate }
func (w *Wallet) TotalTicks() int                { return w.state.ticks }
func (w *Wallet) Balance() generic.Amount        { return w.state.balance }
func (w *Wallet) Injected() generic.Amount       { return w.state.injected }
func (w *Wallet) TotalPaid() generic.Amount      { return w.state.totalPaid }
func (w *Wallet) TotalGain() generic.Amount      { return w.state.totalGain }
func (w *Wallet) PaidThisTick() generic.Amount   { return w.state.paidThisTick }
func (w *Wallet) GainThisTick() generic.Amount   { return w.state.gainThisTick }

// Ledger returns a copy of every entry so far, in order.
func (w *Wallet) Ledger() []generic.Entry { return w.ledger.Entries() }

// LedgerSince returns the entries with ID >= id.
func (w *Wallet) LedgerSince(id int) []generic.Entry { return w.ledger.Since(id) }

// Advisories collects the advisories of every held instrument.
func (w *Wallet) Advisories() []generic.Advisory {
	var out []generic.Advisory
	for _, inst := range w.instruments {
		if a, ok := inst.(advisor); ok {
			out = append(out, a.Advisories()...)
		}
	}
	return out
}

// Snapshot returns the wallet's counters.
func (w *Wallet) Snapshot() generic.WalletSnapshot {
	s := w.state
	return generic.WalletSnapshot{
		StartDate:    w.cfg.StartDate,
		CurrentDate:  s.currentDate,
		Balance:      s.balance,
		Injected:     s.injected,
		TotalPaid:    s.totalPaid,
		TotalGain:    s.totalGain,
		PaidThisTick: s.paidThisTick,
		GainThisTick: s.gainThisTick,
		Ticks:        s.ticks,
		Instruments:  len(w.instruments),
		Entries:      w.ledger.Len(),
	}
}
