package generic

// =============================================================================
// SNAPSHOT - Read-only counters of a running machine
// =============================================================================

// InstrumentSnapshot captures an instrument's lifetime counters after a tick.
// It is a value: holding one never aliases the instrument's state.
type InstrumentSnapshot struct {
	Name        string
	Period      CompoundingPeriod
	Rate        Rate
	Term        Period
	CurrentDate TimePoint
	NextAccrual TimePoint

	Principal Amount
	Balance   Amount
	TotalPaid Amount
	TotalGain Amount

	PaidThisTick Amount
	GainThisTick Amount

	Ticks    int
	MaxTicks int
	Periods  int
	Expired  bool
}

// NetGain is gross gain minus everything paid.
func (s InstrumentSnapshot) NetGain() Amount { return s.TotalGain.Sub(s.TotalPaid) }

// Years is the number of years covered by the elapsed periods.
func (s InstrumentSnapshot) Years() float64 {
	return float64(s.Periods) / float64(s.Period.PerYear())
}

// WalletSnapshot captures the wallet's counters after a tick.
type WalletSnapshot struct {
	StartDate   TimePoint
	CurrentDate TimePoint

	Balance   Amount
	Injected  Amount // principal pooled so far
	TotalPaid Amount
	TotalGain Amount

	PaidThisTick Amount
	GainThisTick Amount

	Ticks       int
	Instruments int
	Entries     int
}

// NetGain is gross gain minus everything paid.
func (s WalletSnapshot) NetGain() Amount { return s.TotalGain.Sub(s.TotalPaid) }
