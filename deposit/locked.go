/*
locked.go - The single-deposit accrual machine

PURPOSE:
  A Locked is a sum tied up for a number of months at a nominal annual
  rate. Every Tick moves it forward by exactly one day. On each scheduled
  accrual date it earns balance x rate / periods-per-year, of which 26% is
  withheld; on every 31 December it pays 2 per mille of whatever it holds.

TICK ORDER (one simulated day):
  1. Reset this tick's gain/tax deltas
  2. Expired? Return (ticking a dead deposit is a no-op)
  3. Count the tick; past the term? Mark expired and return
  4. Advance the date by one day
  5. Accrual date? Recognize interest, withhold tax, schedule the next one
  6. Levy anchor? Charge the levy on the (possibly just credited) balance

TRAILING PARTIAL PERIOD:
  Accrual dates chain from the previous accrual date, so a term that is
  not a whole number of periods ends with a stub. The stub earns nothing:
  when the next accrual would land past the end date, an Advisory is
  recorded and logged, and no balance changes.

SEE ALSO:
  - schedule.go: Projected accrual dates (must agree with Tick)
  - wallet/wallet.go: Drives Tick and absorbs the deltas
*/
package deposit

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// Locked is a time-locked deposit. It is not safe for concurrent use; a
// simulation is single-threaded by construction.
type Locked struct {
	cfg      Config
	end      generic.TimePoint
	maxTicks int
	perYear  decimal.Decimal

	state      state
	advisories []generic.Advisory
	logger     *slog.Logger
}

// state is everything a tick may change.
type state struct {
	currentDate  generic.TimePoint
	nextAccrual  generic.TimePoint
	balance      generic.Amount
	ticks        int
	periods      int
	totalPaid    generic.Amount
	totalGain    generic.Amount
	paidThisTick generic.Amount
	gainThisTick generic.Amount
	expired      bool
}

// New builds a Locked from cfg.
func New(cfg Config, opts ...Option) (*Locked, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	zero := cfg.Principal.Zero()
	l := &Locked{
		cfg:      cfg,
		end:      cfg.EndDate(),
		maxTicks: cfg.Term().Days(),
		perYear:  decimal.NewFromInt(cfg.Period.PerYear()),
		logger:   discard,
		state: state{
			currentDate:  cfg.StartDate,
			nextAccrual:  cfg.Period.Next(cfg.StartDate),
			balance:      cfg.Principal,
			totalPaid:    zero,
			totalGain:    zero,
			paidThisTick: zero,
			gainThisTick: zero,
		},
	}
	for _, opt := range opts {
		opt(l)
	}

	l.logger.Info("starting locked sum",
		"instrument", cfg.Name,
		"amount", cfg.Principal.Value,
		"start", cfg.StartDate.String(),
		"end", l.end.String())
	return l, nil
}

// MustNew is like New but panics on error. Use in tests and presets.
func MustNew(cfg Config, opts ...Option) *Locked {
	l, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// =============================================================================
// TICK
// =============================================================================

// Tick advances the deposit by one day.
func (l *Locked) Tick() {
	s := &l.state

	// The wallet reads the deltas after every tick, expired or not.
	s.paidThisTick = s.paidThisTick.Zero()
	s.gainThisTick = s.gainThisTick.Zero()

	if s.expired {
		return
	}

	s.ticks++
	if s.ticks > l.maxTicks {
		s.expired = true
		l.logger.Debug("locked sum expired", "instrument", l.cfg.Name, "date", s.currentDate.String())
		return
	}
	s.currentDate = s.currentDate.AddDays(1)

	if s.currentDate.Equal(s.nextAccrual) {
		l.accrue()
	}

	// Same-day accrual first, then the levy.
	if LevyAnchor.Matches(s.currentDate) {
		l.levy()
	}
}

// Ticks calls Tick n times.
func (l *Locked) Ticks(n int) {
	for i := 0; i < n; i++ {
		l.Tick()
	}
}

// Mature ticks through every remaining day of the term without logging
// events and returns the final snapshot. The deposit is not yet marked
// expired: that takes one more tick.
func (l *Locked) Mature() generic.InstrumentSnapshot {
	logger := l.logger
	l.logger = discard
	l.Ticks(l.maxTicks - l.state.ticks)
	l.logger = logger
	return l.Snapshot()
}

func (l *Locked) accrue() {
	s := &l.state
	s.periods++

	gross := s.balance.Mul(l.cfg.Rate).Div(l.perYear)
	tax := gross.Mul(CapitalGainsTaxRate)
	s.balance = s.balance.Add(gross.Sub(tax))

	s.paidThisTick = s.paidThisTick.Add(tax)
	s.totalPaid = s.totalPaid.Add(tax)
	s.gainThisTick = s.gainThisTick.Add(gross)
	s.totalGain = s.totalGain.Add(gross)

	l.logger.Info("gross gain",
		"instrument", l.cfg.Name, "period", s.periods,
		"amount", gross.Round(2).Value, "date", s.currentDate.String())
	l.logger.Info("tax on gain",
		"instrument", l.cfg.Name, "period", s.periods,
		"amount", tax.Round(2).Value.Neg(), "date", s.currentDate.String())

	if !s.currentDate.Before(l.end) {
		// Final period recognized; nothing left to schedule.
		return
	}
	s.nextAccrual = l.cfg.Period.Next(s.currentDate)

	if short := generic.DaysBetween(s.nextAccrual, l.end); short < 0 {
		adv := generic.Advisory{
			Kind:       generic.AdvisoryTrailingPeriod,
			Instrument: l.cfg.Name,
			On:         s.currentDate,
			EndDate:    l.end,
			Scheduled:  s.nextAccrual,
			DaysShort:  short,
		}
		l.advisories = append(l.advisories, adv)
		l.logger.Warn(adv.String(),
			"instrument", l.cfg.Name,
			"days_short", short,
			"scheduled", s.nextAccrual.String(),
			"end", l.end.String())
	}
}

func (l *Locked) levy() {
	s := &l.state
	due := s.balance.Mul(YearEndLevyRate)
	s.balance = s.balance.Sub(due)
	s.paidThisTick = s.paidThisTick.Add(due)
	s.totalPaid = s.totalPaid.Add(due)

	l.logger.Info("end of year levy",
		"instrument", l.cfg.Name,
		"amount", due.Round(2).Value.Neg(), "date", s.currentDate.String())
}

// =============================================================================
// READ-ONLY ACCESSORS
// =============================================================================

func (l *Locked) Name() string                   { return l.cfg.Name }
func (l *Locked) Config() Config                 { return l.cfg }
func (l *Locked) Principal() generic.Amount      { return l.cfg.Principal }
func (l *Locked) StartDate() generic.TimePoint   { return l.cfg.StartDate }
func (l *Locked) EndDate() generic.TimePoint     { return l.end }
func (l *Locked) MaxTicks() int                  { return l.maxTicks }
func (l *Locked) Balance() generic.Amount        { return l.state.balance }
func (l *Locked) CurrentDate() generic.TimePoint { return l.state.currentDate }
func (l *Locked) NextAccrual() generic.TimePoint { return l.state.nextAccrual }
func (l *Locked) TotalTicks() int                { return l.state.ticks }
func (l *Locked) Periods() int                   { return l.state.periods }
func (l *Locked) TotalPaid() generic.Amount      { return l.state.totalPaid }
func (l *Locked) TotalGain() generic.Amount      { return l.state.totalGain }
func (l *Locked) PaidThisTick() generic.Amount   { return l.state.paidThisTick }
func (l *Locked) GainThisTick() generic.Amount   { return l.state.gainThisTick }
func (l *Locked) Expired() bool                  { return l.state.expired }

// Advisories returns a copy of the advisories recorded so far.
func (l *Locked) Advisories() []generic.Advisory {
	if len(l.advisories) == 0 {
		return nil
	}
	out := make([]generic.Advisory, len(l.advisories))
	copy(out, l.advisories)
	return out
}

// Schedule returns the accrual schedule implied by the configuration.
func (l *Locked) Schedule() *Schedule { return NewSchedule(l.cfg) }

// Snapshot returns the current counters.
func (l *Locked) Snapshot() generic.InstrumentSnapshot {
	s := l.state
	return generic.InstrumentSnapshot{
		Name:         l.cfg.Name,
		Period:       l.cfg.Period,
		Rate:         l.cfg.Rate,
		Term:         generic.Period{Start: l.cfg.StartDate, End: l.end},
		CurrentDate:  s.currentDate,
		NextAccrual:  s.nextAccrual,
		Principal:    l.cfg.Principal,
		Balance:      s.balance,
		TotalPaid:    s.totalPaid,
		TotalGain:    s.totalGain,
		PaidThisTick: s.paidThisTick,
		GainThisTick: s.gainThisTick,
		Ticks:        s.ticks,
		MaxTicks:     l.maxTicks,
		Periods:      s.periods,
		Expired:      s.expired,
	}
}
