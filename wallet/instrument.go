package wallet

import (
	"github.com/warp/deposit-engine/deposit"
	"github.com/warp/deposit-engine/generic"
)

// Instrument is what a Wallet needs from anything it pools: a name, a
// one-day tick, and read-only counters it can absorb after each tick.
type Instrument interface {
	Name() string
	Tick()
	Expired() bool
	CurrentDate() generic.TimePoint
	TotalTicks() int
	Principal() generic.Amount
	PaidThisTick() generic.Amount
	GainThisTick() generic.Amount
	Snapshot() generic.InstrumentSnapshot
}

// advisor is implemented by instruments that record advisories.
type advisor interface {
	Advisories() []generic.Advisory
}

var (
	_ Instrument = (*deposit.Locked)(nil)
	_ advisor    = (*deposit.Locked)(nil)
)
