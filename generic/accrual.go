package generic

import "fmt"

// =============================================================================
// ACCRUAL SCHEDULE - When interest will be recognized
// =============================================================================

// AccrualSchedule generates the accrual dates of an instrument in a range.
// Implementations must agree, day for day, with the instrument's own tick
// machine: a schedule is a projection, the tick machine is the truth.
type AccrualSchedule interface {
	// GenerateAccruals returns accrual events in [from, to].
	GenerateAccruals(from, to TimePoint) []AccrualEvent

	// Advisories returns the non-fatal conditions the schedule implies,
	// such as a trailing period too short to earn interest.
	Advisories() []Advisory
}

// AccrualEvent is one scheduled interest recognition.
type AccrualEvent struct {
	At     TimePoint
	Period int // 1-based period number
	Reason string
}

// =============================================================================
// ADVISORY - Non-fatal conditions surfaced during a simulation
// =============================================================================

type AdvisoryKind string

const (
	// AdvisoryTrailingPeriod: the last period of a term is shorter than a
	// full compounding period and earns nothing.
	AdvisoryTrailingPeriod AdvisoryKind = "trailing_partial_period"
)

// Advisory is logged and recorded but never changes a balance.
type Advisory struct {
	Kind       AdvisoryKind
	Instrument string
	On         TimePoint // day the condition was detected
	EndDate    TimePoint
	Scheduled  TimePoint // next accrual date that falls past EndDate
	DaysShort  int       // EndDate - Scheduled, negative
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s locked for %d other days but won't gain interests (today: %s, end day: %s)",
		a.Instrument, a.DaysShort, a.On, a.EndDate)
}
