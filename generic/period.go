package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - A closed range of days
// =============================================================================

// Period is the closed range [Start, End]. A deposit's term is a Period.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days is the number of ticks needed to walk from Start to End.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// COMPOUNDING PERIOD - How often interest is recognized
// =============================================================================

// CompoundingPeriod is the interval between two interest recognitions,
// expressed in months.
type CompoundingPeriod int

const (
	Quarterly CompoundingPeriod = 3
	Annual    CompoundingPeriod = 12
)

// Months is the length of one period in calendar months.
func (c CompoundingPeriod) Months() int { return int(c) }

// PerYear is the divisor applied to the nominal annual rate.
func (c CompoundingPeriod) PerYear() int64 {
	switch c {
	case Quarterly:
		return 4
	default:
		return 1
	}
}

// Valid reports whether c is one of the two supported periods.
func (c CompoundingPeriod) Valid() bool {
	return c == Quarterly || c == Annual
}

// Next returns the accrual date one period after from.
func (c CompoundingPeriod) Next(from TimePoint) TimePoint {
	return from.AddMonths(c.Months())
}

func (c CompoundingPeriod) String() string {
	switch c {
	case Quarterly:
		return "quarterly"
	case Annual:
		return "annual"
	default:
		return fmt.Sprintf("every %d months", int(c))
	}
}

// ParseCompoundingPeriod accepts "quarterly", "annual" (or "annually",
// "yearly") and the month counts "3" and "12".
func ParseCompoundingPeriod(s string) (CompoundingPeriod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quarterly", "quarter", "q":
		return Quarterly, nil
	case "annual", "annually", "yearly", "year", "y":
		return Annual, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ConfigurationError{Field: "compounding", Value: s, Reason: "must be quarterly (3) or annual (12)"}
	}
	c := CompoundingPeriod(n)
	if !c.Valid() {
		return 0, &ConfigurationError{Field: "compounding", Value: s, Reason: "must be quarterly (3) or annual (12)"}
	}
	return c, nil
}

// =============================================================================
// ANCHOR - A fixed day of the year
// =============================================================================

// Anchor is a recurring calendar day (day/month) on which a yearly charge
// falls, such as the 31 December levy.
type Anchor struct {
	Day   int
	Month time.Month
}

// YearEnd is 31 December.
var YearEnd = Anchor{Day: 31, Month: time.December}

// Matches reports whether tp falls on the anchor.
func (a Anchor) Matches(tp TimePoint) bool {
	return tp.Day() == a.Day && tp.Month() == a.Month
}

// Valid reports whether the anchor names a real day in at least a leap year.
func (a Anchor) Valid() bool {
	if a.Month < time.January || a.Month > time.December || a.Day < 1 {
		return false
	}
	return a.Day <= EndOfMonth(2024, a.Month).Day()
}

func (a Anchor) String() string {
	return fmt.Sprintf("%02d/%02d", a.Day, int(a.Month))
}
