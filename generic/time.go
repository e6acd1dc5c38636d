package generic

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - A day on the virtual calendar
// =============================================================================

// DateFormat is the ISO layout used everywhere dates are written.
const DateFormat = "2006-01-02"

// TimePoint is a calendar day. The engine never looks at the wall clock;
// simulated time only moves when a machine ticks.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseTimePoint reads a YYYY-MM-DD date.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q, want format %q: %w", s, DateFormat, err)
	}
	return FromTime(t), nil
}

// MustParseTimePoint is like ParseTimePoint but panics on error.
func MustParseTimePoint(s string) TimePoint {
	tp, err := ParseTimePoint(s)
	if err != nil {
		panic(err.Error())
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddYears(n int) TimePoint { return tp.AddMonths(12 * n) }

// AddMonths moves n months forward (or back) keeping the day of month, and
// clips to the last day of the target month when that day does not exist:
// Jan 31 + 1 month is Feb 28 (or 29), never Mar 3 as time.AddDate would give.
func (tp TimePoint) AddMonths(n int) TimePoint {
	t := tp.normalize()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return NewTimePoint(first.Year(), first.Month(), day)
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateFormat)
}

func (tp TimePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(tp.String())
}

func (tp *TimePoint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimePoint(s)
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts calendar days from from to to (negative if to is earlier).
// It works on Unix seconds: a time.Duration overflows past ~292 years.
func DaysBetween(from, to TimePoint) int {
	return int((to.normalize().Unix() - from.normalize().Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}
