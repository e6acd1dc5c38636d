package deposit

import (
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// SCHEDULE - Accrual dates implied by a Config, without ticking
// =============================================================================

// Schedule projects the accrual dates a Locked will recognize. It follows the
// same chaining rule as Tick: each date is the previous one plus one period,
// and chaining stops at the end date.
type Schedule struct {
	cfg Config
}

func NewSchedule(cfg Config) *Schedule {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	return &Schedule{cfg: cfg}
}

// dates walks the chain and reports the advisory, if any.
func (s *Schedule) dates() ([]generic.TimePoint, []generic.Advisory) {
	if !s.cfg.Period.Valid() || s.cfg.DurationMonths <= 0 {
		return nil, nil
	}
	end := s.cfg.EndDate()

	var (
		out  []generic.TimePoint
		advs []generic.Advisory
	)
	for at := s.cfg.Period.Next(s.cfg.StartDate); !at.After(end); {
		out = append(out, at)
		if !at.Before(end) {
			break
		}
		next := s.cfg.Period.Next(at)
		if short := generic.DaysBetween(next, end); short < 0 {
			advs = append(advs, generic.Advisory{
				Kind:       generic.AdvisoryTrailingPeriod,
				Instrument: s.cfg.Name,
				On:         at,
				EndDate:    end,
				Scheduled:  next,
				DaysShort:  short,
			})
		}
		at = next
	}
	return out, advs
}

// GenerateAccruals returns the accrual events falling within [from, to].
func (s *Schedule) GenerateAccruals(from, to generic.TimePoint) []generic.AccrualEvent {
	dates, _ := s.dates()

	var events []generic.AccrualEvent
	for i, at := range dates {
		if at.Before(from) || at.After(to) {
			continue
		}
		events = append(events, generic.AccrualEvent{
			At:     at,
			Period: i + 1,
			Reason: s.cfg.Period.String() + " interest",
		})
	}
	return events
}

// Advisories returns the trailing-period warning the full term will raise.
func (s *Schedule) Advisories() []generic.Advisory {
	_, advs := s.dates()
	return advs
}

// Count is the number of periods recognized over the whole term.
func (s *Schedule) Count() int {
	dates, _ := s.dates()
	return len(dates)
}

var _ generic.AccrualSchedule = (*Schedule)(nil)
