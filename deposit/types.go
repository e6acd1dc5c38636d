// Package deposit implements time-locked deposit accounts ("Locked" sums).
// Each Locked is an independent state machine advanced one simulated day at a
// time, recognizing periodic interest net of withholding tax and a year-end
// levy, until its term runs out.
package deposit

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// TAX CONSTANTS
// =============================================================================

var (
	// CapitalGainsTaxRate is withheld from every interest recognition.
	CapitalGainsTaxRate = decimal.RequireFromString("0.26")

	// YearEndLevyRate is charged on the whole balance held on LevyAnchor.
	YearEndLevyRate = decimal.RequireFromString("0.002")

	// LevyAnchor is the day the year-end levy falls on.
	LevyAnchor = generic.YearEnd
)

// DefaultName is used when a Config carries no name.
const DefaultName = "no name"

// =============================================================================
// CONFIG
// =============================================================================

// Config identifies a deposit. It never changes once the Locked is built.
type Config struct {
	Name           string
	Principal      generic.Amount
	StartDate      generic.TimePoint
	Rate           generic.Rate // nominal annual rate, 0.025 = 2.5%
	Period         generic.CompoundingPeriod
	DurationMonths int
}

// EndDate is StartDate plus the duration, clipped to month end.
func (c Config) EndDate() generic.TimePoint {
	return c.StartDate.AddMonths(c.DurationMonths)
}

// Term is the closed range [StartDate, EndDate].
func (c Config) Term() generic.Period {
	return generic.Period{Start: c.StartDate, End: c.EndDate()}
}

// Validate returns a *generic.ConfigurationError for the first bad field.
func (c Config) Validate() error {
	if !c.Period.Valid() {
		return &generic.ConfigurationError{Field: "period", Value: int(c.Period), Reason: "3 and 12 are the only values allowed"}
	}
	if !c.Principal.IsPositive() {
		return &generic.ConfigurationError{Field: "principal", Value: c.Principal.Value, Reason: "must be greater than zero"}
	}
	if c.DurationMonths <= 0 {
		return &generic.ConfigurationError{Field: "duration_months", Value: c.DurationMonths, Reason: "must be at least one month"}
	}
	if c.StartDate.IsZero() {
		return &generic.ConfigurationError{Field: "start_date", Value: c.StartDate, Reason: "is required"}
	}
	if c.Rate.IsNegative() {
		return &generic.ConfigurationError{Field: "rate", Value: c.Rate, Reason: "must not be negative"}
	}
	return nil
}

// =============================================================================
// OPTIONS
// =============================================================================

type Option func(*Locked)

// WithLogger routes accrual, levy and advisory events to logger.
// Advisories are logged at warn level, everything else at debug or info.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locked) {
		if logger != nil {
			l.logger = logger
		}
	}
}

var discard = slog.New(slog.DiscardHandler)
