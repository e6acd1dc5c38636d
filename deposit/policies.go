/*
policies.go - Ready-made deposit configurations

PURPOSE:
  Convenience constructors for the two deposit shapes banks actually sell:
  quarterly-compounding "conto deposito" style accounts and annual bonds.
  Amounts are in the default currency (EUR).

AVAILABLE PRESETS:
  Quarterly:     Interest every 3 months
  Annual:        Interest every 12 months
  DefaultConfig: 10,000 at 2.5% for six years, quarterly

EXAMPLE:
  cfg := deposit.Quarterly("bp-2023", 10000, generic.MustParseTimePoint("2023-01-01"), 0.025, 72)
  l, err := deposit.New(cfg, deposit.WithLogger(logger))

SEE ALSO:
  - types.go: Config and its validation
  - factory/scenario.go: YAML/JSON-driven configuration
*/
package deposit

import "github.com/warp/deposit-engine/generic"

// Quarterly returns a deposit compounding every three months.
func Quarterly(name string, principal float64, start generic.TimePoint, rate float64, months int) Config {
	return preset(name, principal, start, rate, generic.Quarterly, months)
}

// Annual returns a deposit compounding once a year.
func Annual(name string, principal float64, start generic.TimePoint, rate float64, months int) Config {
	return preset(name, principal, start, rate, generic.Annual, months)
}

// DefaultConfig mirrors the defaults of an unparameterized Locked.
func DefaultConfig(name string, start generic.TimePoint) Config {
	return Quarterly(name, 10000, start, 0.025, 72)
}

func preset(name string, principal float64, start generic.TimePoint, rate float64, period generic.CompoundingPeriod, months int) Config {
	return Config{
		Name:           name,
		Principal:      generic.NewAmount(principal, generic.DefaultCurrency),
		StartDate:      start,
		Rate:           generic.NewRate(rate),
		Period:         period,
		DurationMonths: months,
	}
}
