/*
Package generic provides the domain-agnostic primitives of the projection engine.

PURPOSE:
  This package contains the types shared by the deposit instruments, the
  wallet that pools them, and every collaborator that reads their state
  (reports, exports, the HTTP API). Nothing here knows what a "Locked" sum
  or a stamp duty is; it only knows money, days, periods and ledger rows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity of money in a single currency
  - Currency: ISO code carried by amounts (the engine is single-currency)
  - Rate: A fraction such as 0.025 for 2.5%

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift over
     thousands of simulated days
  2. Determinism: No wall clock anywhere; time is a virtual calendar
  3. Immutability: Values are passed by value, ledger rows are never edited

USAGE:
  principal := generic.EUR(10_000)
  gross := principal.Mul(generic.MustParseDecimal("0.025")).Div(decimal.NewFromInt(4))

SEE ALSO:
  - time.go: TimePoint and calendar arithmetic
  - period.go: Compounding periods and calendar anchors
  - ledger.go: Ledger entries and the append-only ledger
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Money in a single currency
// =============================================================================

type Amount struct {
	Value    decimal.Decimal
	Currency Currency
}

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// DefaultCurrency is used by constructors that do not name one.
const DefaultCurrency = CurrencyEUR

func NewAmount(value float64, cur Currency) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Currency: cur}
}

func NewAmountFromDecimal(value decimal.Decimal, cur Currency) Amount {
	return Amount{Value: value, Currency: cur}
}

// EUR is shorthand for an amount in the default currency.
func EUR(value float64) Amount { return NewAmount(value, CurrencyEUR) }

// Zero returns a zero amount in cur.
func Zero(cur Currency) Amount { return Amount{Value: decimal.Zero, Currency: cur} }

func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Currency: a.Currency} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Currency: a.cur(b)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Currency: a.cur(b)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Currency: a.Currency} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Currency: a.Currency} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Currency: a.Currency} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Round(places int32) Amount    { return Amount{Value: a.Value.Round(places), Currency: a.Currency} }
func (a Amount) Float64() float64             { return a.Value.InexactFloat64() }
func (a Amount) String() string               { return a.Value.StringFixed(2) + " " + string(a.Currency) }

// cur keeps an empty currency weak so Zero-valued amounts combine freely.
func (a Amount) cur(b Amount) Currency {
	if a.Currency == "" {
		return b.Currency
	}
	return a.Currency
}

// Ptr returns a pointer to a copy of a, for nullable ledger columns.
func (a Amount) Ptr() *Amount { return &a }

// =============================================================================
// RATE - Fractions such as interest and tax rates
// =============================================================================

// Rate is a plain fraction: 0.025 means 2.5%, 0.002 means 2 per mille.
type Rate = decimal.Decimal

// NewRate builds a Rate from a float literal.
func NewRate(f float64) Rate { return decimal.NewFromFloat(f) }

// Percent converts part/whole to a percentage, zero when whole is zero.
func Percent(part, whole Amount) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Value.Div(whole.Value).Mul(decimal.NewFromInt(100))
}
