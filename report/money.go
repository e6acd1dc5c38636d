package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/generic"
)

// Money formats a in its currency's conventions (symbol, separators,
// fraction digits), rounding to the currency's minor unit.
func Money(a generic.Amount) string {
	code := string(a.Currency)
	if code == "" {
		code = string(generic.DefaultCurrency)
	}
	// money.New never returns a nil currency, unlike money.GetCurrency.
	cur := *money.New(0, code).Currency()
	minor := a.Value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Signed is Money with an explicit sign; zero is rendered as "-".
func Signed(a generic.Amount) string {
	switch {
	case a.IsZero():
		return "-"
	case a.IsPositive():
		return "+" + Money(a)
	default:
		return Money(a)
	}
}

// Pct renders a percentage with two decimals.
func Pct(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
