// Package money holds the rounding policy shared by every payroll calculation.
//
// Amounts are carried at full precision through a calculation and rounded to
// cents exactly once, half away from zero, when they are persisted or rendered.
package money

import (
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fraction digits of a persisted amount.
const CurrencyPlaces int32 = 2

// DivisionPrecision is used for every division so that repeated runs over the
// same inputs produce the same digits.
const DivisionPrecision int32 = 16

var (
	Zero   = decimal.Zero
	twelve = decimal.NewFromInt(12)
)

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Format renders d rounded to cents with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}

// Div divides at DivisionPrecision without rounding to cents.
func Div(d, by decimal.Decimal) decimal.Decimal {
	return d.DivRound(by, DivisionPrecision)
}

// Monthly converts an annual amount to a monthly one.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return Div(annual, twelve)
}

// Annual converts a monthly amount to an annual one.
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
