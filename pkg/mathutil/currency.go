// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundCents rounds a decimal value to currency scale (two decimal places).
func RoundCents(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyScale)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinCent checks if two decimal currency values agree to within one cent.
func WithinCent(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(decimal.New(1, -constants.CurrencyScale))
}

// PercentToFraction converts a user-facing percentage (e.g. 6.5) to a
// fractional rate (0.065).
func PercentToFraction(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
