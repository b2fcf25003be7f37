// Package metrics provides the summary statistics shared by the calculators:
// mean returns, compound growth, CAGR, and debt-to-income ratios. All
// functions are pure and operate on fractional rates, not currency.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptySequence indicates an empty input sequence.
	ErrEmptySequence = errors.New("empty sequence")

	// ErrInvalidReturn indicates a periodic return of -100% or worse, for
	// which the geometric mean is undefined in the reals.
	ErrInvalidReturn = errors.New("invalid return value")

	// ErrInvalidCAGRInputs indicates a non-positive initial value or period
	// count for a CAGR calculation.
	ErrInvalidCAGRInputs = errors.New("invalid CAGR inputs")

	// ErrDivisionByZero indicates a zero denominator, e.g. zero gross income
	// in a DTI calculation.
	ErrDivisionByZero = errors.New("division by zero")
)

// ArithmeticMean returns the simple average of the values.
func ArithmeticMean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySequence
	}
	return stat.Mean(values, nil), nil
}

// GeometricMean returns the compound per-period growth rate implied by the
// sequence of periodic returns: (∏(1+v))^(1/n) − 1. Every return must be
// strictly greater than -1.
func GeometricMean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySequence
	}

	factors := make([]float64, len(values))
	for i, v := range values {
		if v <= -1 {
			return 0, fmt.Errorf("%w: return %g at index %d is -100%% or worse", ErrInvalidReturn, v, i)
		}
		factors[i] = 1 + v
	}
	return stat.GeometricMean(factors, nil) - 1, nil
}

// CAGR returns the smoothed annualized growth rate implied by an initial and
// final value over the given number of periods.
func CAGR(initial, final, periods float64) (float64, error) {
	if initial <= 0 {
		return 0, fmt.Errorf("%w: initial value %g must be positive", ErrInvalidCAGRInputs, initial)
	}
	if periods <= 0 {
		return 0, fmt.Errorf("%w: periods %g must be positive", ErrInvalidCAGRInputs, periods)
	}
	if final < 0 {
		return 0, fmt.Errorf("%w: final value %g must be non-negative", ErrInvalidCAGRInputs, final)
	}
	return math.Pow(final/initial, 1/periods) - 1, nil
}

// DTIRatio returns the debt-to-income ratio of a periodic debt payment
// against gross income for the same period.
func DTIRatio(debtPayment, grossIncome float64) (float64, error) {
	if grossIncome == 0 {
		return 0, fmt.Errorf("%w: gross income is zero", ErrDivisionByZero)
	}
	return debtPayment / grossIncome, nil
}

// EffectiveAnnualRate converts a periodic rate compounded periodsPerYear
// times into the equivalent annual rate (APY).
func EffectiveAnnualRate(periodicRate float64, periodsPerYear int) (float64, error) {
	if periodsPerYear < 1 {
		return 0, fmt.Errorf("%w: periods per year %d must be at least 1", ErrInvalidCAGRInputs, periodsPerYear)
	}
	return math.Pow(1+periodicRate, float64(periodsPerYear)) - 1, nil
}
