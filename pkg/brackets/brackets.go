// Package brackets implements progressive marginal evaluation over ordered
// bracket tables, as used by the income tax, marriage tax, and paycheck
// withholding calculators. Bracket data is supplied by configuration; this
// package holds no rate constants of its own.
package brackets

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTable indicates a table whose segments are not contiguous,
	// sorted, and non-overlapping with a single unbounded tail.
	ErrInvalidTable = errors.New("invalid bracket table")

	// ErrNegativeAmount indicates an evaluation amount below zero.
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// Segment is one marginal bracket. Amounts between Lower and Upper are
// charged at Rate. The final segment of a table has Unbounded set and its
// Upper is ignored.
type Segment struct {
	Lower     decimal.Decimal
	Upper     decimal.Decimal
	Unbounded bool
	Rate      decimal.Decimal
}

// Table is an ordered sequence of contiguous segments covering [0, ∞).
// Tables are built once per scenario and never mutated afterward.
type Table []Segment

// Threshold is the configuration-facing form of a bracket: the lower bound
// at which Rate starts applying. Upper bounds are derived from the next
// threshold's lower bound.
type Threshold struct {
	Lower decimal.Decimal
	Rate  decimal.Decimal
}

// FromThresholds builds a Table from ascending (lower bound, rate) pairs.
// The last threshold becomes the unbounded tail segment.
func FromThresholds(thresholds []Threshold) (Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: no thresholds", ErrInvalidTable)
	}

	table := make(Table, len(thresholds))
	for i, th := range thresholds {
		table[i] = Segment{
			Lower: th.Lower,
			Rate:  th.Rate,
		}
		if i == len(thresholds)-1 {
			table[i].Unbounded = true
		} else {
			table[i].Upper = thresholds[i+1].Lower
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the structural invariants: segments start at zero, are
// sorted ascending, contiguous, non-overlapping, carry non-negative rates,
// and only the final segment is unbounded.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table has no segments", ErrInvalidTable)
	}

	for i, seg := range t {
		if seg.Rate.IsNegative() {
			return fmt.Errorf("%w: segment %d has negative rate %s", ErrInvalidTable, i, seg.Rate)
		}
		if i == 0 && !seg.Lower.IsZero() {
			return fmt.Errorf("%w: first segment must start at 0, got %s", ErrInvalidTable, seg.Lower)
		}
		if i > 0 {
			prev := t[i-1]
			if prev.Unbounded {
				return fmt.Errorf("%w: segment %d follows an unbounded segment", ErrInvalidTable, i)
			}
			if !seg.Lower.Equal(prev.Upper) {
				return fmt.Errorf("%w: segment %d lower bound %s does not meet previous upper bound %s",
					ErrInvalidTable, i, seg.Lower, prev.Upper)
			}
		}
		if !seg.Unbounded && seg.Upper.LessThanOrEqual(seg.Lower) {
			return fmt.Errorf("%w: segment %d upper bound %s not above lower bound %s",
				ErrInvalidTable, i, seg.Upper, seg.Lower)
		}
	}

	if !t[len(t)-1].Unbounded {
		return fmt.Errorf("%w: final segment must be unbounded", ErrInvalidTable)
	}
	return nil
}

// Evaluate computes the total amount owed by applying each segment's rate to
// the portion of amount falling inside that segment. The result carries full
// precision; callers round at the display boundary.
func (t Table) Evaluate(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := t.Validate(); err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrNegativeAmount, amount)
	}

	total := decimal.Zero
	for _, seg := range t {
		if amount.LessThanOrEqual(seg.Lower) {
			break
		}
		portion := amount.Sub(seg.Lower)
		if !seg.Unbounded {
			width := seg.Upper.Sub(seg.Lower)
			if portion.GreaterThan(width) {
				portion = width
			}
		}
		total = total.Add(portion.Mul(seg.Rate))
	}
	return total, nil
}

// MarginalRate returns the rate applied to the next unit of amount, i.e. the
// rate of the segment containing amount. An amount of zero falls in the first
// segment.
func (t Table) MarginalRate(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := t.Validate(); err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrNegativeAmount, amount)
	}

	for _, seg := range t {
		if seg.Unbounded || amount.LessThan(seg.Upper) {
			return seg.Rate, nil
		}
	}
	// Unreachable for a valid table; the tail segment is unbounded.
	return t[len(t)-1].Rate, nil
}

// EffectiveRate returns total owed divided by amount. A zero amount has an
// effective rate of zero.
func (t Table) EffectiveRate(amount decimal.Decimal) (decimal.Decimal, error) {
	owed, err := t.Evaluate(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	return owed.Div(amount), nil
}
