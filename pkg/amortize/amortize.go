// Package amortize generates period-by-period payment schedules using the
// standard amortization formula. All money values are decimal so the
// principal-sum and terminal-balance invariants hold exactly; rounding is
// left to the display boundary.
package amortize

import (
	"errors"
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidParameters indicates schedule parameters outside the supported
// domain (negative principal, negative rate, non-positive term, and so on).
var ErrInvalidParameters = errors.New("invalid schedule parameters")

// PenaltyBase selects what an early-termination penalty is charged against.
// Source calculators disagree on this, so it is a per-scenario policy.
type PenaltyBase string

const (
	// PenaltyOnInterest charges the penalty against interest accrued to date.
	PenaltyOnInterest PenaltyBase = "interest"

	// PenaltyOnBalance charges the penalty against the balance outstanding at
	// the termination period.
	PenaltyOnBalance PenaltyBase = "balance"
)

// Entry holds the values for a single period of a schedule. Principal plus
// Interest always equals Payment; AncillaryFee is tracked separately and does
// not reduce the balance.
type Entry struct {
	Period         int             `json:"period"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Payment        decimal.Decimal `json:"payment"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	AncillaryFee   decimal.Decimal `json:"ancillaryFee"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// Schedule is the ordered ledger produced by one Generate call. It is
// read-only afterward and owned by the calling scenario for the lifetime of
// one calculation.
type Schedule []Entry

// Options carries the optional behaviors layered on the basic amortization
// loop. The zero value produces a plain schedule.
type Options struct {
	// ExtraPayment is applied every period and reduces principal only.
	ExtraPayment decimal.Decimal

	// EarlyTerminationPeriod, when in [1, totalPeriods), stops generation at
	// that period with a full payoff of the remaining balance.
	EarlyTerminationPeriod int

	// PenaltyFraction times the penalty base is charged as the terminal
	// entry's ancillary fee on early termination.
	PenaltyFraction decimal.Decimal

	// PenaltyBase selects the penalty base; empty defaults to PenaltyOnInterest.
	PenaltyBase PenaltyBase

	// AncillaryFeeRate is charged each period against the opening balance
	// (mortgage-insurance style) and tracked outside the balance.
	AncillaryFeeRate decimal.Decimal

	// AncillaryFeeCutoff stops the ancillary fee once the opening balance
	// falls to this fraction of the original principal. Zero means the fee
	// runs for the life of the schedule.
	AncillaryFeeCutoff decimal.Decimal
}

// PaymentAmount computes the constant periodic payment for a loan using the
// standard annuity formula. A zero periodic rate degenerates to linear
// amortization.
func PaymentAmount(principal, periodicRate decimal.Decimal, totalPeriods int) (decimal.Decimal, error) {
	if err := validate(principal, periodicRate, totalPeriods); err != nil {
		return decimal.Zero, err
	}

	periods := decimal.NewFromInt(int64(totalPeriods))
	if periodicRate.IsZero() {
		return principal.Div(periods), nil
	}

	growth := decimal.New(1, 0).Add(periodicRate).Pow(periods)
	return principal.Mul(periodicRate).Mul(growth).Div(growth.Sub(decimal.New(1, 0))), nil
}

// Generator produces amortization schedules.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a generator instance.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate produces the schedule for the given loan parameters. The schedule
// has at most totalPeriods entries; it is shorter when extra payments retire
// the balance early or an early termination period is set.
func (g *Generator) Generate(principal, periodicRate decimal.Decimal, totalPeriods int, opts Options) (Schedule, error) {
	if err := validate(principal, periodicRate, totalPeriods); err != nil {
		return nil, err
	}
	if err := validateOptions(totalPeriods, opts); err != nil {
		return nil, err
	}

	payment, err := PaymentAmount(principal, periodicRate, totalPeriods)
	if err != nil {
		return nil, err
	}

	schedule := make(Schedule, 0, totalPeriods)
	balance := principal
	accruedInterest := decimal.Zero

	for period := 1; period <= totalPeriods && balance.IsPositive(); period++ {
		opening := balance
		interest := opening.Mul(periodicRate)
		accruedInterest = accruedInterest.Add(interest)

		principalPortion := payment.Sub(interest).Add(opts.ExtraPayment)

		terminating := opts.EarlyTerminationPeriod > 0 && period == opts.EarlyTerminationPeriod
		if terminating || period == totalPeriods || principalPortion.GreaterThanOrEqual(opening) {
			if principalPortion.GreaterThan(opening) && !terminating && period != totalPeriods {
				g.logger.Debug("capping principal portion to prevent overpayment",
					zap.Int("period", period),
					zap.String("requested", principalPortion.String()),
					zap.String("balance", opening.String()),
				)
			}
			// Terminal period: retire the balance exactly.
			principalPortion = opening
		}

		closing := opening.Sub(principalPortion)
		fee := periodFee(principal, opening, opts)
		if terminating && opts.PenaltyFraction.IsPositive() {
			fee = fee.Add(opts.PenaltyFraction.Mul(penaltyBase(opts.PenaltyBase, accruedInterest, opening)))
		}

		schedule = append(schedule, Entry{
			Period:         period,
			OpeningBalance: opening,
			Payment:        interest.Add(principalPortion),
			Principal:      principalPortion,
			Interest:       interest,
			AncillaryFee:   fee,
			ClosingBalance: closing,
		})

		balance = closing
		if terminating {
			g.logger.Debug("schedule terminated early",
				zap.Int("period", period),
				zap.String("payoff", opening.String()),
			)
			break
		}
	}

	return schedule, nil
}

func periodFee(originalPrincipal, opening decimal.Decimal, opts Options) decimal.Decimal {
	if !opts.AncillaryFeeRate.IsPositive() {
		return decimal.Zero
	}
	if opts.AncillaryFeeCutoff.IsPositive() && originalPrincipal.IsPositive() {
		if opening.Div(originalPrincipal).LessThanOrEqual(opts.AncillaryFeeCutoff) {
			return decimal.Zero
		}
	}
	return opening.Mul(opts.AncillaryFeeRate)
}

func penaltyBase(base PenaltyBase, accruedInterest, opening decimal.Decimal) decimal.Decimal {
	if base == PenaltyOnBalance {
		return opening
	}
	return accruedInterest
}

func validate(principal, periodicRate decimal.Decimal, totalPeriods int) error {
	if principal.IsNegative() {
		return fmt.Errorf("%w: principal %s is negative", ErrInvalidParameters, principal)
	}
	if periodicRate.IsNegative() {
		return fmt.Errorf("%w: periodic rate %s is negative", ErrInvalidParameters, periodicRate)
	}
	if totalPeriods < 1 {
		return fmt.Errorf("%w: total periods %d must be at least 1", ErrInvalidParameters, totalPeriods)
	}
	return nil
}

func validateOptions(totalPeriods int, opts Options) error {
	if opts.ExtraPayment.IsNegative() {
		return fmt.Errorf("%w: extra payment %s is negative", ErrInvalidParameters, opts.ExtraPayment)
	}
	if opts.EarlyTerminationPeriod < 0 {
		return fmt.Errorf("%w: early termination period %d is negative", ErrInvalidParameters, opts.EarlyTerminationPeriod)
	}
	if opts.EarlyTerminationPeriod >= totalPeriods && opts.EarlyTerminationPeriod != 0 {
		return fmt.Errorf("%w: early termination period %d must fall before total periods %d",
			ErrInvalidParameters, opts.EarlyTerminationPeriod, totalPeriods)
	}
	if opts.PenaltyFraction.IsNegative() {
		return fmt.Errorf("%w: penalty fraction %s is negative", ErrInvalidParameters, opts.PenaltyFraction)
	}
	if opts.AncillaryFeeRate.IsNegative() {
		return fmt.Errorf("%w: ancillary fee rate %s is negative", ErrInvalidParameters, opts.AncillaryFeeRate)
	}
	switch opts.PenaltyBase {
	case "", PenaltyOnInterest, PenaltyOnBalance:
	default:
		return fmt.Errorf("%w: unknown penalty base %q", ErrInvalidParameters, opts.PenaltyBase)
	}
	return nil
}

// TotalInterest sums the interest portions across the schedule.
func (s Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Interest)
	}
	return total
}

// TotalPrincipal sums the principal portions across the schedule.
func (s Schedule) TotalPrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Principal)
	}
	return total
}

// TotalFees sums the ancillary fees across the schedule.
func (s Schedule) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.AncillaryFee)
	}
	return total
}

// TotalPaid sums payments plus ancillary fees across the schedule.
func (s Schedule) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Payment).Add(e.AncillaryFee)
	}
	return total
}

// Final returns the terminal entry, if any.
func (s Schedule) Final() (Entry, bool) {
	if len(s) == 0 {
		return Entry{}, false
	}
	return s[len(s)-1], true
}

// Rounded returns a copy of the schedule with every money field rounded to
// cents for display or serialization.
func (s Schedule) Rounded() Schedule {
	out := make(Schedule, len(s))
	for i, e := range s {
		out[i] = Entry{
			Period:         e.Period,
			OpeningBalance: mathutil.RoundCents(e.OpeningBalance),
			Payment:        mathutil.RoundCents(e.Payment),
			Principal:      mathutil.RoundCents(e.Principal),
			Interest:       mathutil.RoundCents(e.Interest),
			AncillaryFee:   mathutil.RoundCents(e.AncillaryFee),
			ClosingBalance: mathutil.RoundCents(e.ClosingBalance),
		}
	}
	return out
}
