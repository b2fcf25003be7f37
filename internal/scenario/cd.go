package scenario

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/amortize"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/fincalcs/calc-engine/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CDInput holds the parameters for a certificate of deposit calculation.
// Interest compounds monthly. EarlyWithdrawalMonth of zero means the CD is
// held to maturity; PenaltyBase defaults to charging against interest earned
// to date, the commoner CD rule, but is configurable because issuers differ.
type CDInput struct {
	Deposit              float64 `json:"deposit" yaml:"deposit"`
	AnnualRate           float64 `json:"annualRate" yaml:"annualRate"`
	TermMonths           int     `json:"termMonths" yaml:"termMonths"`
	EarlyWithdrawalMonth int     `json:"earlyWithdrawalMonth,omitempty" yaml:"earlyWithdrawalMonth,omitempty"`
	PenaltyFraction      float64 `json:"penaltyFraction,omitempty" yaml:"penaltyFraction,omitempty"`
	PenaltyBase          string  `json:"penaltyBase,omitempty" yaml:"penaltyBase,omitempty"`
}

// RunCD grows the deposit month by month under monthly compounding and
// applies the early-withdrawal penalty policy when a withdrawal month is set.
func (c *Composer) RunCD(in CDInput) (*Result, error) {
	if err := validateLoanBasics(in.Deposit, in.AnnualRate, in.TermMonths); err != nil {
		return nil, err
	}
	if in.EarlyWithdrawalMonth < 0 {
		return nil, invalidf("earlyWithdrawalMonth", "must be non-negative, got %d", in.EarlyWithdrawalMonth)
	}
	if in.EarlyWithdrawalMonth >= in.TermMonths && in.EarlyWithdrawalMonth != 0 {
		return nil, invalidf("earlyWithdrawalMonth", "must fall before the %d month term", in.TermMonths)
	}
	if in.PenaltyFraction < 0 || in.PenaltyFraction > 1 {
		return nil, invalidf("penaltyFraction", "must be between 0 and 1, got %.4f", in.PenaltyFraction)
	}

	base := amortize.PenaltyBase(in.PenaltyBase)
	switch base {
	case "", amortize.PenaltyOnInterest, amortize.PenaltyOnBalance:
	default:
		return nil, invalidf("penaltyBase", "must be %q or %q, got %q",
			amortize.PenaltyOnInterest, amortize.PenaltyOnBalance, in.PenaltyBase)
	}

	rate := monthlyRate(in.AnnualRate)
	months := in.TermMonths
	if in.EarlyWithdrawalMonth > 0 {
		months = in.EarlyWithdrawalMonth
	}

	value := decimal.NewFromFloat(in.Deposit)
	interestEarned := decimal.Zero
	for month := 1; month <= months; month++ {
		credited := value.Mul(rate)
		value = value.Add(credited)
		interestEarned = interestEarned.Add(credited)
	}

	penalty := decimal.Zero
	if in.EarlyWithdrawalMonth > 0 && in.PenaltyFraction > 0 {
		penaltyBase := interestEarned
		if base == amortize.PenaltyOnBalance {
			penaltyBase = value
		}
		penalty = decimal.NewFromFloat(in.PenaltyFraction).Mul(penaltyBase)
	}
	net := value.Sub(penalty)

	monthlyRateF, _ := rate.Float64()
	apy, err := metrics.EffectiveAnnualRate(monthlyRateF, constants.MonthsPerYear)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cd scenario computed",
		zap.String("op", "scenario.RunCD"),
		zap.Int("months", months),
		zap.String("value", value.String()),
		zap.String("penalty", penalty.String()),
	)

	result := &Result{
		Kind: KindCD,
		Metrics: []Metric{
			currencyMetric("Deposit", decimal.NewFromFloat(in.Deposit)),
			currencyMetric("Ending value", value),
			currencyMetric("Interest earned", interestEarned),
			percentMetric("APY", apy),
			countMetric("Months held", months, "months"),
		},
	}

	if in.EarlyWithdrawalMonth > 0 {
		result.Metrics = append(result.Metrics,
			currencyMetric("Early withdrawal penalty", penalty),
			currencyMetric("Net proceeds", net),
		)
		result.Notes = append(result.Notes,
			fmt.Sprintf("withdrawn %d months before maturity", in.TermMonths-in.EarlyWithdrawalMonth))
	}

	return result, nil
}
