package scenario

import (
	"math"

	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SimpleInterestInput holds the parameters for a simple interest calculation.
// Years may be fractional.
type SimpleInterestInput struct {
	Principal  float64 `json:"principal" yaml:"principal"`
	AnnualRate float64 `json:"annualRate" yaml:"annualRate"`
	Years      float64 `json:"years" yaml:"years"`
}

// RunSimpleInterest computes principal × rate × term and contrasts it with
// annual compounding over the same span.
func (c *Composer) RunSimpleInterest(in SimpleInterestInput) (*Result, error) {
	if in.Principal <= 0 {
		return nil, invalidf("principal", "must be positive, got %.2f", in.Principal)
	}
	if in.Principal > constants.MaxPrincipal {
		return nil, invalidf("principal", "exceeds maximum of %.0f", float64(constants.MaxPrincipal))
	}
	if in.AnnualRate < 0 {
		return nil, invalidf("annualRate", "must be non-negative, got %.4f", in.AnnualRate)
	}
	if in.AnnualRate > constants.MaxAnnualRatePercent {
		return nil, invalidf("annualRate", "exceeds maximum of %.0f%%", float64(constants.MaxAnnualRatePercent))
	}
	if in.Years <= 0 {
		return nil, invalidf("years", "must be positive, got %.2f", in.Years)
	}

	rate := in.AnnualRate / constants.PercentageMultiplier
	simpleInterest := in.Principal * rate * in.Years
	compoundTotal := in.Principal * math.Pow(1+rate, in.Years)
	compoundInterest := compoundTotal - in.Principal

	c.logger.Debug("simple interest computed",
		zap.String("op", "scenario.RunSimpleInterest"),
		zap.Float64("simpleInterest", simpleInterest),
		zap.Float64("compoundInterest", compoundInterest),
	)

	return &Result{
		Kind: KindSimpleInterest,
		Metrics: []Metric{
			currencyMetric("Simple interest", decimal.NewFromFloat(simpleInterest)),
			currencyMetric("Total with simple interest", decimal.NewFromFloat(in.Principal+simpleInterest)),
			currencyMetric("Compound interest (annual)", decimal.NewFromFloat(compoundInterest)),
			currencyMetric("Total with compounding", decimal.NewFromFloat(compoundTotal)),
			currencyMetric("Compounding advantage", decimal.NewFromFloat(compoundInterest-simpleInterest)),
		},
	}, nil
}
