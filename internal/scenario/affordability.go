package scenario

import (
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/fincalcs/calc-engine/pkg/mathutil"
	"github.com/fincalcs/calc-engine/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AffordabilityInput holds the parameters for a housing affordability (DTI)
// calculation. FrontEndRatio and BackEndRatio are fractions; zero selects the
// conventional 28/36 defaults.
type AffordabilityInput struct {
	AnnualGrossIncome    float64 `json:"annualGrossIncome" yaml:"annualGrossIncome"`
	MonthlyDebtPayments  float64 `json:"monthlyDebtPayments,omitempty" yaml:"monthlyDebtPayments,omitempty"`
	HousingPayment       float64 `json:"housingPayment,omitempty" yaml:"housingPayment,omitempty"`
	FrontEndRatio        float64 `json:"frontEndRatio,omitempty" yaml:"frontEndRatio,omitempty"`
	BackEndRatio         float64 `json:"backEndRatio,omitempty" yaml:"backEndRatio,omitempty"`
}

// RunAffordability derives the front/back-end debt-to-income ratios and the
// largest housing payment that satisfies both.
func (c *Composer) RunAffordability(in AffordabilityInput) (*Result, error) {
	if in.AnnualGrossIncome <= 0 {
		return nil, invalidf("annualGrossIncome", "must be positive, got %.2f", in.AnnualGrossIncome)
	}
	if in.MonthlyDebtPayments < 0 {
		return nil, invalidf("monthlyDebtPayments", "must be non-negative, got %.2f", in.MonthlyDebtPayments)
	}
	if in.HousingPayment < 0 {
		return nil, invalidf("housingPayment", "must be non-negative, got %.2f", in.HousingPayment)
	}

	front := in.FrontEndRatio
	if front == 0 {
		front = constants.DefaultFrontEndRatio
	}
	back := in.BackEndRatio
	if back == 0 {
		back = constants.DefaultBackEndRatio
	}
	if front <= 0 || front >= 1 {
		return nil, invalidf("frontEndRatio", "must be between 0 and 1, got %.4f", front)
	}
	if back <= 0 || back >= 1 {
		return nil, invalidf("backEndRatio", "must be between 0 and 1, got %.4f", back)
	}

	monthlyIncome := in.AnnualGrossIncome / constants.MonthsPerYear

	maxHousing := front * monthlyIncome
	maxTotalDebt := back * monthlyIncome
	budget := mathutil.Round(maxHousing)
	if headroom := maxTotalDebt - in.MonthlyDebtPayments; headroom < maxHousing {
		budget = mathutil.Round(headroom)
	}
	if budget < 0 {
		budget = 0
	}

	c.logger.Debug("affordability computed",
		zap.String("op", "scenario.RunAffordability"),
		zap.Float64("monthlyIncome", monthlyIncome),
		zap.Float64("budget", budget),
	)

	result := &Result{
		Kind: KindAffordability,
		Metrics: []Metric{
			currencyMetric("Monthly gross income", decimal.NewFromFloat(monthlyIncome)),
			currencyMetric("Max housing payment (front-end)", decimal.NewFromFloat(maxHousing)),
			currencyMetric("Max total debt payment (back-end)", decimal.NewFromFloat(maxTotalDebt)),
			currencyMetric("Affordable housing payment", decimal.NewFromFloat(budget)),
		},
	}

	if in.HousingPayment > 0 {
		frontDTI, err := metrics.DTIRatio(in.HousingPayment, monthlyIncome)
		if err != nil {
			return nil, err
		}
		backDTI, err := metrics.DTIRatio(in.HousingPayment+in.MonthlyDebtPayments, monthlyIncome)
		if err != nil {
			return nil, err
		}
		result.Metrics = append(result.Metrics,
			percentMetric("Current front-end DTI", frontDTI),
			percentMetric("Current back-end DTI", backDTI),
		)
		if frontDTI > front || backDTI > back {
			result.Notes = append(result.Notes, "current payments exceed the configured DTI limits")
		}
	}

	return result, nil
}
