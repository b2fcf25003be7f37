package scenario

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/amortize"
	"github.com/fincalcs/calc-engine/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MortgageInput holds the parameters for a fixed-rate mortgage calculation.
// ExtraMonthlyPayment and StartDate are optional; a blank StartDate skips the
// payoff-date annotation.
type MortgageInput struct {
	Principal           float64 `json:"principal" yaml:"principal"`
	AnnualRate          float64 `json:"annualRate" yaml:"annualRate"`
	TermMonths          int     `json:"termMonths" yaml:"termMonths"`
	ExtraMonthlyPayment float64 `json:"extraMonthlyPayment,omitempty" yaml:"extraMonthlyPayment,omitempty"`
	StartDate           string  `json:"startDate,omitempty" yaml:"startDate,omitempty"`
}

// RunMortgage generates the amortization schedule and summary figures for a
// fixed-rate loan.
func (c *Composer) RunMortgage(in MortgageInput) (*Result, error) {
	if err := validateLoanBasics(in.Principal, in.AnnualRate, in.TermMonths); err != nil {
		return nil, err
	}
	if in.ExtraMonthlyPayment < 0 {
		return nil, invalidf("extraMonthlyPayment", "must be non-negative, got %.2f", in.ExtraMonthlyPayment)
	}

	principal := decimal.NewFromFloat(in.Principal)
	rate := monthlyRate(in.AnnualRate)

	payment, err := amortize.PaymentAmount(principal, rate, in.TermMonths)
	if err != nil {
		return nil, err
	}

	schedule, err := c.gen.Generate(principal, rate, in.TermMonths, amortize.Options{
		ExtraPayment: decimal.NewFromFloat(in.ExtraMonthlyPayment),
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("mortgage schedule generated",
		zap.String("op", "scenario.RunMortgage"),
		zap.Int("periods", len(schedule)),
		zap.String("payment", payment.String()),
	)

	result := &Result{
		Kind: KindMortgage,
		Metrics: []Metric{
			currencyMetric("Monthly payment", payment),
			currencyMetric("Total interest", schedule.TotalInterest()),
			currencyMetric("Total paid", schedule.TotalPaid()),
			countMetric("Months to payoff", len(schedule), "months"),
		},
		Schedule: schedule.Rounded(),
	}

	if len(schedule) > 0 {
		first := schedule[0]
		result.Metrics = append(result.Metrics,
			currencyMetric("First month interest", first.Interest),
			currencyMetric("First month principal", first.Principal),
		)
	}

	if saved := in.TermMonths - len(schedule); saved > 0 {
		result.Notes = append(result.Notes,
			fmt.Sprintf("extra payments retire the loan %d months early", saved))
	}

	if in.StartDate != "" {
		payoff, err := datetime.OffsetDate(in.StartDate, datetime.DateTimeLayout, len(schedule)-1)
		if err != nil {
			return nil, invalidf("startDate", "expected %s format: %v", datetime.DateTimeLayout, err)
		}
		result.Notes = append(result.Notes, fmt.Sprintf("final payment due %s", payoff))
	}

	return result, nil
}
