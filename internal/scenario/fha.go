package scenario

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/amortize"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FHAInput holds the parameters for an FHA loan calculation. The upfront MIP
// is computed from the base loan amount and, when FinanceUpfrontMIP is set,
// capitalized into the financed principal before the monthly schedule runs.
type FHAInput struct {
	HomePrice         float64 `json:"homePrice" yaml:"homePrice"`
	DownPayment       float64 `json:"downPayment" yaml:"downPayment"`
	AnnualRate        float64 `json:"annualRate" yaml:"annualRate"`
	TermMonths        int     `json:"termMonths" yaml:"termMonths"`
	FinanceUpfrontMIP bool    `json:"financeUpfrontMip,omitempty" yaml:"financeUpfrontMip,omitempty"`
}

// RunFHA stacks the FHA mortgage insurance rules on top of the standard
// amortization: upfront MIP on the base loan, then monthly MIP at the
// term/LTV-dependent tier rate charged as the schedule's ancillary fee.
func (c *Composer) RunFHA(in FHAInput) (*Result, error) {
	if in.HomePrice <= 0 {
		return nil, invalidf("homePrice", "must be positive, got %.2f", in.HomePrice)
	}
	if in.DownPayment < 0 {
		return nil, invalidf("downPayment", "must be non-negative, got %.2f", in.DownPayment)
	}
	if in.DownPayment >= in.HomePrice {
		return nil, invalidf("downPayment", "must be below the home price")
	}

	baseLoan := in.HomePrice - in.DownPayment
	if err := validateLoanBasics(baseLoan, in.AnnualRate, in.TermMonths); err != nil {
		return nil, err
	}

	ltv := baseLoan / in.HomePrice
	annualMIPRate, err := c.annualMIPRate(in.TermMonths, ltv)
	if err != nil {
		return nil, err
	}

	base := decimal.NewFromFloat(baseLoan)
	upfrontMIP := base.Mul(c.upfrontMIPRate)
	principal := base
	if in.FinanceUpfrontMIP {
		principal = principal.Add(upfrontMIP)
	}

	// Monthly MIP cancels at the standard balance cutoff only for loans that
	// started at or below the cancellation LTV; above it the premium runs for
	// the life of the loan.
	cutoff := decimal.Zero
	if ltv <= constants.MIPCancellationMaxLTV {
		cutoff = decimal.NewFromFloat(constants.DefaultMIPCancelLTV)
	}

	opts := amortize.Options{
		AncillaryFeeRate:   decimal.NewFromFloat(annualMIPRate).Div(decimal.NewFromInt(constants.MonthsPerYear)),
		AncillaryFeeCutoff: cutoff,
	}

	rate := monthlyRate(in.AnnualRate)
	schedule, err := c.gen.Generate(principal, rate, in.TermMonths, opts)
	if err != nil {
		return nil, err
	}

	payment, err := amortize.PaymentAmount(principal, rate, in.TermMonths)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fha schedule generated",
		zap.String("op", "scenario.RunFHA"),
		zap.Float64("ltv", ltv),
		zap.Float64("annualMipRate", annualMIPRate),
		zap.Bool("financedUpfront", in.FinanceUpfrontMIP),
	)

	result := &Result{
		Kind: KindFHA,
		Metrics: []Metric{
			currencyMetric("Base loan amount", base),
			currencyMetric("Upfront MIP", upfrontMIP),
			currencyMetric("Financed principal", principal),
			currencyMetric("Monthly principal & interest", payment),
			percentMetric("Loan-to-value", ltv),
			percentMetric("Annual MIP rate", annualMIPRate),
			currencyMetric("Total monthly MIP", schedule.TotalFees()),
			currencyMetric("Total interest", schedule.TotalInterest()),
			currencyMetric("Total paid", schedule.TotalPaid()),
		},
		Schedule: schedule.Rounded(),
	}

	if len(schedule) > 0 {
		first := schedule[0]
		result.Metrics = append(result.Metrics,
			currencyMetric("First month MIP", first.AncillaryFee),
			currencyMetric("First month total payment", first.Payment.Add(first.AncillaryFee)),
		)
	}

	if !in.FinanceUpfrontMIP {
		result.Notes = append(result.Notes,
			fmt.Sprintf("upfront MIP of %s due at closing", upfrontMIP.Round(constants.CurrencyScale)))
	}
	if cutoff.IsZero() {
		result.Notes = append(result.Notes, "monthly MIP applies for the life of the loan")
	}

	return result, nil
}

// annualMIPRate selects the configured annual MIP rate tier for a loan term
// and origination LTV. The first matching tier wins.
func (c *Composer) annualMIPRate(termMonths int, ltv float64) (float64, error) {
	if len(c.mipTiers) == 0 {
		return 0, invalidf("fha", "no MIP tiers configured")
	}
	for _, tier := range c.mipTiers {
		if tier.MaxTermMonths > 0 && termMonths > tier.MaxTermMonths {
			continue
		}
		if tier.MaxLTV > 0 && ltv > tier.MaxLTV {
			continue
		}
		return tier.AnnualRate, nil
	}
	return 0, invalidf("fha", "no MIP tier matches term %d months at %.1f%% LTV",
		termMonths, ltv*constants.PercentageMultiplier)
}
