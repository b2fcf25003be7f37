package scenario

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Filing statuses recognized in configured tax tables.
const (
	StatusSingle = "single"
	StatusJoint  = "joint"
)

// IncomeTaxInput holds the parameters for an income tax or paycheck
// withholding calculation. PreTaxDeductions defaults to zero.
type IncomeTaxInput struct {
	GrossIncome      float64 `json:"grossIncome" yaml:"grossIncome"`
	PreTaxDeductions float64 `json:"preTaxDeductions,omitempty" yaml:"preTaxDeductions,omitempty"`
	Year             int     `json:"year" yaml:"year"`
	FilingStatus     string  `json:"filingStatus,omitempty" yaml:"filingStatus,omitempty"`
}

// MarriageTaxInput holds the two incomes compared as singles versus a joint
// filing for a given tax year.
type MarriageTaxInput struct {
	IncomeA float64 `json:"incomeA" yaml:"incomeA"`
	IncomeB float64 `json:"incomeB" yaml:"incomeB"`
	Year    int     `json:"year" yaml:"year"`
}

// RunIncomeTax evaluates the configured bracket table for one filer.
func (c *Composer) RunIncomeTax(in IncomeTaxInput) (*Result, error) {
	if in.GrossIncome < 0 {
		return nil, invalidf("grossIncome", "must be non-negative, got %.2f", in.GrossIncome)
	}
	if in.PreTaxDeductions < 0 {
		return nil, invalidf("preTaxDeductions", "must be non-negative, got %.2f", in.PreTaxDeductions)
	}

	status := in.FilingStatus
	if status == "" {
		status = StatusSingle
	}
	table, err := c.taxTable(in.Year, status)
	if err != nil {
		return nil, err
	}

	gross := decimal.NewFromFloat(in.GrossIncome)
	taxable := taxableIncome(gross.Sub(decimal.NewFromFloat(in.PreTaxDeductions)), table.StandardDeduction)

	tax, err := table.Brackets.Evaluate(taxable)
	if err != nil {
		return nil, err
	}
	marginal, err := table.Brackets.MarginalRate(taxable)
	if err != nil {
		return nil, err
	}

	effective := decimal.Zero
	if gross.IsPositive() {
		effective = tax.Div(gross)
	}

	c.logger.Debug("income tax computed",
		zap.String("op", "scenario.RunIncomeTax"),
		zap.Int("year", in.Year),
		zap.String("status", status),
		zap.String("taxable", taxable.String()),
	)

	marginalF, _ := marginal.Float64()
	effectiveF, _ := effective.Float64()

	return &Result{
		Kind: KindIncomeTax,
		Metrics: []Metric{
			currencyMetric("Taxable income", taxable),
			currencyMetric("Tax owed", tax),
			currencyMetric("After-tax income", gross.Sub(tax)),
			percentMetric("Marginal rate", marginalF),
			percentMetric("Effective rate", effectiveF),
		},
	}, nil
}

// RunMarriageTax runs the bracket evaluator three ways: each income filing
// single, then the combined income filing jointly, and reports the marriage
// penalty or bonus as the difference.
func (c *Composer) RunMarriageTax(in MarriageTaxInput) (*Result, error) {
	if in.IncomeA < 0 {
		return nil, invalidf("incomeA", "must be non-negative, got %.2f", in.IncomeA)
	}
	if in.IncomeB < 0 {
		return nil, invalidf("incomeB", "must be non-negative, got %.2f", in.IncomeB)
	}

	single, err := c.taxTable(in.Year, StatusSingle)
	if err != nil {
		return nil, err
	}
	joint, err := c.taxTable(in.Year, StatusJoint)
	if err != nil {
		return nil, err
	}

	incomeA := decimal.NewFromFloat(in.IncomeA)
	incomeB := decimal.NewFromFloat(in.IncomeB)

	taxA, err := single.Brackets.Evaluate(taxableIncome(incomeA, single.StandardDeduction))
	if err != nil {
		return nil, err
	}
	taxB, err := single.Brackets.Evaluate(taxableIncome(incomeB, single.StandardDeduction))
	if err != nil {
		return nil, err
	}
	taxJoint, err := joint.Brackets.Evaluate(taxableIncome(incomeA.Add(incomeB), joint.StandardDeduction))
	if err != nil {
		return nil, err
	}

	separate := taxA.Add(taxB)
	diff := taxJoint.Sub(separate)

	c.logger.Debug("marriage tax computed",
		zap.String("op", "scenario.RunMarriageTax"),
		zap.Int("year", in.Year),
		zap.String("separate", separate.String()),
		zap.String("joint", taxJoint.String()),
	)

	result := &Result{
		Kind: KindMarriageTax,
		Metrics: []Metric{
			currencyMetric("Tax filing single (A)", taxA),
			currencyMetric("Tax filing single (B)", taxB),
			currencyMetric("Combined single tax", separate),
			currencyMetric("Tax filing jointly", taxJoint),
			currencyMetric("Joint minus separate", diff),
		},
	}

	rounded := diff.Round(constants.CurrencyScale)
	switch {
	case rounded.IsPositive():
		result.Notes = append(result.Notes, fmt.Sprintf("marriage penalty of %s", rounded))
	case rounded.IsNegative():
		result.Notes = append(result.Notes, fmt.Sprintf("marriage bonus of %s", rounded.Neg()))
	default:
		result.Notes = append(result.Notes, "filing jointly makes no difference")
	}

	return result, nil
}

// taxableIncome subtracts a deduction and floors at zero.
func taxableIncome(income, deduction decimal.Decimal) decimal.Decimal {
	taxable := income.Sub(deduction)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}
