// Package scenario orchestrates the engine packages for each calculator:
// it validates a fresh input snapshot, runs the bracket, amortization, and
// metrics computations, and packages a result for display. Every invocation
// is a single synchronous pipeline with no retained state.
package scenario

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/amortize"
	"github.com/fincalcs/calc-engine/pkg/brackets"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/fincalcs/calc-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator kinds accepted by Run.
const (
	KindMortgage       = "mortgage"
	KindFHA            = "fha"
	KindCD             = "cd"
	KindMarriageTax    = "marriageTax"
	KindIncomeTax      = "incomeTax"
	KindAverageReturn  = "averageReturn"
	KindAffordability  = "affordability"
	KindSimpleInterest = "simpleInterest"
)

// ValidationError reports a rejected input with the offending field so the
// UI can render a field-level message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Metric is one labeled output value. Unit is "USD", "%", "months", "years",
// or empty for dimensionless values.
type Metric struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit,omitempty"`
}

// Result is the derived output record for one calculation. It is read-only
// and replaced wholesale on the next recalculation.
type Result struct {
	Kind     string            `json:"kind"`
	Name     string            `json:"name,omitempty"`
	Metrics  []Metric          `json:"metrics"`
	Schedule amortize.Schedule `json:"schedule,omitempty"`
	Notes    []string          `json:"notes,omitempty"`
}

// TaxTable couples a filing status's bracket table with its standard
// deduction.
type TaxTable struct {
	StandardDeduction decimal.Decimal
	Brackets          brackets.Table
}

// TaxTables holds the configured bracket data: tax year -> filing status ->
// table. Bracket data is configuration, never embedded in the engine.
type TaxTables map[int]map[string]TaxTable

// MIPTier selects a monthly mortgage insurance rate by loan term and
// origination LTV. Zero limits mean "no limit"; the first matching tier wins.
type MIPTier struct {
	MaxTermMonths int
	MaxLTV        float64
	AnnualRate    float64
}

// Config carries the externally supplied rate data the composers need.
type Config struct {
	TaxTables      TaxTables
	UpfrontMIPRate float64
	MIPTiers       []MIPTier
}

// Composer runs calculator scenarios against the configured rate data.
type Composer struct {
	logger         *zap.Logger
	gen            *amortize.Generator
	taxTables      TaxTables
	upfrontMIPRate decimal.Decimal
	mipTiers       []MIPTier
}

// NewComposer creates a composer. Missing FHA rate data falls back to the
// package defaults.
func NewComposer(logger *zap.Logger, cfg Config) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	upfront := cfg.UpfrontMIPRate
	if upfront == 0 {
		upfront = constants.DefaultUpfrontMIPRate
	}
	return &Composer{
		logger:         logger,
		gen:            amortize.NewGenerator(logger),
		taxTables:      cfg.TaxTables,
		upfrontMIPRate: decimal.NewFromFloat(upfront),
		mipTiers:       cfg.MIPTiers,
	}
}

// Request is one calculator invocation: a kind plus the matching input
// record. Exactly the field named by Kind must be set.
type Request struct {
	Name           string               `json:"name,omitempty" yaml:"name,omitempty"`
	Kind           string               `json:"kind" yaml:"kind"`
	Mortgage       *MortgageInput       `json:"mortgage,omitempty" yaml:"mortgage,omitempty"`
	FHA            *FHAInput            `json:"fha,omitempty" yaml:"fha,omitempty"`
	CD             *CDInput             `json:"cd,omitempty" yaml:"cd,omitempty"`
	MarriageTax    *MarriageTaxInput    `json:"marriageTax,omitempty" yaml:"marriageTax,omitempty"`
	IncomeTax      *IncomeTaxInput      `json:"incomeTax,omitempty" yaml:"incomeTax,omitempty"`
	AverageReturn  *AverageReturnInput  `json:"averageReturn,omitempty" yaml:"averageReturn,omitempty"`
	Affordability  *AffordabilityInput  `json:"affordability,omitempty" yaml:"affordability,omitempty"`
	SimpleInterest *SimpleInterestInput `json:"simpleInterest,omitempty" yaml:"simpleInterest,omitempty"`
}

// Run dispatches a request to the matching calculator.
func (c *Composer) Run(req Request) (*Result, error) {
	var (
		result *Result
		err    error
	)

	switch req.Kind {
	case KindMortgage:
		if req.Mortgage == nil {
			return nil, invalidf("mortgage", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunMortgage(*req.Mortgage)
	case KindFHA:
		if req.FHA == nil {
			return nil, invalidf("fha", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunFHA(*req.FHA)
	case KindCD:
		if req.CD == nil {
			return nil, invalidf("cd", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunCD(*req.CD)
	case KindMarriageTax:
		if req.MarriageTax == nil {
			return nil, invalidf("marriageTax", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunMarriageTax(*req.MarriageTax)
	case KindIncomeTax:
		if req.IncomeTax == nil {
			return nil, invalidf("incomeTax", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunIncomeTax(*req.IncomeTax)
	case KindAverageReturn:
		if req.AverageReturn == nil {
			return nil, invalidf("averageReturn", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunAverageReturn(*req.AverageReturn)
	case KindAffordability:
		if req.Affordability == nil {
			return nil, invalidf("affordability", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunAffordability(*req.Affordability)
	case KindSimpleInterest:
		if req.SimpleInterest == nil {
			return nil, invalidf("simpleInterest", "missing input for kind %q", req.Kind)
		}
		result, err = c.RunSimpleInterest(*req.SimpleInterest)
	default:
		return nil, invalidf("kind", "unknown calculator kind %q", req.Kind)
	}

	if err != nil {
		return nil, err
	}
	result.Name = req.Name
	return result, nil
}

// taxTable looks up the configured table for a year and filing status.
func (c *Composer) taxTable(year int, status string) (TaxTable, error) {
	statuses, ok := c.taxTables[year]
	if !ok {
		return TaxTable{}, invalidf("year", "no bracket tables configured for tax year %d", year)
	}
	table, ok := statuses[status]
	if !ok {
		return TaxTable{}, invalidf("filingStatus", "no bracket table configured for status %q in %d", status, year)
	}
	return table, nil
}

func currencyMetric(label string, v decimal.Decimal) Metric {
	return Metric{Label: label, Value: mathutil.RoundCents(v), Unit: "USD"}
}

// percentMetric renders a fractional rate as a percentage rounded to four
// places (e.g. 0.065 -> 6.5).
func percentMetric(label string, fraction float64) Metric {
	v := decimal.NewFromFloat(fraction * constants.PercentageMultiplier).Round(4)
	return Metric{Label: label, Value: v, Unit: "%"}
}

func countMetric(label string, n int, unit string) Metric {
	return Metric{Label: label, Value: decimal.NewFromInt(int64(n)), Unit: unit}
}

// validateLoanBasics applies the shared caps for principal, rate, and term.
func validateLoanBasics(principal, annualRatePercent float64, termMonths int) error {
	if principal <= 0 {
		return invalidf("principal", "must be positive, got %.2f", principal)
	}
	if principal > constants.MaxPrincipal {
		return invalidf("principal", "exceeds maximum of %.0f", float64(constants.MaxPrincipal))
	}
	if annualRatePercent < 0 {
		return invalidf("annualRate", "must be non-negative, got %.4f", annualRatePercent)
	}
	if annualRatePercent > constants.MaxAnnualRatePercent {
		return invalidf("annualRate", "exceeds maximum of %.0f%%", float64(constants.MaxAnnualRatePercent))
	}
	if termMonths < 1 {
		return invalidf("termMonths", "must be at least 1, got %d", termMonths)
	}
	if termMonths > constants.MaxTermMonths {
		return invalidf("termMonths", "exceeds maximum of %d months", constants.MaxTermMonths)
	}
	return nil
}

// monthlyRate converts a user-facing annual percentage to a decimal monthly
// fraction.
func monthlyRate(annualRatePercent float64) decimal.Decimal {
	return decimal.NewFromFloat(annualRatePercent).
		Div(decimal.NewFromInt(constants.PercentageMultiplier)).
		Div(decimal.NewFromInt(constants.MonthsPerYear))
}
