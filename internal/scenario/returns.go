package scenario

import (
	"errors"

	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/fincalcs/calc-engine/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AverageReturnInput holds a list of per-period returns in percent (e.g. 50
// for +50%). InitialValue is optional; when positive, the result includes the
// compounded ending value and CAGR treating each return as one year.
type AverageReturnInput struct {
	Returns      []float64 `json:"returns" yaml:"returns"`
	InitialValue float64   `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
}

// RunAverageReturn contrasts the arithmetic and geometric mean of a return
// sequence, the distinction the average-return guide content is built around.
func (c *Composer) RunAverageReturn(in AverageReturnInput) (*Result, error) {
	if len(in.Returns) == 0 {
		return nil, invalidf("returns", "at least one return is required")
	}
	if in.InitialValue < 0 {
		return nil, invalidf("initialValue", "must be non-negative, got %.2f", in.InitialValue)
	}

	fractions := make([]float64, len(in.Returns))
	for i, r := range in.Returns {
		fractions[i] = r / constants.PercentageMultiplier
	}

	arithmetic, err := metrics.ArithmeticMean(fractions)
	if err != nil {
		return nil, err
	}
	geometric, err := metrics.GeometricMean(fractions)
	if err != nil {
		if errors.Is(err, metrics.ErrInvalidReturn) {
			return nil, invalidf("returns", "returns of -100%% or worse have no geometric mean")
		}
		return nil, err
	}

	c.logger.Debug("average return computed",
		zap.String("op", "scenario.RunAverageReturn"),
		zap.Int("periods", len(in.Returns)),
		zap.Float64("arithmetic", arithmetic),
		zap.Float64("geometric", geometric),
	)

	result := &Result{
		Kind: KindAverageReturn,
		Metrics: []Metric{
			percentMetric("Arithmetic mean return", arithmetic),
			percentMetric("Geometric mean return", geometric),
			countMetric("Periods", len(in.Returns), ""),
		},
	}

	if in.InitialValue > 0 {
		value := decimal.NewFromFloat(in.InitialValue)
		for _, f := range fractions {
			value = value.Mul(decimal.NewFromFloat(1 + f))
		}
		finalF, _ := value.Float64()
		growth, err := metrics.CAGR(in.InitialValue, finalF, float64(len(in.Returns)))
		if err != nil {
			return nil, err
		}
		result.Metrics = append(result.Metrics,
			currencyMetric("Ending value", value),
			percentMetric("CAGR", growth),
		)
	}

	return result, nil
}
