package amortize

import (
	"errors"
	"testing"

	"github.com/fincalcs/calc-engine/pkg/mathutil"
	"github.com/shopspring/decimal"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// monthly converts an annual percentage rate to a monthly decimal fraction.
func monthly(annualPercent float64) decimal.Decimal {
	return dec(annualPercent).Div(dec(100)).Div(dec(12))
}

func TestPaymentAmount(t *testing.T) {
	tests := []struct {
		name         string
		principal    float64
		annualRate   float64
		totalPeriods int
		expectedMin  float64
		expectedMax  float64
	}{
		{
			name:         "guide example 320k at 6.5 over 360",
			principal:    320000,
			annualRate:   6.5,
			totalPeriods: 360,
			expectedMin:  2022.0,
			expectedMax:  2023.0,
		},
		{
			name:         "standard 30-year mortgage",
			principal:    240000,
			annualRate:   6.0,
			totalPeriods: 360,
			expectedMin:  1438,
			expectedMax:  1440,
		},
		{
			name:         "zero interest loan",
			principal:    12000,
			annualRate:   0,
			totalPeriods: 60,
			expectedMin:  199.99,
			expectedMax:  200.01,
		},
		{
			name:         "single period",
			principal:    1000,
			annualRate:   0,
			totalPeriods: 1,
			expectedMin:  999.99,
			expectedMax:  1000.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := PaymentAmount(dec(tt.principal), monthly(tt.annualRate), tt.totalPeriods)
			if err != nil {
				t.Fatalf("PaymentAmount() unexpected error: %v", err)
			}
			p, _ := payment.Float64()
			if p < tt.expectedMin || p > tt.expectedMax {
				t.Errorf("PaymentAmount() = %.4f, expected range [%.2f, %.2f]", p, tt.expectedMin, tt.expectedMax)
			}
		})
	}
}

func TestGenerateInvariants(t *testing.T) {
	g := NewGenerator(nil)
	principal := dec(320000)
	schedule, err := g.Generate(principal, monthly(6.5), 360, Options{})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(schedule) != 360 {
		t.Fatalf("Generate() produced %d entries, want 360", len(schedule))
	}

	// Principal portions sum back to the principal within a cent.
	if !mathutil.WithinCent(schedule.TotalPrincipal(), principal) {
		t.Errorf("sum of principal portions = %s, want %s", schedule.TotalPrincipal(), principal)
	}

	// Terminal balance is zero within a cent.
	final, ok := schedule.Final()
	if !ok {
		t.Fatal("schedule has no final entry")
	}
	if !mathutil.WithinCent(final.ClosingBalance, decimal.Zero) {
		t.Errorf("final closing balance = %s, want 0", final.ClosingBalance)
	}

	// Every entry: principal + interest = payment, closing = opening - principal.
	for _, e := range schedule {
		if !e.Principal.Add(e.Interest).Equal(e.Payment) {
			t.Fatalf("period %d: principal %s + interest %s != payment %s",
				e.Period, e.Principal, e.Interest, e.Payment)
		}
		if !e.OpeningBalance.Sub(e.Principal).Equal(e.ClosingBalance) {
			t.Fatalf("period %d: closing balance %s != opening %s - principal %s",
				e.Period, e.ClosingBalance, e.OpeningBalance, e.Principal)
		}
		if e.ClosingBalance.IsNegative() {
			t.Fatalf("period %d: negative closing balance %s", e.Period, e.ClosingBalance)
		}
	}

	// First month of the guide example: interest ~= 1733.33, principal ~= 288.
	firstInterest, _ := schedule[0].Interest.Float64()
	if !mathutil.WithinTolerance(firstInterest, 1733.33, 0.01) {
		t.Errorf("first month interest = %.4f, want ~1733.33", firstInterest)
	}
	firstPrincipal, _ := schedule[0].Principal.Float64()
	if firstPrincipal < 288 || firstPrincipal > 290 {
		t.Errorf("first month principal = %.4f, want ~288-290", firstPrincipal)
	}
}

func TestGenerateZeroRate(t *testing.T) {
	g := NewGenerator(nil)
	schedule, err := g.Generate(dec(12000), decimal.Zero, 60, Options{})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(schedule) != 60 {
		t.Fatalf("Generate() produced %d entries, want 60", len(schedule))
	}
	expected := dec(200)
	for _, e := range schedule {
		if !e.Interest.IsZero() {
			t.Fatalf("period %d: interest = %s, want 0", e.Period, e.Interest)
		}
		if !mathutil.WithinCent(e.Principal, expected) {
			t.Fatalf("period %d: principal = %s, want %s", e.Period, e.Principal, expected)
		}
	}
	if !mathutil.WithinCent(schedule.TotalPrincipal(), dec(12000)) {
		t.Errorf("sum of principal portions = %s, want 12000", schedule.TotalPrincipal())
	}
}

func TestGenerateExtraPayment(t *testing.T) {
	g := NewGenerator(nil)
	principal := dec(100000)
	base, err := g.Generate(principal, monthly(5), 360, Options{})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	withExtra, err := g.Generate(principal, monthly(5), 360, Options{ExtraPayment: dec(200)})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(withExtra) >= len(base) {
		t.Errorf("extra payments should shorten the schedule: %d vs %d entries", len(withExtra), len(base))
	}
	if withExtra.TotalInterest().GreaterThanOrEqual(base.TotalInterest()) {
		t.Errorf("extra payments should reduce total interest: %s vs %s",
			withExtra.TotalInterest(), base.TotalInterest())
	}
	// Principal still sums back to the original amount.
	if !mathutil.WithinCent(withExtra.TotalPrincipal(), principal) {
		t.Errorf("sum of principal portions = %s, want %s", withExtra.TotalPrincipal(), principal)
	}
	final, _ := withExtra.Final()
	if !final.ClosingBalance.IsZero() {
		t.Errorf("final closing balance = %s, want 0", final.ClosingBalance)
	}
}

func TestGenerateEarlyTermination(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name string
		base PenaltyBase
	}{
		{name: "penalty on interest to date", base: PenaltyOnInterest},
		{name: "penalty on outstanding balance", base: PenaltyOnBalance},
		{name: "default penalty base", base: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := g.Generate(dec(50000), monthly(6), 120, Options{
				EarlyTerminationPeriod: 24,
				PenaltyFraction:        dec(0.02),
				PenaltyBase:            tt.base,
			})
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}

			if len(schedule) != 24 {
				t.Fatalf("Generate() produced %d entries, want 24", len(schedule))
			}
			final, _ := schedule.Final()
			if !final.ClosingBalance.IsZero() {
				t.Errorf("early termination should retire the balance, got %s", final.ClosingBalance)
			}
			if !final.AncillaryFee.IsPositive() {
				t.Errorf("terminal entry should carry the penalty fee, got %s", final.AncillaryFee)
			}

			var expectedBase decimal.Decimal
			if tt.base == PenaltyOnBalance {
				expectedBase = final.OpeningBalance
			} else {
				expectedBase = schedule.TotalInterest()
			}
			want := dec(0.02).Mul(expectedBase)
			if !mathutil.WithinCent(final.AncillaryFee, want) {
				t.Errorf("penalty fee = %s, want %s", final.AncillaryFee, want)
			}
		})
	}
}

func TestGenerateAncillaryFee(t *testing.T) {
	g := NewGenerator(nil)
	feeRate := dec(0.0055).Div(dec(12))

	// Without a cutoff the fee applies every period.
	schedule, err := g.Generate(dec(200000), monthly(6), 360, Options{AncillaryFeeRate: feeRate})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	for _, e := range schedule {
		if !e.AncillaryFee.IsPositive() {
			t.Fatalf("period %d: fee = %s, want positive", e.Period, e.AncillaryFee)
		}
	}

	// With a cutoff the fee stops once the balance falls below the ratio.
	withCutoff, err := g.Generate(dec(200000), monthly(6), 360, Options{
		AncillaryFeeRate:   feeRate,
		AncillaryFeeCutoff: dec(0.78),
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	final, _ := withCutoff.Final()
	if !final.AncillaryFee.IsZero() {
		t.Errorf("fee should stop below the cutoff, final fee = %s", final.AncillaryFee)
	}
	if !withCutoff.TotalFees().LessThan(schedule.TotalFees()) {
		t.Errorf("cutoff should reduce total fees: %s vs %s", withCutoff.TotalFees(), schedule.TotalFees())
	}

	// Fees never change the balance math.
	if !withCutoff.TotalPrincipal().Equal(schedule.TotalPrincipal()) {
		t.Errorf("fees must not affect principal: %s vs %s",
			withCutoff.TotalPrincipal(), schedule.TotalPrincipal())
	}
}

func TestGenerateInvalidParameters(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		periods   int
		opts      Options
	}{
		{name: "negative principal", principal: dec(-1), rate: decimal.Zero, periods: 12},
		{name: "negative rate", principal: dec(1000), rate: dec(-0.01), periods: 12},
		{name: "zero periods", principal: dec(1000), rate: decimal.Zero, periods: 0},
		{name: "negative extra payment", principal: dec(1000), rate: decimal.Zero, periods: 12,
			opts: Options{ExtraPayment: dec(-5)}},
		{name: "negative termination period", principal: dec(1000), rate: decimal.Zero, periods: 12,
			opts: Options{EarlyTerminationPeriod: -1}},
		{name: "termination period at term", principal: dec(1000), rate: decimal.Zero, periods: 12,
			opts: Options{EarlyTerminationPeriod: 12}},
		{name: "negative penalty fraction", principal: dec(1000), rate: decimal.Zero, periods: 12,
			opts: Options{PenaltyFraction: dec(-0.01)}},
		{name: "unknown penalty base", principal: dec(1000), rate: decimal.Zero, periods: 12,
			opts: Options{PenaltyBase: "fees"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Generate(tt.principal, tt.rate, tt.periods, tt.opts); !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("Generate() error = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestScheduleZeroPrincipal(t *testing.T) {
	g := NewGenerator(nil)
	schedule, err := g.Generate(decimal.Zero, monthly(5), 12, Options{})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(schedule) != 0 {
		t.Errorf("zero principal should produce an empty schedule, got %d entries", len(schedule))
	}
}

func TestScheduleRounded(t *testing.T) {
	g := NewGenerator(nil)
	schedule, err := g.Generate(dec(320000), monthly(6.5), 360, Options{})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	for _, e := range schedule.Rounded() {
		if e.Payment.Exponent() < -2 {
			t.Fatalf("period %d: rounded payment %s has more than two decimal places", e.Period, e.Payment)
		}
	}
}
