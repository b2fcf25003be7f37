package mathutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "round down", input: 1.234, expected: 1.23},
		{name: "round up", input: 1.236, expected: 1.24},
		{name: "negative value", input: -1.236, expected: -1.24},
		{name: "already rounded", input: 5.10, expected: 5.10},
		{name: "zero", input: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.input); got != tt.expected {
				t.Errorf("Round(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "truncates sub-cent precision", input: "2022.6177", expected: "2022.62"},
		{name: "half rounds away", input: "0.005", expected: "0.01"},
		{name: "negative", input: "-1.005", expected: "-1.01"},
		{name: "integer unchanged", input: "360", expected: "360"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.input, err)
			}
			want, err := decimal.NewFromString(tt.expected)
			if err != nil {
				t.Fatalf("bad expected value %q: %v", tt.expected, err)
			}
			if got := RoundCents(in); !got.Equal(want) {
				t.Errorf("RoundCents(%s) = %s, want %s", in, got, want)
			}
		})
	}
}

func TestIsZeroAndIsPositive(t *testing.T) {
	if !IsZero(0.005) {
		t.Error("IsZero(0.005) should be true within the cent tolerance")
	}
	if IsZero(0.02) {
		t.Error("IsZero(0.02) should be false")
	}
	if !IsPositive(0.02) {
		t.Error("IsPositive(0.02) should be true")
	}
	if IsPositive(0.005) {
		t.Error("IsPositive(0.005) should be false within the cent tolerance")
	}
}

func TestWithinCent(t *testing.T) {
	a := decimal.NewFromFloat(100.00)
	b := decimal.NewFromFloat(100.01)
	c := decimal.NewFromFloat(100.02)

	if !WithinCent(a, b) {
		t.Error("WithinCent(100.00, 100.01) should be true")
	}
	if WithinCent(a, c) {
		t.Error("WithinCent(100.00, 100.02) should be false")
	}
	if !WithinCent(a, a) {
		t.Error("WithinCent(x, x) should be true")
	}
}

func TestPercentToFraction(t *testing.T) {
	if got := PercentToFraction(6.5); got != 0.065 {
		t.Errorf("PercentToFraction(6.5) = %v, want 0.065", got)
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(28, 100); got != 28 {
		t.Errorf("CalculatePercentage(28, 100) = %v, want 28", got)
	}
	if got := CalculatePercentage(100, 0); got != 0 {
		t.Errorf("CalculatePercentage(100, 0) = %v, want 0", got)
	}
}
