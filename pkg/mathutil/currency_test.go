package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
		{"Large negative", -12345.678, -12345.68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      float64
		tolerance float64
		expected  bool
	}{
		{"Equal", 10, 10, 0, true},
		{"Inside tolerance", 100, 100.5, 1, true},
		{"On the boundary", 100, 101, 1, true},
		{"Outside tolerance", 100, 101.5, 1, false},
		{"Order does not matter", 101.5, 100, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := WithinTolerance(tt.a, tt.b, tt.tolerance); result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Positive unchanged", 12.5, 12.5},
		{"Zero unchanged", 0, 0},
		{"Negative clamped", -0.01, 0},
		{"NaN clamped", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := NonNegative(tt.input); result != tt.expected {
				t.Errorf("NonNegative(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCompound(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		periods  int
		expected float64
	}{
		{"No periods", 7, 0, 1},
		{"Negative periods", 7, -3, 1},
		{"One period", 7, 1, 1.07},
		{"Two periods", 5, 2, 1.1025},
		{"Zero rate", 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compound(tt.rate, tt.periods)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Compound(%v, %d) = %v, expected %v", tt.rate, tt.periods, result, tt.expected)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(10, 0); got != 0 {
		t.Errorf("SafeDivide(10, 0) = %v, expected 0", got)
	}
	if got := SafeDivide(10, 4); got != 2.5 {
		t.Errorf("SafeDivide(10, 4) = %v, expected 2.5", got)
	}
}

func TestPercentHelpers(t *testing.T) {
	if got := PercentToDecimal(6.5); math.Abs(got-0.065) > 1e-12 {
		t.Errorf("PercentToDecimal(6.5) = %v, expected 0.065", got)
	}
	if got := ApplyPercentage(25480, 7); math.Abs(got-1783.6) > 1e-9 {
		t.Errorf("ApplyPercentage(25480, 7) = %v, expected 1783.6", got)
	}
	if got := Max(-1, 2); got != 2 {
		t.Errorf("Max(-1, 2) = %v, expected 2", got)
	}
	if got := Min(-1, 2); got != -1 {
		t.Errorf("Min(-1, 2) = %v, expected -1", got)
	}
}
