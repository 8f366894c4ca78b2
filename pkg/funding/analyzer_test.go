package funding

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestAnalyzeScenarios(t *testing.T) {
	tests := []struct {
		name              string
		params            Params
		expectedTotal     float64
		expectedEquity    float64
		expectedAvailable float64
		expectedMinCash   float64
		expectedShortfall float64
		expectedSurplus   float64
	}{
		{
			name: "Purchase funded by loan and deposit",
			params: Params{
				PurchasePrice:     1000000,
				StampDuty:         40000,
				LegalFees:         2000,
				MainLoanAmount:    800000,
				ActualCashDeposit: 242000,
			},
			expectedTotal:   1042000,
			expectedMinCash: 242000,
		},
		{
			name: "Equity covers the gap after the main loan",
			params: Params{
				PurchasePrice:        600000,
				MainLoanAmount:       480000,
				UseEquityFunding:     true,
				PrimarySecurityValue: 900000,
				ExistingDebt:         500000,
				MaxLVR:               80,
			},
			expectedTotal:     600000,
			expectedEquity:    120000,
			expectedAvailable: 220000,
		},
		{
			name: "Equity capped by available equity leaves a shortfall",
			params: Params{
				PurchasePrice:        700000,
				MainLoanAmount:       500000,
				UseEquityFunding:     true,
				PrimarySecurityValue: 500000,
				ExistingDebt:         350000,
				MaxLVR:               80,
				ActualCashDeposit:    20000,
			},
			expectedTotal:     700000,
			expectedEquity:    50000,
			expectedAvailable: 50000,
			expectedMinCash:   150000,
			expectedShortfall: 130000,
		},
		{
			name: "Construction uses land plus build cost and records a surplus",
			params: Params{
				PurchasePrice:       999999,
				ConstructionEnabled: true,
				LandValue:           300000,
				ConstructionValue:   400000,
				ConstructionCosts:   15000,
				HoldingCosts:        21000.55,
				MainLoanAmount:      600000,
				ActualCashDeposit:   150000,
			},
			expectedTotal:   736000.55,
			expectedMinCash: 136000.55,
			expectedSurplus: 13999.45,
		},
		{
			name: "Security already over-leveraged has no equity",
			params: Params{
				PurchasePrice:        500000,
				MainLoanAmount:       400000,
				UseEquityFunding:     true,
				PrimarySecurityValue: 400000,
				ExistingDebt:         390000,
				MaxLVR:               80,
				ActualCashDeposit:    100000,
			},
			expectedTotal:   500000,
			expectedMinCash: 100000,
		},
	}

	analyzer := NewAnalyzer(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.Analyze(tt.params)
			check := func(field string, expected, actual float64) {
				t.Helper()
				if math.Abs(expected-actual) > 0.005 {
					t.Errorf("%s = %.2f, expected %.2f", field, actual, expected)
				}
			}
			check("TotalProjectCost", tt.expectedTotal, result.TotalProjectCost)
			check("EquityLoanAmount", tt.expectedEquity, result.EquityLoanAmount)
			check("AvailableEquity", tt.expectedAvailable, result.AvailableEquity)
			check("MinimumCashRequired", tt.expectedMinCash, result.MinimumCashRequired)
			check("FundingShortfall", tt.expectedShortfall, result.FundingShortfall)
			check("FundingSurplus", tt.expectedSurplus, result.FundingSurplus)

			if !result.Closes() {
				t.Errorf("funding does not close: %+v", result)
			}
			if result.FundingShortfall > 0 && result.FundingSurplus > 0 {
				t.Error("shortfall and surplus cannot both be positive")
			}
		})
	}
}

func TestAnalyzeClosureAcrossDeposits(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	for deposit := 0.0; deposit <= 300000; deposit += 12345.67 {
		result := analyzer.Analyze(Params{
			PurchasePrice:        812345.67,
			StampDuty:            31234.01,
			OtherCosts:           999.99,
			MainLoanAmount:       612000.13,
			UseEquityFunding:     true,
			PrimarySecurityValue: 654321.09,
			ExistingDebt:         400000,
			MaxLVR:               80,
			ActualCashDeposit:    deposit,
		})
		if !result.Closes() {
			t.Fatalf("deposit %.2f: funding does not close: %+v", deposit, result)
		}
	}
}

func TestAnalyzeEquityDisabledIgnoresSecurity(t *testing.T) {
	result := NewAnalyzer(nil).Analyze(Params{
		PurchasePrice:        500000,
		MainLoanAmount:       300000,
		PrimarySecurityValue: 1000000,
		MaxLVR:               80,
	})
	if result.EquityLoanAmount != 0 {
		t.Errorf("EquityLoanAmount = %.2f, expected 0 when equity funding is off", result.EquityLoanAmount)
	}
	if result.AvailableEquity != 800000 {
		t.Errorf("AvailableEquity = %.2f, expected 800000", result.AvailableEquity)
	}
	if result.TotalDebt() != 300000 {
		t.Errorf("TotalDebt = %.2f, expected 300000", result.TotalDebt())
	}
}
