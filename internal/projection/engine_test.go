package projection_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tolerance = 0.01

// scenarioRecord is the reference negatively geared purchase: a new
// $1m property let at $500 a week with an $800k P&I loan.
func scenarioRecord() config.PropertyRecord {
	return config.PropertyRecord{
		Name:                "Reference scenario",
		State:               "NSW",
		StartDate:           "2025-07",
		PurchasePrice:       1000000,
		WeeklyRent:          500,
		VacancyRate:         2,
		IsNewProperty:       true,
		DepreciationMethod:  "prime-cost",
		BuildingValue:       800000,
		PlantEquipmentValue: 50000,
		Construction:        config.ConstructionConfig{ConstructionYear: 2020},
		MainLoan:            config.LoanConfig{Amount: 800000, InterestRate: 6, TermYears: 30, Type: "pi"},
		DepositAmount:       200000,
		Expenses: config.Expenses{
			CouncilRates:       2000,
			Insurance:          1500,
			Repairs:            2000,
			PropertyManagement: 7,
		},
		Investors: []config.Investor{{ID: "owner", AnnualIncome: 120000}},
		Ownership: []config.OwnershipAllocation{{InvestorID: "owner", Percentage: 100}},
	}
}

func constructionRecord(policy string) config.PropertyRecord {
	record := scenarioRecord()
	record.Construction = config.ConstructionConfig{
		Enabled:           true,
		ConstructionYear:  2026,
		PeriodMonths:      12,
		InterestRate:      6,
		LandValue:         400000,
		ConstructionValue: 600000,
		ProgressPayments: []config.ProgressPayment{
			{Percentage: 10, Month: 0, Description: "Deposit"},
			{Percentage: 40, Month: 6, Description: "Frame"},
			{Percentage: 50, Month: 12, Description: "Completion"},
		},
	}
	record.CapitaliseInterest = true
	record.HoldingCostFunding = config.HoldingCostFunding{Policy: policy}
	return record
}

func newEngine() *projection.Engine {
	return projection.NewEngine(zap.NewNop(), config.DefaultAssumptions())
}

func TestProjectReferenceScenario(t *testing.T) {
	result, err := newEngine().Project(scenarioRecord(), 1, 30)
	require.NoError(t, err)
	require.Len(t, result.Years, 30)
	assert.Nil(t, result.Construction)

	year1 := testutil.MustFindYear(t, result.Years, 1)
	assert.InDelta(t, 25480, year1.RentalIncome, tolerance)
	assert.InDelta(t, 27500, year1.Depreciation.Total, tolerance)
	assert.InDelta(t, 1000000, year1.PropertyValue, tolerance)
	assert.Equal(t, "2025-26", year1.FinancialYear)
	assert.Equal(t, loans.PrincipalAndInterest, year1.MainLoanStatus)
	assert.InDelta(t, 4796.40*12, year1.MainPayment, 0.5)

	expectedExpenses := 0.07*25480 + 5500
	assert.InDelta(t, expectedExpenses, year1.OperatingExpenses, tolerance)
	assert.InDelta(t, year1.RentalIncome-year1.MainInterest-year1.OperatingExpenses-27500, year1.TaxableIncome, tolerance)

	assert.Less(t, year1.TaxableIncome, 0.0)
	assert.Less(t, year1.TaxDelta, 0.0)
	assert.InDelta(t, -year1.TaxDelta, year1.TaxBenefit, 1e-9)
	assert.InDelta(t, year1.RentalIncome-year1.OperatingExpenses-year1.MainPayment+year1.TaxBenefit, year1.AfterTaxCashFlow, tolerance)

	for i := 1; i < len(result.Years); i++ {
		prev, curr := result.Years[i-1], result.Years[i]
		assert.Greater(t, curr.PropertyEquity, prev.PropertyEquity, "equity should grow in year %d", curr.Year)
		assert.Less(t, curr.MainLoanBalance, prev.MainLoanBalance, "balance should fall in year %d", curr.Year)
		assert.InDelta(t, prev.PropertyValue*1.07, curr.PropertyValue, tolerance)
		assert.InDelta(t, curr.AfterTaxCashFlow+curr.PropertyValue-prev.PropertyValue, curr.TotalReturn, tolerance)
	}

	year30 := testutil.MustFindYear(t, result.Years, 30)
	assert.InDelta(t, 0, year30.MainLoanBalance, tolerance)
	assert.InDelta(t, year30.PropertyValue, year30.PropertyEquity, tolerance)
}

func TestProjectCumulativeCashFlowIdentity(t *testing.T) {
	for _, record := range []config.PropertyRecord{scenarioRecord(), constructionRecord("hybrid"), constructionRecord("cash")} {
		result, err := newEngine().Project(record, 1, 40)
		require.NoError(t, err)

		assert.InDelta(t, result.Years[0].AfterTaxCashFlow, result.Years[0].CumulativeCashFlow, 1e-9)
		for i := 1; i < len(result.Years); i++ {
			prev, curr := result.Years[i-1], result.Years[i]
			assert.InDelta(t, prev.CumulativeCashFlow+curr.AfterTaxCashFlow, curr.CumulativeCashFlow, 1e-6,
				"year %d", curr.Year)
		}
	}
}

func TestProjectConstructionPhase(t *testing.T) {
	tests := []struct {
		name             string
		policy           string
		capitalised      float64
		expectedAfterTax float64
	}{
		// 48,000 of interest; the owner's tax falls by 14,400 at 30%.
		{"Debt policy", "debt", 48000, 14400},
		{"Cash policy", "cash", 0, -48000 + 14400},
		{"Hybrid policy", "hybrid", 48000 * 0.75, -12000 + 14400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := constructionRecord(tt.policy)
			record.HoldingCostFunding.CashPercentage = 25

			result, err := newEngine().Project(record, 1, 30)
			require.NoError(t, err)
			require.NotNil(t, result.Construction)
			require.Len(t, result.Years, 31)

			year0 := result.Years[0]
			assert.Equal(t, 0, year0.Year)
			assert.Equal(t, "2024-25", year0.FinancialYear)
			assert.InDelta(t, -48000, year0.TaxableIncome, tolerance)
			assert.InDelta(t, 14400, year0.TaxBenefit, tolerance)
			assert.InDelta(t, tt.expectedAfterTax, year0.AfterTaxCashFlow, tolerance)
			assert.InDelta(t, 800000+tt.capitalised, year0.MainLoanBalance, tolerance)
			assert.Zero(t, year0.RentalIncome)

			year1 := result.Years[1]
			opening := 800000 + tt.capitalised
			expectedInterest := 0.0
			balance := opening
			payment := loans.CalculateMonthlyPayment(opening, 6, 360)
			for m := 0; m < 12; m++ {
				interest := balance * 0.005
				expectedInterest += interest
				balance -= payment - interest
			}
			assert.InDelta(t, expectedInterest, year1.MainInterest, 0.5)
			assert.InDelta(t, balance, year1.MainLoanBalance, 0.5)
			assert.InDelta(t, 1000000, year1.PropertyValue, tolerance)

			require.Len(t, result.Construction.Drawdowns, 3)
			assert.InDelta(t, 600000, result.Construction.Drawdowns[2].CumulativeAmount, tolerance)
			assert.True(t, result.Funding.Closes())
		})
	}
}

func TestProjectHoldingCostsFeedFunding(t *testing.T) {
	record := constructionRecord("cash")
	result, err := newEngine().Project(record, 1, 5)
	require.NoError(t, err)

	// land + build + cash interest + a year of rates and insurance
	assert.InDelta(t, 48000+3500, result.Construction.HoldingCosts, tolerance)
	assert.InDelta(t, 1000000+48000+3500, result.Funding.TotalProjectCost, tolerance)

	record.HoldingCostFunding.Policy = "debt"
	result, err = newEngine().Project(record, 1, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3500, result.Construction.HoldingCosts, tolerance)
}

func TestProjectEquityLoan(t *testing.T) {
	record := scenarioRecord()
	record.MainLoan.Amount = 700000
	record.DepositAmount = 0
	record.EquityLoan = config.EquityLoanConfig{
		Enabled:              true,
		InterestRate:         6.5,
		TermYears:            30,
		Type:                 "io",
		PrimarySecurityValue: 1000000,
		ExistingDebt:         300000,
		MaxLVR:               80,
	}

	result, err := newEngine().Project(record, 1, 10)
	require.NoError(t, err)
	assert.InDelta(t, 300000, result.Funding.EquityLoanAmount, tolerance)
	assert.InDelta(t, 500000, result.Funding.AvailableEquity, tolerance)

	for _, row := range result.Years {
		assert.Equal(t, loans.InterestOnly, row.EquityLoanStatus)
		assert.InDelta(t, 300000, row.EquityLoanBalance, tolerance)
		assert.InDelta(t, 300000*0.065, row.EquityInterest, tolerance)
	}
	assert.Empty(t, result.Warnings)
}

func TestProjectAmortisingEquityDuringConstruction(t *testing.T) {
	record := constructionRecord("debt")
	record.MainLoan.Amount = 900000
	record.DepositAmount = 0
	record.EquityLoan = config.EquityLoanConfig{
		Enabled:              true,
		InterestRate:         6,
		TermYears:            10,
		Type:                 "pi",
		PrimarySecurityValue: 1000000,
		MaxLVR:               80,
	}

	result, err := newEngine().Project(record, 1, 12)
	require.NoError(t, err)
	accrual := result.Construction.Accrual
	assert.Equal(t, 12, accrual.Equity.MonthsConsumed)
	assert.Greater(t, accrual.Equity.PrincipalPaid, 0.0)

	// Nine years of term remain once construction ends.
	year9 := testutil.MustFindYear(t, result.Years, 9)
	year10 := testutil.MustFindYear(t, result.Years, 10)
	assert.InDelta(t, 0, year9.EquityLoanBalance, tolerance)
	assert.Zero(t, year10.EquityPayment)
	assert.Zero(t, year10.EquityInterest)
}

func TestProjectInterestOnlyForLife(t *testing.T) {
	record := scenarioRecord()
	record.MainLoan.Type = "io"
	record.MainLoan.IOTermYears = 30

	result, err := newEngine().Project(record, 1, 30)
	require.NoError(t, err)
	for _, row := range result.Years {
		assert.InDelta(t, 800000, row.MainLoanBalance, tolerance)
		assert.Equal(t, loans.InterestOnly, row.MainLoanStatus)
	}
}

func TestProjectRangeAndSummary(t *testing.T) {
	engine := newEngine()
	full, err := engine.Project(scenarioRecord(), 1, 10)
	require.NoError(t, err)
	partial, err := engine.Project(scenarioRecord(), 5, 10)
	require.NoError(t, err)

	require.Len(t, partial.Years, 6)
	assert.Equal(t, 5, partial.Years[0].Year)
	year5 := testutil.MustFindYear(t, full.Years, 5)
	assert.InDelta(t, year5.CumulativeCashFlow, partial.Years[0].CumulativeCashFlow, 1e-6)

	summary := partial.Summary
	assert.Equal(t, 5, summary.From)
	assert.Equal(t, 10, summary.To)
	assert.InDelta(t, year5.AfterTaxCashFlow/52, summary.WeeklyCashFlow, 1e-9)

	year10 := testutil.MustFindYear(t, full.Years, 10)
	assert.InDelta(t, year10.PropertyEquity, summary.EquityAtEnd, 1e-9)

	savings, rent := 0.0, 0.0
	for _, row := range full.Years {
		savings += row.TaxBenefit
		rent += row.RentalIncome
	}
	assert.InDelta(t, savings, summary.CumulativeTaxSavings, 1e-6)
	assert.InDelta(t, rent, summary.TotalRentalIncome, 1e-6)

	contributed := 200000 - year10.CumulativeCashFlow
	assert.InDelta(t, contributed, summary.NetCashContributed, 1e-6)
	assert.InDelta(t, year10.PropertyEquity/contributed*100, summary.ROI, 1e-9)

	clamped, err := engine.Project(scenarioRecord(), 0, -3)
	require.NoError(t, err)
	require.Len(t, clamped.Years, 1)
	assert.Equal(t, 1, clamped.Years[0].Year)
}

func TestProjectIsDeterministicAndPure(t *testing.T) {
	record := scenarioRecord()
	record.Investors[0].ID = ""
	record.Ownership = nil

	engine := newEngine()
	first, err := engine.Project(record, 1, 20)
	require.NoError(t, err)
	second, err := engine.Project(record, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "", record.Investors[0].ID, "caller's record must not be modified")
	assert.Less(t, first.Years[0].TaxDelta, 0.0, "an unallocated single investor owns the whole property")
}

func TestProjectDegradesGracefully(t *testing.T) {
	record := config.PropertyRecord{WeeklyRent: 300, PurchasePrice: 400000}
	result, err := newEngine().Project(record, 1, 5)
	require.NoError(t, err)
	for _, row := range result.Years {
		assert.False(t, math.IsNaN(row.AfterTaxCashFlow))
		assert.Zero(t, row.MainLoanBalance)
		assert.Zero(t, row.TaxDelta)
	}
	assert.Zero(t, result.Summary.ROI)
}

func TestProjectNilEngine(t *testing.T) {
	var engine *projection.Engine
	_, err := engine.Project(scenarioRecord(), 1, 5)
	assert.ErrorIs(t, err, projection.ErrNilEngine)
}

func TestProjectWarnings(t *testing.T) {
	record := scenarioRecord()
	record.DepositAmount = 50000
	result, err := newEngine().Project(record, 1, 45)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Funding shortfall of 150000.00")
	assert.Contains(t, result.Warnings[1], "speculative")
}

func TestProjectBatch(t *testing.T) {
	engine := newEngine()
	slow := config.DefaultAssumptions()
	slow.CapitalGrowthRate = 2

	requests := []projection.Request{
		{ID: "a", Property: scenarioRecord(), To: 10},
		{ID: "b", Property: constructionRecord("debt"), To: 5},
		{ID: "c", Property: scenarioRecord(), Assumptions: &slow, To: 10},
	}

	results, err := engine.ProjectBatch(context.Background(), requests, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, requests[i].ID, r.ID)
		assert.Empty(t, r.Error)
		require.NotNil(t, r.Result)
	}
	assert.Len(t, results[0].Result.Years, 10)
	assert.Len(t, results[1].Result.Years, 6)

	a10 := testutil.MustFindYear(t, results[0].Result.Years, 10)
	c10 := testutil.MustFindYear(t, results[2].Result.Years, 10)
	assert.Greater(t, a10.PropertyValue, c10.PropertyValue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.ProjectBatch(ctx, requests, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProjectRequestPartialAssumptions(t *testing.T) {
	body, err := json.Marshal(map[string]interface{}{
		"property":    scenarioRecord(),
		"assumptions": map[string]interface{}{"rentalGrowthSource": "record"},
		"to":          3,
	})
	require.NoError(t, err)

	var req projection.Request
	require.NoError(t, json.Unmarshal(body, &req))
	require.NotNil(t, req.Assumptions)

	result, err := newEngine().ProjectRequest(req)
	require.NoError(t, err)
	baseline, err := newEngine().Project(scenarioRecord(), 1, 3)
	require.NoError(t, err)

	year1 := testutil.MustFindYear(t, result.Years, 1)
	year2 := testutil.MustFindYear(t, result.Years, 2)
	assert.InDelta(t, year1.PropertyValue*1.07, year2.PropertyValue, tolerance)
	assert.InDelta(t, testutil.MustFindYear(t, baseline.Years, 2).PropertyValue, year2.PropertyValue, tolerance)
	assert.Greater(t, year2.OperatingExpenses, year1.OperatingExpenses)
	assert.InDelta(t, year1.RentalIncome, year2.RentalIncome, tolerance, "record growth rate is unset so rent is flat")
}

func TestCache(t *testing.T) {
	engine := newEngine()
	c := projection.NewCache(time.Minute)
	req := projection.Request{ID: "first", Property: scenarioRecord(), To: 5}

	first, hit, err := c.Project(engine, req)
	require.NoError(t, err)
	assert.False(t, hit)

	req.ID = "second"
	second, hit, err := c.Project(engine, req)
	require.NoError(t, err)
	assert.True(t, hit, "request ID is not part of the key")
	assert.Same(t, first, second)

	req.To = 6
	_, hit, err = c.Project(engine, req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, c.Len())

	k1, err := projection.Key(projection.Request{Property: scenarioRecord()})
	require.NoError(t, err)
	k2, err := projection.Key(projection.Request{Property: scenarioRecord()})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)
}
