package projection

import (
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/depreciation"
	"github.com/iwvelando/property-forecast/pkg/funding"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/tax"
)

// YearProjection is one row of a projection. Year 0 is the construction
// phase; years 1..N are operating years.
type YearProjection struct {
	Year          int    `json:"year"`
	FinancialYear string `json:"financialYear,omitempty"`

	RentalIncome  float64 `json:"rentalIncome"`
	PropertyValue float64 `json:"propertyValue"`

	MainLoanBalance   float64             `json:"mainLoanBalance"`
	EquityLoanBalance float64             `json:"equityLoanBalance"`
	MainInterest      float64             `json:"mainInterest"`
	EquityInterest    float64             `json:"equityInterest"`
	MainPayment       float64             `json:"mainPayment"`
	EquityPayment     float64             `json:"equityPayment"`
	MainLoanStatus    loans.RepaymentType `json:"mainLoanStatus"`
	EquityLoanStatus  loans.RepaymentType `json:"equityLoanStatus"`

	OperatingExpenses float64             `json:"operatingExpenses"`
	Depreciation      depreciation.Result `json:"depreciation"`

	TaxableIncome float64 `json:"taxableIncome"`
	// TaxDelta is the change in the investors' combined tax; negative is a saving.
	TaxDelta float64 `json:"taxDelta"`
	// TaxBenefit is -TaxDelta; positive is a saving added to cash flow.
	TaxBenefit float64 `json:"taxBenefit"`

	AfterTaxCashFlow   float64 `json:"afterTaxCashFlow"`
	CumulativeCashFlow float64 `json:"cumulativeCashFlow"`
	PropertyEquity     float64 `json:"propertyEquity"`
	TotalReturn        float64 `json:"totalReturn"`

	Investors []tax.InvestorImpact `json:"investors,omitempty"`
}

// TotalInterest is the interest on both loans for the year.
func (y YearProjection) TotalInterest() float64 {
	return y.MainInterest + y.EquityInterest
}

// TotalPayments is the repayments on both loans for the year.
func (y YearProjection) TotalPayments() float64 {
	return y.MainPayment + y.EquityPayment
}

// TotalDebt is the combined closing loan balance.
func (y YearProjection) TotalDebt() float64 {
	return y.MainLoanBalance + y.EquityLoanBalance
}

// InvestmentSummary condenses a projection.
type InvestmentSummary struct {
	From int `json:"from"`
	To   int `json:"to"`

	WeeklyCashFlow       float64 `json:"weeklyCashFlow"`
	CumulativeTaxSavings float64 `json:"cumulativeTaxSavings"`
	EquityAtEnd          float64 `json:"equityAtEnd"`
	// ROI is equity at the end over net cash contributed, in percent.
	ROI float64 `json:"roi"`

	CumulativeCashFlow float64 `json:"cumulativeCashFlow"`
	NetCashContributed float64 `json:"netCashContributed"`
	TotalRentalIncome  float64 `json:"totalRentalIncome"`
	TotalInterest      float64 `json:"totalInterest"`
	TotalDepreciation  float64 `json:"totalDepreciation"`
	FinalPropertyValue float64 `json:"finalPropertyValue"`
	FinalDebt          float64 `json:"finalDebt"`
}

// ConstructionSummary describes the construction phase.
type ConstructionSummary struct {
	Policy    construction.FundingPolicy `json:"policy"`
	Accrual   construction.Result        `json:"accrual"`
	Drawdowns []construction.Drawdown    `json:"drawdowns,omitempty"`
	// HoldingCosts is the cash holding cost included in the total project cost.
	HoldingCosts float64 `json:"holdingCosts"`
}

// Result is the complete output of a projection.
type Result struct {
	Name         string               `json:"name,omitempty"`
	Funding      funding.Result       `json:"funding"`
	Construction *ConstructionSummary `json:"construction,omitempty"`
	Years        []YearProjection     `json:"years"`
	Summary      InvestmentSummary    `json:"summary"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Year returns the row for a given year index.
func (r *Result) Year(year int) (YearProjection, bool) {
	for _, row := range r.Years {
		if row.Year == year {
			return row, true
		}
	}
	return YearProjection{}, false
}
