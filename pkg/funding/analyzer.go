// Package funding sizes the equity loan and cash requirement for a property
// purchase or build.
package funding

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cents is the number of decimal places every amount is rounded to before
// it takes part in the calculation.
const cents = 2

// Params holds the funding inputs of a property record. Amounts are in
// dollars; MaxLVR is a percentage.
type Params struct {
	PurchasePrice       float64
	ConstructionEnabled bool
	LandValue           float64
	ConstructionValue   float64

	StampDuty         float64
	LegalFees         float64
	OtherCosts        float64
	ConstructionCosts float64
	HoldingCosts      float64

	MainLoanAmount       float64
	UseEquityFunding     bool
	PrimarySecurityValue float64
	ExistingDebt         float64
	MaxLVR               float64

	ActualCashDeposit float64
}

// Result is the derived funding position.
type Result struct {
	BaseCost            float64 `json:"baseCost"`
	TotalProjectCost    float64 `json:"totalProjectCost"`
	MainLoanAmount      float64 `json:"mainLoanAmount"`
	EquityLoanAmount    float64 `json:"equityLoanAmount"`
	AvailableEquity     float64 `json:"availableEquity"`
	MinimumCashRequired float64 `json:"minimumCashRequired"`
	ActualCashDeposit   float64 `json:"actualCashDeposit"`
	FundingShortfall    float64 `json:"fundingShortfall"`
	FundingSurplus      float64 `json:"fundingSurplus"`
}

// Analyzer resolves the funding position of a property.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger is replaced with a no-op logger.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze sizes the funding in a single pass: total project cost, available
// equity, equity loan, minimum cash, then shortfall or surplus against the
// actual deposit. The equity loan covers only the gap left by the main loan.
func (a *Analyzer) Analyze(params Params) Result {
	base := amount(params.PurchasePrice)
	if params.ConstructionEnabled {
		base = amount(params.LandValue).Add(amount(params.ConstructionValue))
	}
	total := base.
		Add(amount(params.StampDuty)).
		Add(amount(params.LegalFees)).
		Add(amount(params.OtherCosts)).
		Add(amount(params.ConstructionCosts)).
		Add(amount(params.HoldingCosts))

	mainLoan := amount(params.MainLoanAmount)
	deposit := amount(params.ActualCashDeposit)

	lvr := decimal.NewFromFloat(params.MaxLVR).Div(decimal.NewFromInt(100))
	available := nonNegative(amount(params.PrimarySecurityValue).Mul(lvr).Round(cents).Sub(amount(params.ExistingDebt)))

	equity := decimal.Zero
	if params.UseEquityFunding {
		equity = decimal.Min(nonNegative(total.Sub(mainLoan)), available)
	}

	minimumCash := nonNegative(total.Sub(mainLoan).Sub(equity))
	funded := mainLoan.Add(equity).Add(deposit)
	shortfall := nonNegative(total.Sub(funded))
	surplus := nonNegative(funded.Sub(total))

	result := Result{
		BaseCost:            base.InexactFloat64(),
		TotalProjectCost:    total.InexactFloat64(),
		MainLoanAmount:      mainLoan.InexactFloat64(),
		EquityLoanAmount:    equity.InexactFloat64(),
		AvailableEquity:     available.InexactFloat64(),
		MinimumCashRequired: minimumCash.InexactFloat64(),
		ActualCashDeposit:   deposit.InexactFloat64(),
		FundingShortfall:    shortfall.InexactFloat64(),
		FundingSurplus:      surplus.InexactFloat64(),
	}

	a.logger.Debug("funding analysed",
		zap.String("op", "funding.Analyze"),
		zap.String("totalProjectCost", total.StringFixed(cents)),
		zap.String("availableEquity", available.StringFixed(cents)),
		zap.String("equityLoanAmount", equity.StringFixed(cents)),
		zap.String("minimumCashRequired", minimumCash.StringFixed(cents)),
		zap.String("fundingShortfall", shortfall.StringFixed(cents)),
		zap.String("fundingSurplus", surplus.StringFixed(cents)),
	)
	return result
}

// Closes reports whether main + equity + deposit + shortfall equals
// total + surplus to the cent.
func (r Result) Closes() bool {
	sources := amount(r.MainLoanAmount).
		Add(amount(r.EquityLoanAmount)).
		Add(amount(r.ActualCashDeposit)).
		Add(amount(r.FundingShortfall))
	uses := amount(r.TotalProjectCost).Add(amount(r.FundingSurplus))
	return sources.Equal(uses)
}

// TotalDebt is the borrowing drawn for the property.
func (r Result) TotalDebt() float64 {
	return amount(r.MainLoanAmount).Add(amount(r.EquityLoanAmount)).InexactFloat64()
}

// amount converts a dollar value to cents precision. Negative inputs are
// treated as zero.
func amount(value float64) decimal.Decimal {
	return nonNegative(decimal.NewFromFloat(value).Round(cents))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
