// Package projection folds loans, depreciation, tax and growth assumptions
// into a year-by-year forecast for an investment property.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/datetime"
	"github.com/iwvelando/property-forecast/pkg/depreciation"
	"github.com/iwvelando/property-forecast/pkg/funding"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"github.com/iwvelando/property-forecast/pkg/tax"
	"go.uber.org/zap"
)

// ErrNilEngine is returned when Project is called on a nil Engine.
var ErrNilEngine = errors.New("projection engine is not configured")

// Engine projects property records. It holds no per-record state and is
// safe for concurrent use.
type Engine struct {
	logger      *zap.Logger
	assumptions config.Assumptions
	schedules   *loans.ScheduleGenerator
	accruer     *construction.Accruer
	analyzer    *funding.Analyzer
	tax         *tax.Engine
}

// NewEngine creates an Engine applying the given growth assumptions.
func NewEngine(logger *zap.Logger, assumptions config.Assumptions) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	assumptions.ApplyDefaults()
	return &Engine{
		logger:      logger,
		assumptions: assumptions,
		schedules:   loans.NewScheduleGenerator(logger),
		accruer:     construction.NewAccruer(logger),
		analyzer:    funding.NewAnalyzer(logger),
		tax: tax.NewEngine(logger,
			tax.WithCPIRate(assumptions.CPIRate),
			tax.WithMedicareLevyRate(assumptions.MedicareLevyRate),
		),
	}
}

// Assumptions returns the growth assumptions of the engine.
func (e *Engine) Assumptions() config.Assumptions {
	return e.assumptions
}

// WithAssumptions returns an engine sharing the logger but applying other
// assumptions.
func (e *Engine) WithAssumptions(assumptions config.Assumptions) *Engine {
	return NewEngine(e.logger, assumptions)
}

// phase carries the state handed from the construction phase to the
// operating phase.
type phase struct {
	mainOpening   float64
	equityOpening float64
	equityElapsed int
	row           *YearProjection
	summary       *ConstructionSummary
}

// Project computes the projection of record for operating years from..to
// (1-based, inclusive), prefixed by the construction row when the record has
// a construction phase. Numeric input never causes an error; out-of-range
// years are clamped.
func (e *Engine) Project(record config.PropertyRecord, from, to int) (*Result, error) {
	if e == nil || e.tax == nil {
		return nil, ErrNilEngine
	}
	if from < 1 {
		from = 1
	}
	if to < from {
		to = from
	}

	record = cloneRecord(record)
	record.ApplyDefaults()

	policy := record.FundingPolicy()
	holding := e.holdingCosts(record, policy)
	fund := e.analyzer.Analyze(record.FundingParams(holding))

	investors, ownership := record.TaxInvestors()
	start := e.construct(record, policy, fund, investors, ownership)
	if start.summary != nil {
		start.summary.HoldingCosts = holding
	}

	mainSchedule := e.schedules.Generate(withPrincipal(record.MainLoan.ToLoan("main"), start.mainOpening), to)
	equitySchedule := e.schedules.Generate(record.EquityLoan.ToLoan("equity", start.equityOpening, start.equityElapsed), to)
	depreciationSchedule := depreciation.NewScheduler(record.DepreciationParams())

	result := &Result{
		Name:         record.Name,
		Funding:      fund,
		Construction: start.summary,
		Years:        make([]YearProjection, 0, to-from+2),
	}

	cumulative := 0.0
	totals := InvestmentSummary{From: from, To: to}
	if start.row != nil {
		row := *start.row
		row.FinancialYear = e.financialYear(record.StartDate, 0)
		cumulative = row.AfterTaxCashFlow
		row.CumulativeCashFlow = cumulative
		result.Years = append(result.Years, row)
		totals.CumulativeTaxSavings += row.TaxBenefit
		totals.TotalInterest += row.TotalInterest()
	}

	baseValue := record.BaseValue()
	rentalGrowth := e.assumptions.RentalGrowthFor(record)
	previousValue := baseValue
	var fromRow, last YearProjection

	for year := 1; year <= to; year++ {
		main := mainSchedule.Year(year)
		equity := equitySchedule.Year(year)

		row := YearProjection{
			Year:              year,
			RentalIncome:      record.WeeklyRent * constants.WeeksPerYear * mathutil.Compound(rentalGrowth, year-1) * (1 - mathutil.PercentToDecimal(record.VacancyRate)),
			PropertyValue:     baseValue * mathutil.Compound(e.assumptions.CapitalGrowthRate, year-1),
			MainLoanBalance:   main.ClosingBalance,
			EquityLoanBalance: equity.ClosingBalance,
			MainInterest:      main.Interest,
			EquityInterest:    equity.Interest,
			MainPayment:       main.Payment,
			EquityPayment:     equity.Payment,
			MainLoanStatus:    main.Status,
			EquityLoanStatus:  equity.Status,
			Depreciation:      depreciationSchedule.ForYear(year),
		}
		row.OperatingExpenses = mathutil.ApplyPercentage(row.RentalIncome, record.Expenses.PropertyManagement) +
			record.Expenses.FixedCosts()*mathutil.Compound(e.assumptions.CPIRate, year-1)
		row.TaxableIncome = row.RentalIncome - row.TotalInterest() - row.OperatingExpenses - row.Depreciation.Total

		assessment := e.tax.Assess(row.TaxableIncome, year, investors, ownership)
		row.TaxDelta = assessment.TotalDelta
		row.TaxBenefit = assessment.Benefit()
		row.Investors = assessment.Investors

		row.AfterTaxCashFlow = row.RentalIncome - row.OperatingExpenses - row.TotalPayments() + row.TaxBenefit
		cumulative += row.AfterTaxCashFlow
		row.CumulativeCashFlow = cumulative
		row.PropertyEquity = row.PropertyValue - row.TotalDebt()
		row.TotalReturn = row.AfterTaxCashFlow + row.PropertyValue - previousValue
		previousValue = row.PropertyValue

		totals.CumulativeTaxSavings += row.TaxBenefit
		totals.TotalInterest += row.TotalInterest()
		totals.TotalRentalIncome += row.RentalIncome
		totals.TotalDepreciation += row.Depreciation.Total

		e.logger.Debug("projected year",
			zap.String("op", "projection.Project"),
			zap.Int("year", year),
			zap.Float64("rentalIncome", row.RentalIncome),
			zap.Float64("interest", row.TotalInterest()),
			zap.Float64("taxableIncome", row.TaxableIncome),
			zap.Float64("taxBenefit", row.TaxBenefit),
			zap.Float64("afterTaxCashFlow", row.AfterTaxCashFlow),
		)

		if year == from {
			fromRow = row
		}
		if year >= from {
			row.FinancialYear = e.financialYear(record.StartDate, year)
			result.Years = append(result.Years, row)
		}
		last = row
	}

	result.Summary = summarise(totals, fromRow, last, fund)
	result.Warnings = warnings(record, fund, to)

	e.logger.Debug("projection complete",
		zap.String("op", "projection.Project"),
		zap.String("property", record.Name),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Bool("construction", start.row != nil),
		zap.Float64("equityAtEnd", result.Summary.EquityAtEnd),
	)
	return result, nil
}

// holdingCosts estimates the cash cost of holding the property during
// construction: the cash share of main loan interest plus pro-rated council
// rates and insurance. It uses only the main loan so that equity sizing does
// not depend on its own interest.
func (e *Engine) holdingCosts(record config.PropertyRecord, policy construction.FundingPolicy) float64 {
	if !record.HasConstruction() {
		return 0
	}
	months := float64(record.Construction.PeriodMonths)
	interest := mathutil.NonNegative(record.MainLoan.Amount) * loans.MonthlyRate(record.Construction.InterestRate) * months
	cashShare := 1 - policy.CapitalisationFraction(record.HoldingCostFunding.CashPercentage)
	rates := (record.Expenses.CouncilRates + record.Expenses.Insurance) * months / constants.MonthsPerYear
	return interest*cashShare + rates
}

// construct runs the construction phase and returns the opening balances of
// the operating phase.
func (e *Engine) construct(record config.PropertyRecord, policy construction.FundingPolicy, fund funding.Result, investors []tax.Investor, ownership []tax.Ownership) phase {
	if !record.HasConstruction() {
		return phase{mainOpening: fund.MainLoanAmount, equityOpening: fund.EquityLoanAmount}
	}

	accrual := e.accruer.Accrue(construction.Params{
		PeriodMonths: record.Construction.PeriodMonths,
		Main: construction.LoanInput{
			Principal:    fund.MainLoanAmount,
			InterestRate: record.Construction.InterestRate,
		},
		Equity:         record.EquityLoan.ToConstructionInput(fund.EquityLoanAmount),
		Policy:         policy,
		CashPercentage: record.HoldingCostFunding.CashPercentage,
	})

	taxable := -accrual.TotalInterest
	assessment := e.tax.Assess(taxable, 0, investors, ownership)

	equityStatus := loans.InterestOnly
	if record.EquityLoan.AmortisesDuringConstruction() {
		equityStatus = loans.PrincipalAndInterest
	}
	value := record.BaseValue()
	row := &YearProjection{
		Year:              0,
		PropertyValue:     value,
		MainLoanBalance:   accrual.Main.OpeningBalance,
		EquityLoanBalance: accrual.Equity.OpeningBalance,
		MainInterest:      accrual.Main.Interest,
		EquityInterest:    accrual.Equity.Interest,
		MainPayment:       accrual.Main.CashInterest,
		EquityPayment:     accrual.Equity.CashInterest + accrual.Equity.PrincipalPaid,
		MainLoanStatus:    loans.InterestOnly,
		EquityLoanStatus:  equityStatus,
		TaxableIncome:     taxable,
		TaxDelta:          assessment.TotalDelta,
		TaxBenefit:        assessment.Benefit(),
		Investors:         assessment.Investors,
	}
	row.AfterTaxCashFlow = -accrual.CashInterest + math.Abs(row.TaxBenefit)
	row.PropertyEquity = value - row.TotalDebt()
	row.TotalReturn = row.AfterTaxCashFlow

	return phase{
		mainOpening:   accrual.Main.OpeningBalance,
		equityOpening: accrual.Equity.OpeningBalance,
		equityElapsed: accrual.Equity.MonthsConsumed,
		row:           row,
		summary: &ConstructionSummary{
			Policy:    policy,
			Accrual:   accrual,
			Drawdowns: construction.DrawdownSchedule(record.Construction.ToProgressPayments(), record.Construction.ConstructionValue),
		},
	}
}

func (e *Engine) financialYear(start string, year int) string {
	label, err := datetime.FinancialYear(start, year)
	if err != nil {
		e.logger.Debug("unable to label financial year",
			zap.String("op", "projection.financialYear"),
			zap.String("startDate", start),
			zap.Error(err),
		)
		return ""
	}
	return label
}

func summarise(totals InvestmentSummary, fromRow, last YearProjection, fund funding.Result) InvestmentSummary {
	summary := totals
	summary.WeeklyCashFlow = fromRow.AfterTaxCashFlow / constants.WeeksPerYear
	summary.EquityAtEnd = last.PropertyEquity
	summary.CumulativeCashFlow = last.CumulativeCashFlow
	summary.FinalPropertyValue = last.PropertyValue
	summary.FinalDebt = last.TotalDebt()
	summary.NetCashContributed = fund.ActualCashDeposit - last.CumulativeCashFlow
	if summary.NetCashContributed > 0 {
		summary.ROI = summary.EquityAtEnd / summary.NetCashContributed * constants.PercentageMultiplier
	}
	return summary
}

func warnings(record config.PropertyRecord, fund funding.Result, to int) []string {
	var out []string
	if fund.FundingShortfall > 0 {
		out = append(out, fmt.Sprintf("Funding shortfall of %.2f - the deposit, main loan and equity loan do not cover the total project cost of %.2f",
			fund.FundingShortfall, fund.TotalProjectCost))
	}
	if record.EquityLoan.Enabled && fund.EquityLoanAmount == 0 && fund.MinimumCashRequired > 0 {
		out = append(out, "Equity funding is enabled but no equity is available to draw")
	}
	if record.HasConstruction() && len(record.Construction.ProgressPayments) > 0 {
		if total := construction.TotalPercentage(record.Construction.ToProgressPayments()); math.Abs(total-100) > constants.OwnershipTolerance {
			out = append(out, fmt.Sprintf("Progress payments sum to %.2f%% of the construction value", total))
		}
	}
	if to > constants.SpeculativeProjectionYears {
		out = append(out, fmt.Sprintf("Years beyond %d rely on speculative growth assumptions", constants.SpeculativeProjectionYears))
	}
	return out
}

func withPrincipal(loan loans.Loan, principal float64) loans.Loan {
	loan.Principal = principal
	return loan
}

func cloneRecord(record config.PropertyRecord) config.PropertyRecord {
	record.Investors = append([]config.Investor(nil), record.Investors...)
	record.Ownership = append([]config.OwnershipAllocation(nil), record.Ownership...)
	record.Construction.ProgressPayments = append([]config.ProgressPayment(nil), record.Construction.ProgressPayments...)
	return record
}
