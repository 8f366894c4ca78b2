// Package construction computes interest accrued while a property is being
// built and how much of it is capitalised onto the loans.
package construction

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// FundingPolicy describes how holding costs during construction are met.
type FundingPolicy string

const (
	// FundCash pays all construction interest out of pocket.
	FundCash FundingPolicy = "cash"
	// FundDebt capitalises all construction interest onto the loans.
	FundDebt FundingPolicy = "debt"
	// FundHybrid pays a percentage in cash and capitalises the rest.
	FundHybrid FundingPolicy = "hybrid"
)

// ParseFundingPolicy converts a configuration string into a FundingPolicy.
// Empty input defaults to cash.
func ParseFundingPolicy(value string) (FundingPolicy, error) {
	switch FundingPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", FundCash:
		return FundCash, nil
	case FundDebt:
		return FundDebt, nil
	case FundHybrid:
		return FundHybrid, nil
	default:
		return "", fmt.Errorf("unknown holding cost funding policy %q", value)
	}
}

// CapitalisationFraction returns the share of interest added to principal.
// cashPercentage only applies to the hybrid policy and is clamped to 0..100.
func (p FundingPolicy) CapitalisationFraction(cashPercentage float64) float64 {
	switch p {
	case FundDebt:
		return 1
	case FundHybrid:
		cash := mathutil.Min(mathutil.Max(cashPercentage, 0), 100)
		return (100 - cash) / 100
	default:
		return 0
	}
}

// LoanInput describes one loan during the construction period.
type LoanInput struct {
	Principal    float64
	InterestRate float64 // annual percent applied during construction
	// Amortising loans repay principal in cash during construction using
	// the payment for the full term.
	Amortising bool
	TermYears  int
}

// Params holds every input of a construction accrual.
type Params struct {
	PeriodMonths   int
	Main           LoanInput
	Equity         LoanInput
	Policy         FundingPolicy
	CashPercentage float64
}

// LoanAccrual is the construction outcome for a single loan.
type LoanAccrual struct {
	Interest            float64
	CapitalisedInterest float64
	CashInterest        float64
	PrincipalPaid       float64
	OpeningBalance      float64 // balance at the start of year 1
	MonthsConsumed      int     // term months used by amortising repayments
}

// Result holds the outcome of the construction period.
type Result struct {
	PeriodMonths           int
	CapitalisationFraction float64
	Main                   LoanAccrual
	Equity                 LoanAccrual
	TotalInterest          float64
	CapitalisedInterest    float64
	CashInterest           float64
}

// Accruer computes construction-phase interest.
type Accruer struct {
	logger *zap.Logger
}

// NewAccruer creates an Accruer. A nil logger is replaced with a no-op logger.
func NewAccruer(logger *zap.Logger) *Accruer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accruer{logger: logger}
}

// Accrue computes interest over the construction period and the opening
// balances of both loans once construction completes.
func (a *Accruer) Accrue(params Params) Result {
	months := params.PeriodMonths
	if months < 0 {
		months = 0
	}
	fraction := params.Policy.CapitalisationFraction(params.CashPercentage)

	result := Result{PeriodMonths: months, CapitalisationFraction: fraction}
	result.Main = accrueInterestOnly(params.Main, months, fraction)
	if params.Equity.Amortising {
		result.Equity = accrueAmortising(params.Equity, months, fraction)
	} else {
		result.Equity = accrueInterestOnly(params.Equity, months, fraction)
	}

	result.TotalInterest = result.Main.Interest + result.Equity.Interest
	result.CapitalisedInterest = result.Main.CapitalisedInterest + result.Equity.CapitalisedInterest
	result.CashInterest = result.Main.CashInterest + result.Equity.CashInterest

	a.logger.Debug("construction interest accrued",
		zap.String("op", "construction.Accrue"),
		zap.Int("months", months),
		zap.Float64("capitalisationFraction", fraction),
		zap.Float64("totalInterest", result.TotalInterest),
		zap.Float64("cashInterest", result.CashInterest),
		zap.Float64("mainOpeningBalance", result.Main.OpeningBalance),
		zap.Float64("equityOpeningBalance", result.Equity.OpeningBalance),
		zap.Int("equityMonthsConsumed", result.Equity.MonthsConsumed),
	)
	return result
}

func accrueInterestOnly(loan LoanInput, months int, fraction float64) LoanAccrual {
	principal := mathutil.NonNegative(loan.Principal)
	interest := principal * loans.MonthlyRate(loan.InterestRate) * float64(months)
	capitalised := interest * fraction
	return LoanAccrual{
		Interest:            interest,
		CapitalisedInterest: capitalised,
		CashInterest:        interest - capitalised,
		OpeningBalance:      principal + capitalised,
	}
}

func accrueAmortising(loan LoanInput, months int, fraction float64) LoanAccrual {
	balance := mathutil.NonNegative(loan.Principal)
	termMonths := loan.TermYears * constants.MonthsPerYear
	payment := loans.CalculateMonthlyPayment(balance, loan.InterestRate, termMonths)

	var accrual LoanAccrual
	for month := 0; month < months && balance > 0; month++ {
		interest := loans.CalculateInterestPayment(balance, loan.InterestRate)
		principal := mathutil.Min(mathutil.NonNegative(payment-interest), balance)
		capitalised := interest * fraction

		accrual.Interest += interest
		accrual.CapitalisedInterest += capitalised
		accrual.CashInterest += interest - capitalised
		accrual.PrincipalPaid += principal
		accrual.MonthsConsumed++

		balance = balance - principal + capitalised
		if mathutil.Round(balance) <= 0 {
			balance = 0
		}
	}
	accrual.OpeningBalance = balance
	return accrual
}
