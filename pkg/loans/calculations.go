// Package loans provides loan amortisation under interest-only and
// principal-and-interest repayment regimes.
package loans

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
)

// RepaymentType identifies the repayment regime of a loan.
type RepaymentType string

const (
	// InterestOnly loans pay only the interest accrued each month.
	InterestOnly RepaymentType = "io"
	// PrincipalAndInterest loans amortise to zero over the remaining term.
	PrincipalAndInterest RepaymentType = "pi"
)

// ParseRepaymentType converts a configuration string into a RepaymentType.
// Empty input defaults to principal and interest.
func ParseRepaymentType(value string) (RepaymentType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "pi", "p&i", "principal-and-interest":
		return PrincipalAndInterest, nil
	case "io", "interest-only":
		return InterestOnly, nil
	default:
		return "", fmt.Errorf("unknown repayment type %q", value)
	}
}

// String implements fmt.Stringer.
func (t RepaymentType) String() string {
	if t == InterestOnly {
		return "IO"
	}
	return "P&I"
}

// MonthlyRate converts an annual percentage rate into a monthly decimal rate.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return principal / float64(termMonths)
	}

	r := MonthlyRate(annualInterestRate)
	power := math.Pow(1.00+r, float64(termMonths))
	return principal * r * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRate)
}

// Loan holds the parameters of a single loan as seen from the first
// operating month.
type Loan struct {
	Name         string
	Principal    float64
	InterestRate float64 // annual percent
	TermYears    int
	Type         RepaymentType
	IOTermYears  int
	// ElapsedMonths counts term months already used before the schedule
	// starts, e.g. by amortising repayments during construction.
	ElapsedMonths int
}

// TermMonths returns the full loan term in months.
func (l Loan) TermMonths() int {
	if l.TermYears <= 0 {
		return 0
	}
	return l.TermYears * constants.MonthsPerYear
}

// InterestOnlyForLife reports whether the loan never converts to P&I. An
// IO loan without a positive IO term shorter than the loan term stays IO.
func (l Loan) InterestOnlyForLife() bool {
	if l.Type != InterestOnly {
		return false
	}
	return l.IOTermYears <= 0 || l.IOTermYears >= l.TermYears
}

// ioMonths returns the length of the IO window in absolute term months.
func (l Loan) ioMonths() int {
	if l.Type != InterestOnly {
		return 0
	}
	if l.InterestOnlyForLife() {
		return math.MaxInt32
	}
	return l.IOTermYears * constants.MonthsPerYear
}
