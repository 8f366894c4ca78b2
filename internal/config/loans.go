package config

import (
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/loans"
)

// LoanConfig describes the main investment loan.
type LoanConfig struct {
	Amount       float64 `yaml:"amount" json:"amount"`
	InterestRate float64 `yaml:"interestRate,omitempty" json:"interestRate,omitempty"`
	TermYears    int     `yaml:"termYears,omitempty" json:"termYears,omitempty"`
	Type         string  `yaml:"type,omitempty" json:"type,omitempty"` // io, pi
	IOTermYears  int     `yaml:"ioTermYears,omitempty" json:"ioTermYears,omitempty"`
}

// EquityLoanConfig describes an optional loan secured against another
// property to fund the gap left by the main loan.
type EquityLoanConfig struct {
	Enabled              bool    `yaml:"enabled" json:"enabled"`
	InterestRate         float64 `yaml:"interestRate,omitempty" json:"interestRate,omitempty"`
	TermYears            int     `yaml:"termYears,omitempty" json:"termYears,omitempty"`
	Type                 string  `yaml:"type,omitempty" json:"type,omitempty"`
	IOTermYears          int     `yaml:"ioTermYears,omitempty" json:"ioTermYears,omitempty"`
	PrimarySecurityValue float64 `yaml:"primarySecurityValue,omitempty" json:"primarySecurityValue,omitempty"`
	ExistingDebt         float64 `yaml:"existingDebt,omitempty" json:"existingDebt,omitempty"`
	MaxLVR               float64 `yaml:"maxLvr,omitempty" json:"maxLvr,omitempty"`
}

func (l *LoanConfig) applyDefaults() {
	l.InterestRate, l.TermYears, l.Type, l.IOTermYears = loanDefaults(l.InterestRate, l.TermYears, l.Type, l.IOTermYears)
}

func (l *EquityLoanConfig) applyDefaults() {
	l.InterestRate, l.TermYears, l.Type, l.IOTermYears = loanDefaults(l.InterestRate, l.TermYears, l.Type, l.IOTermYears)
	if l.MaxLVR <= 0 {
		l.MaxLVR = constants.DefaultMaxLVR
	}
}

func loanDefaults(rate float64, term int, repayment string, ioTerm int) (float64, int, string, int) {
	if rate <= 0 {
		rate = constants.DefaultInterestRate
	}
	if term <= 0 {
		term = constants.DefaultLoanTermYears
	}
	if parsed, err := loans.ParseRepaymentType(repayment); err == nil {
		repayment = string(parsed)
	} else {
		repayment = strings.ToLower(strings.TrimSpace(repayment))
	}
	if ioTerm < 0 {
		ioTerm = 0
	}
	return rate, term, repayment, ioTerm
}

// RepaymentType returns the parsed repayment type, defaulting to P&I.
func (l LoanConfig) RepaymentType() loans.RepaymentType {
	return repaymentType(l.Type)
}

// RepaymentType returns the parsed repayment type, defaulting to P&I.
func (l EquityLoanConfig) RepaymentType() loans.RepaymentType {
	return repaymentType(l.Type)
}

// AmortisesDuringConstruction reports whether the equity loan repays
// principal while the property is being built.
func (l EquityLoanConfig) AmortisesDuringConstruction() bool {
	return l.RepaymentType() == loans.PrincipalAndInterest
}

func repaymentType(value string) loans.RepaymentType {
	parsed, err := loans.ParseRepaymentType(value)
	if err != nil {
		return loans.PrincipalAndInterest
	}
	return parsed
}

// ToConstructionInput describes the equity loan during construction.
func (l EquityLoanConfig) ToConstructionInput(principal float64) construction.LoanInput {
	return construction.LoanInput{
		Principal:    principal,
		InterestRate: l.InterestRate,
		Amortising:   l.AmortisesDuringConstruction(),
		TermYears:    l.TermYears,
	}
}
