package config

import (
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/depreciation"
	"github.com/iwvelando/property-forecast/pkg/funding"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/tax"
)

// ToLoan converts the main loan configuration into a pkg/loans.Loan.
func (l LoanConfig) ToLoan(name string) loans.Loan {
	return loans.Loan{
		Name:         name,
		Principal:    l.Amount,
		InterestRate: l.InterestRate,
		TermYears:    l.TermYears,
		Type:         l.RepaymentType(),
		IOTermYears:  l.IOTermYears,
	}
}

// ToLoan converts the equity loan configuration into a pkg/loans.Loan with
// the given principal. elapsedMonths are term months already repaid during
// construction.
func (l EquityLoanConfig) ToLoan(name string, principal float64, elapsedMonths int) loans.Loan {
	return loans.Loan{
		Name:          name,
		Principal:     principal,
		InterestRate:  l.InterestRate,
		TermYears:     l.TermYears,
		Type:          l.RepaymentType(),
		IOTermYears:   l.IOTermYears,
		ElapsedMonths: elapsedMonths,
	}
}

// ToProgressPayments converts the configured stage payments.
func (c ConstructionConfig) ToProgressPayments() []construction.ProgressPayment {
	payments := make([]construction.ProgressPayment, 0, len(c.ProgressPayments))
	for _, payment := range c.ProgressPayments {
		payments = append(payments, construction.ProgressPayment{
			Percentage:  payment.Percentage,
			Month:       payment.Month,
			Description: payment.Description,
		})
	}
	return payments
}

// DepreciationParams converts the depreciable components of the record.
func (r PropertyRecord) DepreciationParams() depreciation.Params {
	method, err := depreciation.ParseMethod(r.DepreciationMethod)
	if err != nil {
		method = depreciation.PrimeCost
	}
	return depreciation.Params{
		BuildingValue:       r.BuildingValue,
		PlantEquipmentValue: r.PlantEquipmentValue,
		ConstructionYear:    r.Construction.ConstructionYear,
		IsNewProperty:       r.IsNewProperty,
		Method:              method,
	}
}

// FundingParams converts the funding fields of the record. holdingCosts are
// the construction holding costs estimated by the caller.
func (r PropertyRecord) FundingParams(holdingCosts float64) funding.Params {
	return funding.Params{
		PurchasePrice:        r.PurchasePrice,
		ConstructionEnabled:  r.Construction.Enabled,
		LandValue:            r.Construction.LandValue,
		ConstructionValue:    r.Construction.ConstructionValue,
		StampDuty:            r.PurchaseCosts.StampDuty,
		LegalFees:            r.PurchaseCosts.LegalFees,
		OtherCosts:           r.PurchaseCosts.OtherCosts,
		ConstructionCosts:    r.ConstructionCosts,
		HoldingCosts:         holdingCosts,
		MainLoanAmount:       r.MainLoan.Amount,
		UseEquityFunding:     r.EquityLoan.Enabled,
		PrimarySecurityValue: r.EquityLoan.PrimarySecurityValue,
		ExistingDebt:         r.EquityLoan.ExistingDebt,
		MaxLVR:               r.EquityLoan.MaxLVR,
		ActualCashDeposit:    r.DepositAmount,
	}
}

// TaxInvestors converts the investors and ownership allocations.
func (r PropertyRecord) TaxInvestors() ([]tax.Investor, []tax.Ownership) {
	investors := make([]tax.Investor, 0, len(r.Investors))
	for _, investor := range r.Investors {
		investors = append(investors, tax.Investor{
			ID:           investor.ID,
			Name:         investor.Name,
			AnnualIncome: investor.AnnualIncome,
			OtherIncome:  investor.OtherIncome,
			MedicareLevy: investor.MedicareLevy,
		})
	}
	ownership := make([]tax.Ownership, 0, len(r.Ownership))
	for _, allocation := range r.Ownership {
		ownership = append(ownership, tax.Ownership{
			InvestorID: allocation.InvestorID,
			Percentage: allocation.Percentage,
		})
	}
	return investors, ownership
}
