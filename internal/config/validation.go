package config

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/depreciation"
	"github.com/iwvelando/property-forecast/pkg/loans"
	"github.com/iwvelando/property-forecast/pkg/validation"
)

// States lists the recognised Australian jurisdictions.
var States = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

func knownState(state string) bool {
	for _, s := range States {
		if s == state {
			return true
		}
	}
	return false
}

// ValidateRecord checks the inputs a projection cannot sensibly proceed
// without. It returns validation.ValidationErrors, or nil when the record is
// acceptable. An empty state is allowed.
func ValidateRecord(record PropertyRecord) error {
	var errs validation.ValidationErrors

	errs.NonNegative("purchasePrice", record.PurchasePrice)
	errs.NonNegative("weeklyRent", record.WeeklyRent)
	errs.NonNegative("depositAmount", record.DepositAmount)
	errs.NonNegative("mainLoan.amount", record.MainLoan.Amount)
	errs.NonNegative("buildingValue", record.BuildingValue)
	errs.NonNegative("plantEquipmentValue", record.PlantEquipmentValue)
	errs.Percentage("vacancyRate", record.VacancyRate)
	errs.Percentage("expenses.propertyManagement", record.Expenses.PropertyManagement)

	if record.State != "" && !knownState(record.State) {
		errs.Add("state", validation.CodeUnknownValue, "unknown state %q, expected one of %v", record.State, States)
	}

	if _, err := loans.ParseRepaymentType(record.MainLoan.Type); err != nil {
		errs.Add("mainLoan.type", validation.CodeUnknownValue, "%v", err)
	}
	if record.EquityLoan.Enabled {
		if _, err := loans.ParseRepaymentType(record.EquityLoan.Type); err != nil {
			errs.Add("equityLoan.type", validation.CodeUnknownValue, "%v", err)
		}
		errs.NonNegative("equityLoan.primarySecurityValue", record.EquityLoan.PrimarySecurityValue)
		errs.NonNegative("equityLoan.existingDebt", record.EquityLoan.ExistingDebt)
	}
	if _, err := depreciation.ParseMethod(record.DepreciationMethod); err != nil {
		errs.Add("depreciationMethod", validation.CodeUnknownValue, "%v", err)
	}
	if _, err := construction.ParseFundingPolicy(record.HoldingCostFunding.Policy); err != nil {
		errs.Add("holdingCostFunding.policy", validation.CodeUnknownValue, "%v", err)
	}
	errs.Percentage("holdingCostFunding.cashPercentage", record.HoldingCostFunding.CashPercentage)

	validateOwnership(record, &errs)
	return errs.Err()
}

func validateOwnership(record PropertyRecord, errs *validation.ValidationErrors) {
	seen := make(map[string]bool, len(record.Investors))
	for i, investor := range record.Investors {
		if seen[investor.ID] {
			errs.Add(fmt.Sprintf("investors[%d].id", i), validation.CodeDuplicate, "duplicate investor id %q", investor.ID)
		}
		seen[investor.ID] = true
	}

	if len(record.Ownership) == 0 {
		return
	}

	ids := record.investorIDs()
	for i, allocation := range record.Ownership {
		if !ids[allocation.InvestorID] {
			errs.Add(fmt.Sprintf("ownership[%d].investorId", i), validation.CodeUnknownInvestor,
				"investor %q is not declared", allocation.InvestorID)
		}
		errs.Percentage(fmt.Sprintf("ownership[%d].percentage", i), allocation.Percentage)
	}

	total := record.TotalOwnership()
	if math.Abs(total-constants.PercentageMultiplier) > constants.OwnershipTolerance {
		errs.Add("ownership", validation.CodeOwnershipTotal, "ownership percentages sum to %.2f%%, expected 100%%", total)
	}
}
