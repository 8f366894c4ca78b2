package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/construction"
	"github.com/iwvelando/property-forecast/pkg/depreciation"
	"github.com/iwvelando/property-forecast/pkg/loans"
)

// PropertyRecord describes an investment property and how it is funded. It
// is the only input of a projection and is never modified by the engine.
type PropertyRecord struct {
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	State     string `yaml:"state,omitempty" json:"state,omitempty"`
	StartDate string `yaml:"startDate,omitempty" json:"startDate,omitempty"` // YYYY-MM of the first operating month

	PurchasePrice    float64 `yaml:"purchasePrice" json:"purchasePrice"`
	WeeklyRent       float64 `yaml:"weeklyRent" json:"weeklyRent"`
	RentalGrowthRate float64 `yaml:"rentalGrowthRate,omitempty" json:"rentalGrowthRate,omitempty"`
	VacancyRate      float64 `yaml:"vacancyRate,omitempty" json:"vacancyRate,omitempty"`

	IsNewProperty       bool    `yaml:"isNewProperty" json:"isNewProperty"`
	DepreciationMethod  string  `yaml:"depreciationMethod,omitempty" json:"depreciationMethod,omitempty"`
	BuildingValue       float64 `yaml:"buildingValue,omitempty" json:"buildingValue,omitempty"`
	PlantEquipmentValue float64 `yaml:"plantEquipmentValue,omitempty" json:"plantEquipmentValue,omitempty"`

	Construction      ConstructionConfig `yaml:"construction,omitempty" json:"construction,omitempty"`
	PurchaseCosts     PurchaseCosts      `yaml:"purchaseCosts,omitempty" json:"purchaseCosts,omitempty"`
	ConstructionCosts float64            `yaml:"constructionCosts,omitempty" json:"constructionCosts,omitempty"`

	MainLoan           LoanConfig         `yaml:"mainLoan" json:"mainLoan"`
	EquityLoan         EquityLoanConfig   `yaml:"equityLoan,omitempty" json:"equityLoan,omitempty"`
	DepositAmount      float64            `yaml:"depositAmount,omitempty" json:"depositAmount,omitempty"`
	HoldingCostFunding HoldingCostFunding `yaml:"holdingCostFunding,omitempty" json:"holdingCostFunding,omitempty"`
	CapitaliseInterest bool               `yaml:"capitaliseInterest,omitempty" json:"capitaliseInterest,omitempty"`

	Expenses  Expenses              `yaml:"expenses,omitempty" json:"expenses,omitempty"`
	Investors []Investor            `yaml:"investors,omitempty" json:"investors,omitempty"`
	Ownership []OwnershipAllocation `yaml:"ownership,omitempty" json:"ownership,omitempty"`
}

// ConstructionConfig describes an optional build before the property is let.
type ConstructionConfig struct {
	Enabled           bool              `yaml:"enabled" json:"enabled"`
	ConstructionYear  int               `yaml:"constructionYear,omitempty" json:"constructionYear,omitempty"`
	PeriodMonths      int               `yaml:"periodMonths,omitempty" json:"periodMonths,omitempty"`
	InterestRate      float64           `yaml:"interestRate,omitempty" json:"interestRate,omitempty"`
	LandValue         float64           `yaml:"landValue,omitempty" json:"landValue,omitempty"`
	ConstructionValue float64           `yaml:"constructionValue,omitempty" json:"constructionValue,omitempty"`
	ProgressPayments  []ProgressPayment `yaml:"progressPayments,omitempty" json:"progressPayments,omitempty"`
}

// ProgressPayment is a stage payment to the builder.
type ProgressPayment struct {
	Percentage  float64 `yaml:"percentage" json:"percentage"`
	Month       int     `yaml:"month" json:"month"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// PurchaseCosts are one-off acquisition costs.
type PurchaseCosts struct {
	StampDuty  float64 `yaml:"stampDuty,omitempty" json:"stampDuty,omitempty"`
	LegalFees  float64 `yaml:"legalFees,omitempty" json:"legalFees,omitempty"`
	OtherCosts float64 `yaml:"otherCosts,omitempty" json:"otherCosts,omitempty"`
}

// Total sums the purchase costs.
func (p PurchaseCosts) Total() float64 {
	return p.StampDuty + p.LegalFees + p.OtherCosts
}

// HoldingCostFunding selects how construction holding costs are paid.
type HoldingCostFunding struct {
	Policy         string  `yaml:"policy,omitempty" json:"policy,omitempty"` // cash, debt, hybrid
	CashPercentage float64 `yaml:"cashPercentage,omitempty" json:"cashPercentage,omitempty"`
}

// Expenses are annual baselines in today's dollars; PropertyManagement is a
// percentage of rent.
type Expenses struct {
	CouncilRates       float64 `yaml:"councilRates,omitempty" json:"councilRates,omitempty"`
	Insurance          float64 `yaml:"insurance,omitempty" json:"insurance,omitempty"`
	Repairs            float64 `yaml:"repairs,omitempty" json:"repairs,omitempty"`
	PropertyManagement float64 `yaml:"propertyManagement,omitempty" json:"propertyManagement,omitempty"`
	StrataFees         float64 `yaml:"strataFees,omitempty" json:"strataFees,omitempty"`
	LandTax            float64 `yaml:"landTax,omitempty" json:"landTax,omitempty"`
}

// FixedCosts sums the CPI-indexed annual expenses.
func (e Expenses) FixedCosts() float64 {
	return e.CouncilRates + e.Insurance + e.Repairs + e.StrataFees + e.LandTax
}

// DefaultPropertyRecord returns a fresh, fully populated example record.
func DefaultPropertyRecord() PropertyRecord {
	record := PropertyRecord{
		Name:                "Example investment property",
		State:               "NSW",
		PurchasePrice:       1000000,
		WeeklyRent:          500,
		RentalGrowthRate:    constants.DefaultRentalGrowthRate,
		VacancyRate:         2,
		IsNewProperty:       true,
		DepreciationMethod:  string(depreciation.PrimeCost),
		BuildingValue:       800000,
		PlantEquipmentValue: 50000,
		Construction: ConstructionConfig{
			ConstructionYear:  2020,
			PeriodMonths:      12,
			InterestRate:      constants.DefaultInterestRate,
			LandValue:         400000,
			ConstructionValue: 600000,
			ProgressPayments: []ProgressPayment{
				{Percentage: 5, Month: 0, Description: "Deposit"},
				{Percentage: 15, Month: 2, Description: "Base"},
				{Percentage: 20, Month: 4, Description: "Frame"},
				{Percentage: 25, Month: 6, Description: "Lock-up"},
				{Percentage: 20, Month: 9, Description: "Fixing"},
				{Percentage: 15, Month: 12, Description: "Practical completion"},
			},
		},
		PurchaseCosts: PurchaseCosts{StampDuty: 40000, LegalFees: 2000},
		MainLoan: LoanConfig{
			Amount:       800000,
			InterestRate: constants.DefaultInterestRate,
			TermYears:    constants.DefaultLoanTermYears,
			Type:         string(loans.PrincipalAndInterest),
		},
		EquityLoan: EquityLoanConfig{
			InterestRate: constants.DefaultInterestRate,
			TermYears:    constants.DefaultLoanTermYears,
			Type:         string(loans.InterestOnly),
			MaxLVR:       constants.DefaultMaxLVR,
		},
		DepositAmount:      242000,
		HoldingCostFunding: HoldingCostFunding{Policy: string(construction.FundCash)},
		Expenses: Expenses{
			CouncilRates:       2000,
			Insurance:          1500,
			Repairs:            2000,
			PropertyManagement: 7,
		},
		Investors: []Investor{
			{ID: "investor-1", Name: "Investor 1", AnnualIncome: 120000, MedicareLevy: true},
		},
		Ownership: []OwnershipAllocation{{InvestorID: "investor-1", Percentage: 100}},
	}
	record.ApplyDefaults()
	return record
}

// ApplyDefaults fills unset numeric and enumerated fields with their
// documented fallbacks. It never rejects input.
func (r *PropertyRecord) ApplyDefaults() {
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	r.DepositAmount = math.Max(r.DepositAmount, 0)

	if method, err := depreciation.ParseMethod(r.DepreciationMethod); err == nil {
		r.DepreciationMethod = string(method)
	}
	if policy, err := construction.ParseFundingPolicy(r.HoldingCostFunding.Policy); err == nil {
		r.HoldingCostFunding.Policy = string(policy)
	}

	r.MainLoan.applyDefaults()
	r.EquityLoan.applyDefaults()

	if r.Construction.PeriodMonths < 0 {
		r.Construction.PeriodMonths = 0
	}
	if r.Construction.InterestRate <= 0 {
		r.Construction.InterestRate = r.MainLoan.InterestRate
	}

	for i := range r.Investors {
		if strings.TrimSpace(r.Investors[i].ID) == "" {
			r.Investors[i].ID = fmt.Sprintf("investor-%d", i+1)
		}
	}
}

// FundingPolicy returns the effective holding cost policy. Interest is never
// capitalised when capitalisation is switched off.
func (r PropertyRecord) FundingPolicy() construction.FundingPolicy {
	if !r.CapitaliseInterest {
		return construction.FundCash
	}
	policy, err := construction.ParseFundingPolicy(r.HoldingCostFunding.Policy)
	if err != nil {
		return construction.FundCash
	}
	return policy
}

// HasConstruction reports whether the record has a construction phase.
func (r PropertyRecord) HasConstruction() bool {
	return r.Construction.Enabled && r.Construction.PeriodMonths > 0
}

// BaseValue is the property value at the start of year 1.
func (r PropertyRecord) BaseValue() float64 {
	if r.Construction.Enabled {
		return r.Construction.LandValue + r.Construction.ConstructionValue
	}
	return r.PurchasePrice
}

// Warnings returns advisory messages about the record that do not prevent a
// projection.
func (r PropertyRecord) Warnings() []string {
	var warnings []string

	if r.Construction.Enabled {
		if r.Construction.PeriodMonths == 0 {
			warnings = append(warnings, "Construction is enabled with a zero month period - no construction phase will be projected")
		}
		if len(r.Construction.ProgressPayments) > 0 {
			total := construction.TotalPercentage(r.Construction.ToProgressPayments())
			if math.Abs(total-100) > constants.OwnershipTolerance {
				warnings = append(warnings, fmt.Sprintf("Progress payments sum to %.2f%% of the construction value, expected 100%%", total))
			}
		}
		for _, payment := range r.Construction.ProgressPayments {
			if payment.Month > r.Construction.PeriodMonths {
				warnings = append(warnings, fmt.Sprintf("Progress payment '%s' in month %d falls after construction completes (month %d)",
					payment.Description, payment.Month, r.Construction.PeriodMonths))
			}
		}
	}

	if r.MainLoan.Amount > 0 && r.MainLoan.ToLoan("main").InterestOnlyForLife() {
		warnings = append(warnings, "Main loan is interest-only for its whole term - the balance never reduces")
	}
	if r.EquityLoan.Enabled && r.EquityLoan.PrimarySecurityValue <= 0 {
		warnings = append(warnings, "Equity funding is enabled without a primary security value - no equity is available")
	}
	if r.WeeklyRent == 0 {
		warnings = append(warnings, "Weekly rent is zero - the property earns no income")
	}
	if r.VacancyRate > 50 {
		warnings = append(warnings, fmt.Sprintf("Vacancy rate of %.1f%% is unusually high", r.VacancyRate))
	}
	if !r.IsNewProperty && r.PlantEquipmentValue > 0 {
		warnings = append(warnings, "Plant and equipment in an established property is not depreciable - the value is ignored")
	}
	if r.BuildingValue > 0 && r.Construction.ConstructionYear > 0 && r.Construction.ConstructionYear < constants.CapitalWorksEligibleYear {
		warnings = append(warnings, fmt.Sprintf("Building constructed in %d is not eligible for capital works deductions", r.Construction.ConstructionYear))
	}
	return warnings
}
