package config

// Investor is a person who may own a share of the property.
type Investor struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name,omitempty" json:"name,omitempty"`
	AnnualIncome float64 `yaml:"annualIncome" json:"annualIncome"`
	OtherIncome  float64 `yaml:"otherIncome,omitempty" json:"otherIncome,omitempty"`
	MedicareLevy bool    `yaml:"medicareLevy,omitempty" json:"medicareLevy,omitempty"`
}

// OwnershipAllocation assigns a percentage of the property to an investor.
type OwnershipAllocation struct {
	InvestorID string  `yaml:"investorId" json:"investorId"`
	Percentage float64 `yaml:"percentage" json:"percentage"`
}

// TotalOwnership sums the allocated percentages.
func (r PropertyRecord) TotalOwnership() float64 {
	total := 0.0
	for _, allocation := range r.Ownership {
		total += allocation.Percentage
	}
	return total
}

// investorIDs returns the set of declared investor IDs.
func (r PropertyRecord) investorIDs() map[string]bool {
	ids := make(map[string]bool, len(r.Investors))
	for _, investor := range r.Investors {
		ids[investor.ID] = true
	}
	return ids
}
