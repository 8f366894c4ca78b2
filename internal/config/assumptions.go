package config

import (
	"encoding/json"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/tax"
)

// Rental growth sources.
const (
	RentalGrowthFromAssumptions = "assumptions"
	RentalGrowthFromRecord      = "record"
)

// Assumptions are the economic growth rates applied to every projection.
// Rates are annual percentages.
type Assumptions struct {
	CapitalGrowthRate  float64 `yaml:"capitalGrowthRate" json:"capitalGrowthRate"`
	RentalGrowthRate   float64 `yaml:"rentalGrowthRate" json:"rentalGrowthRate"`
	CPIRate            float64 `yaml:"cpiRate" json:"cpiRate"`
	RentalGrowthSource string  `yaml:"rentalGrowthSource,omitempty" json:"rentalGrowthSource,omitempty"`
	MedicareLevyRate   float64 `yaml:"medicareLevyRate,omitempty" json:"medicareLevyRate,omitempty"`
}

// DefaultAssumptions returns the standard growth assumptions.
func DefaultAssumptions() Assumptions {
	a := Assumptions{
		CapitalGrowthRate: constants.DefaultCapitalGrowthRate,
		RentalGrowthRate:  constants.DefaultRentalGrowthRate,
		CPIRate:           constants.DefaultCPIRate,
	}
	a.ApplyDefaults()
	return a
}

// UnmarshalJSON decodes a possibly partial assumptions object on top of
// DefaultAssumptions, so omitted rates keep their defaults and an explicit 0
// stays 0.
func (a *Assumptions) UnmarshalJSON(data []byte) error {
	type plain Assumptions
	decoded := plain(DefaultAssumptions())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*a = Assumptions(decoded)
	a.ApplyDefaults()
	return nil
}

// ApplyDefaults canonicalises the rental growth source and fills an unset
// Medicare levy rate.
func (a *Assumptions) ApplyDefaults() {
	if a.MedicareLevyRate <= 0 {
		a.MedicareLevyRate = tax.DefaultMedicareLevyRate
	}
	switch strings.ToLower(strings.TrimSpace(a.RentalGrowthSource)) {
	case RentalGrowthFromRecord, "property":
		a.RentalGrowthSource = RentalGrowthFromRecord
	default:
		a.RentalGrowthSource = RentalGrowthFromAssumptions
	}
}

// RentalGrowthFor returns the rental growth rate to apply to a record.
func (a Assumptions) RentalGrowthFor(record PropertyRecord) float64 {
	if a.RentalGrowthSource == RentalGrowthFromRecord {
		return record.RentalGrowthRate
	}
	return a.RentalGrowthRate
}
