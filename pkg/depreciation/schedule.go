// Package depreciation computes annual capital works and plant and equipment
// deductions for an investment property.
package depreciation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/mathutil"
)

// Method selects how plant and equipment is written off.
type Method string

const (
	// PrimeCost writes off a constant share of the original value each year.
	PrimeCost Method = "prime-cost"
	// DiminishingValue writes off a share of the declining base each year.
	DiminishingValue Method = "diminishing-value"
)

// ParseMethod converts a configuration string into a Method. Empty input
// defaults to prime cost.
func ParseMethod(value string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(PrimeCost), "prime", "straight-line":
		return PrimeCost, nil
	case string(DiminishingValue), "diminishing", "declining-balance":
		return DiminishingValue, nil
	default:
		return "", fmt.Errorf("unknown depreciation method %q", value)
	}
}

// Params describes the depreciable components of a property.
type Params struct {
	BuildingValue       float64
	PlantEquipmentValue float64
	ConstructionYear    int
	IsNewProperty       bool
	Method              Method
}

// Result is the deduction for one ownership year.
type Result struct {
	Building float64
	Fixtures float64
	Total    float64
}

// Scheduler returns deductions for any ownership year.
type Scheduler struct {
	params Params
}

// NewScheduler creates a Scheduler for the given property.
func NewScheduler(params Params) *Scheduler {
	return &Scheduler{params: params}
}

// CapitalWorksEligible reports whether the building qualifies for the
// capital works allowance.
func (s *Scheduler) CapitalWorksEligible() bool {
	return s.params.ConstructionYear >= constants.CapitalWorksEligibleYear
}

// ForYear returns the deduction for a 1-based ownership year.
func (s *Scheduler) ForYear(year int) Result {
	if year < 1 {
		return Result{}
	}

	var result Result
	if s.CapitalWorksEligible() {
		result.Building = mathutil.ApplyPercentage(mathutil.NonNegative(s.params.BuildingValue), constants.CapitalWorksRate)
	}
	if s.params.IsNewProperty {
		plant := mathutil.NonNegative(s.params.PlantEquipmentValue)
		if s.params.Method == DiminishingValue {
			declined := plant * math.Pow(1-constants.PlantEquipmentRate/constants.PercentageMultiplier, float64(year-1))
			result.Fixtures = mathutil.ApplyPercentage(declined, constants.PlantEquipmentRate)
		} else {
			result.Fixtures = mathutil.ApplyPercentage(plant, constants.PlantEquipmentRate)
		}
	}
	result.Total = result.Building + result.Fixtures
	return result
}

// Cumulative sums the deductions for years 1 through year.
func (s *Scheduler) Cumulative(year int) Result {
	var total Result
	for y := 1; y <= year; y++ {
		r := s.ForYear(y)
		total.Building += r.Building
		total.Fixtures += r.Fixtures
	}
	total.Total = total.Building + total.Fixtures
	return total
}
