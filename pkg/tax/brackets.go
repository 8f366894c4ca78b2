// Package tax computes Australian resident income tax and the change in an
// investor's tax caused by a property's taxable result.
package tax

import (
	"math"

	"github.com/iwvelando/property-forecast/pkg/mathutil"
)

// Bracket is one band of a progressive rate table. Rate is a percentage
// applied to income between Floor and Ceiling.
type Bracket struct {
	Floor   float64
	Ceiling float64
	Rate    float64
}

// ResidentRates is the 2024-25 resident individual rate table.
var ResidentRates = []Bracket{
	{Floor: 0, Ceiling: 18200, Rate: 0},
	{Floor: 18200, Ceiling: 45000, Rate: 16},
	{Floor: 45000, Ceiling: 135000, Rate: 30},
	{Floor: 135000, Ceiling: 190000, Rate: 37},
	{Floor: 190000, Ceiling: math.Inf(1), Rate: 45},
}

// DefaultMedicareLevyRate is the flat Medicare levy in percent.
const DefaultMedicareLevyRate = 2.0

// progressiveTax applies a bracket table to income. Negative income pays no tax.
func progressiveTax(brackets []Bracket, income float64) float64 {
	income = mathutil.NonNegative(income)
	total := 0.0
	for _, bracket := range brackets {
		if income <= bracket.Floor {
			break
		}
		taxable := mathutil.Min(income, bracket.Ceiling) - bracket.Floor
		total += mathutil.ApplyPercentage(taxable, bracket.Rate)
	}
	return total
}

// marginalRate returns the rate of the bracket containing income.
func marginalRate(brackets []Bracket, income float64) float64 {
	income = mathutil.NonNegative(income)
	rate := 0.0
	for _, bracket := range brackets {
		if income > bracket.Floor {
			rate = bracket.Rate
		}
	}
	return rate
}
