package construction

import (
	"sort"

	"github.com/iwvelando/property-forecast/pkg/mathutil"
)

// ProgressPayment is one stage payment to the builder.
type ProgressPayment struct {
	Percentage  float64
	Month       int
	Description string
}

// Drawdown is the cumulative position after a progress payment.
type Drawdown struct {
	Month                int
	Description          string
	Amount               float64
	CumulativeAmount     float64
	CumulativePercentage float64
}

// DrawdownSchedule orders the progress payments by month and converts them
// into amounts of the construction contract value. Payments keep their
// configured order within the same month.
func DrawdownSchedule(payments []ProgressPayment, constructionValue float64) []Drawdown {
	ordered := make([]ProgressPayment, len(payments))
	copy(ordered, payments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Month < ordered[j].Month
	})

	value := mathutil.NonNegative(constructionValue)
	schedule := make([]Drawdown, 0, len(ordered))
	cumulative := 0.0
	cumulativePct := 0.0
	for _, payment := range ordered {
		pct := mathutil.NonNegative(payment.Percentage)
		amount := mathutil.ApplyPercentage(value, pct)
		cumulative += amount
		cumulativePct += pct
		schedule = append(schedule, Drawdown{
			Month:                payment.Month,
			Description:          payment.Description,
			Amount:               amount,
			CumulativeAmount:     cumulative,
			CumulativePercentage: cumulativePct,
		})
	}
	return schedule
}

// TotalPercentage sums the progress payment percentages.
func TotalPercentage(payments []ProgressPayment) float64 {
	total := 0.0
	for _, payment := range payments {
		total += payment.Percentage
	}
	return total
}
