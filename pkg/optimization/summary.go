// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single optimization directive.
type Summary struct {
	Field    string  `json:"field"`
	Original float64 `json:"original"`
	Value    float64 `json:"value"`
	Floor    float64 `json:"floor"`
	// WorstCashFlow is the lowest annual after-tax cash flow at Value.
	WorstCashFlow float64  `json:"worstCashFlow"`
	WorstYear     int      `json:"worstYear"`
	Headroom      float64  `json:"headroom"`
	Iterations    int      `json:"iterations"`
	Converged     bool     `json:"converged"`
	Notes         []string `json:"notes,omitempty"`
}

// Feasible reports whether the chosen value keeps cash flow at or above the floor.
func (s Summary) Feasible() bool {
	return s.Headroom >= 0
}

// Delta is the change from the original value.
func (s Summary) Delta() float64 {
	return s.Value - s.Original
}
