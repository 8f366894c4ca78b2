package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
)

const (
	OptimizerFieldMainLoanAmount = "mainLoanAmount"

	OptimizerKindCashFlowFloor = "cash_flow_floor"

	defaultToleranceAmount = constants.ToleranceForComparison
	defaultMaxIterations   = 50
)

// OptimizerConfig defines a single-parameter optimization directive: find
// the largest value of Field within [Min, Max] whose worst annual after-tax
// cash flow stays at or above Floor.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" json:"field,omitempty" mapstructure:"field"`
	Kind          string   `yaml:"kind,omitempty" json:"kind,omitempty" mapstructure:"kind"`
	Floor         float64  `yaml:"floor" json:"floor" mapstructure:"floor"`
	Min           *float64 `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldMainLoanAmount
	}
	switch strings.ToLower(trimmed) {
	case "amount", "loanamount", "mainloanamount", "main_loan_amount", "main-loan-amount", "mainloan.amount":
		return OptimizerFieldMainLoanAmount
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		o.Kind = OptimizerKindCashFlowFloor
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if o.Field != OptimizerFieldMainLoanAmount {
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}
	if o.Kind != OptimizerKindCashFlowFloor {
		return fmt.Errorf("optimizer kind %q is not supported", o.Kind)
	}
	if o.Min == nil {
		return fmt.Errorf("optimizer requires a minimum bound")
	}
	if o.Max == nil {
		return fmt.Errorf("optimizer requires a maximum bound")
	}
	if *o.Min < 0 {
		return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
	}
	if *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}
	return nil
}
