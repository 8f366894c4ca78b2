// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files for the start month.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for property-forecast.
type Configuration struct {
	Property    PropertyRecord   `yaml:"property" json:"property"`
	Assumptions Assumptions      `yaml:"assumptions,omitempty" json:"assumptions,omitempty"`
	Projection  ProjectionRange  `yaml:"projection,omitempty" json:"projection,omitempty"`
	Optimizer   *OptimizerConfig `yaml:"optimizer,omitempty" json:"optimizer,omitempty"`
	Logging     LoggingConfig    `yaml:"logging,omitempty" json:"-"`
	Output      OutputConfig     `yaml:"output,omitempty" json:"-"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ProjectionRange is the inclusive 1-based range of operating years to report.
type ProjectionRange struct {
	From int `yaml:"from,omitempty" json:"from,omitempty"`
	To   int `yaml:"to,omitempty" json:"to,omitempty"`
}

// Normalize fills an unset range with years 1 through the default horizon.
func (r *ProjectionRange) Normalize() {
	if r.From < 1 {
		r.From = 1
	}
	if r.To < 1 {
		r.To = constants.DefaultProjectionYears
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading configuration, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PROPERTY_FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("assumptions.capitalGrowthRate", constants.DefaultCapitalGrowthRate)
	v.SetDefault("assumptions.rentalGrowthRate", constants.DefaultRentalGrowthRate)
	v.SetDefault("assumptions.cpiRate", constants.DefaultCPIRate)
	v.SetDefault("assumptions.rentalGrowthSource", RentalGrowthFromAssumptions)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.Property.ApplyDefaults()
	configuration.Assumptions.ApplyDefaults()
	configuration.Projection.Normalize()
	if configuration.Optimizer != nil {
		configuration.Optimizer.Normalize()
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns non-fatal warnings.
func (c *Configuration) ValidateConfiguration() []string {
	warnings := c.Property.Warnings()

	if c.Projection.From > c.Projection.To {
		warnings = append(warnings, fmt.Sprintf("Projection starts after it ends (%d > %d) - no years will be reported",
			c.Projection.From, c.Projection.To))
	}
	if c.Projection.To > constants.SpeculativeProjectionYears {
		warnings = append(warnings, fmt.Sprintf("Projection runs to year %d - growth assumptions beyond year %d are speculative",
			c.Projection.To, constants.SpeculativeProjectionYears))
	}
	if c.Assumptions.RentalGrowthSource == RentalGrowthFromAssumptions &&
		c.Property.RentalGrowthRate != 0 &&
		c.Property.RentalGrowthRate != c.Assumptions.RentalGrowthRate {
		warnings = append(warnings, fmt.Sprintf("Property rental growth rate %.2f%% is ignored in favour of the assumption %.2f%% (set assumptions.rentalGrowthSource to %q to use it)",
			c.Property.RentalGrowthRate, c.Assumptions.RentalGrowthRate, RentalGrowthFromRecord))
	}
	return warnings
}
