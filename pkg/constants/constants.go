// Package constants provides shared constants for the property-forecast application.
package constants

// DateTimeLayout is the format expected in config files for the projection
// start month.
const DateTimeLayout = "2006-01"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is the number of rent weeks in a year
	WeeksPerYear = 52

	// FinancialYearStartMonth is July, the first month of an Australian financial year
	FinancialYearStartMonth = 7
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// ToleranceForComparison is the default dollar tolerance of the loan optimizer
	ToleranceForComparison = 1.0

	// OwnershipTolerance is how far ownership percentages may drift from 100
	OwnershipTolerance = 0.5
)

// Growth assumptions. These are the defaults of config.Assumptions and are
// not read directly by the engine.
const (
	// DefaultCapitalGrowthRate is the annual property value growth in percent
	DefaultCapitalGrowthRate = 7.0

	// DefaultRentalGrowthRate is the annual rent growth in percent
	DefaultRentalGrowthRate = 5.0

	// DefaultCPIRate is the annual inflation assumption in percent
	DefaultCPIRate = 2.5
)

// Loan defaults
const (
	// DefaultInterestRate is used when a funded loan has no rate
	DefaultInterestRate = 6.0

	// DefaultLoanTermYears is used when a funded loan has no term
	DefaultLoanTermYears = 30

	// DefaultMaxLVR is the lending limit applied to the equity security
	DefaultMaxLVR = 80.0
)

// Depreciation constants
const (
	// CapitalWorksRate is the annual building allowance in percent
	CapitalWorksRate = 2.5

	// CapitalWorksEligibleYear is the first construction year eligible for
	// capital works deductions
	CapitalWorksEligibleYear = 1987

	// PlantEquipmentRate is the annual plant and equipment rate in percent
	PlantEquipmentRate = 15.0
)

// Projection range constants
const (
	// DefaultProjectionYears is used when no end year is given
	DefaultProjectionYears = 30

	// SpeculativeProjectionYears is the horizon past which growth assumptions
	// are flagged as speculative
	SpeculativeProjectionYears = 40
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long memoized projections are kept
	DefaultCacheTTLSeconds = 600

	// DefaultBatchConcurrency bounds parallel projections in a batch request
	DefaultBatchConcurrency = 4

	// MaxBatchSize is the largest batch accepted by the API
	MaxBatchSize = 50
)
