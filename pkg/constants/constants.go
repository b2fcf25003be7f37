// Package constants provides shared constants for the calc-engine application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format for schedule annotations.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyScale is the number of decimal places used for currency values
	CurrencyScale = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Input limits enforced by the scenario composers. Inputs beyond these are
// rejected rather than clamped.
const (
	// MaxPrincipal is the largest principal any calculator accepts
	MaxPrincipal = 100_000_000.0

	// MaxAnnualRatePercent is the largest annual interest rate accepted (percent)
	MaxAnnualRatePercent = 100.0

	// MaxTermMonths is the longest schedule any calculator generates
	MaxTermMonths = 600
)

// Affordability rule defaults (the conventional 28/36 rule).
const (
	// DefaultFrontEndRatio is the default housing-payment-to-income ratio
	DefaultFrontEndRatio = 0.28

	// DefaultBackEndRatio is the default total-debt-to-income ratio
	DefaultBackEndRatio = 0.36
)

// FHA defaults used when the configuration does not supply MIP tiers.
const (
	// DefaultUpfrontMIPRate is the upfront mortgage insurance premium rate
	DefaultUpfrontMIPRate = 0.0175

	// DefaultMIPCancelLTV is the balance-to-original-principal ratio below
	// which monthly MIP stops
	DefaultMIPCancelLTV = 0.78

	// MIPCancellationMaxLTV is the origination LTV above which monthly MIP
	// never cancels
	MIPCancellationMaxLTV = 0.90
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
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)
