// Package config defines the data structures related to configuration and
// includes functions for loading and converting the config. Tax bracket and
// MIP rate data live here as versioned configuration so the engine packages
// stay logic-only.
package config

import (
	"fmt"

	"github.com/fincalcs/calc-engine/internal/scenario"
	"github.com/fincalcs/calc-engine/pkg/brackets"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the
// output date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for calc-engine.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	TaxTables []TaxYearConfig `yaml:"taxTables,omitempty"`
	FHA       FHAConfig       `yaml:"fha,omitempty"`
	Scenarios []ScenarioEntry `yaml:"scenarios,omitempty"`
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

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
	DataFile     string `yaml:"dataFile,omitempty"` // sqlite file for saved scenarios; empty disables saving
}

// TaxYearConfig holds the bracket tables for one tax year keyed by filing
// status.
type TaxYearConfig struct {
	Year     int                     `yaml:"year"`
	Statuses map[string]StatusConfig `yaml:"statuses"`
}

// StatusConfig holds one filing status's standard deduction and marginal
// brackets.
type StatusConfig struct {
	StandardDeduction float64         `yaml:"standardDeduction"`
	Brackets          []BracketConfig `yaml:"brackets"`
}

// BracketConfig is one marginal bracket: the lower bound where Rate starts
// applying. Upper bounds are derived from the next bracket.
type BracketConfig struct {
	Lower float64 `yaml:"lower"`
	Rate  float64 `yaml:"rate"`
}

// FHAConfig holds the FHA mortgage insurance rate data.
type FHAConfig struct {
	UpfrontMIPRate float64         `yaml:"upfrontMipRate,omitempty"`
	Tiers          []MIPTierConfig `yaml:"tiers,omitempty"`
}

// MIPTierConfig selects an annual MIP rate by term and LTV; zero limits mean
// no limit.
type MIPTierConfig struct {
	MaxTermMonths int     `yaml:"maxTermMonths,omitempty"`
	MaxLTV        float64 `yaml:"maxLtv,omitempty"`
	AnnualRate    float64 `yaml:"annualRate"`
}

// ScenarioEntry is one configured calculator run.
type ScenarioEntry struct {
	Name           string                        `yaml:"name,omitempty"`
	Kind           string                        `yaml:"kind"`
	Active         bool                          `yaml:"active"`
	Mortgage       *scenario.MortgageInput       `yaml:"mortgage,omitempty"`
	FHA            *scenario.FHAInput            `yaml:"fha,omitempty"`
	CD             *scenario.CDInput             `yaml:"cd,omitempty"`
	MarriageTax    *scenario.MarriageTaxInput    `yaml:"marriageTax,omitempty"`
	IncomeTax      *scenario.IncomeTaxInput      `yaml:"incomeTax,omitempty"`
	AverageReturn  *scenario.AverageReturnInput  `yaml:"averageReturn,omitempty"`
	Affordability  *scenario.AffordabilityInput  `yaml:"affordability,omitempty"`
	SimpleInterest *scenario.SimpleInterestInput `yaml:"simpleInterest,omitempty"`
}

// Request converts the entry into a composer request.
func (e ScenarioEntry) Request() scenario.Request {
	return scenario.Request{
		Name:           e.Name,
		Kind:           e.Kind,
		Mortgage:       e.Mortgage,
		FHA:            e.FHA,
		CD:             e.CD,
		MarriageTax:    e.MarriageTax,
		IncomeTax:      e.IncomeTax,
		AverageReturn:  e.AverageReturn,
		Affordability:  e.Affordability,
		SimpleInterest: e.SimpleInterest,
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ComposerConfig converts the configured rate data into the composer's form,
// building and validating the decimal bracket tables.
func (c *Configuration) ComposerConfig() (scenario.Config, error) {
	tables := make(scenario.TaxTables)
	for _, year := range c.TaxTables {
		statuses := make(map[string]scenario.TaxTable, len(year.Statuses))
		for status, sc := range year.Statuses {
			thresholds := make([]brackets.Threshold, len(sc.Brackets))
			for i, b := range sc.Brackets {
				thresholds[i] = brackets.Threshold{
					Lower: decimal.NewFromFloat(b.Lower),
					Rate:  decimal.NewFromFloat(b.Rate),
				}
			}
			table, err := brackets.FromThresholds(thresholds)
			if err != nil {
				return scenario.Config{}, fmt.Errorf("tax year %d status %q: %w", year.Year, status, err)
			}
			statuses[status] = scenario.TaxTable{
				StandardDeduction: decimal.NewFromFloat(sc.StandardDeduction),
				Brackets:          table,
			}
		}
		tables[year.Year] = statuses
	}

	tiers := make([]scenario.MIPTier, len(c.FHA.Tiers))
	for i, t := range c.FHA.Tiers {
		tiers[i] = scenario.MIPTier{
			MaxTermMonths: t.MaxTermMonths,
			MaxLTV:        t.MaxLTV,
			AnnualRate:    t.AnnualRate,
		}
	}

	return scenario.Config{
		TaxTables:      tables,
		UpfrontMIPRate: c.FHA.UpfrontMIPRate,
		MIPTiers:       tiers,
	}, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	known := map[string]bool{
		scenario.KindMortgage:       true,
		scenario.KindFHA:            true,
		scenario.KindCD:             true,
		scenario.KindMarriageTax:    true,
		scenario.KindIncomeTax:      true,
		scenario.KindAverageReturn:  true,
		scenario.KindAffordability:  true,
		scenario.KindSimpleInterest: true,
	}

	years := make(map[int]bool, len(c.TaxTables))
	for _, y := range c.TaxTables {
		if years[y.Year] {
			warnings = append(warnings, fmt.Sprintf("Tax year %d is configured more than once", y.Year))
		}
		years[y.Year] = true
	}

	active := 0
	for _, s := range c.Scenarios {
		if !known[s.Kind] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has unknown kind '%s'", s.Name, s.Kind))
			continue
		}
		if !s.Active {
			continue
		}
		active++

		switch s.Kind {
		case scenario.KindMarriageTax:
			if s.MarriageTax != nil && !years[s.MarriageTax.Year] {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' references unconfigured tax year %d",
					s.Name, s.MarriageTax.Year))
			}
		case scenario.KindIncomeTax:
			if s.IncomeTax != nil && !years[s.IncomeTax.Year] {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' references unconfigured tax year %d",
					s.Name, s.IncomeTax.Year))
			}
		case scenario.KindFHA:
			if len(c.FHA.Tiers) == 0 {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' needs FHA MIP tiers but none are configured", s.Name))
			}
		}
	}

	if len(c.Scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No scenarios are active")
	}

	return warnings
}
