/*
Package factory provides JSON to Go commission settings conversion.

PURPOSE:
  Converts JSON settings documents into commission.Settings. Settings are
  stored as JSON (store/sqlite settings table, one row per version) and
  edited through the admin API, so a rate change or a new cutover date
  needs no deploy.

JSON SCHEMA:
  {
    "cutover_date": "2025-03-01",
    "timezone": "America/Sao_Paulo",
    "thresholds": {"t1": 2, "t2": 5},
    "truck_rates": {"BKO": "3.50", "GKY": "7.50", "AUA": "10.00"},
    "percentages": {"low": "0.010", "medium": "0.009", "high": "0.008"}
  }

DEFAULTS:
  - truck_rates:  missing codes fall back to the standard fleet rates
  - percentages:  missing tiers fall back to 1.0% / 0.9% / 0.8%
  - timezone:     the factory's default location

  cutover_date and thresholds have NO default. A document without them
  is rejected: tier thresholds must be configured, never guessed.

USAGE:
  f := factory.NewSettingsFactory(loc)
  settings, err := f.ParseSettings(jsonString)
  svc, err := commission.NewService(settings, deps, nil)

SEE ALSO:
  - commission/rates.go: Settings and RateTable
  - commission/tier.go: Thresholds
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the JSON representation of commission settings.
type SettingsJSON struct {
	CutoverDate string                     `json:"cutover_date"`
	Timezone    string                     `json:"timezone,omitempty"`
	Thresholds  *ThresholdsJSON            `json:"thresholds"`
	TruckRates  map[string]decimal.Decimal `json:"truck_rates,omitempty"`
	Percentages *PercentagesJSON           `json:"percentages,omitempty"`
}

// ThresholdsJSON represents the tier threshold pair.
type ThresholdsJSON struct {
	T1 *int `json:"t1"`
	T2 *int `json:"t2"`
}

// PercentagesJSON represents the tier percentage schedule as fractions.
type PercentagesJSON struct {
	Low    *decimal.Decimal `json:"low,omitempty"`
	Medium *decimal.Decimal `json:"medium,omitempty"`
	High   *decimal.Decimal `json:"high,omitempty"`
}

// =============================================================================
// SETTINGS FACTORY
// =============================================================================

// SettingsFactory converts JSON settings to commission.Settings.
type SettingsFactory struct {
	defaultLocation *time.Location
}

// NewSettingsFactory creates a factory. loc is used when the document has
// no timezone; nil means UTC.
func NewSettingsFactory(loc *time.Location) *SettingsFactory {
	if loc == nil {
		loc = time.UTC
	}
	return &SettingsFactory{defaultLocation: loc}
}

// ParseSettings parses a JSON string into validated Settings.
func (f *SettingsFactory) ParseSettings(jsonStr string) (commission.Settings, error) {
	var sj SettingsJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return commission.Settings{}, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts SettingsJSON to validated Settings.
func (f *SettingsFactory) FromJSON(sj SettingsJSON) (commission.Settings, error) {
	loc := f.defaultLocation
	if sj.Timezone != "" {
		var err error
		loc, err = core.LoadLocation(sj.Timezone)
		if err != nil {
			return commission.Settings{}, fmt.Errorf("invalid timezone %q: %w", sj.Timezone, err)
		}
	}

	if sj.CutoverDate == "" {
		return commission.Settings{}, fmt.Errorf("cutover_date is required")
	}
	cutover, err := time.ParseInLocation("2006-01-02", sj.CutoverDate, loc)
	if err != nil {
		return commission.Settings{}, fmt.Errorf("invalid cutover_date %q: %w", sj.CutoverDate, err)
	}

	thresholds, err := parseThresholds(sj.Thresholds)
	if err != nil {
		return commission.Settings{}, err
	}

	rates, err := parseRateTable(sj.TruckRates, sj.Percentages)
	if err != nil {
		return commission.Settings{}, err
	}

	settings := commission.Settings{
		CutoverDate: cutover,
		Thresholds:  thresholds,
		Rates:       rates,
		Location:    loc,
	}
	if err := settings.Validate(); err != nil {
		return commission.Settings{}, err
	}
	return settings, nil
}

// ToJSON converts Settings back to SettingsJSON.
func (f *SettingsFactory) ToJSON(s commission.Settings) SettingsJSON {
	t1, t2 := s.Thresholds.T1, s.Thresholds.T2
	low, medium, high := s.Rates.Percentages.Low, s.Rates.Percentages.Medium, s.Rates.Percentages.High

	sj := SettingsJSON{
		CutoverDate: s.CutoverDate.Format("2006-01-02"),
		Thresholds:  &ThresholdsJSON{T1: &t1, T2: &t2},
		TruckRates:  make(map[string]decimal.Decimal, len(s.Rates.TruckRates)),
		Percentages: &PercentagesJSON{Low: &low, Medium: &medium, High: &high},
		Timezone:    "UTC",
	}
	// Always written: a missing timezone reloads as the factory default.
	if s.Location != nil {
		sj.Timezone = s.Location.String()
	}
	for code, rate := range s.Rates.TruckRates {
		sj.TruckRates[string(code)] = rate
	}
	return sj
}

// Marshal renders Settings as a JSON document for storage.
func (f *SettingsFactory) Marshal(s commission.Settings) (string, error) {
	b, err := json.Marshal(f.ToJSON(s))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseThresholds(tj *ThresholdsJSON) (commission.Thresholds, error) {
	if tj == nil || tj.T1 == nil || tj.T2 == nil {
		return commission.Thresholds{}, fmt.Errorf("%w: thresholds t1 and t2 are required", core.ErrInvalidThresholds)
	}
	th := commission.Thresholds{T1: *tj.T1, T2: *tj.T2}
	return th, th.Validate()
}

func parseRateTable(rates map[string]decimal.Decimal, pj *PercentagesJSON) (commission.RateTable, error) {
	table := commission.DefaultRateTable()

	for code, rate := range rates {
		tc := core.TruckCode(code)
		if tc == "" {
			return commission.RateTable{}, fmt.Errorf("empty truck code in truck_rates")
		}
		table.TruckRates[tc] = rate
	}

	if pj != nil {
		if pj.Low != nil {
			table.Percentages.Low = *pj.Low
		}
		if pj.Medium != nil {
			table.Percentages.Medium = *pj.Medium
		}
		if pj.High != nil {
			table.Percentages.High = *pj.High
		}
	}
	return table, table.Validate()
}
