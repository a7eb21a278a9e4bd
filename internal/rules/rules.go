// Package rules loads the scorecard threshold configuration. The file is a
// nested mapping keyed by category, each value a map of threshold key to
// numeric limit. Missing categories evaluate as vacuous passes downstream,
// so absent keys are never an error.
package rules

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RuleSet holds per-category threshold maps. A nil value for a threshold key
// means the rule is not configured.
type RuleSet struct {
	Valuation map[string]float64 `yaml:"valuation_rules"`
	Quality   map[string]float64 `yaml:"quality_rules"`
	Growth    map[string]float64 `yaml:"growth_rules"`
	Health    map[string]float64 `yaml:"financial_health"`
	Dividend  map[string]float64 `yaml:"dividend_policy"`
	Signals   map[string]float64 `yaml:"signals"`
}

// Threshold returns the configured limit for key in the given category map,
// or nil when no rule is configured.
func Threshold(m map[string]float64, key string) *float64 {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

// Load reads a RuleSet from a YAML file. Categories that are absent from the
// file come back as empty maps.
func Load(path string) (*RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a RuleSet from YAML bytes.
func Parse(b []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(b, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}
