package template

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const (
	// Fixed institutional categories must be numerically exact.
	weightSumTolerance = 0.01
	// Custom categories get a warn-only sum check at a looser bound.
	customWeightSumTolerance = 0.1
)

// ValidateConfig checks a template's scoring rules against the rules of
// its job category. For categories with a fixed required-section list
// every violation is fatal; for custom-section categories the weight-sum
// check is advisory only.
func ValidateConfig(cfg TemplateConfig, rules CategoryRules) error {
	if rules.AllowCustomSections {
		return validateCustomConfig(cfg)
	}
	return validateRequiredConfig(cfg, rules.RequiredSections)
}

func validateRequiredConfig(cfg TemplateConfig, required []string) error {
	// The section list is fixed by the category; extra sections would
	// carry weight the sum check below never sees.
	if len(cfg.Sections) > 0 {
		return fmt.Errorf("%w: category does not allow custom sections", ErrConfigInvalid)
	}

	for _, key := range required {
		denominator, ok := cfg.Denominators[key]
		if !ok || denominator <= 0 {
			return fmt.Errorf("%w: section %q requires a positive denominator", ErrConfigInvalid, key)
		}
		weight, ok := cfg.Weights[key]
		if !ok || weight < 0 || weight > 1 {
			return fmt.Errorf("%w: section %q requires a weight in [0,1]", ErrConfigInvalid, key)
		}
		maxScore, ok := cfg.MaxScores[key]
		if !ok || maxScore <= 0 {
			return fmt.Errorf("%w: section %q requires a positive max score", ErrConfigInvalid, key)
		}
	}

	sum := 0.0
	for _, weight := range cfg.Weights {
		sum += weight
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: declared weights sum to %.4f, expected 1", ErrConfigInvalid, sum)
	}
	return nil
}

func validateCustomConfig(cfg TemplateConfig) error {
	sum := 0.0
	counted := make(map[string]bool, len(cfg.Weights)+len(cfg.Sections))
	for key, weight := range cfg.Weights {
		if weight < 0 {
			return fmt.Errorf("%w: section %q has a negative weight", ErrConfigInvalid, key)
		}
		counted[key] = true
		sum += weight
	}
	for i, section := range cfg.Sections {
		if strings.TrimSpace(section.Key) == "" {
			return fmt.Errorf("%w: custom section %d is missing a key", ErrConfigInvalid, i)
		}
		if section.Weight < 0 {
			return fmt.Errorf("%w: custom section %q has a negative weight", ErrConfigInvalid, section.Key)
		}
		// Scoring prefers the weights map over a same-key section entry.
		if !counted[section.Key] {
			counted[section.Key] = true
			sum += section.Weight
		}
	}

	if len(counted) > 0 && math.Abs(sum-1) > customWeightSumTolerance {
		slog.Warn("custom template weights do not sum to 1", "type", cfg.Type, "sum", sum)
	}
	return nil
}
