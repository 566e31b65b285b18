package template

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

var fixedRules = CategoryRules{RequiredSections: []string{"functional", "core", "projects"}}

func validFixedConfig() TemplateConfig {
	return TemplateConfig{
		Type:         "teaching",
		Weights:      map[string]float64{"functional": 0.5, "core": 0.3, "projects": 0.2},
		Denominators: map[string]float64{"functional": 100, "core": 80, "projects": 20},
		MaxScores:    map[string]float64{"functional": 100, "core": 80, "projects": 20},
	}
}

func TestValidateConfigFixedCategory(t *testing.T) {
	if err := ValidateConfig(validFixedConfig(), fixedRules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateConfigMissingDenominator(t *testing.T) {
	cfg := validFixedConfig()
	delete(cfg.Denominators, "core")

	err := ValidateConfig(cfg, fixedRules)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "core") {
		t.Fatalf("error must name the offending section: %v", err)
	}
}

func TestValidateConfigZeroDenominator(t *testing.T) {
	cfg := validFixedConfig()
	cfg.Denominators["projects"] = 0

	if err := ValidateConfig(cfg, fixedRules); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateConfigWeightOutOfRange(t *testing.T) {
	cfg := validFixedConfig()
	cfg.Weights["functional"] = 1.5

	err := ValidateConfig(cfg, fixedRules)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "functional") {
		t.Fatalf("error must name the offending section: %v", err)
	}
}

func TestValidateConfigNonPositiveMaxScore(t *testing.T) {
	cfg := validFixedConfig()
	cfg.MaxScores["core"] = 0

	if err := ValidateConfig(cfg, fixedRules); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateConfigWeightSumTolerance(t *testing.T) {
	cfg := validFixedConfig()
	cfg.Weights["projects"] = 0.205 // sum 1.005, inside ±0.01

	if err := ValidateConfig(cfg, fixedRules); err != nil {
		t.Fatalf("unexpected error within tolerance: %v", err)
	}

	cfg.Weights["projects"] = 0.25 // sum 1.05, outside ±0.01
	if err := ValidateConfig(cfg, fixedRules); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for weight sum drift, got %v", err)
	}
}

func TestValidateConfigCustomCategoryLenient(t *testing.T) {
	rules := CategoryRules{AllowCustomSections: true}
	cfg := TemplateConfig{
		Type: "adhoc",
		Sections: []CustomSection{
			{Key: "delivery", Title: "Delivery", Weight: 0.7},
			{Key: "teamwork", Title: "Teamwork", Weight: 0.5},
		},
	}

	// Sum 1.2 is outside even the widened tolerance, but custom
	// categories only warn.
	if err := ValidateConfig(cfg, rules); err != nil {
		t.Fatalf("custom weight sum must not fail validation: %v", err)
	}
}

func TestValidateConfigCustomCategoryMalformed(t *testing.T) {
	rules := CategoryRules{AllowCustomSections: true}

	cfg := TemplateConfig{Type: "adhoc", Sections: []CustomSection{{Key: " ", Weight: 0.5}}}
	if err := ValidateConfig(cfg, rules); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for missing key, got %v", err)
	}

	cfg = TemplateConfig{Type: "adhoc", Sections: []CustomSection{{Key: "delivery", Weight: -0.1}}}
	if err := ValidateConfig(cfg, rules); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for negative weight, got %v", err)
	}
}

func TestValidateConfigFixedCategoryRejectsExtraSections(t *testing.T) {
	cfg := validFixedConfig()
	cfg.Sections = []CustomSection{{Key: "bonus", Title: "Bonus", Weight: 0.5}}

	err := ValidateConfig(cfg, fixedRules)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for extra sections, got %v", err)
	}
	if !strings.Contains(err.Error(), "custom sections") {
		t.Fatalf("error must name the violation: %v", err)
	}
}

func TestValidateConfigCustomCategoryAdvisoryCoversWeightsMap(t *testing.T) {
	rules := CategoryRules{AllowCustomSections: true}
	cfg := TemplateConfig{
		Type:    "adhoc",
		Weights: map[string]float64{"delivery": 0.3, "teamwork": 0.2},
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	if err := ValidateConfig(cfg, rules); err != nil {
		t.Fatalf("custom weight sum must not fail validation: %v", err)
	}
	if !strings.Contains(buf.String(), "do not sum to 1") {
		t.Fatalf("expected advisory warning for weights map sum 0.5, log was: %s", buf.String())
	}
}

func TestValidateConfigCustomCategoryAdvisoryPrefersWeightsMap(t *testing.T) {
	rules := CategoryRules{AllowCustomSections: true}
	cfg := TemplateConfig{
		Type:     "adhoc",
		Weights:  map[string]float64{"delivery": 0.6},
		Sections: []CustomSection{{Key: "delivery", Weight: 0.9}, {Key: "teamwork", Weight: 0.4}},
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	// Effective weights are delivery=0.6 and teamwork=0.4, sum 1.
	if err := ValidateConfig(cfg, rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "do not sum to 1") {
		t.Fatalf("duplicate-key section must not be double counted, log was: %s", buf.String())
	}
}
