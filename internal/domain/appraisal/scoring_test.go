package appraisal

import (
	"math"
	"reflect"
	"testing"

	"appraisal/internal/domain/template"
)

var testBands = BandThresholds{Outstanding: 0.9, Exceeds: 0.8, Meets: 0.6, Below: 0.4}

func fixedConfig() template.TemplateConfig {
	return template.TemplateConfig{
		Type:         "teaching",
		Weights:      map[string]float64{"functional": 0.5, "core": 0.3, "projects": 0.2},
		Denominators: map[string]float64{"functional": 100, "core": 80, "projects": 20},
		MaxScores:    map[string]float64{"functional": 100, "core": 80, "projects": 20},
	}
}

func TestComputeFinalScore(t *testing.T) {
	raw := map[string]float64{"functional": 80, "core": 60, "projects": 15}

	result, err := ComputeFinalScore(fixedConfig(), raw, testBands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(result.FinalScore-0.775) > 1e-9 {
		t.Fatalf("expected final score 0.775, got %v", result.FinalScore)
	}
	if result.RatingBand != BandMeets {
		t.Fatalf("expected band %q, got %q", BandMeets, result.RatingBand)
	}
	if len(result.Sections) != 3 {
		t.Fatalf("expected 3 section breakdowns, got %d", len(result.Sections))
	}

	expected := map[string]float64{"functional": 0.4, "core": 0.225, "projects": 0.15}
	for _, section := range result.Sections {
		if math.Abs(section.WeightedScore-expected[section.SectionKey]) > 1e-9 {
			t.Fatalf("section %s: expected weighted %v, got %v", section.SectionKey, expected[section.SectionKey], section.WeightedScore)
		}
	}
}

func TestComputeFinalScoreDeterministic(t *testing.T) {
	raw := map[string]float64{"functional": 71, "core": 42.5, "projects": 13}

	first, err := ComputeFinalScore(fixedConfig(), raw, testBands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeFinalScore(fixedConfig(), raw, testBands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestComputeFinalScoreMissingConfig(t *testing.T) {
	_, err := ComputeFinalScore(template.TemplateConfig{}, map[string]float64{"core": 10}, testBands)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if err != ErrTemplateConfigMissing {
		t.Fatalf("expected ErrTemplateConfigMissing, got %v", err)
	}
}

func TestComputeFinalScoreZeroDenominatorGuard(t *testing.T) {
	cfg := fixedConfig()
	cfg.Denominators["core"] = 0

	result, err := ComputeFinalScore(cfg, map[string]float64{"functional": 100, "core": 80, "projects": 20}, testBands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, section := range result.Sections {
		if section.SectionKey == "core" && section.WeightedScore != 0 {
			t.Fatalf("expected zeroed section for bad denominator, got %v", section.WeightedScore)
		}
	}
}

func TestComputeFinalScoreCustomSections(t *testing.T) {
	cfg := template.TemplateConfig{
		Type: "adhoc",
		Sections: []template.CustomSection{
			{Key: "delivery", Title: "Delivery", Weight: 0.6},
			{Key: "teamwork", Title: "Teamwork", Weight: 0.4},
		},
		Denominators: map[string]float64{"delivery": 50, "teamwork": 50},
	}

	result, err := ComputeFinalScore(cfg, map[string]float64{"delivery": 30, "teamwork": 25}, testBands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(result.FinalScore-0.56) > 1e-9 {
		t.Fatalf("expected final score 0.56, got %v", result.FinalScore)
	}
	if result.RatingBand != BandBelow {
		t.Fatalf("expected band %q, got %q", BandBelow, result.RatingBand)
	}
}

func TestRatingBandEdges(t *testing.T) {
	cases := []struct {
		score float64
		band  string
	}{
		{0.95, BandOutstanding},
		{0.9, BandOutstanding},
		{0.85, BandExceeds},
		{0.6, BandMeets},
		{0.45, BandBelow},
		{0.1, BandUnsatisfactory},
	}
	for _, tc := range cases {
		if band := RatingBandFor(tc.score, testBands); band != tc.band {
			t.Fatalf("score %v: expected %q, got %q", tc.score, tc.band, band)
		}
	}
}
