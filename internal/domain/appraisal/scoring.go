package appraisal

import (
	"sort"

	"appraisal/internal/domain/template"
)

// BandThresholds is injected per call; thresholds live in system
// configuration so categories can carry different band cut-offs in tests
// and in production alike.
type BandThresholds struct {
	Outstanding float64 `json:"outstanding"`
	Exceeds     float64 `json:"exceeds"`
	Meets       float64 `json:"meets"`
	Below       float64 `json:"below"`
}

type Result struct {
	FinalScore float64        `json:"finalScore"`
	RatingBand string         `json:"ratingBand"`
	Sections   []SectionScore `json:"sections"`
}

// ComputeFinalScore turns raw per-section totals into a normalized,
// weighted final score and rating band. It is a pure function: identical
// inputs produce identical output, section breakdowns included.
func ComputeFinalScore(cfg template.TemplateConfig, rawTotals map[string]float64, bands BandThresholds) (Result, error) {
	weights := effectiveWeights(cfg)
	if len(weights) == 0 {
		return Result{}, ErrTemplateConfigMissing
	}

	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result Result
	for _, key := range keys {
		weight := weights[key]
		denominator := cfg.Denominators[key]
		raw := rawTotals[key]

		// A bad denominator is a template-validation failure; here it
		// only zeroes the section instead of dividing by zero.
		weighted := 0.0
		if denominator > 0 {
			weighted = raw / denominator * weight
		}

		result.Sections = append(result.Sections, SectionScore{
			SectionKey:    key,
			RawTotal:      raw,
			Denominator:   denominator,
			Weight:        weight,
			WeightedScore: weighted,
		})
		result.FinalScore += weighted
	}

	result.RatingBand = RatingBandFor(result.FinalScore, bands)
	return result, nil
}

func RatingBandFor(score float64, bands BandThresholds) string {
	switch {
	case score >= bands.Outstanding:
		return BandOutstanding
	case score >= bands.Exceeds:
		return BandExceeds
	case score >= bands.Meets:
		return BandMeets
	case score >= bands.Below:
		return BandBelow
	default:
		return BandUnsatisfactory
	}
}

func effectiveWeights(cfg template.TemplateConfig) map[string]float64 {
	weights := make(map[string]float64, len(cfg.Weights)+len(cfg.Sections))
	for key, weight := range cfg.Weights {
		weights[key] = weight
	}
	for _, section := range cfg.Sections {
		if _, ok := weights[section.Key]; !ok {
			weights[section.Key] = section.Weight
		}
	}
	return weights
}
