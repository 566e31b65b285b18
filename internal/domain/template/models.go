package template

import "time"

// TemplateConfig is the scoring ruleset attached to one job category.
// Section keys are free-form strings; validation happens at save time,
// never inside the scoring path.
type TemplateConfig struct {
	Type         string             `json:"type"`
	Weights      map[string]float64 `json:"weights"`
	Denominators map[string]float64 `json:"denominators"`
	MaxScores    map[string]float64 `json:"maxScores"`
	Sections     []CustomSection    `json:"sections,omitempty"`
}

type CustomSection struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Weight float64  `json:"weight"`
	Items  []string `json:"items,omitempty"`
}

type Template struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Config    TemplateConfig `json:"config"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CategoryRules drives validation strictness for one job category.
// Fixed institutional categories enumerate their required sections;
// custom categories leave the list empty and allow free-form sections.
type CategoryRules struct {
	RequiredSections    []string `json:"requiredSections"`
	AllowCustomSections bool     `json:"allowCustomSections"`
}

type CategoryRuleSet map[string]CategoryRules
