package appraisal

import "time"

type Appraisal struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	SupervisorID string    `json:"supervisorId"`
	TemplateID   string    `json:"templateId"`
	CycleID      string    `json:"cycleId"`
	Status       string    `json:"status"`
	FinalScore   *float64  `json:"finalScore,omitempty"`
	RatingBand   string    `json:"ratingBand,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CriterionScore struct {
	SectionKey   string  `json:"sectionKey"`
	CriterionKey string  `json:"criterionKey"`
	Score        float64 `json:"score"`
}

// SectionScore rows are derived and always rewritten as a whole set; a
// row never survives a recomputation it was not part of.
type SectionScore struct {
	SectionKey    string  `json:"sectionKey"`
	RawTotal      float64 `json:"rawTotal"`
	Denominator   float64 `json:"denominator"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
}

type Signature struct {
	ID            string    `json:"id"`
	AppraisalID   string    `json:"appraisalId"`
	Role          string    `json:"role"`
	SignerID      string    `json:"signerId"`
	SignerEmail   string    `json:"signerEmail"`
	SignedAt      time.Time `json:"signedAt"`
	IntegrityHash string    `json:"integrityHash"`
}
