package finalreview

import "time"

// FinalReview accumulates the three sign-off slots for one appraisal.
// The slots are independent: none of them waits on another, only the
// HR finalize checks completeness.
type FinalReview struct {
	ID                   string        `json:"id"`
	AppraisalID          string        `json:"appraisalId"`
	Employee             SignatureSlot `json:"employee"`
	Supervisor           SignatureSlot `json:"supervisor"`
	Divisional           SignatureSlot `json:"divisional"`
	RecommendationType   string        `json:"recommendationType,omitempty"`
	RecommendationAction string        `json:"recommendationAction,omitempty"`
	IsLocked             bool          `json:"isLocked"`
	HRFinalizedBy        string        `json:"hrFinalizedBy,omitempty"`
	HRFinalizedAt        *time.Time    `json:"hrFinalizedAt,omitempty"`
	ReportFile           string        `json:"reportFile,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

type SignatureSlot struct {
	Signed         bool       `json:"signed"`
	SignerID       string     `json:"signerId,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	SignatureImage string     `json:"signatureImage,omitempty"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
}
