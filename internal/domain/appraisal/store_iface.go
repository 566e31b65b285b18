package appraisal

import "context"

type StoreAPI interface {
	Create(ctx context.Context, employeeID, supervisorID, templateID, cycleID string) (string, error)
	Get(ctx context.Context, appraisalID string) (Appraisal, error)
	List(ctx context.Context, employeeID, supervisorID string, limit, offset int) ([]Appraisal, error)
	CriterionScores(ctx context.Context, appraisalID string) ([]CriterionScore, error)
	SectionScores(ctx context.Context, appraisalID string) ([]SectionScore, error)
	Signatures(ctx context.Context, appraisalID string) ([]Signature, error)
	ReplaceScores(ctx context.Context, appraisalID string, criteria []CriterionScore, result Result) error
	Sign(ctx context.Context, appraisalID, role, signerID, signerEmail string) (Signature, error)
	Transition(ctx context.Context, appraisalID string, apply func(current string) (string, error)) (string, error)
	BandThresholds(ctx context.Context) (BandThresholds, error)
}
