package appraisal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/core"
	"appraisal/internal/domain/template"
	"appraisal/internal/requestctx"
)

// Directory is the slice of the employee registry this engine needs:
// referential existence and signer identity.
type Directory interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	EmployeeEmail(ctx context.Context, employeeID string) (string, error)
	GetCycle(ctx context.Context, cycleID string) (core.Cycle, error)
}

type TemplateSource interface {
	Get(ctx context.Context, templateID string) (template.Template, error)
}

type Notifier interface {
	Notify(ctx context.Context, employeeID, kind, title, body string)
}

type Service struct {
	store     StoreAPI
	directory Directory
	templates TemplateSource
	audit     *audit.Service
	notifier  Notifier
}

func NewService(store StoreAPI, directory Directory, templates TemplateSource, auditSvc *audit.Service, notifier Notifier) *Service {
	return &Service{store: store, directory: directory, templates: templates, audit: auditSvc, notifier: notifier}
}

type SectionInput struct {
	SectionKey string           `json:"sectionKey"`
	Criteria   []CriterionInput `json:"criteria"`
}

type CriterionInput struct {
	CriterionKey string  `json:"criterionKey"`
	Score        float64 `json:"score"`
}

type Details struct {
	Appraisal  Appraisal        `json:"appraisal"`
	Sections   []SectionScore   `json:"sections"`
	Criteria   []CriterionScore `json:"criteria"`
	Signatures []Signature      `json:"signatures"`
}

func (s *Service) Create(ctx context.Context, actorID, employeeID, supervisorID, templateID, cycleID string) (Appraisal, error) {
	for _, id := range []string{employeeID, supervisorID} {
		exists, err := s.directory.EmployeeExists(ctx, id)
		if err != nil {
			return Appraisal{}, err
		}
		if !exists {
			return Appraisal{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
		}
	}

	if _, err := s.templates.Get(ctx, templateID); err != nil {
		return Appraisal{}, err
	}

	cycle, err := s.directory.GetCycle(ctx, cycleID)
	if err != nil {
		return Appraisal{}, err
	}
	if cycle.Status != core.CycleStatusActive {
		return Appraisal{}, ErrCycleNotActive
	}

	id, err := s.store.Create(ctx, employeeID, supervisorID, templateID, cycleID)
	if err != nil {
		return Appraisal{}, err
	}
	s.recordAudit(ctx, actorID, "appraisal.create", id, nil)
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, appraisalID string) (Appraisal, error) {
	return s.store.Get(ctx, appraisalID)
}

func (s *Service) List(ctx context.Context, employeeID, supervisorID string, limit, offset int) ([]Appraisal, error) {
	return s.store.List(ctx, employeeID, supervisorID, limit, offset)
}

func (s *Service) Details(ctx context.Context, appraisalID string) (Details, error) {
	app, err := s.store.Get(ctx, appraisalID)
	if err != nil {
		return Details{}, err
	}
	sections, err := s.store.SectionScores(ctx, appraisalID)
	if err != nil {
		return Details{}, err
	}
	criteria, err := s.store.CriterionScores(ctx, appraisalID)
	if err != nil {
		return Details{}, err
	}
	signatures, err := s.store.Signatures(ctx, appraisalID)
	if err != nil {
		return Details{}, err
	}
	return Details{Appraisal: app, Sections: sections, Criteria: criteria, Signatures: signatures}, nil
}

// UpdateSectionScores replaces every stored score and recomputes the
// final score in one pass. There is no partial patch path.
func (s *Service) UpdateSectionScores(ctx context.Context, actorID, appraisalID string, sections []SectionInput) (Appraisal, error) {
	app, err := s.store.Get(ctx, appraisalID)
	if err != nil {
		return Appraisal{}, err
	}

	tpl, err := s.templates.Get(ctx, app.TemplateID)
	if err != nil {
		return Appraisal{}, err
	}

	criteria, rawTotals, err := flattenSections(tpl.Config, sections)
	if err != nil {
		return Appraisal{}, err
	}

	bands, err := s.store.BandThresholds(ctx)
	if err != nil {
		return Appraisal{}, err
	}

	result, err := ComputeFinalScore(tpl.Config, rawTotals, bands)
	if err != nil {
		return Appraisal{}, err
	}

	if err := s.store.ReplaceScores(ctx, appraisalID, criteria, result); err != nil {
		return Appraisal{}, err
	}

	s.recordAudit(ctx, actorID, "appraisal.scores.update", appraisalID, map[string]any{
		"finalScore": result.FinalScore,
		"ratingBand": result.RatingBand,
	})
	return s.store.Get(ctx, appraisalID)
}

func (s *Service) Sign(ctx context.Context, actorID, appraisalID, role, signerID string) (Signature, error) {
	signerEmail, err := s.directory.EmployeeEmail(ctx, signerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Signature{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, signerID)
	}
	if err != nil {
		return Signature{}, err
	}

	sig, err := s.store.Sign(ctx, appraisalID, role, signerID, signerEmail)
	if err != nil {
		return Signature{}, err
	}

	s.recordAudit(ctx, actorID, "appraisal.sign", appraisalID, map[string]any{"role": role})
	return sig, nil
}

func (s *Service) Submit(ctx context.Context, actorID, appraisalID string) (string, error) {
	next, err := s.store.Transition(ctx, appraisalID, Submit)
	if err != nil {
		return "", err
	}
	s.recordAudit(ctx, actorID, "appraisal.submit", appraisalID, nil)
	s.notifySupervisor(ctx, appraisalID, "appraisal_submitted", "Appraisal submitted for review")
	return next, nil
}

func (s *Service) SubmitForReview(ctx context.Context, actorID, appraisalID string) (string, error) {
	next, err := s.store.Transition(ctx, appraisalID, SubmitForReview)
	if err != nil {
		return "", err
	}
	s.recordAudit(ctx, actorID, "appraisal.submit_for_review", appraisalID, nil)
	s.notifySupervisor(ctx, appraisalID, "appraisal_submitted", "Appraisal awaiting manager review")
	return next, nil
}

func (s *Service) Finalize(ctx context.Context, actorID, appraisalID string) (string, error) {
	next, err := s.store.Transition(ctx, appraisalID, Finalize)
	if err != nil {
		return "", err
	}
	s.recordAudit(ctx, actorID, "appraisal.finalize", appraisalID, nil)
	return next, nil
}

func flattenSections(cfg template.TemplateConfig, sections []SectionInput) ([]CriterionScore, map[string]float64, error) {
	var criteria []CriterionScore
	rawTotals := make(map[string]float64, len(sections))
	weights := effectiveWeights(cfg)

	for _, section := range sections {
		if _, ok := weights[section.SectionKey]; !ok {
			return nil, nil, fmt.Errorf("%w: section %q is not in the template", ErrScoreOutOfRange, section.SectionKey)
		}
		total := 0.0
		for _, criterion := range section.Criteria {
			if criterion.Score < 0 {
				return nil, nil, fmt.Errorf("%w: %s/%s is negative", ErrScoreOutOfRange, section.SectionKey, criterion.CriterionKey)
			}
			if maxScore, ok := cfg.MaxScores[section.SectionKey]; ok && criterion.Score > maxScore {
				return nil, nil, fmt.Errorf("%w: %s/%s exceeds max %.2f", ErrScoreOutOfRange, section.SectionKey, criterion.CriterionKey, maxScore)
			}
			criteria = append(criteria, CriterionScore{
				SectionKey:   section.SectionKey,
				CriterionKey: criterion.CriterionKey,
				Score:        criterion.Score,
			})
			total += criterion.Score
		}
		rawTotals[section.SectionKey] = total
	}
	return criteria, rawTotals, nil
}

func (s *Service) notifySupervisor(ctx context.Context, appraisalID, kind, title string) {
	if s.notifier == nil {
		return
	}
	app, err := s.store.Get(ctx, appraisalID)
	if err != nil {
		slog.Warn("notify lookup failed", "appraisalId", appraisalID, "err", err)
		return
	}
	s.notifier.Notify(ctx, app.SupervisorID, kind, title, "")
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entityID string, meta any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actorID, action, "appraisal", entityID, requestctx.GetRequestID(ctx), meta); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
