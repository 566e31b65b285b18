package finalreview

import (
	"context"
	"log/slog"
	"time"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/core"
	cryptoutil "appraisal/internal/platform/crypto"
	"appraisal/internal/requestctx"
)

type AppraisalSource interface {
	Get(ctx context.Context, appraisalID string) (appraisal.Appraisal, error)
}

type Directory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

// ReportChecker answers supervisor/report questions from the
// materialized org closure.
type ReportChecker interface {
	IsDirectReport(ctx context.Context, supervisorID, reportID string) (bool, error)
}

type Actor struct {
	ID         string
	EmployeeID string
	Role       string
}

type Service struct {
	store      *Store
	appraisals AppraisalSource
	directory  Directory
	reports    ReportChecker
	audit      *audit.Service
	crypto     *cryptoutil.Service
	reportDir  string
}

func NewService(store *Store, appraisals AppraisalSource, directory Directory, reports ReportChecker, auditSvc *audit.Service, crypto *cryptoutil.Service, reportDir string) *Service {
	return &Service{store: store, appraisals: appraisals, directory: directory, reports: reports, audit: auditSvc, crypto: crypto, reportDir: reportDir}
}

// authorize applies the per-call access rule: HR acts on anything, an
// employee only on their own record, a supervisor only on a direct
// report's record. Nothing is cached between calls.
func (s *Service) authorize(ctx context.Context, actor Actor, appraisalID string) (appraisal.Appraisal, error) {
	app, err := s.appraisals.Get(ctx, appraisalID)
	if err != nil {
		return appraisal.Appraisal{}, err
	}

	switch actor.Role {
	case auth.RoleHR:
		return app, nil
	case auth.RoleEmployee:
		if actor.EmployeeID != "" && actor.EmployeeID == app.EmployeeID {
			return app, nil
		}
	case auth.RoleSupervisor:
		if actor.EmployeeID == "" {
			break
		}
		ok, err := s.reports.IsDirectReport(ctx, actor.EmployeeID, app.EmployeeID)
		if err != nil {
			return appraisal.Appraisal{}, err
		}
		if ok {
			return app, nil
		}
	}
	return appraisal.Appraisal{}, ErrAccessDenied
}

func (s *Service) Get(ctx context.Context, actor Actor, appraisalID string) (FinalReview, error) {
	if _, err := s.authorize(ctx, actor, appraisalID); err != nil {
		return FinalReview{}, err
	}
	return s.store.GetByAppraisal(ctx, appraisalID)
}

// CreateOrUpdate upserts the review row and records a comment for one
// slot. First write creates the row.
func (s *Service) CreateOrUpdate(ctx context.Context, actor Actor, appraisalID, slot, comment string) (FinalReview, error) {
	if _, err := s.authorize(ctx, actor, appraisalID); err != nil {
		return FinalReview{}, err
	}

	review, err := s.store.Mutate(ctx, appraisalID, func(r *FinalReview) error {
		return ApplyComment(r, slot, comment)
	})
	if err != nil {
		return FinalReview{}, err
	}
	s.recordAudit(ctx, actor.ID, "finalreview.update", appraisalID, map[string]any{"slot": slot})
	return review, nil
}

func (s *Service) EmployeeSign(ctx context.Context, actor Actor, appraisalID, comment, signatureImage string) (FinalReview, error) {
	return s.sign(ctx, actor, appraisalID, SlotEmployee, comment, signatureImage)
}

func (s *Service) SupervisorSign(ctx context.Context, actor Actor, appraisalID, comment, signatureImage string) (FinalReview, error) {
	return s.sign(ctx, actor, appraisalID, SlotSupervisor, comment, signatureImage)
}

func (s *Service) sign(ctx context.Context, actor Actor, appraisalID, slot, comment, signatureImage string) (FinalReview, error) {
	if _, err := s.authorize(ctx, actor, appraisalID); err != nil {
		return FinalReview{}, err
	}

	review, err := s.store.Mutate(ctx, appraisalID, func(r *FinalReview) error {
		return ApplySignature(r, slot, SignatureSlot{
			SignerID:       actor.EmployeeID,
			Comment:        comment,
			SignatureImage: signatureImage,
		})
	})
	if err != nil {
		return FinalReview{}, err
	}
	s.recordAudit(ctx, actor.ID, "finalreview.sign", appraisalID, map[string]any{"slot": slot})
	return review, nil
}

// DivisionalSign records the third-tier signature plus the substantive
// HR recommendation.
func (s *Service) DivisionalSign(ctx context.Context, actor Actor, appraisalID, comment, signatureImage, recommendationType, recommendationAction string) (FinalReview, error) {
	if _, err := s.authorize(ctx, actor, appraisalID); err != nil {
		return FinalReview{}, err
	}

	review, err := s.store.Mutate(ctx, appraisalID, func(r *FinalReview) error {
		return ApplyDivisionalSignature(r, SignatureSlot{
			SignerID:       actor.EmployeeID,
			Comment:        comment,
			SignatureImage: signatureImage,
		}, recommendationType, recommendationAction)
	})
	if err != nil {
		return FinalReview{}, err
	}
	s.recordAudit(ctx, actor.ID, "finalreview.divisional_sign", appraisalID, map[string]any{
		"recommendationType": recommendationType,
	})
	return review, nil
}

// HRFinalize locks the review and moves the appraisal to its terminal
// status. Only HR may call it; required slots come from system
// configuration.
func (s *Service) HRFinalize(ctx context.Context, actor Actor, appraisalID string) (FinalReview, error) {
	if actor.Role != auth.RoleHR {
		return FinalReview{}, ErrAccessDenied
	}
	app, err := s.appraisals.Get(ctx, appraisalID)
	if err != nil {
		return FinalReview{}, err
	}

	required, err := s.store.RequiredSlots(ctx)
	if err != nil {
		return FinalReview{}, err
	}

	review, err := s.store.Mutate(ctx, appraisalID, func(r *FinalReview) error {
		return ApplyFinalize(r, required, actor.ID, time.Now().UTC())
	})
	if err != nil {
		return FinalReview{}, err
	}

	if path, err := s.renderReport(ctx, review, app); err != nil {
		slog.Warn("final report render failed", "appraisalId", appraisalID, "err", err)
	} else {
		review.ReportFile = path
		if err := s.store.SetReportFile(ctx, appraisalID, path); err != nil {
			slog.Warn("final report path save failed", "appraisalId", appraisalID, "err", err)
		}
	}

	s.recordAudit(ctx, actor.ID, "finalreview.finalize", appraisalID, nil)
	return review, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entityID string, meta any) {
	if err := s.audit.Record(ctx, actorID, action, "final_review", entityID, requestctx.GetRequestID(ctx), meta); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
