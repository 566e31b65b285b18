package selfappraisal

import (
	"context"
	"log/slog"
	"time"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/requestctx"
)

type ReportChecker interface {
	IsDirectReport(ctx context.Context, supervisorID, reportID string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, employeeID, kind, title, body string)
}

type Actor struct {
	ID         string
	EmployeeID string
	Role       string
}

type Service struct {
	store    *Store
	reports  ReportChecker
	audit    *audit.Service
	notifier Notifier
}

func NewService(store *Store, reports ReportChecker, auditSvc *audit.Service, notifier Notifier) *Service {
	return &Service{store: store, reports: reports, audit: auditSvc, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, actor Actor, cycleID, employeeID string) (SelfAppraisal, error) {
	if err := s.authorizeRead(ctx, actor, employeeID); err != nil {
		return SelfAppraisal{}, err
	}
	return s.store.Get(ctx, cycleID, employeeID)
}

// ListForCycle is an HR view over every document in one cycle.
func (s *Service) ListForCycle(ctx context.Context, actor Actor, cycleID string) ([]SelfAppraisal, error) {
	if actor.Role != auth.RoleHR && actor.Role != auth.RoleAdmin {
		return nil, ErrAccessDenied
	}
	return s.store.ListForCycle(ctx, cycleID)
}

// Update merges new answers into the employee's own document; HR may
// edit on an employee's behalf.
func (s *Service) Update(ctx context.Context, actor Actor, cycleID, employeeID string, answers map[string]string, ratings map[string]float64) (SelfAppraisal, error) {
	if actor.Role != auth.RoleHR && actor.EmployeeID != employeeID {
		return SelfAppraisal{}, ErrAccessDenied
	}

	doc, err := s.store.Mutate(ctx, cycleID, employeeID, func(d *SelfAppraisal) error {
		return ApplyUpdate(d, answers, ratings)
	})
	if err != nil {
		return SelfAppraisal{}, err
	}
	s.recordAudit(ctx, actor.ID, "selfappraisal.update", doc.ID, nil)
	return doc, nil
}

func (s *Service) Submit(ctx context.Context, actor Actor, cycleID, employeeID string) (SelfAppraisal, error) {
	if actor.Role != auth.RoleHR && actor.EmployeeID != employeeID {
		return SelfAppraisal{}, ErrAccessDenied
	}

	doc, err := s.store.Mutate(ctx, cycleID, employeeID, func(d *SelfAppraisal) error {
		return ApplySubmit(d, time.Now().UTC())
	})
	if err != nil {
		return SelfAppraisal{}, err
	}
	s.recordAudit(ctx, actor.ID, "selfappraisal.submit", doc.ID, nil)
	return doc, nil
}

// Return sends a submitted document back; permitted to HR and to the
// employee's direct supervisor.
func (s *Service) Return(ctx context.Context, actor Actor, cycleID, employeeID, reason string, newDueDate *time.Time) (SelfAppraisal, error) {
	if err := s.authorizeSupervisory(ctx, actor, employeeID); err != nil {
		return SelfAppraisal{}, err
	}

	doc, err := s.store.Mutate(ctx, cycleID, employeeID, func(d *SelfAppraisal) error {
		return ApplyReturn(d, reason, newDueDate, time.Now().UTC())
	})
	if err != nil {
		return SelfAppraisal{}, err
	}
	s.recordAudit(ctx, actor.ID, "selfappraisal.return", doc.ID, map[string]any{"reason": reason})
	if s.notifier != nil {
		s.notifier.Notify(ctx, employeeID, "selfappraisal_returned", "Self-appraisal returned for edits", reason)
	}
	return doc, nil
}

// Lock is the HR-only administrative override.
func (s *Service) Lock(ctx context.Context, actor Actor, cycleID, employeeID string) (SelfAppraisal, error) {
	if actor.Role != auth.RoleHR {
		return SelfAppraisal{}, ErrAccessDenied
	}

	doc, err := s.store.Mutate(ctx, cycleID, employeeID, func(d *SelfAppraisal) error {
		return ApplyLock(d, time.Now().UTC())
	})
	if err != nil {
		return SelfAppraisal{}, err
	}
	s.recordAudit(ctx, actor.ID, "selfappraisal.lock", doc.ID, nil)
	return doc, nil
}

func (s *Service) authorizeRead(ctx context.Context, actor Actor, employeeID string) error {
	if actor.Role == auth.RoleHR || actor.EmployeeID == employeeID {
		return nil
	}
	return s.authorizeSupervisory(ctx, actor, employeeID)
}

func (s *Service) authorizeSupervisory(ctx context.Context, actor Actor, employeeID string) error {
	if actor.Role == auth.RoleHR {
		return nil
	}
	if actor.Role == auth.RoleSupervisor && actor.EmployeeID != "" {
		ok, err := s.reports.IsDirectReport(ctx, actor.EmployeeID, employeeID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrAccessDenied
}

func (s *Service) recordAudit(ctx context.Context, actorID, action, entityID string, meta any) {
	if err := s.audit.Record(ctx, actorID, action, "self_appraisal", entityID, requestctx.GetRequestID(ctx), meta); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
