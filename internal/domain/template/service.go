package template

import (
	"context"
	"log/slog"

	"appraisal/internal/domain/audit"
	"appraisal/internal/requestctx"
)

type Service struct {
	store *Store
	audit *audit.Service
}

func NewService(store *Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc}
}

func (s *Service) Get(ctx context.Context, templateID string) (Template, error) {
	return s.store.Get(ctx, templateID)
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.store.List(ctx)
}

func (s *Service) Create(ctx context.Context, actorID, name, category string, cfg TemplateConfig) (string, error) {
	rules, err := s.store.CategoryRules(ctx, category)
	if err != nil {
		return "", err
	}
	cfg.Type = category
	if err := ValidateConfig(cfg, rules); err != nil {
		return "", err
	}
	id, err := s.store.Create(ctx, name, category, cfg)
	if err != nil {
		return "", err
	}
	if err := s.audit.Record(ctx, actorID, "template.create", "appraisal_template", id, requestctx.GetRequestID(ctx), nil); err != nil {
		slog.Warn("audit record failed", "action", "template.create", "err", err)
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, actorID, templateID, name string, cfg TemplateConfig) error {
	existing, err := s.store.Get(ctx, templateID)
	if err != nil {
		return err
	}
	rules, err := s.store.CategoryRules(ctx, existing.Category)
	if err != nil {
		return err
	}
	cfg.Type = existing.Category
	if err := ValidateConfig(cfg, rules); err != nil {
		return err
	}
	if err := s.store.Update(ctx, templateID, name, cfg); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, actorID, "template.update", "appraisal_template", templateID, requestctx.GetRequestID(ctx), nil); err != nil {
		slog.Warn("audit record failed", "action", "template.update", "err", err)
	}
	return nil
}
