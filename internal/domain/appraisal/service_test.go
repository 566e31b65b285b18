package appraisal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"appraisal/internal/domain/core"
	"appraisal/internal/domain/template"
)

// memStore keeps one appraisal in memory and reuses the same transition
// and signing rules the database store enforces.
type memStore struct {
	appraisal Appraisal
	criteria  []CriterionScore
	sections  []SectionScore
	sigs      []Signature
}

func (m *memStore) Create(ctx context.Context, employeeID, supervisorID, templateID, cycleID string) (string, error) {
	m.appraisal = Appraisal{
		ID:           "app-1",
		EmployeeID:   employeeID,
		SupervisorID: supervisorID,
		TemplateID:   templateID,
		CycleID:      cycleID,
		Status:       StatusDraft,
	}
	return m.appraisal.ID, nil
}

func (m *memStore) Get(ctx context.Context, appraisalID string) (Appraisal, error) {
	if m.appraisal.ID != appraisalID {
		return Appraisal{}, ErrAppraisalNotFound
	}
	return m.appraisal, nil
}

func (m *memStore) List(ctx context.Context, employeeID, supervisorID string, limit, offset int) ([]Appraisal, error) {
	return []Appraisal{m.appraisal}, nil
}

func (m *memStore) CriterionScores(ctx context.Context, appraisalID string) ([]CriterionScore, error) {
	return m.criteria, nil
}

func (m *memStore) SectionScores(ctx context.Context, appraisalID string) ([]SectionScore, error) {
	return m.sections, nil
}

func (m *memStore) Signatures(ctx context.Context, appraisalID string) ([]Signature, error) {
	return m.sigs, nil
}

func (m *memStore) ReplaceScores(ctx context.Context, appraisalID string, criteria []CriterionScore, result Result) error {
	if !CanEditScores(m.appraisal.Status) {
		return ErrInvalidState
	}
	m.criteria = criteria
	m.sections = result.Sections
	score := result.FinalScore
	m.appraisal.FinalScore = &score
	m.appraisal.RatingBand = result.RatingBand
	return nil
}

func (m *memStore) Sign(ctx context.Context, appraisalID, role, signerID, signerEmail string) (Signature, error) {
	if m.appraisal.ID != appraisalID {
		return Signature{}, ErrAppraisalNotFound
	}
	signed := map[string]bool{}
	for _, sig := range m.sigs {
		signed[sig.Role] = true
	}
	if err := CheckSign(m.appraisal.Status, role, signed); err != nil {
		return Signature{}, err
	}
	signedAt := time.Now().UTC()
	sig := Signature{
		ID:            fmt.Sprintf("sig-%d", len(m.sigs)+1),
		AppraisalID:   appraisalID,
		Role:          role,
		SignerID:      signerID,
		SignerEmail:   signerEmail,
		SignedAt:      signedAt,
		IntegrityHash: SignatureHash(appraisalID, signerEmail, signedAt),
	}
	m.sigs = append(m.sigs, sig)
	next, err := StatusAfterSign(role)
	if err != nil {
		return Signature{}, err
	}
	m.appraisal.Status = next
	return sig, nil
}

func (m *memStore) Transition(ctx context.Context, appraisalID string, apply func(current string) (string, error)) (string, error) {
	if m.appraisal.ID != appraisalID {
		return "", ErrAppraisalNotFound
	}
	next, err := apply(m.appraisal.Status)
	if err != nil {
		return "", err
	}
	m.appraisal.Status = next
	return next, nil
}

func (m *memStore) BandThresholds(ctx context.Context) (BandThresholds, error) {
	return testBands, nil
}

type memDirectory struct {
	emails   map[string]string
	emailErr error
}

func (d *memDirectory) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	_, ok := d.emails[employeeID]
	return ok, nil
}

func (d *memDirectory) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	if d.emailErr != nil {
		return "", d.emailErr
	}
	email, ok := d.emails[employeeID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return email, nil
}

func (d *memDirectory) GetCycle(ctx context.Context, cycleID string) (core.Cycle, error) {
	return core.Cycle{ID: cycleID, Status: core.CycleStatusActive}, nil
}

type memTemplates struct {
	tpl template.Template
}

func (m *memTemplates) Get(ctx context.Context, templateID string) (template.Template, error) {
	return m.tpl, nil
}

func newTestService() (*Service, *memStore) {
	store := &memStore{}
	directory := &memDirectory{emails: map[string]string{
		"emp-1": "emp@example.edu",
		"sup-1": "sup@example.edu",
		"rev-1": "rev@example.edu",
	}}
	templates := &memTemplates{tpl: template.Template{ID: "tpl-1", Category: "academic", Config: fixedConfig()}}
	return NewService(store, directory, templates, nil, nil), store
}

func fullScoreInput() []SectionInput {
	return []SectionInput{
		{SectionKey: "functional", Criteria: []CriterionInput{{CriterionKey: "a", Score: 80}}},
		{SectionKey: "core", Criteria: []CriterionInput{{CriterionKey: "b", Score: 60}}},
		{SectionKey: "projects", Criteria: []CriterionInput{{CriterionKey: "c", Score: 15}}},
	}
}

func TestAppraisalJourneySignToFinal(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	app, err := svc.Create(ctx, "actor", "emp-1", "sup-1", "tpl-1", "cycle-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateSectionScores(ctx, "actor", app.ID, fullScoreInput()); err != nil {
		t.Fatalf("update scores: %v", err)
	}
	if store.appraisal.FinalScore == nil || math.Abs(*store.appraisal.FinalScore-0.775) > 1e-9 {
		t.Fatalf("expected final score 0.775, got %v", store.appraisal.FinalScore)
	}
	if store.appraisal.RatingBand != BandMeets {
		t.Fatalf("expected band %s, got %s", BandMeets, store.appraisal.RatingBand)
	}

	if _, err := svc.Submit(ctx, "actor", app.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Employee before supervisor must be refused, then the full
	// supervisor, employee, reviewer chain goes through.
	if _, err := svc.Sign(ctx, "actor", app.ID, SignRoleEmployee, "emp-1"); !errors.Is(err, ErrSignatureOutOfOrder) {
		t.Fatalf("expected ErrSignatureOutOfOrder, got %v", err)
	}
	for _, step := range []struct {
		role, signer string
	}{
		{SignRoleSupervisor, "sup-1"},
		{SignRoleEmployee, "emp-1"},
		{SignRoleReviewer, "rev-1"},
	} {
		sig, err := svc.Sign(ctx, "actor", app.ID, step.role, step.signer)
		if err != nil {
			t.Fatalf("sign %s: %v", step.role, err)
		}
		if sig.IntegrityHash == "" {
			t.Fatalf("signature for %s is missing its integrity hash", step.role)
		}
	}
	if store.appraisal.Status != StatusApproved {
		t.Fatalf("expected status %s after full sign chain, got %s", StatusApproved, store.appraisal.Status)
	}
	if len(store.sigs) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(store.sigs))
	}
}

func TestUpdateSectionScoresRejectsUnknownSection(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	app, err := svc.Create(ctx, "actor", "emp-1", "sup-1", "tpl-1", "cycle-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input := append(fullScoreInput(), SectionInput{
		SectionKey: "ghost",
		Criteria:   []CriterionInput{{CriterionKey: "x", Score: 999999}},
	})
	_, err = svc.UpdateSectionScores(ctx, "actor", app.ID, input)
	if !errors.Is(err, ErrScoreOutOfRange) {
		t.Fatalf("expected ErrScoreOutOfRange for unknown section, got %v", err)
	}
	if len(store.criteria) != 0 {
		t.Fatalf("no criterion rows may be stored after a rejected replace, got %d", len(store.criteria))
	}
}

func TestSignUnknownSignerIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	if _, err := svc.Create(ctx, "actor", "emp-1", "sup-1", "tpl-1", "cycle-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Submit(ctx, "actor", store.appraisal.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Sign(ctx, "actor", store.appraisal.ID, SignRoleSupervisor, "missing"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestSignDirectoryFailureIsNotCoerced(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	directoryErr := errors.New("connection reset")
	svc.directory.(*memDirectory).emailErr = directoryErr

	if _, err := svc.Create(ctx, "actor", "emp-1", "sup-1", "tpl-1", "cycle-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Submit(ctx, "actor", store.appraisal.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := svc.Sign(ctx, "actor", store.appraisal.ID, SignRoleSupervisor, "sup-1")
	if !errors.Is(err, directoryErr) {
		t.Fatalf("expected the directory error to pass through, got %v", err)
	}
	if errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("transient lookup failure must not read as a missing employee: %v", err)
	}
}
