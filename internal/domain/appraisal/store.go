package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, employeeID, supervisorID, templateID, cycleID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisals (employee_id, supervisor_id, template_id, cycle_id, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, employeeID, supervisorID, templateID, cycleID, StatusDraft).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicateAppraisal
		}
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, appraisalID string) (Appraisal, error) {
	var app Appraisal
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, supervisor_id, template_id, cycle_id, status,
           final_score, COALESCE(rating_band, ''), created_at, updated_at
    FROM appraisals
    WHERE id = $1
  `, appraisalID).Scan(&app.ID, &app.EmployeeID, &app.SupervisorID, &app.TemplateID, &app.CycleID,
		&app.Status, &app.FinalScore, &app.RatingBand, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrAppraisalNotFound
	}
	return app, err
}

func (s *Store) List(ctx context.Context, employeeID, supervisorID string, limit, offset int) ([]Appraisal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, supervisor_id, template_id, cycle_id, status,
           final_score, COALESCE(rating_band, ''), created_at, updated_at
    FROM appraisals
    WHERE ($1 = '' OR employee_id::text = $1) AND ($2 = '' OR supervisor_id::text = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, employeeID, supervisorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appraisals []Appraisal
	for rows.Next() {
		var app Appraisal
		if err := rows.Scan(&app.ID, &app.EmployeeID, &app.SupervisorID, &app.TemplateID, &app.CycleID,
			&app.Status, &app.FinalScore, &app.RatingBand, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		appraisals = append(appraisals, app)
	}
	return appraisals, nil
}

func (s *Store) CriterionScores(ctx context.Context, appraisalID string) ([]CriterionScore, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT section_key, criterion_key, score
    FROM criterion_scores
    WHERE appraisal_id = $1
    ORDER BY section_key, criterion_key
  `, appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []CriterionScore
	for rows.Next() {
		var score CriterionScore
		if err := rows.Scan(&score.SectionKey, &score.CriterionKey, &score.Score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

func (s *Store) SectionScores(ctx context.Context, appraisalID string) ([]SectionScore, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT section_key, raw_total, denominator, weight, weighted_score
    FROM section_scores
    WHERE appraisal_id = $1
    ORDER BY section_key
  `, appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []SectionScore
	for rows.Next() {
		var section SectionScore
		if err := rows.Scan(&section.SectionKey, &section.RawTotal, &section.Denominator, &section.Weight, &section.WeightedScore); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (s *Store) Signatures(ctx context.Context, appraisalID string) ([]Signature, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, appraisal_id, role, signer_id, signer_email, signed_at, integrity_hash
    FROM signatures
    WHERE appraisal_id = $1
    ORDER BY signed_at
  `, appraisalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signatures []Signature
	for rows.Next() {
		var sig Signature
		if err := rows.Scan(&sig.ID, &sig.AppraisalID, &sig.Role, &sig.SignerID, &sig.SignerEmail, &sig.SignedAt, &sig.IntegrityHash); err != nil {
			return nil, err
		}
		signatures = append(signatures, sig)
	}
	return signatures, nil
}

// ReplaceScores rewrites the full criterion and section score set and the
// cached final score in one transaction. Recomputation is total, never
// incremental; the row lock serializes concurrent writers per appraisal.
func (s *Store) ReplaceScores(ctx context.Context, appraisalID string, criteria []CriterionScore, result Result) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAppraisalNotFound
	}
	if err != nil {
		return err
	}
	if !CanEditScores(status) {
		return fmt.Errorf("%w: scores frozen in status %s", ErrInvalidState, status)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM criterion_scores WHERE appraisal_id = $1", appraisalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM section_scores WHERE appraisal_id = $1", appraisalID); err != nil {
		return err
	}

	for _, score := range criteria {
		if _, err := tx.Exec(ctx, `
      INSERT INTO criterion_scores (appraisal_id, section_key, criterion_key, score)
      VALUES ($1,$2,$3,$4)
    `, appraisalID, score.SectionKey, score.CriterionKey, score.Score); err != nil {
			return err
		}
	}
	for _, section := range result.Sections {
		if _, err := tx.Exec(ctx, `
      INSERT INTO section_scores (appraisal_id, section_key, raw_total, denominator, weight, weighted_score)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, appraisalID, section.SectionKey, section.RawTotal, section.Denominator, section.Weight, section.WeightedScore); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE appraisals SET final_score = $2, rating_band = $3, updated_at = now() WHERE id = $1
  `, appraisalID, result.FinalScore, result.RatingBand); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Sign appends a ledger entry and advances the appraisal status in one
// transaction. Ordering and duplicate checks run under the row lock so
// two racing sign calls cannot both succeed.
func (s *Store) Sign(ctx context.Context, appraisalID, role, signerID, signerEmail string) (Signature, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Signature{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Signature{}, ErrAppraisalNotFound
	}
	if err != nil {
		return Signature{}, err
	}

	rows, err := tx.Query(ctx, "SELECT role FROM signatures WHERE appraisal_id = $1", appraisalID)
	if err != nil {
		return Signature{}, err
	}
	signed := map[string]bool{}
	for rows.Next() {
		var signedRole string
		if err := rows.Scan(&signedRole); err != nil {
			rows.Close()
			return Signature{}, err
		}
		signed[signedRole] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Signature{}, err
	}

	if err := CheckSign(status, role, signed); err != nil {
		return Signature{}, err
	}

	signedAt := time.Now().UTC()
	sig := Signature{
		AppraisalID:   appraisalID,
		Role:          role,
		SignerID:      signerID,
		SignerEmail:   signerEmail,
		SignedAt:      signedAt,
		IntegrityHash: SignatureHash(appraisalID, signerEmail, signedAt),
	}
	if err := tx.QueryRow(ctx, `
    INSERT INTO signatures (appraisal_id, role, signer_id, signer_email, signed_at, integrity_hash)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, sig.AppraisalID, sig.Role, sig.SignerID, sig.SignerEmail, sig.SignedAt, sig.IntegrityHash).Scan(&sig.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Signature{}, ErrDuplicateSignature
		}
		return Signature{}, err
	}

	next, err := StatusAfterSign(role)
	if err != nil {
		return Signature{}, err
	}
	if _, err := tx.Exec(ctx, "UPDATE appraisals SET status = $2, updated_at = now() WHERE id = $1", appraisalID, next); err != nil {
		return Signature{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// Transition runs one atomic read-modify-write of the status column.
func (s *Store) Transition(ctx context.Context, appraisalID string, apply func(current string) (string, error)) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM appraisals WHERE id = $1 FOR UPDATE", appraisalID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrAppraisalNotFound
	}
	if err != nil {
		return "", err
	}

	next, err := apply(status)
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, "UPDATE appraisals SET status = $2, updated_at = now() WHERE id = $1", appraisalID, next); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return next, nil
}

func (s *Store) BandThresholds(ctx context.Context) (BandThresholds, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, "SELECT value_json FROM system_settings WHERE key = 'band_thresholds'").Scan(&payload)
	if err != nil {
		return BandThresholds{}, err
	}
	var bands BandThresholds
	if err := json.Unmarshal(payload, &bands); err != nil {
		return BandThresholds{}, err
	}
	return bands, nil
}
