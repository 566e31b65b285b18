package finalreview

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const reviewColumns = `
    id, appraisal_id,
    employee_signed, COALESCE(employee_signer_id::text, ''), COALESCE(employee_comment, ''), COALESCE(employee_signature_image, ''), employee_signed_at,
    supervisor_signed, COALESCE(supervisor_signer_id::text, ''), COALESCE(supervisor_comment, ''), COALESCE(supervisor_signature_image, ''), supervisor_signed_at,
    divisional_signed, COALESCE(divisional_signer_id::text, ''), COALESCE(divisional_comment, ''), COALESCE(divisional_signature_image, ''), divisional_signed_at,
    COALESCE(recommendation_type, ''), COALESCE(recommendation_action, ''),
    is_locked, COALESCE(hr_finalized_by::text, ''), hr_finalized_at, COALESCE(report_file, ''),
    created_at, updated_at`

func scanReview(row pgx.Row) (FinalReview, error) {
	var review FinalReview
	err := row.Scan(
		&review.ID, &review.AppraisalID,
		&review.Employee.Signed, &review.Employee.SignerID, &review.Employee.Comment, &review.Employee.SignatureImage, &review.Employee.SignedAt,
		&review.Supervisor.Signed, &review.Supervisor.SignerID, &review.Supervisor.Comment, &review.Supervisor.SignatureImage, &review.Supervisor.SignedAt,
		&review.Divisional.Signed, &review.Divisional.SignerID, &review.Divisional.Comment, &review.Divisional.SignatureImage, &review.Divisional.SignedAt,
		&review.RecommendationType, &review.RecommendationAction,
		&review.IsLocked, &review.HRFinalizedBy, &review.HRFinalizedAt, &review.ReportFile,
		&review.CreatedAt, &review.UpdatedAt,
	)
	return review, err
}

func (s *Store) GetByAppraisal(ctx context.Context, appraisalID string) (FinalReview, error) {
	review, err := scanReview(s.DB.QueryRow(ctx,
		"SELECT"+reviewColumns+" FROM final_reviews WHERE appraisal_id = $1", appraisalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return FinalReview{}, ErrReviewNotFound
	}
	return review, err
}

// Mutate runs one atomic read-modify-write against the review row,
// creating it lazily on first touch. When the mutation locks the record
// the owning appraisal is moved to its terminal status in the same
// transaction.
func (s *Store) Mutate(ctx context.Context, appraisalID string, fn func(*FinalReview) error) (FinalReview, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return FinalReview{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO final_reviews (appraisal_id) VALUES ($1)
    ON CONFLICT (appraisal_id) DO NOTHING
  `, appraisalID); err != nil {
		return FinalReview{}, err
	}

	review, err := scanReview(tx.QueryRow(ctx,
		"SELECT"+reviewColumns+" FROM final_reviews WHERE appraisal_id = $1 FOR UPDATE", appraisalID))
	if err != nil {
		return FinalReview{}, err
	}

	wasLocked := review.IsLocked
	if err := fn(&review); err != nil {
		return FinalReview{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE final_reviews SET
      employee_signed = $2, employee_signer_id = NULLIF($3, '')::uuid, employee_comment = $4, employee_signature_image = $5, employee_signed_at = $6,
      supervisor_signed = $7, supervisor_signer_id = NULLIF($8, '')::uuid, supervisor_comment = $9, supervisor_signature_image = $10, supervisor_signed_at = $11,
      divisional_signed = $12, divisional_signer_id = NULLIF($13, '')::uuid, divisional_comment = $14, divisional_signature_image = $15, divisional_signed_at = $16,
      recommendation_type = NULLIF($17, ''), recommendation_action = NULLIF($18, ''),
      is_locked = $19, hr_finalized_by = NULLIF($20, '')::uuid, hr_finalized_at = $21,
      updated_at = now()
    WHERE appraisal_id = $1
  `, appraisalID,
		review.Employee.Signed, review.Employee.SignerID, review.Employee.Comment, review.Employee.SignatureImage, review.Employee.SignedAt,
		review.Supervisor.Signed, review.Supervisor.SignerID, review.Supervisor.Comment, review.Supervisor.SignatureImage, review.Supervisor.SignedAt,
		review.Divisional.Signed, review.Divisional.SignerID, review.Divisional.Comment, review.Divisional.SignatureImage, review.Divisional.SignedAt,
		review.RecommendationType, review.RecommendationAction,
		review.IsLocked, review.HRFinalizedBy, review.HRFinalizedAt,
	); err != nil {
		return FinalReview{}, err
	}

	if review.IsLocked && !wasLocked {
		if _, err := tx.Exec(ctx, "UPDATE appraisals SET status = 'final', updated_at = now() WHERE id = $1", appraisalID); err != nil {
			return FinalReview{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return FinalReview{}, err
	}
	return review, nil
}

// RequiredSlots returns the finalize checklist from system settings;
// with no setting present all three slots are required.
func (s *Store) RequiredSlots(ctx context.Context) ([]string, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, "SELECT value_json FROM system_settings WHERE key = 'finalize_required_slots'").Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{SlotEmployee, SlotSupervisor, SlotDivisional}, nil
	}
	if err != nil {
		return nil, err
	}
	var slots []string
	if err := json.Unmarshal(payload, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *Store) SetReportFile(ctx context.Context, appraisalID, path string) error {
	_, err := s.DB.Exec(ctx, "UPDATE final_reviews SET report_file = $2 WHERE appraisal_id = $1", appraisalID, path)
	return err
}
