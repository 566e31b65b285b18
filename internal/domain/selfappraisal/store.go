package selfappraisal

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

const docColumns = `
    id, cycle_id, employee_id, status, answers_json, ratings_json,
    due_date, submitted_at, returned_at, COALESCE(return_reason, ''), locked_at,
    created_at, updated_at`

func scanDoc(row pgx.Row) (SelfAppraisal, error) {
	var doc SelfAppraisal
	var answersJSON, ratingsJSON []byte
	err := row.Scan(&doc.ID, &doc.CycleID, &doc.EmployeeID, &doc.Status, &answersJSON, &ratingsJSON,
		&doc.DueDate, &doc.SubmittedAt, &doc.ReturnedAt, &doc.ReturnReason, &doc.LockedAt,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return SelfAppraisal{}, err
	}
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &doc.Answers); err != nil {
			return SelfAppraisal{}, err
		}
	}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &doc.SelfRatings); err != nil {
			return SelfAppraisal{}, err
		}
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, cycleID, employeeID string) (SelfAppraisal, error) {
	doc, err := scanDoc(s.DB.QueryRow(ctx,
		"SELECT"+docColumns+" FROM self_appraisals WHERE cycle_id = $1 AND employee_id = $2", cycleID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return SelfAppraisal{}, ErrNotFound
	}
	return doc, err
}

func (s *Store) ListForCycle(ctx context.Context, cycleID string) ([]SelfAppraisal, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT"+docColumns+" FROM self_appraisals WHERE cycle_id = $1 ORDER BY created_at", cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []SelfAppraisal
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Mutate is the single write path: it creates the (cycle, employee) row
// lazily, locks it, applies the workflow mutation and writes the result
// back. The unique key keeps duplicates out by construction.
func (s *Store) Mutate(ctx context.Context, cycleID, employeeID string, fn func(*SelfAppraisal) error) (SelfAppraisal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SelfAppraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO self_appraisals (cycle_id, employee_id, status)
    VALUES ($1,$2,$3)
    ON CONFLICT (cycle_id, employee_id) DO NOTHING
  `, cycleID, employeeID, StatusNotStarted); err != nil {
		return SelfAppraisal{}, err
	}

	doc, err := scanDoc(tx.QueryRow(ctx,
		"SELECT"+docColumns+" FROM self_appraisals WHERE cycle_id = $1 AND employee_id = $2 FOR UPDATE", cycleID, employeeID))
	if err != nil {
		return SelfAppraisal{}, err
	}

	if err := fn(&doc); err != nil {
		return SelfAppraisal{}, err
	}

	answersJSON, err := json.Marshal(doc.Answers)
	if err != nil {
		return SelfAppraisal{}, err
	}
	ratingsJSON, err := json.Marshal(doc.SelfRatings)
	if err != nil {
		return SelfAppraisal{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE self_appraisals SET
      status = $3, answers_json = $4, ratings_json = $5,
      due_date = $6, submitted_at = $7, returned_at = $8, return_reason = NULLIF($9, ''), locked_at = $10,
      updated_at = now()
    WHERE cycle_id = $1 AND employee_id = $2
  `, cycleID, employeeID, doc.Status, answersJSON, ratingsJSON,
		doc.DueDate, doc.SubmittedAt, doc.ReturnedAt, doc.ReturnReason, doc.LockedAt); err != nil {
		return SelfAppraisal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SelfAppraisal{}, err
	}
	return doc, nil
}
