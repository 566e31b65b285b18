package hierarchy

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Rebuild recomputes the full closure table from the employee rows in
// one transaction; readers never observe a partially built table.
func (s *Store) Rebuild(ctx context.Context) (int, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, COALESCE(supervisor_id::text, '') FROM employees WHERE status = 'active'")
	if err != nil {
		return 0, err
	}
	supervisorOf := map[string]string{}
	for rows.Next() {
		var employeeID, supervisorID string
		if err := rows.Scan(&employeeID, &supervisorID); err != nil {
			rows.Close()
			return 0, err
		}
		supervisorOf[employeeID] = supervisorID
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	closure := BuildClosure(supervisorOf)

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM org_closure"); err != nil {
		return 0, err
	}
	for _, row := range closure {
		if _, err := tx.Exec(ctx, `
      INSERT INTO org_closure (supervisor_id, report_id, level)
      VALUES ($1,$2,$3)
    `, row.SupervisorID, row.ReportID, row.Level); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(closure), nil
}

func (s *Store) IsDirectReport(ctx context.Context, supervisorID, reportID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM org_closure
    WHERE supervisor_id = $1 AND report_id = $2 AND level = 1
  `, supervisorID, reportID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) IsInReportingLine(ctx context.Context, supervisorID, reportID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM org_closure
    WHERE supervisor_id = $1 AND report_id = $2
  `, supervisorID, reportID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
