package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email,
           COALESCE(department_id::text, ''), COALESCE(supervisor_id::text, ''),
           COALESCE(job_category, ''), status
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.DepartmentID, &emp.SupervisorID, &emp.JobCategory, &emp.Status)
	return emp, err
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1", employeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	return id, err
}

func (s *Store) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM employees WHERE id = $1", employeeID).Scan(&email)
	return email, err
}

func (s *Store) SupervisorID(ctx context.Context, employeeID string) (string, error) {
	var supervisorID string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(supervisor_id::text, '') FROM employees WHERE id = $1", employeeID).Scan(&supervisorID)
	return supervisorID, err
}

func (s *Store) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email,
           COALESCE(department_id::text, ''), COALESCE(supervisor_id::text, ''),
           COALESCE(job_category, ''), status
    FROM employees
    ORDER BY last_name, first_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email,
			&emp.DepartmentID, &emp.SupervisorID, &emp.JobCategory, &emp.Status); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM departments ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.ID, &dept.Name); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}
	return departments, nil
}

func (s *Store) CreateDepartment(ctx context.Context, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "INSERT INTO departments (name) VALUES ($1) RETURNING id", name).Scan(&id)
	return id, err
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	var cycle Cycle
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status
    FROM appraisal_cycles
    WHERE id = $1
  `, cycleID).Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status)
	return cycle, err
}

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status
    FROM appraisal_cycles
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var cycle Cycle
		if err := rows.Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status); err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

func (s *Store) CreateCycle(ctx context.Context, name string, start, end any, status string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO appraisal_cycles (name, start_date, end_date, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, name, start, end, status).Scan(&id)
	return id, err
}

func (s *Store) UpdateCycleStatus(ctx context.Context, cycleID, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE appraisal_cycles SET status = $2 WHERE id = $1", cycleID, status)
	return err
}
