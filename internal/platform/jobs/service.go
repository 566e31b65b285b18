package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/hierarchy"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/platform/config"
)

const (
	JobClosureRebuild = "closure_rebuild"
	JobCycleReminders = "cycle_reminders"
)

const reminderWindow = 7 * 24 * time.Hour

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Hierarchy *hierarchy.Store
	Notifier  *notifications.Service
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, h *hierarchy.Store, n *notifications.Service) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		Hierarchy: h,
		Notifier:  n,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ClosureRebuildInterval > 0 {
		go s.scheduleClosureRebuilds(ctx, s.Cfg.ClosureRebuildInterval)
	}
	go s.scheduleCycleReminders(ctx, 24*time.Hour)
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleClosureRebuilds(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobClosureRebuild, func(ctx context.Context) (any, error) {
				rows, err := s.Hierarchy.Rebuild(ctx)
				return map[string]any{"closureRows": rows}, err
			})
		}
	}
}

func (s *Service) scheduleCycleReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobCycleReminders, func(ctx context.Context) (any, error) {
				return s.sendCycleReminders(ctx)
			})
		}
	}
}

// sendCycleReminders nudges employees who have not yet submitted a
// self appraisal for an active cycle ending within the reminder window.
func (s *Service) sendCycleReminders(ctx context.Context) (any, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.id, c.name, c.end_date, e.id
    FROM appraisal_cycles c
    JOIN employees e ON e.status = 'active'
    LEFT JOIN self_appraisals sa
      ON sa.cycle_id = c.id AND sa.employee_id = e.id
      AND sa.status IN ('submitted', 'locked_to_final')
    WHERE c.status = 'active'
      AND c.end_date <= $1
      AND c.end_date >= now()
      AND sa.id IS NULL
  `, time.Now().Add(reminderWindow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type pending struct {
		cycleID, cycleName, employeeID string
		endDate                        time.Time
	}
	var targets []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.cycleID, &p.cycleName, &p.endDate, &p.employeeID); err != nil {
			return nil, err
		}
		targets = append(targets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range targets {
		s.Notifier.Notify(ctx, p.employeeID, notifications.TypeSelfAppraisalDue,
			"Self appraisal due",
			fmt.Sprintf("Your self appraisal for %s is due by %s.", p.cycleName, p.endDate.Format("2006-01-02")))
	}
	return map[string]any{"reminded": len(targets)}, nil
}
