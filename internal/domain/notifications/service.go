package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, defaultFrom string) *Service {
	if defaultFrom == "" {
		defaultFrom = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, DefaultFrom: defaultFrom}
}

// Notify records an in-app notification for the employee and, when a
// mailer is configured, emails them a copy. Failures are logged, never
// returned.
func (s *Service) Notify(ctx context.Context, employeeID, kind, title, body string) {
	if err := s.store.CreateNotification(ctx, employeeID, kind, title, body); err != nil {
		slog.Warn("notification write failed", "employee", employeeID, "type", kind, "err", err)
		return
	}

	if s.Mailer == nil {
		return
	}

	email, err := s.store.EmployeeEmail(ctx, employeeID)
	if err != nil {
		slog.Warn("notification email lookup failed", "employee", employeeID, "err", err)
		return
	}
	if email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "employee", employeeID, "err", err)
	}
}

func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, employeeID, limit, offset)
}

func (s *Service) Count(ctx context.Context, employeeID string) (int, error) {
	return s.store.CountNotifications(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	return s.store.MarkRead(ctx, employeeID, notificationID)
}
