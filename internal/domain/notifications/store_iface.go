package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, employeeID, ntype, title, body string) error
	EmployeeEmail(ctx context.Context, employeeID string) (string, error)
	ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID, notificationID string) error
}
