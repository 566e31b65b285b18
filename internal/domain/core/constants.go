package core

const (
	CycleStatusDraft  = "draft"
	CycleStatusActive = "active"
	CycleStatusClosed = "closed"

	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)
