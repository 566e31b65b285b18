package selfappraisal

import "time"

// SelfAppraisal is the employee-authored assessment document, one per
// (cycle, employee).
type SelfAppraisal struct {
	ID           string             `json:"id"`
	CycleID      string             `json:"cycleId"`
	EmployeeID   string             `json:"employeeId"`
	Status       string             `json:"status"`
	Answers      map[string]string  `json:"answers"`
	SelfRatings  map[string]float64 `json:"selfRatings,omitempty"`
	DueDate      *time.Time         `json:"dueDate,omitempty"`
	SubmittedAt  *time.Time         `json:"submittedAt,omitempty"`
	ReturnedAt   *time.Time         `json:"returnedAt,omitempty"`
	ReturnReason string             `json:"returnReason,omitempty"`
	LockedAt     *time.Time         `json:"lockedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}
