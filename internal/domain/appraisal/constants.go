package appraisal

const (
	StatusDraft       = "draft"
	StatusInReview    = "in_review"
	StatusEmployeeAck = "employee_ack"
	StatusApproved    = "approved"
	StatusFinal       = "final"

	// Instance-oriented variant used by manager-driven appraisals.
	StatusManagerReview = "manager_review"

	SignRoleSupervisor = "supervisor"
	SignRoleEmployee   = "employee"
	SignRoleReviewer   = "reviewer"

	BandOutstanding    = "outstanding"
	BandExceeds        = "exceeds"
	BandMeets          = "meets"
	BandBelow          = "below"
	BandUnsatisfactory = "unsatisfactory"
)
