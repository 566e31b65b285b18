package appraisal

import "fmt"

// The two lifecycle variants share status storage but not transition
// rules. Neither exposes a backward transition; reopening is an
// administrative operation outside this package.

// Submit moves a signature-bearing appraisal out of draft.
func Submit(status string) (string, error) {
	if status != StatusDraft {
		return "", fmt.Errorf("%w: submit requires %s, have %s", ErrInvalidState, StatusDraft, status)
	}
	return StatusInReview, nil
}

// SubmitForReview and Finalize drive the instance-oriented variant
// (draft → manager_review → final).
func SubmitForReview(status string) (string, error) {
	if status != StatusDraft {
		return "", fmt.Errorf("%w: submit for review requires %s, have %s", ErrInvalidState, StatusDraft, status)
	}
	return StatusManagerReview, nil
}

func Finalize(status string) (string, error) {
	if status != StatusManagerReview {
		return "", fmt.Errorf("%w: finalize requires %s, have %s", ErrInvalidState, StatusManagerReview, status)
	}
	return StatusFinal, nil
}

// CanEditScores reports whether section/criterion scores are still
// mutable. Once an appraisal leaves draft, scores freeze.
func CanEditScores(status string) bool {
	return status == StatusDraft
}

// CheckSign validates a sign attempt against the current status and the
// set of roles already present in the ledger.
func CheckSign(status, role string, signed map[string]bool) error {
	switch status {
	case StatusInReview, StatusEmployeeAck:
	default:
		return fmt.Errorf("%w: signing requires a submitted appraisal, have %s", ErrInvalidState, status)
	}

	if signed[role] {
		return ErrDuplicateSignature
	}

	if prerequisite, ok := signPrerequisite[role]; ok && !signed[prerequisite] {
		return outOfOrderError(prerequisite)
	}
	return nil
}

// StatusAfterSign returns the status the appraisal advances to once the
// given role has signed.
func StatusAfterSign(role string) (string, error) {
	switch role {
	case SignRoleSupervisor:
		return StatusInReview, nil
	case SignRoleEmployee:
		return StatusEmployeeAck, nil
	case SignRoleReviewer:
		return StatusApproved, nil
	default:
		return "", fmt.Errorf("%w: unknown signing role %q", ErrInvalidState, role)
	}
}

// Supervisor signs first, then employee, then reviewer.
var signPrerequisite = map[string]string{
	SignRoleEmployee: SignRoleSupervisor,
	SignRoleReviewer: SignRoleEmployee,
}
