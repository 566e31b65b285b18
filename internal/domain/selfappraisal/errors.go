package selfappraisal

import "errors"

var (
	ErrNotFound             = errors.New("self-appraisal not found")
	ErrNotEditable          = errors.New("self-appraisal is not editable in current status")
	ErrNotSubmitted         = errors.New("self-appraisal is not submitted")
	ErrLocked               = errors.New("self-appraisal is locked")
	ErrMissingAnswers       = errors.New("required answers missing")
	ErrReturnReasonRequired = errors.New("return reason required")
	ErrAccessDenied         = errors.New("not permitted to act on this self-appraisal")
)
