package appraisal

import (
	"errors"
	"fmt"
)

var (
	ErrAppraisalNotFound     = errors.New("appraisal not found")
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrDuplicateAppraisal    = errors.New("appraisal already exists for employee, cycle and template")
	ErrCycleNotActive        = errors.New("appraisal cycle is not active")
	ErrInvalidState          = errors.New("operation not permitted in current appraisal status")
	ErrDuplicateSignature    = errors.New("role has already signed this appraisal")
	ErrTemplateConfigMissing = errors.New("appraisal template has no scoring configuration")
	ErrScoreOutOfRange       = errors.New("criterion score outside permitted range")
)

// ErrSignatureOutOfOrder is a subtype of ErrInvalidState: errors.Is on
// either sentinel matches.
var ErrSignatureOutOfOrder = fmt.Errorf("%w: signature out of order", ErrInvalidState)

func outOfOrderError(missingRole string) error {
	return fmt.Errorf("%w: requires prior %s signature", ErrSignatureOutOfOrder, missingRole)
}
