package finalreview

import "errors"

var (
	ErrReviewNotFound    = errors.New("final review not found")
	ErrRecordLocked      = errors.New("final review is locked")
	ErrSlotAlreadySigned = errors.New("signature slot already filled")
	ErrMissingSignatures = errors.New("required signatures missing")
	ErrAccessDenied      = errors.New("not permitted to act on this final review")
	ErrUnknownSlot       = errors.New("unknown signature slot")
)
