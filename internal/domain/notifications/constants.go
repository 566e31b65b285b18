package notifications

const (
	TypeAppraisalSubmitted   = "appraisal_submitted"
	TypeAppraisalSigned      = "appraisal_signed"
	TypeAppraisalFinalized   = "appraisal_finalized"
	TypeSelfAppraisalDue     = "selfappraisal_due"
	TypeSelfAppraisalReturn  = "selfappraisal_returned"
	TypeFinalReviewRequested = "finalreview_requested"
)
