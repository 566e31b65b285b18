package selfappraisal

const (
	StatusNotStarted       = "not_started"
	StatusInProgress       = "in_progress"
	StatusSubmitted        = "submitted"
	StatusReturnedForEdits = "returned_for_edits"
	StatusLockedToFinal    = "locked_to_final"
)

// RequiredAnswers is the minimum set of free-text answers a submission
// must carry. Other answer keys are optional.
var RequiredAnswers = []string{"achievements", "challenges", "goals"}
