package selfappraisal

import (
	"fmt"
	"strings"
	"time"
)

func editable(status string) bool {
	switch status {
	case StatusNotStarted, StatusInProgress, StatusReturnedForEdits:
		return true
	}
	return false
}

// ApplyUpdate merges answers and self-ratings into the document. The
// first edit moves a fresh document into progress; a returned document
// re-enters progress the same way.
func ApplyUpdate(doc *SelfAppraisal, answers map[string]string, ratings map[string]float64) error {
	if doc.Status == StatusLockedToFinal {
		return ErrLocked
	}
	if !editable(doc.Status) {
		return fmt.Errorf("%w: status %s", ErrNotEditable, doc.Status)
	}

	if doc.Answers == nil {
		doc.Answers = map[string]string{}
	}
	for key, value := range answers {
		doc.Answers[key] = value
	}
	if len(ratings) > 0 {
		if doc.SelfRatings == nil {
			doc.SelfRatings = map[string]float64{}
		}
		for key, value := range ratings {
			doc.SelfRatings[key] = value
		}
	}

	doc.Status = StatusInProgress
	return nil
}

// ApplySubmit checks the required free-text answers and moves the
// document to submitted. Missing fields are reported together.
func ApplySubmit(doc *SelfAppraisal, at time.Time) error {
	if doc.Status == StatusLockedToFinal {
		return ErrLocked
	}
	if !editable(doc.Status) {
		return fmt.Errorf("%w: status %s", ErrNotEditable, doc.Status)
	}

	var missing []string
	for _, key := range RequiredAnswers {
		if strings.TrimSpace(doc.Answers[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingAnswers, strings.Join(missing, ", "))
	}

	doc.Status = StatusSubmitted
	doc.SubmittedAt = &at
	return nil
}

// ApplyReturn sends a submitted document back for edits; the reason is
// mandatory, the due-date extension optional.
func ApplyReturn(doc *SelfAppraisal, reason string, newDueDate *time.Time, at time.Time) error {
	if doc.Status == StatusLockedToFinal {
		return ErrLocked
	}
	if doc.Status != StatusSubmitted {
		return fmt.Errorf("%w: status %s", ErrNotSubmitted, doc.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReturnReasonRequired
	}

	doc.Status = StatusReturnedForEdits
	doc.ReturnedAt = &at
	doc.ReturnReason = reason
	if newDueDate != nil {
		doc.DueDate = newDueDate
	}
	return nil
}

// ApplyLock is the HR override: terminal, and deliberately not gated on
// any prior status.
func ApplyLock(doc *SelfAppraisal, at time.Time) error {
	if doc.Status == StatusLockedToFinal {
		return ErrLocked
	}
	doc.Status = StatusLockedToFinal
	doc.LockedAt = &at
	return nil
}
