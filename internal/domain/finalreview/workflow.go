package finalreview

import (
	"fmt"
	"strings"
	"time"
)

// ApplySignature fills one slot. Slots do not gate on each other; a
// slot only rejects its own refill. This differs from the appraisal
// signature ledger on purpose.
func ApplySignature(review *FinalReview, slot string, signature SignatureSlot) error {
	if review.IsLocked {
		return ErrRecordLocked
	}

	target, err := slotRef(review, slot)
	if err != nil {
		return err
	}
	if target.Signed {
		return fmt.Errorf("%w: %s", ErrSlotAlreadySigned, slot)
	}

	signature.Signed = true
	if signature.SignedAt == nil {
		now := time.Now().UTC()
		signature.SignedAt = &now
	}
	*target = signature
	return nil
}

// ApplyDivisionalSignature records the third-tier sign-off together with
// the institutional recommendation.
func ApplyDivisionalSignature(review *FinalReview, signature SignatureSlot, recommendationType, recommendationAction string) error {
	if err := ApplySignature(review, SlotDivisional, signature); err != nil {
		return err
	}
	review.RecommendationType = recommendationType
	review.RecommendationAction = recommendationAction
	return nil
}

// ApplyComment updates free-text comments while the record is open.
func ApplyComment(review *FinalReview, slot, comment string) error {
	if review.IsLocked {
		return ErrRecordLocked
	}
	target, err := slotRef(review, slot)
	if err != nil {
		return err
	}
	target.Comment = comment
	return nil
}

// MissingSignatures lists the required slots not yet filled, in a fixed
// order, as human-readable labels.
func MissingSignatures(review *FinalReview, required []string) []string {
	var missing []string
	for _, slot := range required {
		target, err := slotRef(review, slot)
		if err != nil {
			continue
		}
		if !target.Signed {
			missing = append(missing, slotLabels[slot]+" required")
		}
	}
	return missing
}

// ApplyFinalize locks the record. The lock is terminal: no write,
// including a second finalize, survives it.
func ApplyFinalize(review *FinalReview, required []string, finalizedBy string, at time.Time) error {
	if review.IsLocked {
		return ErrRecordLocked
	}

	if missing := MissingSignatures(review, required); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSignatures, strings.Join(missing, ", "))
	}

	review.IsLocked = true
	review.HRFinalizedBy = finalizedBy
	review.HRFinalizedAt = &at
	return nil
}

func slotRef(review *FinalReview, slot string) (*SignatureSlot, error) {
	switch slot {
	case SlotEmployee:
		return &review.Employee, nil
	case SlotSupervisor:
		return &review.Supervisor, nil
	case SlotDivisional:
		return &review.Divisional, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
}
