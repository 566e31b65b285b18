package finalreview

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var allSlots = []string{SlotEmployee, SlotSupervisor, SlotDivisional}

func TestApplySignatureSlotsAreIndependent(t *testing.T) {
	review := &FinalReview{AppraisalID: "a1"}

	// Divisional head can sign first; no inter-slot ordering here.
	err := ApplyDivisionalSignature(review, SignatureSlot{SignerID: "div-1"}, "promotion", "recommend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !review.Divisional.Signed {
		t.Fatal("divisional slot must be signed")
	}
	if review.RecommendationType != "promotion" || review.RecommendationAction != "recommend" {
		t.Fatalf("recommendation not recorded: %+v", review)
	}

	if err := ApplySignature(review, SlotEmployee, SignatureSlot{SignerID: "emp-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.Employee.SignedAt == nil {
		t.Fatal("signature timestamp must be set")
	}
}

func TestApplySignatureRejectsRefill(t *testing.T) {
	review := &FinalReview{}
	if err := ApplySignature(review, SlotSupervisor, SignatureSlot{SignerID: "sup-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ApplySignature(review, SlotSupervisor, SignatureSlot{SignerID: "sup-2"})
	if !errors.Is(err, ErrSlotAlreadySigned) {
		t.Fatalf("expected ErrSlotAlreadySigned, got %v", err)
	}
	if review.Supervisor.SignerID != "sup-1" {
		t.Fatal("refill attempt must not overwrite the original signer")
	}
}

func TestApplySignatureUnknownSlot(t *testing.T) {
	if err := ApplySignature(&FinalReview{}, "auditor", SignatureSlot{}); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestApplyFinalizeAggregatesMissing(t *testing.T) {
	review := &FinalReview{}
	if err := ApplySignature(review, SlotEmployee, SignatureSlot{SignerID: "emp-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ApplySignature(review, SlotSupervisor, SignatureSlot{SignerID: "sup-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ApplyFinalize(review, allSlots, "hr-1", time.Now().UTC())
	if !errors.Is(err, ErrMissingSignatures) {
		t.Fatalf("expected ErrMissingSignatures, got %v", err)
	}
	if !strings.Contains(err.Error(), "divisional head signature required") {
		t.Fatalf("error must list the missing slot: %v", err)
	}
	if review.IsLocked {
		t.Fatal("failed finalize must not lock the record")
	}
}

func TestApplyFinalizeLocksOnce(t *testing.T) {
	review := &FinalReview{}
	for _, slot := range allSlots {
		if err := ApplySignature(review, slot, SignatureSlot{SignerID: slot}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	at := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	if err := ApplyFinalize(review, allSlots, "hr-1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !review.IsLocked || review.HRFinalizedBy != "hr-1" || review.HRFinalizedAt == nil {
		t.Fatalf("finalize did not lock the record: %+v", review)
	}

	if err := ApplyFinalize(review, allSlots, "hr-2", at.Add(time.Hour)); !errors.Is(err, ErrRecordLocked) {
		t.Fatalf("expected ErrRecordLocked on second finalize, got %v", err)
	}
	if review.HRFinalizedBy != "hr-1" {
		t.Fatal("second finalize must not change the finalizer")
	}
}

func TestApplyFinalizeConfigurableSubset(t *testing.T) {
	review := &FinalReview{}
	if err := ApplySignature(review, SlotEmployee, SignatureSlot{SignerID: "emp-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ApplySignature(review, SlotSupervisor, SignatureSlot{SignerID: "sup-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Divisional not required by this configuration.
	required := []string{SlotEmployee, SlotSupervisor}
	if err := ApplyFinalize(review, required, "hr-1", time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLockedRecordRejectsAllWrites(t *testing.T) {
	review := &FinalReview{}
	for _, slot := range []string{SlotEmployee, SlotSupervisor} {
		if err := ApplySignature(review, slot, SignatureSlot{SignerID: slot}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := ApplyDivisionalSignature(review, SignatureSlot{SignerID: "div-1"}, "retain", "confirm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ApplyFinalize(review, allSlots, "hr-1", time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ApplySignature(review, SlotEmployee, SignatureSlot{SignerID: "emp-2"}); !errors.Is(err, ErrRecordLocked) {
		t.Fatalf("expected ErrRecordLocked, got %v", err)
	}
	if err := ApplyComment(review, SlotEmployee, "late comment"); !errors.Is(err, ErrRecordLocked) {
		t.Fatalf("expected ErrRecordLocked, got %v", err)
	}
	if err := ApplyDivisionalSignature(review, SignatureSlot{}, "x", "y"); !errors.Is(err, ErrRecordLocked) {
		t.Fatalf("expected ErrRecordLocked, got %v", err)
	}
}

func TestMissingSignaturesOrder(t *testing.T) {
	review := &FinalReview{}
	missing := MissingSignatures(review, allSlots)
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing entries, got %d", len(missing))
	}
	if missing[0] != "employee signature required" || missing[2] != "divisional head signature required" {
		t.Fatalf("unexpected order or labels: %v", missing)
	}
}
