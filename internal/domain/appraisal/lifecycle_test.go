package appraisal

import (
	"errors"
	"strings"
	"testing"
)

func TestSubmit(t *testing.T) {
	next, err := Submit(StatusDraft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != StatusInReview {
		t.Fatalf("expected %q, got %q", StatusInReview, next)
	}

	for _, status := range []string{StatusInReview, StatusEmployeeAck, StatusApproved, StatusFinal} {
		if _, err := Submit(status); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("status %s: expected ErrInvalidState, got %v", status, err)
		}
	}
}

func TestInstanceVariantTransitions(t *testing.T) {
	next, err := SubmitForReview(StatusDraft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != StatusManagerReview {
		t.Fatalf("expected %q, got %q", StatusManagerReview, next)
	}

	next, err = Finalize(StatusManagerReview)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != StatusFinal {
		t.Fatalf("expected %q, got %q", StatusFinal, next)
	}

	if _, err := Finalize(StatusDraft); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := Finalize(StatusFinal); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState finalizing twice, got %v", err)
	}
}

func TestCanEditScores(t *testing.T) {
	if !CanEditScores(StatusDraft) {
		t.Fatal("draft appraisal must accept score edits")
	}
	for _, status := range []string{StatusInReview, StatusManagerReview, StatusEmployeeAck, StatusApproved, StatusFinal} {
		if CanEditScores(status) {
			t.Fatalf("status %s must freeze scores", status)
		}
	}
}

func TestCheckSignOrdering(t *testing.T) {
	// Employee before supervisor.
	err := CheckSign(StatusInReview, SignRoleEmployee, map[string]bool{})
	if !errors.Is(err, ErrSignatureOutOfOrder) {
		t.Fatalf("expected ErrSignatureOutOfOrder, got %v", err)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Fatal("out-of-order must also match ErrInvalidState")
	}
	if !strings.Contains(err.Error(), SignRoleSupervisor) {
		t.Fatalf("error must name the missing role: %v", err)
	}

	// Reviewer before employee.
	err = CheckSign(StatusInReview, SignRoleReviewer, map[string]bool{SignRoleSupervisor: true})
	if !errors.Is(err, ErrSignatureOutOfOrder) {
		t.Fatalf("expected ErrSignatureOutOfOrder, got %v", err)
	}
	if !strings.Contains(err.Error(), SignRoleEmployee) {
		t.Fatalf("error must name the missing role: %v", err)
	}

	// Full in-order sequence passes.
	if err := CheckSign(StatusInReview, SignRoleSupervisor, map[string]bool{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSign(StatusInReview, SignRoleEmployee, map[string]bool{SignRoleSupervisor: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSign(StatusEmployeeAck, SignRoleReviewer, map[string]bool{SignRoleSupervisor: true, SignRoleEmployee: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckSignDuplicate(t *testing.T) {
	err := CheckSign(StatusInReview, SignRoleSupervisor, map[string]bool{SignRoleSupervisor: true})
	if !errors.Is(err, ErrDuplicateSignature) {
		t.Fatalf("expected ErrDuplicateSignature, got %v", err)
	}

	// Duplicate wins over ordering: the role already signed.
	err = CheckSign(StatusEmployeeAck, SignRoleEmployee, map[string]bool{SignRoleSupervisor: true, SignRoleEmployee: true})
	if !errors.Is(err, ErrDuplicateSignature) {
		t.Fatalf("expected ErrDuplicateSignature, got %v", err)
	}
}

func TestCheckSignRequiresSubmittedStatus(t *testing.T) {
	for _, status := range []string{StatusDraft, StatusApproved, StatusFinal} {
		err := CheckSign(status, SignRoleSupervisor, map[string]bool{})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("status %s: expected ErrInvalidState, got %v", status, err)
		}
	}
}

func TestStatusAfterSign(t *testing.T) {
	cases := map[string]string{
		SignRoleSupervisor: StatusInReview,
		SignRoleEmployee:   StatusEmployeeAck,
		SignRoleReviewer:   StatusApproved,
	}
	for role, expected := range cases {
		next, err := StatusAfterSign(role)
		if err != nil {
			t.Fatalf("role %s: unexpected error: %v", role, err)
		}
		if next != expected {
			t.Fatalf("role %s: expected %q, got %q", role, expected, next)
		}
	}

	if _, err := StatusAfterSign("janitor"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for unknown role, got %v", err)
	}
}
