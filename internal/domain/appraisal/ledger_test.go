package appraisal

import (
	"testing"
	"time"
)

func TestSignatureHashStable(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	first := SignatureHash("appraisal-1", "sup@example.com", at)
	second := SignatureHash("appraisal-1", "sup@example.com", at)
	if first != second {
		t.Fatalf("hash must be stable for identical inputs: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestSignatureHashVaries(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	base := SignatureHash("appraisal-1", "sup@example.com", at)

	if SignatureHash("appraisal-2", "sup@example.com", at) == base {
		t.Fatal("hash must depend on appraisal id")
	}
	if SignatureHash("appraisal-1", "emp@example.com", at) == base {
		t.Fatal("hash must depend on signer email")
	}
	if SignatureHash("appraisal-1", "sup@example.com", at.Add(time.Second)) == base {
		t.Fatal("hash must depend on timestamp")
	}
}
