package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/finalreview"
	"appraisal/internal/domain/selfappraisal"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestDomainFailMapsSentinels(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{appraisal.ErrAppraisalNotFound, http.StatusNotFound, "appraisal_not_found"},
		{appraisal.ErrDuplicateAppraisal, http.StatusConflict, "appraisal_exists"},
		{finalreview.ErrMissingSignatures, http.StatusUnprocessableEntity, "signatures_missing"},
		{selfappraisal.ErrAccessDenied, http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		DomainFail(rec, tc.err, "req-1")
		if rec.Code != tc.wantStatus {
			t.Errorf("%v: status %d, want %d", tc.err, rec.Code, tc.wantStatus)
		}
		env := decodeEnvelope(t, rec)
		if env.Error == nil || env.Error.Code != tc.wantCode {
			t.Errorf("%v: code %+v, want %q", tc.err, env.Error, tc.wantCode)
		}
	}
}

func TestDomainFailPrefersOutOfOrderOverInvalidState(t *testing.T) {
	// Out-of-order wraps the invalid-state sentinel; the more specific
	// code must win.
	rec := httptest.NewRecorder()
	DomainFail(rec, fmt.Errorf("%w: supervisor signature required first", appraisal.ErrSignatureOutOfOrder), "req-1")
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "signature_out_of_order" {
		t.Fatalf("expected signature_out_of_order, got %+v", env.Error)
	}
}

func TestDomainFailWrappedErrorKeepsDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	DomainFail(rec, fmt.Errorf("%w: emp-1", appraisal.ErrEmployeeNotFound), "req-1")
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "employee_not_found" {
		t.Fatalf("expected employee_not_found, got %+v", env.Error)
	}
	if env.Error.Message == "" {
		t.Fatal("expected detail message to survive")
	}
}

func TestDomainFailUnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	DomainFail(rec, fmt.Errorf("database exploded"), "req-1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "internal_error" {
		t.Fatalf("expected internal_error, got %+v", env.Error)
	}
	if env.Error.Message != "internal server error" {
		t.Fatalf("internal detail must not leak, got %q", env.Error.Message)
	}
}
