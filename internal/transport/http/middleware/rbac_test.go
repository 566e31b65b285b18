package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"appraisal/internal/domain/auth"
)

type stubPerms struct {
	allowed map[string]bool
}

func (s stubPerms) HasPermission(_ context.Context, _, permission string) (bool, error) {
	return s.allowed[permission], nil
}

func TestRequirePermissionRejectsAnonymous(t *testing.T) {
	handler := RequirePermission(auth.PermAppraisalsRead, stubPerms{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequirePermissionEnforcesGrant(t *testing.T) {
	userCtx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: "u1", RoleID: "r1", RoleName: auth.RoleEmployee})

	denied := RequirePermission(auth.PermFinalReviewLock, stubPerms{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without grant")
	}))
	rec := httptest.NewRecorder()
	denied.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(userCtx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	ran := false
	granted := RequirePermission(auth.PermFinalReviewLock, stubPerms{allowed: map[string]bool{auth.PermFinalReviewLock: true}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ran = true
			w.WriteHeader(http.StatusNoContent)
		}))
	rec = httptest.NewRecorder()
	granted.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(userCtx))
	if !ran || rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run with grant, code %d", rec.Code)
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) != "fixed-id" {
			t.Fatalf("expected caller request id to win, got %q", GetRequestID(r.Context()))
		}
	})).ServeHTTP(rec, req)
}
