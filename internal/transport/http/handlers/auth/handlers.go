package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
)

const sessionTTL = 8 * time.Hour

type Handler struct {
	Store  *auth.Store
	Secret string
	Audit  *audit.Service
}

func NewHandler(store *auth.Store, secret string, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Secret: secret, Audit: auditSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email, auth.UserStatusActive)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	sessionToken, err := generateSessionToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(sessionToken), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		RoleID:     user.RoleID,
		RoleName:   user.RoleName,
	}, sessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "err", err)
	}
	if err := h.Audit.Record(r.Context(), user.ID, "auth.login", "user", user.ID, reqID, nil); err != nil {
		slog.Warn("audit auth.login failed", "err", err)
	}

	api.Success(w, map[string]any{
		"token":        token,
		"sessionToken": sessionToken,
		"role":         user.RoleName,
		"employeeId":   user.EmployeeID,
		"expiresAt":    time.Now().Add(sessionTTL).UTC().Format(time.RFC3339),
	}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(payload.SessionToken)); err != nil {
		slog.Warn("session revoke failed", "err", err)
	}
	api.Success(w, map[string]any{"loggedOut": true}, reqID)
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
