package finalreviewhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/finalreview"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *finalreview.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *finalreview.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/final-reviews/{appraisalID}", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFinalReviewRead, h.Perms)).Get("/", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermFinalReviewSign, h.Perms)).Put("/comment", h.handleComment)
		r.With(middleware.RequirePermission(auth.PermFinalReviewSign, h.Perms)).Post("/sign/employee", h.handleEmployeeSign)
		r.With(middleware.RequirePermission(auth.PermFinalReviewSign, h.Perms)).Post("/sign/supervisor", h.handleSupervisorSign)
		r.With(middleware.RequirePermission(auth.PermFinalReviewSign, h.Perms)).Post("/sign/divisional", h.handleDivisionalSign)
		r.With(middleware.RequirePermission(auth.PermFinalReviewLock, h.Perms)).Post("/finalize", h.handleFinalize)
	})
}

func actorFrom(r *http.Request) finalreview.Actor {
	user, _ := middleware.GetUser(r.Context())
	return finalreview.Actor{ID: user.UserID, EmployeeID: user.EmployeeID, Role: user.RoleName}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	review, err := h.Service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Slot    string `json:"slot"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("slot", payload.Slot, "is required")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	review, err := h.Service.CreateOrUpdate(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"), payload.Slot, payload.Comment)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}

type signPayload struct {
	Comment        string `json:"comment"`
	SignatureImage string `json:"signatureImage"`
}

func (h *Handler) handleEmployeeSign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload signPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	review, err := h.Service.EmployeeSign(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"), payload.Comment, payload.SignatureImage)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleSupervisorSign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload signPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	review, err := h.Service.SupervisorSign(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"), payload.Comment, payload.SignatureImage)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleDivisionalSign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		signPayload
		RecommendationType   string `json:"recommendationType"`
		RecommendationAction string `json:"recommendationAction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	review, err := h.Service.DivisionalSign(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"),
		payload.Comment, payload.SignatureImage, payload.RecommendationType, payload.RecommendationAction)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	review, err := h.Service.HRFinalize(r.Context(), actorFrom(r), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, review, reqID)
}
