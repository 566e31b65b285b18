package appraisalhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/auth"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *appraisal.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermAppraisalsRead, h.Perms)).Get("/{appraisalID}", h.handleDetails)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Put("/{appraisalID}/scores", h.handleUpdateScores)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Post("/{appraisalID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermAppraisalsWrite, h.Perms)).Post("/{appraisalID}/submit-for-review", h.handleSubmitForReview)
		r.With(middleware.RequirePermission(auth.PermAppraisalsSign, h.Perms)).Post("/{appraisalID}/sign", h.handleSign)
		r.With(middleware.RequirePermission(auth.PermAppraisalsFinalize, h.Perms)).Post("/{appraisalID}/finalize", h.handleFinalize)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employeeID := r.URL.Query().Get("employeeId")
	supervisorID := r.URL.Query().Get("supervisorId")
	// Employees only ever see their own appraisals.
	if user.RoleName == auth.RoleEmployee {
		employeeID = user.EmployeeID
		supervisorID = ""
	}

	appraisals, err := h.Service.List(r.Context(), employeeID, supervisorID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "appraisal_list_failed", "failed to list appraisals", reqID)
		return
	}
	api.Success(w, appraisals, reqID)
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	details, err := h.Service.Details(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, details, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		EmployeeID   string `json:"employeeId"`
		SupervisorID string `json:"supervisorId"`
		TemplateID   string `json:"templateId"`
		CycleID      string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("supervisorId", payload.SupervisorID, "is required")
	v.Required("templateId", payload.TemplateID, "is required")
	v.Required("cycleId", payload.CycleID, "is required")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	created, err := h.Service.Create(r.Context(), user.UserID, payload.EmployeeID, payload.SupervisorID, payload.TemplateID, payload.CycleID)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdateScores(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Sections []appraisal.SectionInput `json:"sections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if len(payload.Sections) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "at least one section is required", reqID)
		return
	}

	updated, err := h.Service.UpdateSectionScores(r.Context(), user.UserID, chi.URLParam(r, "appraisalID"), payload.Sections)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("role", payload.Role, "is required")
	v.Enum("role", payload.Role, []string{appraisal.SignRoleSupervisor, appraisal.SignRoleEmployee, appraisal.SignRoleReviewer}, "must be a valid signing role")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	signature, err := h.Service.Sign(r.Context(), user.UserID, chi.URLParam(r, "appraisalID"), payload.Role, user.EmployeeID)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Created(w, signature, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Submit)
}

func (h *Handler) handleSubmitForReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.SubmitForReview)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Finalize)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, appraisalID string) (string, error)) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	status, err := fn(r.Context(), user.UserID, appraisalID)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"id": appraisalID, "status": status}, reqID)
}
