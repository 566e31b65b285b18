package corehandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/core"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
	Perms middleware.PermissionStore
	Audit *audit.Service
}

func NewHandler(store *core.Store, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/employees", h.handleListEmployees)
	r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/employees/{employeeID}", h.handleGetEmployee)
	r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/departments", h.handleListDepartments)
	r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/departments", h.handleCreateDepartment)
	r.With(middleware.RequirePermission(auth.PermCyclesRead, h.Perms)).Get("/cycles", h.handleListCycles)
	r.With(middleware.RequirePermission(auth.PermCyclesWrite, h.Perms)).Post("/cycles", h.handleCreateCycle)
	r.With(middleware.RequirePermission(auth.PermCyclesWrite, h.Perms)).Put("/cycles/{cycleID}/status", h.handleUpdateCycleStatus)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	employees, err := h.Store.ListEmployees(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	employee, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
		return
	}
	api.Success(w, employee, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", reqID)
		return
	}
	api.Success(w, departments, reqID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", reqID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "core.department.create", "department", id, reqID, payload); err != nil {
		slog.Warn("audit core.department.create failed", "err", err)
	}
	api.Created(w, map[string]any{"id": id}, reqID)
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	cycles, err := h.Store.ListCycles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", reqID)
		return
	}
	api.Success(w, cycles, reqID)
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name      string `json:"name"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Enum("status", payload.Status, []string{core.CycleStatusDraft, core.CycleStatusActive, core.CycleStatusClosed}, "must be a valid cycle status")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}
	if payload.Status == "" {
		payload.Status = core.CycleStatusDraft
	}

	id, err := h.Store.CreateCycle(r.Context(), payload.Name, start, end, payload.Status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_create_failed", "failed to create cycle", reqID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "core.cycle.create", "cycle", id, reqID, payload); err != nil {
		slog.Warn("audit core.cycle.create failed", "err", err)
	}
	api.Created(w, map[string]any{"id": id}, reqID)
}

func (h *Handler) handleUpdateCycleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	v.Enum("status", payload.Status, []string{core.CycleStatusDraft, core.CycleStatusActive, core.CycleStatusClosed}, "must be a valid cycle status")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	if err := h.Store.UpdateCycleStatus(r.Context(), cycleID, payload.Status); err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_update_failed", "failed to update cycle", reqID)
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "core.cycle.status", "cycle", cycleID, reqID, payload); err != nil {
		slog.Warn("audit core.cycle.status failed", "err", err)
	}
	api.Success(w, map[string]any{"id": cycleID, "status": payload.Status}, reqID)
}
