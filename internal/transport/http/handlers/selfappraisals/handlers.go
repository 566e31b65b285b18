package selfappraisalhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/selfappraisal"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *selfappraisal.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *selfappraisal.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/self-appraisals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSelfAppraisalAdmin, h.Perms)).Get("/cycles/{cycleID}", h.handleListForCycle)
		r.Route("/cycles/{cycleID}/employees/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermSelfAppraisalRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermSelfAppraisalWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermSelfAppraisalWrite, h.Perms)).Post("/submit", h.handleSubmit)
			r.With(middleware.RequirePermission(auth.PermSelfAppraisalWrite, h.Perms)).Post("/return", h.handleReturn)
			r.With(middleware.RequirePermission(auth.PermSelfAppraisalAdmin, h.Perms)).Post("/lock", h.handleLock)
		})
	})
}

func actorFrom(r *http.Request) selfappraisal.Actor {
	user, _ := middleware.GetUser(r.Context())
	return selfappraisal.Actor{ID: user.UserID, EmployeeID: user.EmployeeID, Role: user.RoleName}
}

func (h *Handler) handleListForCycle(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	docs, err := h.Service.ListForCycle(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, docs, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	doc, err := h.Service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Answers map[string]string  `json:"answers"`
		Ratings map[string]float64 `json:"ratings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	doc, err := h.Service.Update(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"), payload.Answers, payload.Ratings)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	doc, err := h.Service.Submit(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Reason  string `json:"reason"`
		DueDate string `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	var newDueDate *time.Time
	if payload.DueDate != "" {
		parsed, err := shared.ParseDate(payload.DueDate)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid due date", reqID)
			return
		}
		newDueDate = &parsed
	}

	doc, err := h.Service.Return(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"), payload.Reason, newDueDate)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, doc, reqID)
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	doc, err := h.Service.Lock(r.Context(), actorFrom(r), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, doc, reqID)
}
