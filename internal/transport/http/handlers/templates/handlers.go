package templatehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/template"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *template.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *template.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTemplatesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTemplatesRead, h.Perms)).Get("/{templateID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermTemplatesWrite, h.Perms)).Put("/{templateID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	templates, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list templates", reqID)
		return
	}
	api.Success(w, templates, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	tpl, err := h.Service.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, tpl, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name     string                  `json:"name"`
		Category string                  `json:"category"`
		Config   template.TemplateConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("category", payload.Category, "is required")
	if v.HasIssues() {
		v.WriteIssues(w, reqID)
		return
	}

	id, err := h.Service.Create(r.Context(), user.UserID, payload.Name, payload.Category, payload.Config)
	if err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Created(w, map[string]any{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")

	var payload struct {
		Name   string                  `json:"name"`
		Config template.TemplateConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.Update(r.Context(), user.UserID, templateID, payload.Name, payload.Config); err != nil {
		api.DomainFail(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"id": templateID}, reqID)
}
