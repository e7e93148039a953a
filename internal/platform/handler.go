package platform

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Handler exposes the platform console: tenant registration/listing,
// subscription plan management, system notifications and currencies,
// plus support tickets and the contact form. The /platform routes
// require RequireRole("superadmin") at the router; the support-ticket
// routes sit outside that group, and the contact route is public.
type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

type registerTenantRequest struct {
	GymName       string `json:"gym_name" validate:"required"`
	OwnerName     string `json:"owner_name" validate:"required"`
	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8"`
	PlanID        string `json:"plan_id"`
}

func (h *Handler) RegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req registerTenantRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	tenant, owner, err := h.service.RegisterTenant(r.Context(), RegisterTenantInput{
		GymName:       req.GymName,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
		PlanID:        req.PlanID,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{"tenant": tenant, "owner": owner})
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, t)
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.ListTenants(r.Context(), p)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result := kernel.NewResult(total, p)
	httputil.List(w, rows, &httputil.Meta{
		Page:       result.Page,
		PerPage:    result.PerPage,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateTenant(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

type createPlanRequest struct {
	Name     string   `json:"name" validate:"required"`
	Features []string `json:"features"`
}

func (h *Handler) CreateSubscriptionPlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	plan, err := h.service.CreateSubscriptionPlan(r.Context(), req.Name, req.Features)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, plan)
}

func (h *Handler) ListSubscriptionPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListSubscriptionPlans(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, plans)
}

type setSubscriptionRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func (h *Handler) SetTenantSubscription(w http.ResponseWriter, r *http.Request) {
	var req setSubscriptionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.SetTenantSubscription(r.Context(), chi.URLParam(r, "id"), req.PlanID, nil); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// --- Support tickets (caller-facing: a gym admin or a superadmin) ---

type openTicketRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message"`
}

func (h *Handler) OpenSupportTicket(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil {
		httputil.Error(w, errors.Unauthorized("no authenticated principal"))
		return
	}
	var req openTicketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	var gymID *string
	if act.GymID != "" {
		gymID = &act.GymID
	}
	ticket, err := h.service.OpenSupportTicket(r.Context(), gymID, req.Subject, act.ID, req.Message)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, ticket)
}

func (h *Handler) GetSupportTicket(w http.ResponseWriter, r *http.Request) {
	ticket, messages, err := h.service.GetSupportTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"ticket": ticket, "messages": messages})
}

type replyTicketRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) ReplyToSupportTicket(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil {
		httputil.Error(w, errors.Unauthorized("no authenticated principal"))
		return
	}
	var req replyTicketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	msg, err := h.service.ReplyToSupportTicket(r.Context(), chi.URLParam(r, "id"), act.ID, req.Body)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, msg)
}

func (h *Handler) CloseSupportTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseSupportTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// --- Contact requests (public, unauthenticated marketing-site form) ---

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func (h *Handler) SubmitContactRequest(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	c, err := h.service.SubmitContactRequest(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, c)
}

// --- System notifications (any authenticated platform user) ---

func (h *Handler) ListSystemNotifications(w http.ResponseWriter, r *http.Request) {
	act := actor.FromContext(r.Context())
	if act == nil {
		httputil.Error(w, errors.Unauthorized("no authenticated principal"))
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	p := kernel.Page{Number: page, PerPage: perPage}
	rows, total, err := h.service.ListSystemNotifications(r.Context(), act.ID, p)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	result := kernel.NewResult(total, p)
	httputil.List(w, rows, &httputil.Meta{
		Page:       result.Page,
		PerPage:    result.PerPage,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) MarkSystemNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkSystemNotificationRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// --- Currencies (read-only lookup) ---

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListCurrencies(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}
